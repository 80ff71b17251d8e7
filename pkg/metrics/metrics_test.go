package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/render"
)

// The registry must plug into both observer hooks.
var (
	_ measure.Observer = (*Registry)(nil)
	_ render.Observer  = (*Registry)(nil)
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.RenderCyclesTotal == nil || r.MeasurementsTotal == nil || r.HTTPRequestsTotal == nil {
		t.Fatal("metrics not initialised")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialised")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestObserveRender(t *testing.T) {
	r := NewRegistry()
	r.ObserveRender(2*time.Millisecond, 3)
	r.ObserveRender(4*time.Millisecond, 5)

	if got := testutil.ToFloat64(r.RenderCyclesTotal); got != 2 {
		t.Errorf("render cycles = %g, want 2", got)
	}
	if got := testutil.CollectAndCount(r.RenderDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestObserveMeasure(t *testing.T) {
	r := NewRegistry()
	r.ObserveMeasure(false, false)
	r.ObserveMeasure(true, false)
	r.ObserveMeasure(true, false)
	r.ObserveMeasure(false, true)

	tests := []struct {
		result string
		want   float64
	}{
		{"measured", 1},
		{"cached", 2},
		{"fallback", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(r.MeasurementsTotal.WithLabelValues(tt.result)); got != tt.want {
			t.Errorf("%s = %g, want %g", tt.result, got, tt.want)
		}
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/node/{id}", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), `hubspoke_http_requests_total{method="GET",path="/node/{id}",status="200"} 1`) {
		t.Errorf("exposition missing request counter:\n%s", body)
	}
}
