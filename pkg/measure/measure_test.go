package measure

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

// stubMeasurer returns a fixed size per title and records what it was asked.
type stubMeasurer struct {
	mu     sync.Mutex
	sizes  map[string]layout.Size
	errs   map[string]error
	calls  int32
	seen   []Content
	styles []Style
}

func (s *stubMeasurer) MeasureText(_ context.Context, c Content, st Style) (layout.Size, error) {
	atomic.AddInt32(&s.calls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, c)
	s.styles = append(s.styles, st)
	if err, ok := s.errs[c.Title]; ok {
		return layout.Size{}, err
	}
	if sz, ok := s.sizes[c.Title]; ok {
		return sz, nil
	}
	return layout.Size{Width: 120, Height: 40}, nil
}

func TestMeasureCachesPerID(t *testing.T) {
	stub := &stubMeasurer{}
	m := New(stub)
	node := &mindmap.Node{ID: "A", Title: "Root"}

	first := m.Measure(context.Background(), node, RoleCenter)
	second := m.Measure(context.Background(), node, RoleChild)
	if first != second {
		t.Errorf("measurements differ: %+v vs %+v", first, second)
	}
	if stub.calls != 1 {
		t.Errorf("text measurer called %d times, want 1", stub.calls)
	}

	m.Invalidate()
	if m.CacheLen() != 0 {
		t.Errorf("cache has %d entries after Invalidate", m.CacheLen())
	}
	m.Measure(context.Background(), node, RoleCenter)
	if stub.calls != 2 {
		t.Errorf("text measurer called %d times after Invalidate, want 2", stub.calls)
	}
}

func TestMeasureReflowsTallBoxes(t *testing.T) {
	long := strings.Repeat("Pneumonoultramicroscopic", 3)
	stub := &stubMeasurer{sizes: map[string]layout.Size{
		long:     {Width: 60, Height: 400},
		"narrow": {Width: 100, Height: 151},
		"gain":   {Width: 300, Height: 460},
		"capped": {Width: 340, Height: 2000},
	}}
	m := New(stub)

	tests := []struct {
		title string
		want  layout.Size
	}{
		// sqrt(60*400) = 154.9 -> rounded
		{long, layout.Size{Width: 155, Height: 400}},
		// sqrt(100*151) = 122.9 > 105
		{"narrow", layout.Size{Width: 123, Height: 151}},
		// sqrt(300*460) = 371.5 capped at 350, but 350 > 315 so accepted
		{"gain", layout.Size{Width: 350, Height: 460}},
		// capped at 350, which is less than 5% wider than 340
		{"capped", layout.Size{Width: 340, Height: 2000}},
	}

	for i, tt := range tests {
		node := &mindmap.Node{ID: string(rune('a' + i)), Title: tt.title}
		got := m.Measure(context.Background(), node, RoleChild)
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.title, got, tt.want)
		}
		if got.Height > got.Width*3 {
			t.Errorf("%s: box still a ribbon: %+v", tt.title, got)
		}
	}
}

func TestMeasureFloors(t *testing.T) {
	stub := &stubMeasurer{sizes: map[string]layout.Size{"x": {Width: 12, Height: 14}}}
	m := New(stub)
	got := m.Measure(context.Background(), &mindmap.Node{ID: "x", Title: "x"}, RoleChild)
	if got.Width != 50 || got.Height != 30 {
		t.Errorf("got %+v, want floors 50x30", got)
	}
}

func TestMeasureFallback(t *testing.T) {
	stub := &stubMeasurer{
		errs:  map[string]error{"broken": errors.New("no content element")},
		sizes: map[string]layout.Size{"empty": {}},
	}
	m := New(stub)

	tests := []struct {
		id, title string
		role      Role
		want      layout.Size
	}{
		{"1", "broken", RoleCenter, layout.Size{Width: 150, Height: 80}},
		{"2", "broken", RoleParent, layout.Size{Width: 150, Height: 40}},
		{"3", "broken", RoleChild, layout.Size{Width: 150, Height: 60}},
		{"4", "empty", RoleChild, layout.Size{Width: 150, Height: 60}},
	}
	for _, tt := range tests {
		got := m.Measure(context.Background(), &mindmap.Node{ID: tt.id, Title: tt.title}, tt.role)
		if got != tt.want {
			t.Errorf("%s/%s: got %+v, want %+v", tt.title, tt.role, got, tt.want)
		}
		if cached, ok := m.Cached(tt.id); !ok || cached != got {
			t.Errorf("%s: fallback not cached", tt.id)
		}
	}
}

func TestMeasureParentOmitsDescription(t *testing.T) {
	stub := &stubMeasurer{}
	m := New(stub)
	m.Measure(context.Background(), &mindmap.Node{ID: "p", Title: "P", Description: "hidden"}, RoleParent)
	m.Measure(context.Background(), &mindmap.Node{ID: "c", Title: "C", Description: "shown"}, RoleChild)

	if stub.seen[0].Description != "" {
		t.Errorf("parent measured with description %q", stub.seen[0].Description)
	}
	if stub.seen[1].Description != "shown" {
		t.Errorf("child description = %q, want shown", stub.seen[1].Description)
	}
	if stub.styles[0].ContextWidth != 500 || stub.styles[0].MaxWidth != 350 {
		t.Errorf("style = %+v, want context 500 max 350", stub.styles[0])
	}
}

type countingObserver struct {
	hits, misses, fallbacks int32
}

func (o *countingObserver) ObserveMeasure(cached, fallback bool) {
	if cached {
		atomic.AddInt32(&o.hits, 1)
	} else {
		atomic.AddInt32(&o.misses, 1)
	}
	if fallback {
		atomic.AddInt32(&o.fallbacks, 1)
	}
}

func TestMeasureAll(t *testing.T) {
	stub := &stubMeasurer{sizes: map[string]layout.Size{
		"one": {Width: 100, Height: 40},
		"two": {Width: 200, Height: 40},
	}}
	obs := &countingObserver{}
	m := New(stub, WithObserver(obs))

	reqs := []Request{
		{Node: &mindmap.Node{ID: "1", Title: "one"}, Role: RoleCenter},
		{Node: &mindmap.Node{ID: "2", Title: "two"}, Role: RoleChild},
		{Node: &mindmap.Node{ID: "3", Title: "three"}, Role: RoleChild},
	}
	sizes, err := m.MeasureAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("MeasureAll: %v", err)
	}
	want := []float64{100, 200, 120}
	for i, s := range sizes {
		if s.Width != want[i] {
			t.Errorf("size %d width = %.0f, want %.0f", i, s.Width, want[i])
		}
	}
	if obs.misses != 3 || obs.hits != 0 {
		t.Errorf("observer hits=%d misses=%d, want 0/3", obs.hits, obs.misses)
	}

	if _, err := m.MeasureAll(context.Background(), reqs); err != nil {
		t.Fatal(err)
	}
	if obs.hits != 3 {
		t.Errorf("observer hits=%d, want 3 after second pass", obs.hits)
	}
}

func TestMeasureAllCancelled(t *testing.T) {
	m := New(&stubMeasurer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.MeasureAll(ctx, []Request{{Node: &mindmap.Node{ID: "1", Title: "x"}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// cancellingMeasurer cancels the cycle while a measurement is in flight.
type cancellingMeasurer struct {
	cancel context.CancelFunc
}

func (c cancellingMeasurer) MeasureText(ctx context.Context, _ Content, _ Style) (layout.Size, error) {
	c.cancel()
	<-ctx.Done()
	return layout.Size{}, ctx.Err()
}

func TestMeasureCancelledNotCached(t *testing.T) {
	stub := &stubMeasurer{sizes: map[string]layout.Size{"Root": {Width: 186, Height: 59}}}
	m := New(stub)
	node := &mindmap.Node{ID: "A", Title: "Root"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := m.Measure(ctx, node, RoleChild); got != Fallback(RoleChild) {
		t.Errorf("cancelled measurement = %+v, want fallback", got)
	}
	if _, ok := m.Cached("A"); ok {
		t.Fatal("cancelled measurement was cached")
	}
	if got := m.Measure(context.Background(), node, RoleChild); got != (layout.Size{Width: 186, Height: 59}) {
		t.Errorf("next measurement = %+v, want 186x59", got)
	}
}

func TestMeasureAllCancelledMidCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New(cancellingMeasurer{cancel: cancel})

	reqs := []Request{
		{Node: &mindmap.Node{ID: "1", Title: "one"}, Role: RoleCenter},
		{Node: &mindmap.Node{ID: "2", Title: "two"}, Role: RoleChild},
	}
	if _, err := m.MeasureAll(ctx, reqs); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n := m.CacheLen(); n != 0 {
		t.Errorf("cache has %d entries after a cancelled cycle", n)
	}
}
