// Package server is the HTTP mindmap viewer. Every node on a page is a
// link, so a click is a request for the next focused node.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/logging"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/metrics"
	"github.com/ha1tch/hubspoke/pkg/mindmap"
	"github.com/ha1tch/hubspoke/pkg/viewport"
)

// Config holds server configuration.
type Config struct {
	Addr           string
	AllowAll       bool          // allow all CORS origins
	RequestTimeout time.Duration // per-request timeout
	View           layout.Size   // viewport used when the request gives none
	Title          string
}

// Deps are the collaborators a server renders with. Exactly one of Tree
// and LoadErr is set; a server with LoadErr answers every page with the
// error canvas.
type Deps struct {
	Tree     *mindmap.Tree
	LoadErr  error
	Text     *measure.FontMeasurer
	Measurer *measure.Measurer
	Metrics  *metrics.Registry
	Logger   *slog.Logger
	Layout   layout.Options
	Viewport viewport.Options
}

// Server serves rendered mindmap pages.
type Server struct {
	cfg        Config
	deps       Deps
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. Missing dependencies get defaults.
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	if deps.Layout == (layout.Options{}) {
		deps.Layout = layout.DefaultOptions()
	}
	if deps.Viewport == (viewport.Options{}) {
		deps.Viewport = viewport.DefaultOptions()
	}
	if deps.Measurer == nil && deps.Text != nil {
		deps.Measurer = measure.New(deps.Text, measure.WithLogger(deps.Logger), measure.WithObserver(deps.Metrics))
	}
	if cfg.View.Width <= 0 || cfg.View.Height <= 0 {
		cfg.View = layout.Size{Width: 1024, Height: 768}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{cfg: cfg, deps: deps, logger: deps.Logger}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	r.Get("/", s.handleRoot)
	r.Get("/node/{id}", s.handleNode)
	r.Get("/svg/{id}", s.handleSVG)
	r.Get("/png/{id}", s.handlePNG)
	r.Get("/data.json", s.handleData)

	return r
}

// observe logs each request and records it in the metrics registry under
// its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		s.deps.Metrics.HTTPRequestsInFlight.Inc()
		defer s.deps.Metrics.HTTPRequestsInFlight.Dec()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.deps.Metrics.RecordHTTPRequest(r.Method, pattern, fmt.Sprint(status), elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"bytes", ww.BytesWritten(), "took", elapsed, "request_id", middleware.GetReqID(r.Context()))
	})
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// ServeHTTP makes the server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("hubspoke viewer listening", "addr", s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
