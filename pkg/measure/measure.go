// Package measure sizes node boxes from their text content.
//
// Text layout itself is delegated to a TextBoxMeasurer; Measurer adds the
// per-node cache, the reflow heuristic for tall narrow boxes, the minimum
// box size and the role-based fallback used when measuring fails.
package measure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

// Role is the part a node plays in the current view.
type Role int

const (
	RoleCenter Role = iota
	RoleParent
	RoleChild
)

func (r Role) String() string {
	switch r {
	case RoleCenter:
		return "center"
	case RoleParent:
		return "parent"
	case RoleChild:
		return "child"
	default:
		return "unknown"
	}
}

// Content is the text drawn inside a node box.
type Content struct {
	Title       string
	Description string // empty for pinned parents
}

// Style carries the constraints a text measurer lays text out under.
type Style struct {
	Role         Role
	ContextWidth float64 // width of the off-canvas measuring container
	MaxWidth     float64 // maximum box width
}

// TextBoxMeasurer lays out text and reports the natural box size.
type TextBoxMeasurer interface {
	MeasureText(ctx context.Context, c Content, s Style) (layout.Size, error)
}

// ErrDegenerate is returned by text measurers that cannot produce a box.
var ErrDegenerate = errors.New("degenerate text box")

// Observer is notified about every measurement.
type Observer interface {
	ObserveMeasure(cached, fallback bool)
}

// Options controls the measurer heuristics.
type Options struct {
	ContextWidth  float64
	MaxWidth      float64
	TallnessRatio float64 // reflow when height exceeds width by this factor
	MinWidthGain  float64 // accept a reflowed width only above this factor
	MinWidth      float64
	MinHeight     float64
}

// DefaultOptions returns the measuring constants of the viewer.
func DefaultOptions() Options {
	return Options{
		ContextWidth:  500,
		MaxWidth:      350,
		TallnessRatio: 1.5,
		MinWidthGain:  1.05,
		MinWidth:      50,
		MinHeight:     30,
	}
}

// Fallback returns the size used for a role when measuring fails.
func Fallback(role Role) layout.Size {
	switch role {
	case RoleCenter:
		return layout.Size{Width: 150, Height: 80}
	case RoleParent:
		return layout.Size{Width: 150, Height: 40}
	default:
		return layout.Size{Width: 150, Height: 60}
	}
}

// Measurer measures nodes and caches the result per node id.
type Measurer struct {
	text     TextBoxMeasurer
	opts     Options
	logger   *slog.Logger
	observer Observer

	mu    sync.Mutex
	cache map[string]layout.Size
}

// Option configures a Measurer.
type Option func(*Measurer)

// WithLogger sets the logger used for measurement warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Measurer) { m.logger = l }
}

// WithObserver registers an observer for cache and fallback events.
func WithObserver(o Observer) Option {
	return func(m *Measurer) { m.observer = o }
}

// WithOptions overrides the default heuristics.
func WithOptions(o Options) Option {
	return func(m *Measurer) { m.opts = o }
}

// New creates a Measurer on top of a text measurer.
func New(text TextBoxMeasurer, options ...Option) *Measurer {
	m := &Measurer{
		text:   text,
		opts:   DefaultOptions(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:  make(map[string]layout.Size),
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// Measure returns the box size of node in the given role. A cached size is
// returned unchanged; otherwise the node is measured and the result cached.
// When ctx is done the role fallback is returned and nothing is cached.
func (m *Measurer) Measure(ctx context.Context, node *mindmap.Node, role Role) layout.Size {
	if node == nil {
		return Fallback(role)
	}

	m.mu.Lock()
	cached, ok := m.cache[node.ID]
	m.mu.Unlock()
	if ok {
		m.observe(true, false)
		return cached
	}

	content := Content{Title: node.Title}
	if role != RoleParent {
		content.Description = node.Description
	}
	style := Style{Role: role, ContextWidth: m.opts.ContextWidth, MaxWidth: m.opts.MaxWidth}

	size, err := m.text.MeasureText(ctx, content, style)
	if ctx.Err() != nil {
		// The cycle was abandoned; its sizes must not outlive it.
		return Fallback(role)
	}
	fallback := false
	switch {
	case err != nil:
		m.logger.Warn("measurement failed, using fallback", "node", node.ID, "role", role.String(), "error", err)
		size, fallback = Fallback(role), true
	case !(size.Width > 0 && size.Height > 0):
		m.logger.Warn("degenerate measurement, using fallback", "node", node.ID, "role", role.String(),
			"width", size.Width, "height", size.Height)
		size, fallback = Fallback(role), true
	default:
		size = m.reflow(size)
	}

	size.Width = math.Max(size.Width, m.opts.MinWidth)
	size.Height = math.Max(size.Height, m.opts.MinHeight)

	m.mu.Lock()
	m.cache[node.ID] = size
	m.mu.Unlock()
	m.observe(false, fallback)
	return size
}

// reflow widens boxes that came out much taller than wide. The new width
// is the geometric mean of width and height, capped at MaxWidth, and only
// used if it gains more than MinWidthGain over the measured width.
func (m *Measurer) reflow(s layout.Size) layout.Size {
	if s.Height > s.Width*m.opts.TallnessRatio && s.Width < m.opts.MaxWidth {
		target := math.Sqrt(s.Width * s.Height)
		w := math.Min(m.opts.MaxWidth, math.Max(s.Width, target))
		if w > s.Width*m.opts.MinWidthGain {
			s.Width = math.Round(w)
		}
	}
	return s
}

func (m *Measurer) observe(cached, fallback bool) {
	if m.observer != nil {
		m.observer.ObserveMeasure(cached, fallback)
	}
}

// Request is one measurement of a render cycle.
type Request struct {
	Node *mindmap.Node
	Role Role
}

// MeasureAll measures every request concurrently and returns once all of
// them are done. Sizes are returned in request order.
func (m *Measurer) MeasureAll(ctx context.Context, reqs []Request) ([]layout.Size, error) {
	sizes := make([]layout.Size, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sizes[i] = m.Measure(gctx, req.Node, req.Role)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sizes, nil
}

// Cached returns the cached size for id, if any.
func (m *Measurer) Cached(id string) (layout.Size, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.cache[id]
	return s, ok
}

// Invalidate drops every cached size. Called on resize, since the width
// available for wrapping may have changed.
func (m *Measurer) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]layout.Size)
}

// CacheLen returns the number of cached sizes.
func (m *Measurer) CacheLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}
