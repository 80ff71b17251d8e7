// Package render drives the hub-and-spoke render cycle: it resolves the
// focused node's neighbourhood, measures it, lays it out, fits the
// viewport and routes clicks back into navigation.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/mindmap"
	"github.com/ha1tch/hubspoke/pkg/viewport"
)

var (
	// ErrNoRoot is returned when the tree has no usable root.
	ErrNoRoot = errors.New("mindmap has no root node")
	// ErrUnknownNode is returned when a navigation target is not in the tree.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNotVisible is returned when a click targets a node that is not drawn.
	ErrNotVisible = errors.New("node not visible")
	// ErrStaleScene is returned for clicks on a scene that has been replaced.
	ErrStaleScene = errors.New("stale scene")
	// ErrNoScene is returned when zooming before the first render.
	ErrNoScene = errors.New("nothing rendered yet")
)

// Session is the state of one viewing session.
type Session struct {
	FocusedID string
	Transform viewport.Transform
	Cycle     uint64
}

// Observer is notified after every completed render cycle.
type Observer interface {
	ObserveRender(d time.Duration, nodes int)
}

// Renderer owns a session over an immutable tree.
type Renderer struct {
	tree       *mindmap.Tree
	measurer   *measure.Measurer
	view       *viewport.Controller
	layoutOpts layout.Options
	logger     *slog.Logger
	observer   Observer

	mu      sync.Mutex
	session Session
	scene   *Scene
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithLayout overrides the layout options. The viewport estimate is
// replaced on every render.
func WithLayout(o layout.Options) Option {
	return func(r *Renderer) { r.layoutOpts = o }
}

// WithViewport overrides the zoom options.
func WithViewport(o viewport.Options) Option {
	return func(r *Renderer) { r.view = viewport.NewController(o) }
}

// WithObserver registers a render observer.
func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observer = o }
}

// New creates a renderer focused on the root of tree.
func New(tree *mindmap.Tree, m *measure.Measurer, options ...Option) (*Renderer, error) {
	root := tree.Root()
	if root == nil || root.ID == "" {
		return nil, ErrNoRoot
	}
	r := &Renderer{
		tree:       tree,
		measurer:   m,
		view:       viewport.NewController(viewport.DefaultOptions()),
		layoutOpts: layout.DefaultOptions(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		session:    Session{FocusedID: root.ID, Transform: viewport.Identity},
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// Session returns a snapshot of the session state.
func (r *Renderer) Session() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Scene returns the most recent scene, or nil before the first render.
func (r *Renderer) Scene() *Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scene
}

// Tree returns the tree being viewed.
func (r *Renderer) Tree() *mindmap.Tree { return r.tree }

// Focus sets the focused node without rendering.
func (r *Renderer) Focus(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focusLocked(id)
}

func (r *Renderer) focusLocked(id string) error {
	if r.tree.FindByID(id) == nil {
		r.logger.Warn("navigation target not found", "node", id)
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	r.session.FocusedID = id
	return nil
}

// Render runs one full cycle for a viewport of the given size.
func (r *Renderer) Render(ctx context.Context, view layout.Size) (*Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderLocked(ctx, view)
}

func (r *Renderer) renderLocked(ctx context.Context, view layout.Size) (*Scene, error) {
	start := time.Now()

	// A new cycle makes every earlier scene stale.
	r.session.Cycle++
	r.scene = nil

	focused := r.tree.FindByID(r.session.FocusedID)
	if focused == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, r.session.FocusedID)
	}
	parent, _ := r.tree.FindParent(focused.ID)
	children := focused.Children

	reqs := make([]measure.Request, 0, len(children)+2)
	reqs = append(reqs, measure.Request{Node: focused, Role: measure.RoleCenter})
	if parent != nil {
		reqs = append(reqs, measure.Request{Node: parent, Role: measure.RoleParent})
	}
	for _, c := range children {
		reqs = append(reqs, measure.Request{Node: c, Role: measure.RoleChild})
	}

	sizes, err := r.measurer.MeasureAll(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("measure: %w", err)
	}

	in := layout.Input{Center: layout.Item{ID: focused.ID, Size: sizes[0]}}
	next := 1
	if parent != nil {
		in.Parent = &layout.Item{ID: parent.ID, Size: sizes[next]}
		next++
	}
	for i, c := range children {
		in.Children = append(in.Children, layout.Item{ID: c.ID, Size: sizes[next+i]})
	}

	opts := r.layoutOpts
	opts.Viewport = view
	res := layout.Radial(in, opts)

	transform := r.view.AutoFit(res.Bounds, view)
	r.session.Transform = transform

	scene := &Scene{
		Cycle:     r.session.Cycle,
		Viewport:  view,
		Lines:     res.Lines,
		Bounds:    res.Bounds,
		Radius:    res.Radius,
		Transform: transform,
		Center: SceneNode{
			ID:          focused.ID,
			Title:       focused.Title,
			Description: focused.Description,
			Role:        measure.RoleCenter,
			Rect:        res.Center.Rect,
		},
	}
	if res.Parent != nil {
		scene.Parent = &SceneNode{
			ID:    parent.ID,
			Title: parent.Title,
			Role:  measure.RoleParent,
			Rect:  res.Parent.Rect,
		}
	}
	scene.Children = make([]SceneNode, len(res.Children))
	for i, c := range res.Children {
		scene.Children[i] = SceneNode{
			ID:          children[i].ID,
			Title:       children[i].Title,
			Description: children[i].Description,
			Role:        measure.RoleChild,
			Rect:        c.Rect,
		}
	}
	r.scene = scene

	elapsed := time.Since(start)
	r.logger.Debug("rendered", "node", focused.ID, "children", len(children),
		"zoom", transform.Zoom, "cycle", scene.Cycle, "took", elapsed)
	if r.observer != nil {
		r.observer.ObserveRender(elapsed, len(reqs))
	}
	return scene, nil
}

// Click handles a click on node id in the scene of the given cycle. It
// reports whether focus changed; the caller renders the next cycle.
//
// Clicking the focused node moves up to its parent (nothing happens at
// the root); clicking any other visible node focuses it.
func (r *Renderer) Click(cycle uint64, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clickLocked(cycle, id)
}

func (r *Renderer) clickLocked(cycle uint64, id string) (bool, error) {
	if r.scene == nil || cycle != r.session.Cycle {
		return false, ErrStaleScene
	}
	if r.tree.FindByID(id) == nil {
		r.logger.Warn("clicked node not found", "node", id)
		return false, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}

	if id == r.session.FocusedID {
		parent, status := r.tree.FindParent(id)
		if status != mindmap.ParentFound {
			r.logger.Debug("clicked root, no parent to navigate to", "node", id)
			return false, nil
		}
		r.logger.Debug("navigating up", "from", id, "to", parent.ID)
		r.session.FocusedID = parent.ID
		return true, nil
	}

	if !r.scene.Contains(id) {
		return false, fmt.Errorf("%w: %q", ErrNotVisible, id)
	}
	r.logger.Debug("navigating to node", "from", r.session.FocusedID, "to", id)
	r.session.FocusedID = id
	return true, nil
}

// Zoom steps the zoom of the current scene without a new layout and
// returns the scene with the updated transform.
func (r *Renderer) Zoom(steps int) (*Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zoomLocked(steps)
}

func (r *Renderer) zoomLocked(steps int) (*Scene, error) {
	if r.scene == nil {
		return nil, ErrNoScene
	}
	t := r.view.ZoomBy(steps)
	r.session.Transform = t
	r.scene = r.scene.withTransform(t)
	return r.scene, nil
}

// Relayout drops every cached node size and renders a fresh cycle.
func (r *Renderer) Relayout(ctx context.Context, view layout.Size) (*Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measurer.Invalidate()
	return r.renderLocked(ctx, view)
}
