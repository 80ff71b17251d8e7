// Package viewport computes the zoom and pan applied to the content layer.
package viewport

import (
	"fmt"
	"math"

	"github.com/ha1tch/hubspoke/pkg/layout"
)

// Options holds the zoom limits and auto-fit padding.
type Options struct {
	OuterPadding float64 // space kept around the fitted content
	MinZoom      float64
	MaxZoom      float64
	ZoomStep     float64
}

// DefaultOptions returns the viewer's zoom constants.
func DefaultOptions() Options {
	return Options{
		OuterPadding: 60,
		MinZoom:      0.2,
		MaxZoom:      1.8,
		ZoomStep:     0.2,
	}
}

// Transform is a zoom followed by a translation. It carries no history:
// applying it depends only on the two values.
type Transform struct {
	Zoom float64
	Pan  layout.Point
}

// Identity is the transform that leaves content untouched.
var Identity = Transform{Zoom: 1}

// Apply maps a content point to viewport coordinates.
func (t Transform) Apply(p layout.Point) layout.Point {
	return layout.Point{X: t.Pan.X + p.X*t.Zoom, Y: t.Pan.Y + p.Y*t.Zoom}
}

// ApplyRect maps a content rect to viewport coordinates.
func (t Transform) ApplyRect(r layout.Rect) layout.Rect {
	p := t.Apply(layout.Point{X: r.X, Y: r.Y})
	return layout.Rect{X: p.X, Y: p.Y, Width: r.Width * t.Zoom, Height: r.Height * t.Zoom}
}

// Invert maps a viewport point back to content coordinates.
func (t Transform) Invert(p layout.Point) layout.Point {
	if t.Zoom == 0 {
		return p
	}
	return layout.Point{X: (p.X - t.Pan.X) / t.Zoom, Y: (p.Y - t.Pan.Y) / t.Zoom}
}

// SVG returns the transform attribute value for the content group.
func (t Transform) SVG() string {
	return fmt.Sprintf("translate(%.2f %.2f) scale(%.4f)", t.Pan.X, t.Pan.Y, t.Zoom)
}

// Controller owns the current transform of one view.
type Controller struct {
	opts    Options
	current Transform
}

// NewController creates a controller at the identity transform.
func NewController(opts Options) *Controller {
	return &Controller{opts: opts, current: Identity}
}

// Options returns the controller's configuration.
func (c *Controller) Options() Options { return c.opts }

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.current }

// Zoom returns the current zoom factor.
func (c *Controller) Zoom() float64 { return c.current.Zoom }

// AutoFit replaces the current transform with one that fits bounds inside
// the viewport and returns it.
func (c *Controller) AutoFit(bounds layout.Bounds, view layout.Size) Transform {
	c.current = Fit(bounds, view, c.opts)
	return c.current
}

// ZoomIn steps the zoom up, clamped to MaxZoom. Pan is left unchanged.
func (c *Controller) ZoomIn() Transform {
	return c.ZoomBy(1)
}

// ZoomOut steps the zoom down, clamped to MinZoom. Pan is left unchanged.
func (c *Controller) ZoomOut() Transform {
	return c.ZoomBy(-1)
}

// ZoomBy applies steps zoom increments (negative zooms out).
func (c *Controller) ZoomBy(steps int) Transform {
	z := c.current.Zoom
	for i := 0; i < abs(steps); i++ {
		if steps > 0 {
			z = c.clamp(z + c.opts.ZoomStep)
		} else {
			z = c.clamp(z - c.opts.ZoomStep)
		}
	}
	c.current.Zoom = c.clamp(z)
	return c.current
}

// EffectiveSteps returns the part of steps that still changes the zoom
// when stepping from start. Steps past MinZoom or MaxZoom are dropped, so
// one step back from the result always moves the zoom.
func (o Options) EffectiveSteps(start float64, steps int) int {
	dir := 1
	if steps < 0 {
		dir = -1
	}
	z := clamp(start, o.MinZoom, o.MaxZoom)
	n := 0
	for ; n < abs(steps); n++ {
		next := clamp(z+float64(dir)*o.ZoomStep, o.MinZoom, o.MaxZoom)
		if math.Abs(next-z) < 1e-9 {
			break
		}
		z = next
	}
	return n * dir
}

func (c *Controller) clamp(z float64) float64 {
	return clamp(z, c.opts.MinZoom, c.opts.MaxZoom)
}

// Fit computes the auto-fit transform for bounds in a viewport of the
// given size. A degenerate box resets the zoom to 1 and centres on its
// midpoint (or the viewport centre when there is nothing to centre on).
func Fit(bounds layout.Bounds, view layout.Size, opts Options) Transform {
	viewCenter := layout.Point{X: view.Width / 2, Y: view.Height / 2}

	if bounds.Degenerate() {
		if bounds.Empty() || !finite(bounds.MinX) || !finite(bounds.MinY) {
			return Transform{Zoom: 1, Pan: viewCenter}
		}
		mid := bounds.Center()
		return Transform{Zoom: 1, Pan: layout.Point{X: viewCenter.X - mid.X, Y: viewCenter.Y - mid.Y}}
	}

	scaleX := view.Width / (bounds.Width() + opts.OuterPadding*2)
	scaleY := view.Height / (bounds.Height() + opts.OuterPadding*2)
	zoom := clamp(math.Min(scaleX, scaleY), opts.MinZoom, opts.MaxZoom)

	mid := bounds.Center()
	return Transform{
		Zoom: zoom,
		Pan: layout.Point{
			X: viewCenter.X - mid.X*zoom,
			Y: viewCenter.Y - mid.Y*zoom,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
