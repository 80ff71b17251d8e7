// Package layout places the focused node, its pinned parent and its
// children for one hub-and-spoke view.
package layout

import (
	"fmt"
	"math"
)

// Options controls the radial layout.
type Options struct {
	Padding      float64 // space between children along the ring and between rings
	RadiusFactor float64 // minimum ring radius as a fraction of the larger viewport side
	ParentInset  float64 // distance of the pinned parent from the canvas corner
	Viewport     Size    // estimate of the visible canvas
}

// DefaultOptions returns the layout constants the viewer ships with.
func DefaultOptions() Options {
	return Options{
		Padding:      20,
		RadiusFactor: 0.32,
		ParentInset:  15,
		Viewport:     Size{Width: 1024, Height: 768},
	}
}

// Item is a measured node handed to the layout.
type Item struct {
	ID   string
	Size Size
}

// Input is the neighbourhood of the focused node.
type Input struct {
	Center   Item
	Parent   *Item // nil at the root
	Children []Item
}

// NodeLayout contains the placement of a single node.
type NodeLayout struct {
	ID string
	Rect
	StartAngle float64 // children only: start of the allotted span
	Span       float64 // children only: allotted angular span
	Angle      float64 // children only: placement angle (middle of the span)
}

// Line connects the focused node's centre to a child's centre.
type Line struct {
	ChildID  string
	From, To Point
}

// Path returns the line as SVG path data.
func (l Line) Path() string {
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f", l.From.X, l.From.Y, l.To.X, l.To.Y)
}

// Result contains the complete layout of one view.
type Result struct {
	Center   NodeLayout
	Parent   *NodeLayout // pinned in canvas coordinates, not content coordinates
	Children []NodeLayout
	Lines    []Line

	// Bounds covers the centre and every child. The pinned parent is
	// excluded because it is not part of the auto-fitted content.
	Bounds Bounds

	Radius     float64 // final ring radius (0 without children)
	Overflowed bool    // true when the ring had to grow to fit the children
}

const fullCircle = 2 * math.Pi

// Radial computes the hub-and-spoke layout. The centre is placed at the
// layout origin and children are walked clockwise from 12 o'clock in the
// order given.
func Radial(in Input, opts Options) *Result {
	res := &Result{}

	centerSize := in.Center.Size
	res.Center = NodeLayout{
		ID: in.Center.ID,
		Rect: Rect{
			X:      -centerSize.Width / 2,
			Y:      -centerSize.Height / 2,
			Width:  centerSize.Width,
			Height: centerSize.Height,
		},
	}
	res.Bounds.Add(res.Center.Rect)

	if in.Parent != nil {
		res.Parent = &NodeLayout{
			ID: in.Parent.ID,
			Rect: Rect{
				X:      opts.ParentInset,
				Y:      opts.ParentInset,
				Width:  in.Parent.Size.Width,
				Height: in.Parent.Size.Height,
			},
		}
	}

	if len(in.Children) == 0 {
		return res
	}

	maxChildRadius := 0.0
	for _, c := range in.Children {
		maxChildRadius = math.Max(maxChildRadius, c.Size.Radius())
	}
	radius := centerSize.Radius() + maxChildRadius + opts.Padding*2
	radius = math.Max(radius, math.Max(opts.Viewport.Width, opts.Viewport.Height)*opts.RadiusFactor)

	spans, total := childSpans(in.Children, radius, opts.Padding)
	if total > fullCircle*1.01 {
		// Single correction pass: grow the ring by the overflow ratio plus
		// a 10% margin and recompute.
		radius *= total / fullCircle * 1.1
		spans, total = childSpans(in.Children, radius, opts.Padding)
		res.Overflowed = true
	}
	tileCircle(spans, total)
	res.Radius = radius

	angle := -math.Pi / 2
	res.Children = make([]NodeLayout, 0, len(in.Children))
	res.Lines = make([]Line, 0, len(in.Children))
	origin := Point{}
	for i, c := range in.Children {
		placement := angle + spans[i]/2
		cx := radius * math.Cos(placement)
		cy := radius * math.Sin(placement)

		nl := NodeLayout{
			ID: c.ID,
			Rect: Rect{
				X:      cx - c.Size.Width/2,
				Y:      cy - c.Size.Height/2,
				Width:  c.Size.Width,
				Height: c.Size.Height,
			},
			StartAngle: angle,
			Span:       spans[i],
			Angle:      placement,
		}
		res.Children = append(res.Children, nl)
		res.Lines = append(res.Lines, Line{ChildID: c.ID, From: origin, To: Point{X: cx, Y: cy}})
		res.Bounds.Add(nl.Rect)

		angle += spans[i]
	}

	return res
}

// childSpans returns the angle each child's width (plus padding) subtends
// at the given radius, and their sum.
func childSpans(children []Item, radius, padding float64) ([]float64, float64) {
	spans := make([]float64, len(children))
	total := 0.0
	for i, c := range children {
		spans[i] = 2 * math.Atan((c.Size.Width+padding)/2/radius)
		total += spans[i]
	}
	return spans, total
}

// tileCircle adjusts spans in place so that they sum to exactly 2π.
// The difference is shared evenly between children; if that would leave
// a span negative the spans are scaled proportionally instead.
func tileCircle(spans []float64, total float64) {
	if len(spans) == 0 || total <= 0 {
		return
	}
	extra := (fullCircle - total) / float64(len(spans))
	even := true
	for _, s := range spans {
		if s+extra < 0 {
			even = false
			break
		}
	}
	if even {
		for i := range spans {
			spans[i] += extra
		}
		return
	}
	scale := fullCircle / total
	for i := range spans {
		spans[i] *= scale
	}
}
