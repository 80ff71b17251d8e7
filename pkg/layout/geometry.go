// Geometric primitives shared by the layout, viewport and renderers.

package layout

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Size is the width and height of a node box in logical units.
type Size struct {
	Width, Height float64
}

// Radius returns the footprint radius: half the diagonal of the box.
func (s Size) Radius() float64 {
	return math.Sqrt(s.Width*s.Width+s.Height*s.Height) / 2
}

// Rect is an axis-aligned box given by its top-left corner and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Center returns the centre point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Bounds is an accumulating bounding box. The zero value is empty.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
	set        bool
}

// Add grows the bounds to cover r.
func (b *Bounds) Add(r Rect) {
	if !b.set {
		b.MinX, b.MinY = r.X, r.Y
		b.MaxX, b.MaxY = r.X+r.Width, r.Y+r.Height
		b.set = true
		return
	}
	b.MinX = math.Min(b.MinX, r.X)
	b.MinY = math.Min(b.MinY, r.Y)
	b.MaxX = math.Max(b.MaxX, r.X+r.Width)
	b.MaxY = math.Max(b.MaxY, r.Y+r.Height)
}

// Empty reports whether nothing has been added.
func (b Bounds) Empty() bool {
	return !b.set
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the bounds.
func (b Bounds) Center() Point {
	return Point{X: b.MinX + b.Width()/2, Y: b.MinY + b.Height()/2}
}

// Degenerate reports whether the bounds have no usable area.
func (b Bounds) Degenerate() bool {
	if !b.set {
		return true
	}
	if math.IsInf(b.MinX, 0) || math.IsNaN(b.MinX) || math.IsInf(b.MinY, 0) || math.IsNaN(b.MinY) {
		return true
	}
	return !(b.MaxX > b.MinX && b.MaxY > b.MinY)
}

// ContainsRect reports whether r lies fully inside the bounds.
func (b Bounds) ContainsRect(r Rect) bool {
	const eps = 1e-9
	return r.X >= b.MinX-eps && r.Y >= b.MinY-eps &&
		r.X+r.Width <= b.MaxX+eps && r.Y+r.Height <= b.MaxY+eps
}
