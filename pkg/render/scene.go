package render

import (
	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/viewport"
)

// SceneNode is a node ready to be drawn.
type SceneNode struct {
	ID          string
	Title       string
	Description string // always empty for the pinned parent
	Role        measure.Role
	Rect        layout.Rect
}

// Scene is the output of one render cycle. Content coordinates (centre,
// children, lines) go through Transform; the pinned parent is already in
// viewport coordinates.
type Scene struct {
	Cycle     uint64
	Viewport  layout.Size
	Parent    *SceneNode
	Center    SceneNode
	Children  []SceneNode
	Lines     []layout.Line
	Bounds    layout.Bounds
	Radius    float64
	Transform viewport.Transform
}

// Nodes returns every clickable node: centre, children, then the parent.
func (s *Scene) Nodes() []SceneNode {
	nodes := make([]SceneNode, 0, len(s.Children)+2)
	nodes = append(nodes, s.Center)
	nodes = append(nodes, s.Children...)
	if s.Parent != nil {
		nodes = append(nodes, *s.Parent)
	}
	return nodes
}

// Contains reports whether id is drawn in this scene.
func (s *Scene) Contains(id string) bool {
	for _, n := range s.Nodes() {
		if n.ID == id {
			return true
		}
	}
	return false
}

// ViewportRect returns the node rect in viewport coordinates.
func (s *Scene) ViewportRect(n SceneNode) layout.Rect {
	if n.Role == measure.RoleParent {
		return n.Rect
	}
	return s.Transform.ApplyRect(n.Rect)
}

// HitTest returns the id of the node under a viewport point. The pinned
// parent sits above the content layer and is tested first; among content
// nodes, later ones are drawn on top.
func (s *Scene) HitTest(p layout.Point) (string, bool) {
	if s.Parent != nil && s.Parent.Rect.Contains(p) {
		return s.Parent.ID, true
	}
	cp := s.Transform.Invert(p)
	for i := len(s.Children) - 1; i >= 0; i-- {
		if s.Children[i].Rect.Contains(cp) {
			return s.Children[i].ID, true
		}
	}
	if s.Center.Rect.Contains(cp) {
		return s.Center.ID, true
	}
	return "", false
}

func (s *Scene) withTransform(t viewport.Transform) *Scene {
	cp := *s
	cp.Transform = t
	return &cp
}
