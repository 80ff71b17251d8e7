package render

import (
	"context"
	"fmt"

	"github.com/ha1tch/hubspoke/pkg/layout"
)

// Command is an input to the render cycle.
type Command interface {
	command()
}

// NavigateTo focuses a node by id.
type NavigateTo struct{ ID string }

// ClickNode is a click on a node of a rendered scene.
type ClickNode struct {
	Cycle uint64
	ID    string
}

// ZoomBy steps the zoom; positive zooms in.
type ZoomBy struct{ Steps int }

// Relayout re-measures everything, e.g. after a resize.
type Relayout struct{}

func (NavigateTo) command() {}
func (ClickNode) command()  {}
func (ZoomBy) command()     {}
func (Relayout) command()   {}

// Dispatch applies cmd and returns the scene to draw. Navigation and
// relayout run a new cycle; zoom only changes the current transform. A
// click that changes nothing returns the current scene.
func (r *Renderer) Dispatch(ctx context.Context, cmd Command, view layout.Size) (*Scene, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch c := cmd.(type) {
	case NavigateTo:
		if err := r.focusLocked(c.ID); err != nil {
			return r.scene, err
		}
		return r.renderLocked(ctx, view)
	case ClickNode:
		moved, err := r.clickLocked(c.Cycle, c.ID)
		if err != nil || !moved {
			return r.scene, err
		}
		return r.renderLocked(ctx, view)
	case ZoomBy:
		return r.zoomLocked(c.Steps)
	case Relayout:
		r.measurer.Invalidate()
		return r.renderLocked(ctx, view)
	default:
		return r.scene, fmt.Errorf("unsupported command %T", cmd)
	}
}
