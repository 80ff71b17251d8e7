package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/mindmap"
	"github.com/ha1tch/hubspoke/pkg/render"
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
)

// Rows reserved below the canvas: help bar and status bar.
const chromeRows = 2

// relayoutRequest is posted by the resize coalescer once the terminal
// size has settled.
type relayoutRequest struct{}

// cellBox is a node as drawn on the terminal grid.
type cellBox struct {
	node       render.SceneNode
	x, y, w, h int
}

func (b cellBox) contains(x, y int) bool {
	return x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+b.h
}

// viewer holds all viewer state. Everything is touched only from the
// event loop goroutine.
type viewer struct {
	screen  tcell.Screen
	rd      *render.Renderer
	source  string
	loadErr error
	logger  *slog.Logger
	resize  *render.Coalescer

	scene     *render.Scene
	boxes     []cellBox // in draw order
	selected  int       // index into boxes, -1 = none
	mouseDown bool

	message     string
	messageType MessageType
}

func newViewer(screen tcell.Screen, source string, rd *render.Renderer, loadErr error, logger *slog.Logger, debounce time.Duration) *viewer {
	v := &viewer{
		screen:   screen,
		rd:       rd,
		source:   source,
		loadErr:  loadErr,
		logger:   logger,
		selected: -1,
	}
	v.resize = render.NewCoalescer(debounce, func() {
		v.screen.PostEvent(tcell.NewEventInterrupt(relayoutRequest{}))
	})
	return v
}

// start renders the first view, focused on id or on the root.
func (v *viewer) start(ctx context.Context, id string) error {
	if v.loadErr != nil {
		return nil
	}
	if id == "" {
		id = v.rd.Tree().Root().ID
	}
	scene, err := v.rd.Dispatch(ctx, render.NavigateTo{ID: id}, v.viewSize())
	if err != nil {
		return err
	}
	v.setScene(scene)
	return nil
}

func (v *viewer) run(ctx context.Context) {
	defer v.resize.Stop()
	for {
		v.draw()
		v.screen.Show()

		ev := v.screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return
		}
		if v.handleEvent(ctx, ev) {
			return
		}
	}
}

// handleEvent applies one event and reports whether the viewer should quit.
func (v *viewer) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		if v.scene != nil && v.viewSize() != v.scene.Viewport {
			v.resize.Trigger()
		}
	case *tcell.EventKey:
		return v.handleKey(ctx, ev)
	case *tcell.EventMouse:
		v.handleMouse(ctx, ev)
	case *tcell.EventInterrupt:
		if _, ok := ev.Data().(relayoutRequest); ok {
			v.logger.Debug("relayout after resize", "view", v.viewSize())
			v.apply(ctx, render.Relayout{})
		}
	}
	return false
}

func (v *viewer) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	v.message = ""

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return true
		}
	}
	if v.loadErr != nil || v.scene == nil {
		return false
	}

	switch ev.Key() {
	case tcell.KeyTab:
		v.cycleSelection(1)
	case tcell.KeyBacktab:
		v.cycleSelection(-1)
	case tcell.KeyEnter:
		if v.selected >= 0 && v.selected < len(v.boxes) {
			v.click(ctx, v.boxes[v.selected].node.ID)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.up(ctx)
	case tcell.KeyHome:
		v.apply(ctx, render.NavigateTo{ID: v.rd.Tree().Root().ID})
	case tcell.KeyRune:
		switch ev.Rune() {
		case '+', '=':
			v.apply(ctx, render.ZoomBy{Steps: 1})
		case '-', '_':
			v.apply(ctx, render.ZoomBy{Steps: -1})
		case '0':
			// Re-rendering the focused node re-fits the view.
			v.apply(ctx, render.NavigateTo{ID: v.rd.Session().FocusedID})
		case 'u':
			v.up(ctx)
		case 'r':
			v.apply(ctx, render.Relayout{})
		}
	}
	return false
}

func (v *viewer) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0
	defer func() { v.mouseDown = pressed }()

	if v.loadErr != nil || v.scene == nil {
		return
	}
	switch {
	case buttons&tcell.WheelUp != 0:
		v.apply(ctx, render.ZoomBy{Steps: 1})
	case buttons&tcell.WheelDown != 0:
		v.apply(ctx, render.ZoomBy{Steps: -1})
	case pressed && !v.mouseDown:
		x, y := ev.Position()
		if i := v.hitTest(x, y); i >= 0 {
			v.click(ctx, v.boxes[i].node.ID)
		}
	}
}

// hitTest returns the index of the topmost box under a cell, or -1.
func (v *viewer) hitTest(x, y int) int {
	for i := len(v.boxes) - 1; i >= 0; i-- {
		if v.boxes[i].contains(x, y) {
			return i
		}
	}
	return -1
}

func (v *viewer) click(ctx context.Context, id string) {
	v.message = ""
	before := v.scene.Cycle
	v.apply(ctx, render.ClickNode{Cycle: v.scene.Cycle, ID: id})
	if v.message == "" && v.scene.Cycle == before && id == v.rd.Session().FocusedID {
		v.showMessage("Already at the root", MsgInfo)
	}
}

// up moves focus to the parent of the focused node.
func (v *viewer) up(ctx context.Context) {
	v.click(ctx, v.rd.Session().FocusedID)
}

// apply dispatches cmd against the current view size. A failed command
// keeps the last good scene on screen.
func (v *viewer) apply(ctx context.Context, cmd render.Command) {
	scene, err := v.rd.Dispatch(ctx, cmd, v.viewSize())
	if err != nil {
		v.logger.Warn("command failed", "command", cmd, "error", err)
		if errors.Is(err, render.ErrStaleScene) {
			v.showMessage("View changed, click again", MsgError)
		} else {
			v.showMessage(err.Error(), MsgError)
		}
	}
	if scene != nil {
		v.setScene(scene)
	}
}

func (v *viewer) setScene(scene *render.Scene) {
	if v.scene == nil || scene.Cycle != v.scene.Cycle {
		v.selected = -1
	}
	v.scene = scene
	v.boxes = v.layoutBoxes()
}

func (v *viewer) cycleSelection(dir int) {
	n := len(v.boxes)
	if n == 0 {
		return
	}
	if v.selected < 0 {
		if dir > 0 {
			v.selected = 0
		} else {
			v.selected = n - 1
		}
		return
	}
	v.selected = (v.selected + dir + n) % n
}

// viewSize is the canvas area in logical units.
func (v *viewer) viewSize() layout.Size {
	w, h := v.screen.Size()
	rows := h - chromeRows
	if w < 1 {
		w = 1
	}
	if rows < 1 {
		rows = 1
	}
	return layout.Size{
		Width:  float64(w) * measure.CellWidth,
		Height: float64(rows) * measure.CellHeight,
	}
}

// breadcrumb returns the titles from the root down to the focused node.
func (v *viewer) breadcrumb() []string {
	tree := v.rd.Tree()
	var path []string
	for n := tree.FindByID(v.rd.Session().FocusedID); n != nil; {
		path = append([]string{n.Title}, path...)
		parent, status := tree.FindParent(n.ID)
		if status != mindmap.ParentFound {
			break
		}
		n = parent
	}
	return path
}

func (v *viewer) showMessage(msg string, msgType MessageType) {
	v.message = msg
	v.messageType = msgType
}
