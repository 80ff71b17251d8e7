package main

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
)

// Styles
var (
	styleDefault     = tcell.StyleDefault
	styleCenter      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleChild       = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleParent      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle       = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	styleDescription = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleSelected    = tcell.StyleDefault.Background(tcell.ColorDarkGray).Foreground(tcell.ColorWhite)
	styleLine        = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo     = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError    = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleHelp        = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError       = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	canvasH := h - chromeRows

	switch {
	case v.loadErr != nil:
		v.drawLoadError(w, canvasH)
	case v.scene != nil:
		v.drawLines(w, canvasH)
		for i, b := range v.boxes {
			v.drawNode(b, i == v.selected, w, canvasH)
		}
	}

	v.drawStatusBar(w, h)
}

// layoutBoxes places every scene node on the cell grid. A terminal cannot
// scale glyphs, so boxes keep their measured cell size and zoom moves
// their centres. The pinned parent is already in viewport units.
func (v *viewer) layoutBoxes() []cellBox {
	s := v.scene
	nodes := s.Nodes()
	boxes := make([]cellBox, 0, len(nodes))
	for _, n := range nodes {
		w := int(math.Round(n.Rect.Width / measure.CellWidth))
		h := int(math.Round(n.Rect.Height / measure.CellHeight))
		var x, y int
		if n.Role == measure.RoleParent {
			x = int(math.Round(n.Rect.X / measure.CellWidth))
			y = int(math.Round(n.Rect.Y / measure.CellHeight))
		} else {
			cx, cy := toCell(s.Transform.Apply(n.Rect.Center()))
			x = cx - w/2
			y = cy - h/2
		}
		boxes = append(boxes, cellBox{node: n, x: x, y: y, w: w, h: h})
	}
	return boxes
}

func toCell(p layout.Point) (int, int) {
	return int(math.Floor(p.X / measure.CellWidth)), int(math.Floor(p.Y / measure.CellHeight))
}

func (v *viewer) drawLines(canvasW, canvasH int) {
	for _, l := range v.scene.Lines {
		x0, y0 := toCell(v.scene.Transform.Apply(l.From))
		x1, y1 := toCell(v.scene.Transform.Apply(l.To))
		v.drawLine(x0, y0, x1, y1, canvasW, canvasH, styleLine)
	}
}

// drawLine plots a dotted line between two cells (Bresenham).
func (v *viewer) drawLine(x0, y0, x1, y1, canvasW, canvasH int, style tcell.Style) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		v.setCell(x0, y0, '·', canvasW, canvasH, style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (v *viewer) drawNode(b cellBox, selected bool, canvasW, canvasH int) {
	border := styleChild
	switch b.node.Role {
	case measure.RoleCenter:
		border = styleCenter
	case measure.RoleParent:
		border = styleParent
	}
	fill := styleDefault
	if selected {
		fill = styleSelected
	}
	if b.w < 2 || b.h < 2 {
		v.drawString(b.x, b.y, b.node.Title, canvasW, canvasH, styleTitle)
		return
	}
	v.drawBox(b.x, b.y, b.w, b.h, canvasW, canvasH, border, fill)

	cols := float64(b.w - 2)
	title := measure.CellLines(measure.Content{Title: b.node.Title}, cols)
	lines := measure.CellLines(measure.Content{Title: b.node.Title, Description: b.node.Description}, cols)
	top := b.y + 1 + max(0, (b.h-2-len(lines))/2)
	for i, line := range lines {
		if i >= b.h-2 {
			break
		}
		style := styleDescription
		if i < len(title) {
			style = styleTitle
		}
		if selected {
			style = style.Background(tcell.ColorDarkGray)
		}
		x := b.x + 1 + max(0, (b.w-2-runewidth.StringWidth(line))/2)
		v.drawString(x, top+i, line, min(canvasW, b.x+b.w-1), canvasH, style)
	}
}

func (v *viewer) drawBox(x, y, w, h, canvasW, canvasH int, border, fill tcell.Style) {
	// Corners
	v.setCell(x, y, '┌', canvasW, canvasH, border)
	v.setCell(x+w-1, y, '┐', canvasW, canvasH, border)
	v.setCell(x, y+h-1, '└', canvasW, canvasH, border)
	v.setCell(x+w-1, y+h-1, '┘', canvasW, canvasH, border)

	// Horizontal borders
	for i := x + 1; i < x+w-1; i++ {
		v.setCell(i, y, '─', canvasW, canvasH, border)
		v.setCell(i, y+h-1, '─', canvasW, canvasH, border)
	}

	// Vertical borders
	for i := y + 1; i < y+h-1; i++ {
		v.setCell(x, i, '│', canvasW, canvasH, border)
		v.setCell(x+w-1, i, '│', canvasW, canvasH, border)
	}

	// Fill
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			v.setCell(col, row, ' ', canvasW, canvasH, fill)
		}
	}
}

// drawLoadError shows the load failure centred on the canvas.
func (v *viewer) drawLoadError(w, h int) {
	msg := v.loadErr.Error()
	var le *mindmapfile.LoadError
	if errors.As(v.loadErr, &le) {
		msg = "Failed to load: " + le.Err.Error()
	}
	heading := "Error loading Mindmap Data"
	y := h / 2
	v.drawString((w-runewidth.StringWidth(heading))/2, y-1, heading, w, h, styleTitle)
	v.drawString(max(0, (w-runewidth.StringWidth(msg))/2), y+1, msg, w, h, styleError)
}

func (v *viewer) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	info := filepath.Base(v.source)
	if v.loadErr == nil && v.scene != nil {
		info += "  " + strings.Join(v.breadcrumb(), " › ")
	}
	v.drawString(1, y, info, w, h, styleStatus)

	right := ""
	if v.scene != nil {
		right = fmt.Sprintf("zoom %d%%", int(math.Round(v.scene.Transform.Zoom*100)))
	}
	if v.message != "" {
		style := styleMsgInfo
		if v.messageType == MsgError {
			style = styleMsgError
		}
		v.drawString(w-runewidth.StringWidth(v.message)-runewidth.StringWidth(right)-4, y, v.message, w, h, style)
	}
	if right != "" {
		v.drawString(w-runewidth.StringWidth(right)-1, y, right, w, h, styleStatus)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	v.drawString(1, y, v.helpString(), w, h, styleHelp)
}

func (v *viewer) helpString() string {
	if v.loadErr != nil {
		return "q:Quit"
	}
	return "Click/Enter:Open  Tab:Select  u:Up  Home:Root  +/-:Zoom  0:Fit  q:Quit"
}

// drawString writes s from (x, y), clipped to maxX columns and maxY rows.
func (v *viewer) drawString(x, y int, s string, maxX, maxY int, style tcell.Style) {
	for _, r := range s {
		v.setCell(x, y, r, maxX, maxY, style)
		x += runewidth.RuneWidth(r)
	}
}

func (v *viewer) setCell(x, y int, r rune, maxX, maxY int, style tcell.Style) {
	if x < 0 || y < 0 || x >= maxX || y >= maxY {
		return
	}
	v.screen.SetContent(x, y, r, nil, style)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
