package measure

import (
	"context"
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/hubspoke/pkg/layout"
)

// Logical size of one terminal cell.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// CellMeasurer measures text for a terminal grid. Boxes are a one-cell
// border around the wrapped text, reported in logical units so that the
// layout and viewport work unchanged.
type CellMeasurer struct{}

// MeasureText implements TextBoxMeasurer.
func (CellMeasurer) MeasureText(ctx context.Context, c Content, s Style) (layout.Size, error) {
	if err := ctx.Err(); err != nil {
		return layout.Size{}, err
	}
	cols := math.Floor(math.Min(s.ContextWidth, s.MaxWidth)/CellWidth) - 2
	if cols <= 0 {
		return layout.Size{}, ErrDegenerate
	}

	lines := CellLines(c, cols)
	width := widest(lines, cellWidth)
	if width <= 0 {
		return layout.Size{}, ErrDegenerate
	}
	return layout.Size{
		Width:  (width + 2) * CellWidth,
		Height: float64(len(lines)+2) * CellHeight,
	}, nil
}

// CellLines wraps title and description into lines of at most cols cells.
// The description, when present, follows the title after a blank line.
func CellLines(c Content, cols float64) []string {
	lines := wrapText(c.Title, cols, cellWidth)
	if c.Description != "" {
		lines = append(lines, "")
		lines = append(lines, wrapText(c.Description, cols, cellWidth)...)
	}
	return lines
}

func cellWidth(s string) float64 {
	return float64(runewidth.StringWidth(s))
}
