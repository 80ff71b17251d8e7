package measure

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ha1tch/hubspoke/pkg/layout"
)

// Typography describes how node text is set. The same values are used by
// the measurer and by the raster renderer so that boxes fit their text.
type Typography struct {
	CenterTitleSize float64
	TitleSize       float64
	DescriptionSize float64
	PaddingX        float64
	PaddingY        float64
	Gap             float64 // space between title and description
}

// DefaultTypography returns the node text settings.
func DefaultTypography() Typography {
	return Typography{
		CenterTitleSize: 18,
		TitleSize:       15,
		DescriptionSize: 13,
		PaddingX:        12,
		PaddingY:        10,
		Gap:             6,
	}
}

// TitleSizeFor returns the title font size for a role.
func (t Typography) TitleSizeFor(role Role) float64 {
	if role == RoleCenter {
		return t.CenterTitleSize
	}
	return t.TitleSize
}

// NewFace parses a TrueType font and returns a face at the given size.
func NewFace(ttf []byte, size float64) (font.Face, error) {
	fnt, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}

// FontMeasurer measures text with Go Bold titles and Go Regular
// descriptions. Faces are not safe for concurrent use, so measurements
// are serialised.
type FontMeasurer struct {
	typo Typography

	mu          sync.Mutex
	centerTitle font.Face
	title       font.Face
	description font.Face
}

// NewFontMeasurer loads the embedded Go fonts.
func NewFontMeasurer(typo Typography) (*FontMeasurer, error) {
	centerTitle, err := NewFace(gobold.TTF, typo.CenterTitleSize)
	if err != nil {
		return nil, err
	}
	title, err := NewFace(gobold.TTF, typo.TitleSize)
	if err != nil {
		return nil, err
	}
	desc, err := NewFace(goregular.TTF, typo.DescriptionSize)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{typo: typo, centerTitle: centerTitle, title: title, description: desc}, nil
}

// MeasureText implements TextBoxMeasurer.
func (fm *FontMeasurer) MeasureText(ctx context.Context, c Content, s Style) (layout.Size, error) {
	if err := ctx.Err(); err != nil {
		return layout.Size{}, err
	}
	fm.mu.Lock()
	defer fm.mu.Unlock()

	titleFace := fm.title
	if s.Role == RoleCenter {
		titleFace = fm.centerTitle
	}

	avail := math.Min(s.ContextWidth, s.MaxWidth) - 2*fm.typo.PaddingX
	if avail <= 0 {
		return layout.Size{}, ErrDegenerate
	}

	titleW := advance(titleFace)
	titleLines := wrapText(c.Title, avail, titleW)
	width := widest(titleLines, titleW)
	height := float64(len(titleLines)) * lineHeight(titleFace)

	if c.Description != "" {
		descW := advance(fm.description)
		descLines := wrapText(c.Description, avail, descW)
		width = math.Max(width, widest(descLines, descW))
		height += fm.typo.Gap + float64(len(descLines))*lineHeight(fm.description)
	}

	if width <= 0 {
		return layout.Size{}, ErrDegenerate
	}
	return layout.Size{
		Width:  math.Ceil(width + 2*fm.typo.PaddingX),
		Height: math.Ceil(height + 2*fm.typo.PaddingY),
	}, nil
}

func advance(face font.Face) func(string) float64 {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}

func lineHeight(face font.Face) float64 {
	return float64(face.Metrics().Height) / 64
}

// Typography returns the settings the measurer was built with.
func (fm *FontMeasurer) Typography() Typography { return fm.typo }

// TextLines is node text wrapped for drawing.
type TextLines struct {
	Title            []string
	Description      []string
	TitleSize        float64
	DescriptionSize  float64
	TitleLineH       float64
	DescriptionLineH float64
	Gap              float64
}

// Height returns the height of the text block without padding.
func (tl TextLines) Height() float64 {
	h := float64(len(tl.Title)) * tl.TitleLineH
	if len(tl.Description) > 0 {
		h += tl.Gap + float64(len(tl.Description))*tl.DescriptionLineH
	}
	return h
}

// Lines wraps c for a box of the given outer width, using the same faces
// and padding as MeasureText.
func (fm *FontMeasurer) Lines(c Content, role Role, boxWidth float64) TextLines {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	titleFace := fm.title
	if role == RoleCenter {
		titleFace = fm.centerTitle
	}
	avail := math.Max(boxWidth-2*fm.typo.PaddingX, 1)
	tl := TextLines{
		Title:            wrapText(c.Title, avail, advance(titleFace)),
		TitleSize:        fm.typo.TitleSizeFor(role),
		DescriptionSize:  fm.typo.DescriptionSize,
		TitleLineH:       lineHeight(titleFace),
		DescriptionLineH: lineHeight(fm.description),
		Gap:              fm.typo.Gap,
	}
	if c.Description != "" {
		tl.Description = wrapText(c.Description, avail, advance(fm.description))
	}
	return tl
}
