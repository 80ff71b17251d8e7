// Native PNG rendering for mindmap scenes.
// Mirrors the SVG output using Go's image packages.

package mindmapfile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/render"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Supersample int // render at this multiple, then downsample
}

// DefaultPNGOptions returns 4x supersampling.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Supersample: 4}
}

// Colors used in rendering; they match the SVG stylesheet.
var (
	colorBackground = color.RGBA{250, 250, 250, 255} // #fafafa
	colorWhite      = color.RGBA{255, 255, 255, 255}
	colorBorder     = color.RGBA{51, 51, 51, 255}    // #333
	colorLine       = color.RGBA{144, 164, 174, 255} // #90a4ae
	colorCenter     = color.RGBA{227, 242, 253, 255} // #e3f2fd
	colorCenterBdr  = color.RGBA{21, 101, 192, 255}  // #1565c0
	colorParent     = color.RGBA{255, 243, 224, 255} // #fff3e0
	colorParentBdr  = color.RGBA{230, 81, 0, 255}    // #e65100
	colorTitle      = color.RGBA{34, 34, 34, 255}    // #222
	colorDesc       = color.RGBA{85, 85, 85, 255}    // #555
)

// renderContext holds rendering parameters including scale.
type renderContext struct {
	img       *image.RGBA
	scale     float64 // supersampling factor
	lineWidth float64
	faces     map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size int // pixels, after scaling
}

func newRenderContext(img *image.RGBA, scale int) *renderContext {
	return &renderContext{
		img:       img,
		scale:     float64(scale),
		lineWidth: float64(scale) * 2,
		faces:     make(map[faceKey]font.Face),
	}
}

// face returns a cached face for a point size in output pixels.
func (ctx *renderContext) face(bold bool, size float64) (font.Face, error) {
	key := faceKey{bold: bold, size: int(math.Round(size * ctx.scale))}
	if key.size < 1 {
		key.size = 1
	}
	if f, ok := ctx.faces[key]; ok {
		return f, nil
	}
	ttf := goregular.TTF
	if bold {
		ttf = gobold.TTF
	}
	f, err := measure.NewFace(ttf, float64(key.size))
	if err != nil {
		return nil, err
	}
	ctx.faces[key] = f
	return f, nil
}

func (ctx *renderContext) close() {
	for _, f := range ctx.faces {
		f.Close()
	}
}

// RenderPNG renders a scene to PNG at the scene's viewport size.
func RenderPNG(s *render.Scene, text TextLayouter, w io.Writer, opts PNGOptions) error {
	scale := opts.Supersample
	if scale < 1 {
		scale = 1
	}
	width, height := int(math.Round(s.Viewport.Width)), int(math.Round(s.Viewport.Height))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", width, height)
	}

	large := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	ctx := newRenderContext(large, scale)
	defer ctx.close()
	if err := renderPNGInternal(ctx, s, text); err != nil {
		return err
	}

	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

func renderPNGInternal(ctx *renderContext, s *render.Scene, text TextLayouter) error {
	draw.Draw(ctx.img, ctx.img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	// Lines under nodes.
	for _, l := range s.Lines {
		from := s.Transform.Apply(l.From)
		to := s.Transform.Apply(l.To)
		drawLine(ctx, from.X*ctx.scale, from.Y*ctx.scale, to.X*ctx.scale, to.Y*ctx.scale, colorLine)
	}

	nodes := append([]render.SceneNode{s.Center}, s.Children...)
	if s.Parent != nil {
		nodes = append(nodes, *s.Parent)
	}
	for _, n := range nodes {
		zoom := s.Transform.Zoom
		if n.Role == measure.RoleParent {
			zoom = 1
		}
		if err := drawNode(ctx, n, s.ViewportRect(n), zoom, text); err != nil {
			return err
		}
	}
	return nil
}

func drawNode(ctx *renderContext, n render.SceneNode, r layout.Rect, zoom float64, text TextLayouter) error {
	fill, border := colorWhite, colorBorder
	switch n.Role {
	case measure.RoleCenter:
		fill, border = colorCenter, colorCenterBdr
	case measure.RoleParent:
		fill, border = colorParent, colorParentBdr
	}
	x, y := r.X*ctx.scale, r.Y*ctx.scale
	w, h := r.Width*ctx.scale, r.Height*ctx.scale
	drawBox(ctx, x, y, w, h, fill, border)

	// Wrap in layout units, then draw at the zoomed size.
	tl := nodeLines(n, text)
	cx := int(math.Round(x + w/2))
	ty := r.Y + (r.Height-tl.Height()*zoom)/2
	for _, line := range tl.Title {
		face, err := ctx.face(true, tl.TitleSize*zoom)
		if err != nil {
			return err
		}
		base := (ty + baseline(tl.TitleLineH)*zoom) * ctx.scale
		drawTextCentered(ctx, face, cx, int(math.Round(base)), line, colorTitle)
		ty += tl.TitleLineH * zoom
	}
	if len(tl.Description) > 0 {
		ty += tl.Gap * zoom
		face, err := ctx.face(false, tl.DescriptionSize*zoom)
		if err != nil {
			return err
		}
		for _, line := range tl.Description {
			base := (ty + baseline(tl.DescriptionLineH)*zoom) * ctx.scale
			drawTextCentered(ctx, face, cx, int(math.Round(base)), line, colorDesc)
			ty += tl.DescriptionLineH * zoom
		}
	}
	return nil
}

// drawBox fills a rectangle and outlines it with the context line width.
func drawBox(ctx *renderContext, x, y, w, h float64, fill, stroke color.Color) {
	rect := image.Rect(int(x), int(y), int(x+w), int(y+h))
	draw.Draw(ctx.img, rect, image.NewUniform(fill), image.Point{}, draw.Src)

	drawLine(ctx, x, y, x+w, y, stroke)
	drawLine(ctx, x+w, y, x+w, y+h, stroke)
	drawLine(ctx, x+w, y+h, x, y+h, stroke)
	drawLine(ctx, x, y+h, x, y, stroke)
}

// drawLine draws a line between two points with thickness from context.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	img := ctx.img
	halfThick := ctx.lineWidth / 2

	dx := x2 - x1
	dy := y2 - y1
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	steps := math.Max(math.Abs(dx), math.Abs(dy))
	perpX := -dy / dist
	perpY := dx / dist
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawTextCentered draws text horizontally centred on x with its baseline
// at y.
func drawTextCentered(ctx *renderContext, face font.Face, x, y int, text string, c color.Color) {
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
