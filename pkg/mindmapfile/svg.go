package mindmapfile

import (
	"fmt"
	"html"
	"strings"

	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/render"
)

// TextLayouter wraps node text for a box of a given width.
// *measure.FontMeasurer implements it.
type TextLayouter interface {
	Lines(c measure.Content, role measure.Role, boxWidth float64) measure.TextLines
}

// SVGOptions controls SVG output.
type SVGOptions struct {
	Title       string                 // document <title>
	Standalone  bool                   // emit the XML declaration
	NodeHref    func(id string) string // wrap nodes in links when set
	CornerRound float64
}

// DefaultSVGOptions returns options for a standalone SVG file.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Standalone: true, CornerRound: 8}
}

const svgStyle = `<style>
  .background { fill: #fafafa; }
  .connection { stroke: #90a4ae; stroke-width: 2; fill: none; }
  .node-box { fill: white; stroke: #333; stroke-width: 1.5; }
  .is-center .node-box { fill: #e3f2fd; stroke: #1565c0; stroke-width: 2.5; }
  .is-parent .node-box { fill: #fff3e0; stroke: #e65100; }
  .node-title { font-family: "Go", sans-serif; font-weight: bold; fill: #222; text-anchor: middle; }
  .node-description { font-family: "Go", sans-serif; fill: #555; text-anchor: middle; }
  a .node-box { cursor: pointer; }
</style>
`

// GenerateSVG renders a scene. Lines are drawn under the nodes inside the
// transformed content group; the pinned parent lives in a fixed layer on
// top that ignores zoom and pan.
func GenerateSVG(s *render.Scene, text TextLayouter, opts SVGOptions) string {
	w, h := s.Viewport.Width, s.Viewport.Height
	var sb strings.Builder

	if opts.Standalone {
		sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" class="mindmap" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		w, h, w, h))
	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(opts.Title)))
	}
	sb.WriteString(svgStyle)
	sb.WriteString(fmt.Sprintf(`<rect class="background" width="%.0f" height="%.0f"/>`+"\n", w, h))

	sb.WriteString(fmt.Sprintf(`<g class="content" transform="%s">`+"\n", s.Transform.SVG()))
	for _, l := range s.Lines {
		sb.WriteString(fmt.Sprintf(`  <path class="connection" data-child="%s" d="%s"/>`+"\n",
			html.EscapeString(l.ChildID), l.Path()))
	}
	writeNode(&sb, s.Center, text, opts)
	for _, c := range s.Children {
		writeNode(&sb, c, text, opts)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g class="fixed-layer">` + "\n")
	if s.Parent != nil {
		writeNode(&sb, *s.Parent, text, opts)
	}
	sb.WriteString("</g>\n")
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeNode(sb *strings.Builder, n render.SceneNode, text TextLayouter, opts SVGOptions) {
	r := n.Rect
	class := "node"
	switch n.Role {
	case measure.RoleCenter:
		class += " is-center"
	case measure.RoleParent:
		class += " is-parent"
	}

	indent := "  "
	if opts.NodeHref != nil {
		sb.WriteString(fmt.Sprintf(`  <a href="%s">`+"\n", html.EscapeString(opts.NodeHref(n.ID))))
		indent = "    "
	}
	sb.WriteString(fmt.Sprintf(`%s<g class="%s" data-id="%s">`+"\n", indent, class, html.EscapeString(n.ID)))
	sb.WriteString(fmt.Sprintf(`%s  <rect class="node-box" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.0f"/>`+"\n",
		indent, r.X, r.Y, r.Width, r.Height, opts.CornerRound))

	tl := nodeLines(n, text)
	cx := r.X + r.Width/2
	y := r.Y + (r.Height-tl.Height())/2
	for _, line := range tl.Title {
		sb.WriteString(fmt.Sprintf(`%s  <text class="node-title" x="%.2f" y="%.2f" font-size="%.0f">%s</text>`+"\n",
			indent, cx, y+baseline(tl.TitleLineH), tl.TitleSize, html.EscapeString(line)))
		y += tl.TitleLineH
	}
	if len(tl.Description) > 0 {
		y += tl.Gap
		for _, line := range tl.Description {
			sb.WriteString(fmt.Sprintf(`%s  <text class="node-description" x="%.2f" y="%.2f" font-size="%.0f">%s</text>`+"\n",
				indent, cx, y+baseline(tl.DescriptionLineH), tl.DescriptionSize, html.EscapeString(line)))
			y += tl.DescriptionLineH
		}
	}

	sb.WriteString(indent + "</g>\n")
	if opts.NodeHref != nil {
		sb.WriteString("  </a>\n")
	}
}

// nodeLines wraps the node's text, or falls back to unwrapped lines when
// no layouter is available.
func nodeLines(n render.SceneNode, text TextLayouter) measure.TextLines {
	c := measure.Content{Title: n.Title, Description: n.Description}
	if text != nil {
		return text.Lines(c, n.Role, n.Rect.Width)
	}
	typo := measure.DefaultTypography()
	tl := measure.TextLines{
		Title:           []string{n.Title},
		TitleSize:       typo.TitleSizeFor(n.Role),
		DescriptionSize: typo.DescriptionSize,
		Gap:             typo.Gap,
	}
	tl.TitleLineH = tl.TitleSize * 1.2
	tl.DescriptionLineH = tl.DescriptionSize * 1.2
	if n.Description != "" {
		tl.Description = strings.Split(n.Description, "\n")
	}
	return tl
}

// baseline is the offset from the top of a line to its baseline.
func baseline(lineH float64) float64 { return lineH * 0.8 }

// ErrorSVG renders a message canvas shown when the document cannot be
// loaded.
func ErrorSVG(msg string, w, h float64) string {
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" class="mindmap error" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		w, h, w, h))
	sb.WriteString(fmt.Sprintf(`<rect width="%.0f" height="%.0f" fill="white"/>`+"\n", w, h))
	sb.WriteString(fmt.Sprintf(`<text x="50%%" y="50%%" text-anchor="middle" fill="red" font-family="sans-serif" font-size="16">%s</text>`+"\n",
		html.EscapeString(msg)))
	sb.WriteString("</svg>\n")
	return sb.String()
}
