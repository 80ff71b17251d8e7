package mindmapfile

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/render"
)

func testScene(t *testing.T, focus string, view layout.Size) (*render.Scene, *measure.FontMeasurer) {
	t.Helper()
	tree, err := ParseJSON([]byte(`{
	  "id": "A", "title": "Root <&>", "description": "top",
	  "children": [
	    {"id": "B", "title": "Child1", "description": "first"},
	    {"id": "C", "title": "Child2"}
	  ]}`))
	if err != nil {
		t.Fatal(err)
	}
	fm, err := measure.NewFontMeasurer(measure.DefaultTypography())
	if err != nil {
		t.Fatal(err)
	}
	r, err := render.New(tree, measure.New(fm))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Focus(focus); err != nil {
		t.Fatal(err)
	}
	scene, err := r.Render(context.Background(), view)
	if err != nil {
		t.Fatal(err)
	}
	return scene, fm
}

func TestGenerateSVGStructure(t *testing.T) {
	scene, fm := testScene(t, "A", layout.Size{Width: 800, Height: 600})
	svg := GenerateSVG(scene, fm, DefaultSVGOptions())

	if !strings.HasPrefix(svg, "<?xml") {
		t.Error("standalone SVG should start with an XML declaration")
	}
	if !strings.Contains(svg, `<g class="content" transform="`+scene.Transform.SVG()+`">`) {
		t.Error("content group does not carry the scene transform")
	}
	if !strings.Contains(svg, `<g class="fixed-layer">`) {
		t.Error("missing fixed layer")
	}
	if got := strings.Count(svg, `class="connection"`); got != 2 {
		t.Errorf("connections = %d, want 2", got)
	}
	// Lines come before any node so nodes are drawn on top.
	if strings.Index(svg, `class="connection"`) > strings.Index(svg, `class="node`) {
		t.Error("lines must be drawn under nodes")
	}
	if !strings.Contains(svg, "Root &lt;&amp;&gt;") {
		t.Error("titles must be escaped")
	}
	if !strings.Contains(svg, `class="node is-center" data-id="A"`) {
		t.Error("centre node not marked")
	}
}

func TestGenerateSVGPinnedParent(t *testing.T) {
	scene, fm := testScene(t, "B", layout.Size{Width: 800, Height: 600})
	opts := DefaultSVGOptions()
	opts.Standalone = false
	opts.NodeHref = func(id string) string { return "/node/" + id + "?x=1&y=2" }
	svg := GenerateSVG(scene, fm, opts)

	fixed := svg[strings.Index(svg, `<g class="fixed-layer">`):]
	if !strings.Contains(fixed, `data-id="A"`) {
		t.Error("parent should be in the fixed layer")
	}
	if strings.Contains(fixed, "top") {
		t.Error("pinned parent must not show its description")
	}
	if strings.Contains(svg, `class="connection"`) {
		t.Error("a leaf view has no connection lines")
	}
	if !strings.Contains(svg, `<a href="/node/A?x=1&amp;y=2">`) {
		t.Error("nodes should be wrapped in escaped links")
	}
	if strings.HasPrefix(svg, "<?xml") {
		t.Error("inline SVG should have no XML declaration")
	}
}

func TestErrorSVG(t *testing.T) {
	svg := ErrorSVG("Failed to load: <boom>", 0, 0)
	if !strings.Contains(svg, `width="800" height="600"`) {
		t.Error("zero size should fall back to 800x600")
	}
	if !strings.Contains(svg, "Failed to load: &lt;boom&gt;") {
		t.Error("message must be escaped")
	}
	if !strings.Contains(svg, `fill="red"`) {
		t.Error("error text should be red")
	}
}

func TestRenderPNG(t *testing.T) {
	view := layout.Size{Width: 320, Height: 240}
	scene, fm := testScene(t, "B", view)

	var buf bytes.Buffer
	if err := RenderPNG(scene, fm, &buf, PNGOptions{Supersample: 2}); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("image is %dx%d, want 320x240", b.Dx(), b.Dy())
	}
}

func TestRenderPNGRejectsEmptyViewport(t *testing.T) {
	scene, fm := testScene(t, "A", layout.Size{Width: 320, Height: 240})
	scene.Viewport = layout.Size{}
	if err := RenderPNG(scene, fm, &bytes.Buffer{}, DefaultPNGOptions()); err == nil {
		t.Error("expected an error for an empty viewport")
	}
}
