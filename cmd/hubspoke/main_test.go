package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
)

func init() {
	color.NoColor = true
}

const doc = `{
  "id": "A", "title": "Root", "description": "the root",
  "children": [
    {"id": "B", "title": "Child1"},
    {"id": "C", "title": "Child2", "children": [{"id": "D", "title": "Leaf"}]}
  ]
}`

// run executes the CLI with a config path that does not exist, so only
// defaults apply.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDoc(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderSVGToStdout(t *testing.T) {
	path := writeDoc(t, "map.json", doc)
	out, _, err := run(t, "render", path, "--width", "640", "--height", "480")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<g class="content" transform="translate(`) {
		t.Error("missing transformed content group")
	}
	if !strings.Contains(out, `width="640" height="480"`) {
		t.Error("viewport flags not applied")
	}
	if strings.Count(out, `class="connection"`) != 2 {
		t.Error("root view should have two connections")
	}
}

func TestRenderFocusPNG(t *testing.T) {
	path := writeDoc(t, "map.yaml", "id: A\ntitle: Root\nchildren:\n  - id: B\n    title: Child\n")
	outPath := filepath.Join(t.TempDir(), "b.png")
	_, stderr, err := run(t, "render", path, "--focus", "B", "-o", outPath, "--width", "300", "--height", "200")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stderr, "wrote "+outPath) {
		t.Errorf("stderr = %q", stderr)
	}
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Errorf("png is %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderUnknownFocus(t *testing.T) {
	path := writeDoc(t, "map.json", doc)
	if _, _, err := run(t, "render", path, "--focus", "nope"); err == nil {
		t.Error("expected error for unknown focus")
	}
}

func TestRenderLoadFailureWritesErrorCanvas(t *testing.T) {
	out, _, err := run(t, "render", filepath.Join(t.TempDir(), "missing.json"))
	var le *mindmapfile.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LoadError", err)
	}
	if !strings.Contains(out, "Failed to load:") || !strings.Contains(out, `fill="red"`) {
		t.Errorf("error canvas not written: %q", out)
	}
}

func TestInfo(t *testing.T) {
	path := writeDoc(t, "map.json", doc)
	out, _, err := run(t, "info", path, "--outline")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Nodes:     4", "Depth:     3", "Leaves:    2", "Leaf [D]"} {
		if !strings.Contains(out, want) {
			t.Errorf("info missing %q:\n%s", want, out)
		}
	}
}

func TestValidate(t *testing.T) {
	good := writeDoc(t, "good.json", doc)
	dup := writeDoc(t, "dup.json", `{"id":"A","title":"x","children":[{"id":"A","title":"y"}]}`)

	out, _, err := run(t, "validate", good)
	if err != nil || !strings.Contains(out, "(4 nodes)") {
		t.Errorf("validate good = %v, %q", err, out)
	}
	out, _, err = run(t, "validate", good, dup)
	if err == nil {
		t.Error("duplicate ids should fail validation")
	}
	if !strings.Contains(out, "duplicate id") {
		t.Errorf("output = %q", out)
	}
}

func TestDot(t *testing.T) {
	path := writeDoc(t, "map.json", doc)
	out, _, err := run(t, "dot", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"C" -> "D";`) {
		t.Errorf("dot output = %q", out)
	}
}

func TestConvert(t *testing.T) {
	path := writeDoc(t, "map.json", doc)
	outPath := filepath.Join(t.TempDir(), "map.toml")
	if _, _, err := run(t, "convert", path, "-o", outPath); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := mindmapfile.ParseTOML(data)
	if err != nil {
		t.Fatalf("converted TOML does not parse: %v\n%s", err, data)
	}
	if tree.Len() != 4 {
		t.Errorf("Len() = %d", tree.Len())
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubspoke.yaml")
	if _, _, err := run(t, "config", "init", path); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, "config", "init", path); err == nil {
		t.Error("init should refuse to overwrite")
	}
	out, _, err := run(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "radius_factor: 0.32") {
		t.Errorf("config show = %q", out)
	}
}

func TestBadLogLevel(t *testing.T) {
	path := writeDoc(t, "map.json", doc)
	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "loud", "info", path})
	if err := cmd.Execute(); err == nil {
		t.Error("expected config error for bad log level")
	}
}

func TestValidateGlob(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested", "deeper"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"top.json", filepath.Join("nested", "deeper", "inner.json")} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := run(t, "validate", filepath.Join(dir, "**", "*.json"))
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if strings.Count(out, "(4 nodes)") != 2 || !strings.Contains(out, "inner.json") {
		t.Errorf("output = %q", out)
	}

	if _, _, err := run(t, "validate", filepath.Join(dir, "*.yaml")); err == nil {
		t.Error("a pattern matching nothing should fail")
	}
}
