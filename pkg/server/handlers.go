package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ha1tch/hubspoke/pkg/layout"
	"github.com/ha1tch/hubspoke/pkg/mindmap"
	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
	"github.com/ha1tch/hubspoke/pkg/render"
)

const (
	minView  = 100
	maxView  = 4000
	maxSteps = 20
)

// viewState is what a request asks to see.
type viewState struct {
	ID    string
	View  layout.Size
	Zoom  int
	fixed bool // w and h came from the query
}

func (s *Server) parseView(r *http.Request, id string) viewState {
	v := viewState{ID: id, View: s.cfg.View}
	q := r.URL.Query()
	w, werr := strconv.Atoi(q.Get("w"))
	h, herr := strconv.Atoi(q.Get("h"))
	if werr == nil && herr == nil {
		v.View = layout.Size{Width: float64(clamp(w, minView, maxView)), Height: float64(clamp(h, minView, maxView))}
		v.fixed = true
	}
	if z, err := strconv.Atoi(q.Get("zoom")); err == nil {
		v.Zoom = clamp(z, -maxSteps, maxSteps)
	}
	return v
}

// href links to another page view, keeping the viewport size.
func (v viewState) href(id string, zoom int) string {
	return v.link("/node/", id, zoom)
}

func (v viewState) link(route, id string, zoom int) string {
	u := route + url.PathEscape(id)
	q := url.Values{}
	if v.fixed {
		q.Set("w", strconv.Itoa(int(v.View.Width)))
		q.Set("h", strconv.Itoa(int(v.View.Height)))
	}
	if zoom != 0 {
		q.Set("zoom", strconv.Itoa(zoom))
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	id := ""
	if root := s.deps.Tree.Root(); root != nil {
		id = root.ID
	}
	s.servePage(w, r, s.parseView(r, id))
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, s.parseView(r, nodeID(r)))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.serveSVG(w, r, s.parseView(r, nodeID(r)))
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, r, s.parseView(r, nodeID(r)))
}

func nodeID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if v, err := url.PathUnescape(id); err == nil {
		return v
	}
	return id
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if s.deps.LoadErr != nil {
		http.Error(w, s.deps.LoadErr.Error(), http.StatusInternalServerError)
		return
	}
	data, err := mindmapfile.ToJSON(s.deps.Tree, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// scene runs one render cycle for v. The measurer and its cache are
// shared between requests; each request gets its own session. v.Zoom is
// reduced to the steps that still change the zoom of this scene.
func (s *Server) scene(r *http.Request, v *viewState) (*render.Scene, int, error) {
	if s.deps.LoadErr != nil {
		return nil, http.StatusInternalServerError, s.deps.LoadErr
	}
	if s.deps.Measurer == nil {
		return nil, http.StatusInternalServerError, errors.New("no text measurer configured")
	}
	rd, err := render.New(s.deps.Tree, s.deps.Measurer,
		render.WithLogger(s.logger),
		render.WithLayout(s.deps.Layout),
		render.WithViewport(s.deps.Viewport),
		render.WithObserver(s.deps.Metrics),
	)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if err := rd.Focus(v.ID); err != nil {
		return nil, http.StatusNotFound, err
	}
	scene, err := rd.Render(r.Context(), v.View)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	v.Zoom = s.deps.Viewport.EffectiveSteps(scene.Transform.Zoom, v.Zoom)
	if v.Zoom != 0 {
		if scene, err = rd.Zoom(v.Zoom); err != nil {
			return nil, http.StatusInternalServerError, err
		}
	}
	return scene, http.StatusOK, nil
}

// text returns the layouter drawn text is wrapped with, if any.
func (s *Server) text() mindmapfile.TextLayouter {
	if s.deps.Text == nil {
		return nil
	}
	return s.deps.Text
}

// nodeHref maps a node to the view a click on it leads to. Clicking the
// focused node goes up; at the root it stays put.
func (s *Server) nodeHref(v viewState) func(string) string {
	return func(id string) string {
		target := id
		if id == v.ID {
			if parent, status := s.deps.Tree.FindParent(id); status == mindmap.ParentFound {
				target = parent.ID
			}
		}
		return v.href(target, 0)
	}
}

func (s *Server) serveSVG(w http.ResponseWriter, r *http.Request, v viewState) {
	scene, status, err := s.scene(r, &v)
	w.Header().Set("Content-Type", "image/svg+xml")
	if err != nil {
		s.logger.Warn("render failed", "node", v.ID, "error", err)
		w.WriteHeader(status)
		w.Write([]byte(mindmapfile.ErrorSVG(errorMessage(err), v.View.Width, v.View.Height)))
		return
	}
	opts := mindmapfile.DefaultSVGOptions()
	opts.Title = scene.Center.Title
	w.Write([]byte(mindmapfile.GenerateSVG(scene, s.text(), opts)))
}

func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, v viewState) {
	scene, status, err := s.scene(r, &v)
	if err != nil {
		s.logger.Warn("render failed", "node", v.ID, "error", err)
		http.Error(w, errorMessage(err), status)
		return
	}
	var buf bytes.Buffer
	if err := mindmapfile.RenderPNG(scene, s.text(), &buf, mindmapfile.DefaultPNGOptions()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

type pageData struct {
	Title    string
	SVG      template.HTML
	ZoomIn   string
	ZoomOut  string
	Reset    string
	Up       string
	SVGLink  string
	PNGLink  string
	Zoom     string
	NodeID   string
	Details  template.HTML // focused node description
	HasError bool
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, v viewState) {
	data := pageData{Title: s.cfg.Title}
	if data.Title == "" {
		data.Title = "hubspoke"
	}

	scene, status, err := s.scene(r, &v)
	if err != nil {
		s.logger.Warn("render failed", "node", v.ID, "error", err)
		data.HasError = true
		data.SVG = template.HTML(mindmapfile.ErrorSVG(errorMessage(err), v.View.Width, v.View.Height))
		if s.deps.LoadErr == nil {
			if root := s.deps.Tree.Root(); root != nil {
				data.Up = v.href(root.ID, 0)
			}
		}
		s.writePage(w, status, data)
		return
	}

	opts := mindmapfile.SVGOptions{NodeHref: s.nodeHref(v), CornerRound: 8}
	data.SVG = template.HTML(mindmapfile.GenerateSVG(scene, s.text(), opts))
	data.NodeID = v.ID
	data.Title = scene.Center.Title + " - " + data.Title
	data.ZoomIn = v.href(v.ID, v.Zoom+1)
	data.ZoomOut = v.href(v.ID, v.Zoom-1)
	data.Reset = v.href(v.ID, 0)
	data.SVGLink = v.link("/svg/", v.ID, v.Zoom)
	data.PNGLink = v.link("/png/", v.ID, v.Zoom)
	data.Zoom = strconv.Itoa(int(scene.Transform.Zoom*100+0.5)) + "%"
	if scene.Parent != nil {
		data.Up = v.href(scene.Parent.ID, 0)
	}
	if desc := scene.Center.Description; desc != "" {
		if data.Details, err = renderDescription(desc); err != nil {
			s.logger.Warn("description not rendered", "node", v.ID, "error", err)
		}
	}
	s.writePage(w, http.StatusOK, data)
}

func (s *Server) writePage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func errorMessage(err error) string {
	var le *mindmapfile.LoadError
	if errors.As(err, &le) {
		return "Failed to load: " + le.Err.Error()
	}
	return err.Error()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: sans-serif; background: #eceff1; }
  nav { padding: 8px 12px; background: #263238; }
  nav a, nav span { color: #eceff1; margin-right: 12px; text-decoration: none; }
  nav a:hover { text-decoration: underline; }
  main { display: flex; justify-content: center; padding: 12px; }
  svg.mindmap { background: white; box-shadow: 0 1px 4px rgba(0,0,0,.2); }
  aside.details { max-width: 720px; margin: 0 auto 24px; padding: 8px 16px; background: white; }
</style>
</head>
<body>
<nav>
{{- if .Up}}<a href="{{.Up}}" class="up">&#8593; up</a>{{end}}
{{- if not .HasError}}
  <a href="{{.ZoomIn}}" class="zoom-in">+</a>
  <a href="{{.ZoomOut}}" class="zoom-out">&minus;</a>
  <a href="{{.Reset}}" class="zoom-reset">fit</a>
  <span class="zoom">{{.Zoom}}</span>
  <a href="{{.SVGLink}}">svg</a>
  <a href="{{.PNGLink}}">png</a>
{{- end}}
</nav>
<main data-node="{{.NodeID}}">
{{.SVG}}
</main>
{{- if .Details}}
<aside class="details">
{{.Details}}
</aside>
{{- end}}
</body>
</html>
`))
