package mindmapfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrEmptyDocument is returned when a document has no usable root node.
var ErrEmptyDocument = errors.New("mindmap data is empty or missing root id")

// maxDocumentSize bounds remote and local reads.
const maxDocumentSize = 32 << 20

// LoadError reports a document that could not be loaded. It is fatal for
// a viewing session.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FormatFor picks the format from a file name or URL path. Unknown
// extensions are read as JSON.
func FormatFor(name string) Format {
	if u, err := url.Parse(name); err == nil && isRemote(u) {
		name = u.Path
	}
	switch strings.ToLower(path.Ext(filepath.ToSlash(name))) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Parse decodes data in the given format.
func Parse(data []byte, f Format) (*mindmap.Tree, error) {
	var (
		t   *mindmap.Tree
		err error
	)
	switch f {
	case FormatYAML:
		t, err = ParseYAML(data)
	case FormatTOML:
		t, err = ParseTOML(data)
	case FormatJSON:
		t, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return nil, err
	}
	if root := t.Root(); root == nil || root.ID == "" {
		return nil, ErrEmptyDocument
	}
	return t, nil
}

// Load reads a mindmap from a local path or an http(s) URL. Every failure
// is returned as a *LoadError.
func Load(ctx context.Context, src string) (*mindmap.Tree, error) {
	data, err := read(ctx, src)
	if err != nil {
		return nil, &LoadError{Source: src, Err: err}
	}
	t, err := Parse(data, FormatFor(src))
	if err != nil {
		return nil, &LoadError{Source: src, Err: err}
	}
	return t, nil
}

// LoadReader reads a mindmap of the given format from r.
func LoadReader(r io.Reader, f Format) (*mindmap.Tree, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize))
	if err != nil {
		return nil, &LoadError{Source: "input", Err: err}
	}
	t, err := Parse(data, f)
	if err != nil {
		return nil, &LoadError{Source: "input", Err: err}
	}
	return t, nil
}

func read(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil || !isRemote(u) {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxDocumentSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

func isRemote(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}
