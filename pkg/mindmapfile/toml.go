package mindmapfile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

// ParseTOML parses a mindmap written as TOML. The root node's fields are
// top-level keys; children are arrays of tables ([[children]],
// [[children.children]], ...).
func ParseTOML(data []byte) (*mindmap.Tree, error) {
	var root mindmap.Node
	md, err := toml.Decode(string(data), &root)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return mindmap.New(&root)
}

// ToTOML converts a mindmap to TOML.
func ToTOML(t *mindmap.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if root := t.Root(); root != nil {
		if err := toml.NewEncoder(&buf).Encode(root); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
