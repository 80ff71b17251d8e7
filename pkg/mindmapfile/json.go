// Package mindmapfile reads mindmap documents and writes rendered scenes.
package mindmapfile

import (
	"encoding/json"

	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

// ParseJSON parses a mindmap from its canonical JSON form: a single root
// node object with nested children.
func ParseJSON(data []byte) (*mindmap.Tree, error) {
	var root mindmap.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return mindmap.New(&root)
}

// ToJSON converts a mindmap to JSON.
func ToJSON(t *mindmap.Tree, pretty bool) ([]byte, error) {
	root := t.Root()
	if root == nil {
		return []byte("null"), nil
	}
	if pretty {
		return json.MarshalIndent(root, "", "  ")
	}
	return json.Marshal(root)
}
