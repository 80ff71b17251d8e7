package mindmapfile

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

// ParseYAML parses a mindmap written as YAML. Field names are the same
// as in the JSON form.
func ParseYAML(data []byte) (*mindmap.Tree, error) {
	var root mindmap.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return mindmap.New(&root)
}

// ToYAML converts a mindmap to YAML.
func ToYAML(t *mindmap.Tree) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t.Root()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
