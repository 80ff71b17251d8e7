package mindmapfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

// GenerateDOT converts a mindmap to Graphviz DOT format. The root is
// drawn bold and, when focus is non-empty, the focused node is filled.
func GenerateDOT(t *mindmap.Tree, title, focus string) string {
	var sb strings.Builder

	sb.WriteString("digraph mindmap {\n")
	sb.WriteString("    layout=twopi;\n")
	sb.WriteString("    overlap=false;\n")
	sb.WriteString("    node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [arrowhead=none, color=\"#90a4ae\"];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	root := t.Root()
	if root == nil {
		sb.WriteString("}\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("    root=\"%s\";\n", escapeDOT(root.ID)))

	t.Walk(func(n *mindmap.Node, depth int) bool {
		attrs := []string{fmt.Sprintf("label=\"%s\"", escapeDOT(n.Title))}
		if n.Description != "" {
			attrs = append(attrs, fmt.Sprintf("tooltip=\"%s\"", escapeDOT(n.Description)))
		}
		switch {
		case n.ID == focus:
			attrs = append(attrs, "style=\"rounded,filled,bold\"", "fillcolor=\"#e3f2fd\"")
		case depth == 0:
			attrs = append(attrs, "style=\"rounded,bold\"")
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" [%s];\n", escapeDOT(n.ID), strings.Join(attrs, ", ")))
		return true
	})
	sb.WriteString("\n")

	t.Walk(func(n *mindmap.Node, _ int) bool {
		for _, c := range n.Children {
			sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\";\n", escapeDOT(n.ID), escapeDOT(c.ID)))
		}
		return true
	})

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
