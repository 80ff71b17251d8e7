package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hubspoke/pkg/mindmap"
)

func infoCmd(a *app) *cobra.Command {
	var outline bool
	cmd := &cobra.Command{
		Use:   "info <doc>",
		Short: "Show mindmap statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			root := tree.Root()

			fmt.Fprintf(out, "  %s %s\n", brand.Sprint(root.Title), subtle.Sprintf("(%s)", root.ID))
			if root.Description != "" {
				fmt.Fprintf(out, "  %s\n", root.Description)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Nodes:     %d\n", tree.Len())
			fmt.Fprintf(out, "  Depth:     %d\n", tree.Depth())
			fmt.Fprintf(out, "  Leaves:    %d\n", tree.Leaves())
			fmt.Fprintf(out, "  Top level: %d\n", len(root.Children))

			widest, widestID := 0, ""
			tree.Walk(func(n *mindmap.Node, _ int) bool {
				if len(n.Children) > widest {
					widest, widestID = len(n.Children), n.ID
				}
				return true
			})
			if widest > 0 {
				fmt.Fprintf(out, "  Widest:    %s %s\n", widestID, subtle.Sprintf("(%d children)", widest))
			}

			if outline {
				fmt.Fprintln(out)
				printOutline(out, tree)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&outline, "outline", false, "print the node outline")
	return cmd
}

func printOutline(out io.Writer, tree *mindmap.Tree) {
	tree.Walk(func(n *mindmap.Node, depth int) bool {
		indent := strings.Repeat("  ", depth+1)
		fmt.Fprintf(out, "%s%s %s\n", indent, n.Title, subtle.Sprintf("[%s]", n.ID))
		return true
	})
}
