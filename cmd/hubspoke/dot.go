package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
)

func dotCmd(a *app) *cobra.Command {
	var output, title, focus string
	cmd := &cobra.Command{
		Use:     "dot <doc>",
		Short:   "Generate Graphviz DOT output for the whole tree",
		Example: "  hubspoke dot map.json | twopi -Tpng -o map.png",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if focus != "" && tree.FindByID(focus) == nil {
				warn.Fprintf(cmd.ErrOrStderr(), "hubspoke: focus %q not in document, ignoring\n", focus)
				focus = ""
			}
			dot := mindmapfile.GenerateDOT(tree, title, focus)
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				_, err := io.WriteString(w, dot)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", "", "graph title")
	cmd.Flags().StringVar(&focus, "focus", "", "highlight a node")
	return cmd
}
