package main

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "validate <doc|pattern>...",
		Short:   "Check that documents load: ids and titles present, ids unique",
		Example: "  hubspoke validate map.json 'maps/**/*.yaml'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := expandSources(args)
			if err != nil {
				return err
			}
			var firstErr error
			for _, src := range sources {
				tree, err := a.load(cmd.Context(), src)
				if err != nil {
					bad.Fprintf(cmd.OutOrStdout(), "  ✗ %s: %v\n", src, err)
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				good.Fprintf(cmd.OutOrStdout(), "  ✓ %s ", src)
				subtle.Fprintf(cmd.OutOrStdout(), "(%d nodes)\n", tree.Len())
			}
			return firstErr
		},
	}
}

// expandSources expands glob patterns, including **. URLs and plain paths
// pass through unchanged.
func expandSources(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if strings.Contains(arg, "://") || !strings.ContainsAny(arg, "*?[{") {
			out = append(out, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no documents match %q", arg)
		}
		out = append(out, matches...)
	}
	return out, nil
}
