package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
)

func convertCmd(a *app) *cobra.Command {
	var output string
	var pretty bool
	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert between document formats (json, yaml, toml)",
		Example: "  hubspoke convert map.json -o map.yaml\n" +
			"  hubspoke convert map.toml -o map.json --pretty",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				// Default: JSON becomes YAML, everything else becomes JSON.
				ext := filepath.Ext(input)
				base := strings.TrimSuffix(filepath.Base(input), ext)
				if mindmapfile.FormatFor(input) == mindmapfile.FormatJSON {
					output = base + ".yaml"
				} else {
					output = base + ".json"
				}
			}

			tree, err := a.load(cmd.Context(), input)
			if err != nil {
				return err
			}

			var data []byte
			switch mindmapfile.FormatFor(output) {
			case mindmapfile.FormatYAML:
				data, err = mindmapfile.ToYAML(tree)
			case mindmapfile.FormatTOML:
				data, err = mindmapfile.ToTOML(tree)
			default:
				data, err = mindmapfile.ToJSON(tree, pretty)
				data = append(data, '\n')
			}
			if err != nil {
				return fmt.Errorf("encoding %s: %w", output, err)
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			good.Fprintf(cmd.ErrOrStderr(), "wrote %s ", output)
			subtle.Fprintf(cmd.ErrOrStderr(), "(%d nodes)\n", tree.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; format from its extension")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
