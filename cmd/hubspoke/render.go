package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
)

func renderCmd(a *app) *cobra.Command {
	var (
		output    string
		format    string
		focus     string
		width     int
		height    int
		zoomSteps int
		title     string
	)
	cmd := &cobra.Command{
		Use:   "render <doc>",
		Short: "Render one view of a mindmap to SVG or PNG",
		Long: "Render the view centred on a node. The document may be a local JSON, YAML or\n" +
			"TOML file or an http(s) URL. Output defaults to SVG on stdout.",
		Example: "  hubspoke render map.json -o root.svg\n" +
			"  hubspoke render map.yaml --focus ideas -o ideas.png --width 1600 --height 1200",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = "svg"
				if strings.EqualFold(filepath.Ext(output), ".png") {
					format = "png"
				}
			}
			if format != "svg" && format != "png" {
				return fmt.Errorf("unknown format %q: must be svg or png", format)
			}
			view := a.cfg.ViewSize()
			if width > 0 {
				view.Width = float64(width)
			}
			if height > 0 {
				view.Height = float64(height)
			}

			tree, err := a.load(cmd.Context(), args[0])
			if err != nil {
				// Leave the error canvas behind, like the viewers do.
				if format == "svg" {
					msg := err.Error()
					var le *mindmapfile.LoadError
					if errors.As(err, &le) {
						msg = "Failed to load: " + le.Err.Error()
					}
					writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
						_, werr := io.WriteString(w, mindmapfile.ErrorSVG(msg, view.Width, view.Height))
						return werr
					})
				}
				return err
			}

			fm, err := a.fontMeasurer()
			if err != nil {
				return err
			}
			rd, err := a.renderer(tree, fm, nil)
			if err != nil {
				return err
			}
			if focus != "" {
				if err := rd.Focus(focus); err != nil {
					return err
				}
			}
			scene, err := rd.Render(cmd.Context(), view)
			if err != nil {
				return err
			}
			if zoomSteps != 0 {
				if scene, err = rd.Zoom(zoomSteps); err != nil {
					return err
				}
			}

			err = writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				if format == "png" {
					return mindmapfile.RenderPNG(scene, fm, w, mindmapfile.DefaultPNGOptions())
				}
				opts := mindmapfile.DefaultSVGOptions()
				opts.Title = title
				if opts.Title == "" {
					opts.Title = scene.Center.Title
				}
				_, werr := io.WriteString(w, mindmapfile.GenerateSVG(scene, fm, opts))
				return werr
			})
			if err != nil {
				return err
			}
			if output != "" {
				good.Fprintf(cmd.ErrOrStderr(), "wrote %s ", output)
				subtle.Fprintf(cmd.ErrOrStderr(), "(%s, %d children, zoom %.2f)\n",
					scene.Center.ID, len(scene.Children), scene.Transform.Zoom)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "svg or png (default from the output extension)")
	cmd.Flags().StringVar(&focus, "focus", "", "id of the node to centre (default the root)")
	cmd.Flags().IntVar(&width, "width", 0, "viewport width (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "viewport height (default from config)")
	cmd.Flags().IntVar(&zoomSteps, "zoom-steps", 0, "zoom steps applied after auto-fit (negative zooms out)")
	cmd.Flags().StringVar(&title, "title", "", "SVG document title")
	return cmd
}

// writeOutput calls write with a buffered writer on path, or on stdout
// when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
