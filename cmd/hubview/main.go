// Command hubview is a terminal viewer for hub-and-spoke mindmaps.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/hubspoke/pkg/config"
	"github.com/ha1tch/hubspoke/pkg/logging"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
	"github.com/ha1tch/hubspoke/pkg/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hubview: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath, logFile, logLevel, focus string
	cmd := &cobra.Command{
		Use:   "hubview <doc>",
		Short: "Browse a mindmap in the terminal, one node at a time",
		Long: "Click a node (or select it with Tab and press Enter) to centre it.\n" +
			"Clicking the centre node or pressing u goes back up to its parent.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			// The screen owns the terminal, so logs only go to a file.
			logger := logging.Discard()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return err
				}
				defer f.Close()
				if logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, f); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse()
			screen.Clear()

			v := open(ctx, screen, args[0], cfg, logger)
			if err := v.start(ctx, focus); err != nil {
				return err
			}
			v.run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "config file (YAML)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&focus, "focus", "", "id of the node to start on (default the root)")
	return cmd
}

// open loads the document and builds a viewer for it. A load failure
// still yields a viewer, which shows the error.
func open(ctx context.Context, screen tcell.Screen, source string, cfg *config.Config, logger *slog.Logger) *viewer {
	tree, err := mindmapfile.Load(ctx, source)
	if err != nil {
		logger.Error("load failed", "source", source, "error", err)
		return newViewer(screen, source, nil, err, logger, cfg.Viewer.ResizeDebounce)
	}
	m := measure.New(measure.CellMeasurer{},
		measure.WithLogger(logger),
		measure.WithOptions(cfg.MeasureOptions()),
	)
	rd, err := render.New(tree, m,
		render.WithLogger(logger),
		render.WithLayout(cfg.LayoutOptions()),
		render.WithViewport(cfg.ViewportOptions()),
	)
	if err != nil {
		return newViewer(screen, source, nil, err, logger, cfg.Viewer.ResizeDebounce)
	}
	return newViewer(screen, source, rd, nil, logger, cfg.Viewer.ResizeDebounce)
}
