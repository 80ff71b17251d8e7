package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ha1tch/hubspoke/pkg/config"
	"github.com/ha1tch/hubspoke/pkg/logging"
	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/metrics"
	"github.com/ha1tch/hubspoke/pkg/mindmap"
	"github.com/ha1tch/hubspoke/pkg/mindmapfile"
	"github.com/ha1tch/hubspoke/pkg/render"
)

var version = "0.3.0"

// Palette
var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

// app is the state shared by all subcommands.
type app struct {
	cfgPath  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "hubspoke",
		Short: "hubspoke - hub-and-spoke mindmap viewer",
		Long: brand.Sprint("hubspoke") + " - view a mindmap one node at a time\n" +
			subtle.Sprint("The focused node sits in the middle, its children around it, its parent pinned top-left."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.setup()
		},
	}
	root.SetVersionTemplate("hubspoke {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.cfgPath, "config", config.DefaultPath, "config file (YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		renderCmd(a),
		infoCmd(a),
		validateCmd(a),
		dotCmd(a),
		convertCmd(a),
		serveCmd(a),
		configCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, a.stderr)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// load reads a document, logging load failures.
func (a *app) load(ctx context.Context, src string) (*mindmap.Tree, error) {
	tree, err := mindmapfile.Load(ctx, src)
	if err != nil {
		a.logger.Error("load failed", "source", src, "error", err)
		return nil, err
	}
	a.logger.Debug("loaded mindmap", "source", src, "nodes", tree.Len())
	return tree, nil
}

// fontMeasurer builds the font-metric text measurer from config.
func (a *app) fontMeasurer() (*measure.FontMeasurer, error) {
	return measure.NewFontMeasurer(a.cfg.Typography())
}

// renderer builds a renderer over tree measured with text.
func (a *app) renderer(tree *mindmap.Tree, text measure.TextBoxMeasurer, reg *metrics.Registry) (*render.Renderer, error) {
	mopts := []measure.Option{
		measure.WithLogger(a.logger),
		measure.WithOptions(a.cfg.MeasureOptions()),
	}
	ropts := []render.Option{
		render.WithLogger(a.logger),
		render.WithLayout(a.cfg.LayoutOptions()),
		render.WithViewport(a.cfg.ViewportOptions()),
	}
	if reg != nil {
		mopts = append(mopts, measure.WithObserver(reg))
		ropts = append(ropts, render.WithObserver(reg))
	}
	return render.New(tree, measure.New(text, mopts...), ropts...)
}
