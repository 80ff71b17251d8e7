package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hubspoke/pkg/measure"
	"github.com/ha1tch/hubspoke/pkg/metrics"
	"github.com/ha1tch/hubspoke/pkg/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		host     string
		port     int
		allowAll bool
		title    string
	)
	cmd := &cobra.Command{
		Use:   "serve <doc>",
		Short: "Serve the mindmap as clickable HTML pages",
		Long: "Start the HTTP viewer. Every node is a link; the toolbar zooms in and out.\n" +
			"If the document fails to load the server still starts and shows the error.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("allow-all-origins") {
				a.cfg.Server.AllowAllOrigins = allowAll
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := metrics.DefaultRegistry()
			deps := server.Deps{
				Metrics:  reg,
				Logger:   a.logger,
				Layout:   a.cfg.LayoutOptions(),
				Viewport: a.cfg.ViewportOptions(),
			}
			deps.Tree, deps.LoadErr = a.load(ctx, args[0])
			if deps.LoadErr == nil {
				fm, err := a.fontMeasurer()
				if err != nil {
					return err
				}
				deps.Text = fm
				deps.Measurer = measure.New(fm,
					measure.WithLogger(a.logger),
					measure.WithOptions(a.cfg.MeasureOptions()),
					measure.WithObserver(reg),
				)
			}

			srv := server.New(server.Config{
				Addr:           a.cfg.Addr(),
				AllowAll:       a.cfg.Server.AllowAllOrigins,
				RequestTimeout: a.cfg.Server.RequestTimeout,
				View:           a.cfg.ViewSize(),
				Title:          title,
			}, deps)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()
			brand.Fprintf(cmd.ErrOrStderr(), "hubspoke ")
			subtle.Fprintf(cmd.ErrOrStderr(), "serving %s on http://%s\n", args[0], a.cfg.Addr())

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	cmd.Flags().BoolVar(&allowAll, "allow-all-origins", false, "allow any CORS origin")
	cmd.Flags().StringVar(&title, "title", "", "page title suffix")
	return cmd
}
