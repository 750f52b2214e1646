package main

import (
	"context"
	"errors"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpmetrics "github.com/dropDatabas3/bizdesk/internal/http"
	"github.com/dropDatabas3/bizdesk/internal/http/server"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/store"
)

func newServeCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := logger.ToContext(cmd.Context(), logger.L())
			log := logger.From(ctx)

			st, err := store.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			app, err := server.BuildHandler(server.Deps{
				Config: cfg,
				Stores: st,
				Metrics: &httpmetrics.MetricsConfig{
					Registry: prometheus.DefaultRegisterer,
					Gatherer: prometheus.DefaultGatherer,
				},
			})
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return err
			}
			srv := server.New(cfg, app.Handler)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Serve(gctx, srv, ln, cfg.Server.ShutdownTimeout)
			})
			g.Go(func() error {
				return app.Janitor.Run(gctx)
			})

			log.Info("bizdesk started",
				logger.String("addr", cfg.Server.Addr),
				logger.String("env", cfg.App.Env),
				logger.String("version", cfg.App.Version),
				logger.Bool("google", cfg.Providers.Google.Enabled),
				logger.Bool("rate_limit", cfg.Rate.Enabled),
			)
			err = g.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("bizdesk stopped")
			return nil
		},
	}
}
