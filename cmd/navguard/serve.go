package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/navguard/internal/app"
	"github.com/vango-dev/navguard/internal/devserver"
	"github.com/vango-dev/navguard/pkg/guard"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the navigation development server",
		Long: `Start the development server.

Every WebSocket connection to /_navguard/ws gets its own navigation
session. /api/navigate runs a single navigation and returns its outcome,
/api/routes lists the route table and /metrics exposes Prometheus
metrics when metrics.enabled is set.

Examples:
  navguard serve
  navguard serve --port=8080
  navguard serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			appOpts := []app.Option{app.WithLogger(logger)}
			var gatherer prometheus.Gatherer
			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				metrics := guard.NewMetrics(
					guard.WithRegistry(reg),
					guard.WithNamespace(cfg.Metrics.Namespace),
				)
				appOpts = append(appOpts, app.WithMetrics(metrics))
				gatherer = reg
			}
			if cfg.Tracing.TracerName != "" {
				appOpts = append(appOpts, app.WithTracing(guard.NewTracing(guard.WithTracerName(cfg.Tracing.TracerName))))
			}

			a, err := app.New(cfg, appOpts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := devserver.New(devserver.Options{App: a, Gatherer: gatherer, Logger: logger})
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}
