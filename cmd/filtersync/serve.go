package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/filtersync/internal/config"
	"github.com/vango-dev/filtersync/internal/metrics"
	"github.com/vango-dev/filtersync/internal/server"
)

func serveCmd() *cobra.Command {
	var (
		dir     string
		address string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live filter server",
		Long: `Start the live filter server.

Each WebSocket client at /ws gets its own filter engine, mounted against
the path and query it reports in the handshake. Configuration is read
from filtersync.json and FILTERSYNC_* environment variables.

Endpoints:
  GET /ws            live sessions
  GET /healthz       liveness probe
  GET /metrics       Prometheus metrics (when enabled)
  GET /api/decode    decode the request's own query string

Examples:
  filtersync serve
  filtersync serve --address :9000
  FILTERSYNC_DEFAULTS='page=1' filtersync serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := configDir(dir)
			if err != nil {
				return err
			}
			cfg, err := config.LoadFromDir(root)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&dir, "config", "", "Directory containing filtersync.json (default: nearest parent with one)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from filtersync.json)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	scfg, err := server.FromFile(cfg)
	if err != nil {
		return err
	}
	scfg.Logger = logger

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		scfg.Metrics = metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace),
		)
		scfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	w := cmd.OutOrStdout()
	printBanner(w)
	success(w, "listening on %s", cfg.Address)
	if cfg.Path() != "" {
		info(w, "config %s", cfg.Path())
	}
	if cfg.Defaults.Len() > 0 {
		info(w, "defaults %s", cfg.Defaults)
	}
	if cfg.Metrics.Enabled {
		info(w, "metrics at /metrics (namespace %s)", cfg.Metrics.Namespace)
	}

	return server.New(scfg).Run(ctx)
}
