// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/rpcrouter/internal/config"
	"github.com/luxfi/rpcrouter/observability"
	"github.com/luxfi/rpcrouter/rpc"
)

const metricsNamespace = "routerd"

func serveCmd() *cobra.Command {
	var (
		configPath     string
		transport      string
		address        string
		metricsAddress string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Merge the feature routers and serve them",
		Long: `Merge the feature routers and serve them until interrupted.

Examples:
  routerd serve
  routerd serve --config routerd.yaml
  routerd serve --transport json --address 0.0.0.0:9650`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Server.Transport = transport
			}
			if address != "" {
				cfg.Server.Address = address
			}
			if metricsAddress != "" {
				cfg.Server.MetricsAddress = metricsAddress
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSONC config file")
	cmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport to serve (default from config)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&metricsAddress, "metrics-address", "", "Serve /metrics on this address")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics(metricsNamespace)

	app, err := buildApp(cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("merge routers: %w", err)
	}

	serverOpts := []rpc.ServerOption{
		rpc.WithServerTransport(cfg.Server.Transport),
		rpc.WithServerLogger(logger),
	}
	if cfg.Server.MetricsAddress == "" {
		serverOpts = append(serverOpts, rpc.WithHTTPHandler("/metrics", metrics.Handler()))
	}

	server, err := rpc.Listen(cfg.Server.Address, serverOpts...)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer server.Close()

	if _, err := rpc.Mount(server, app,
		rpc.WithLogger(logger),
		rpc.WithMetrics(metrics),
	); err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	if cfg.Server.MetricsAddress != "" {
		metricsServer := newMetricsServer(cfg.Server.MetricsAddress, metrics)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer shutdown(metricsServer, cfg.Server.ShutdownTimeout.Duration(), logger)
	}

	logger.Info("routerd started",
		zap.String("version", version),
		zap.String("transport", cfg.Server.Transport),
		zap.String("addr", server.Addr()),
		zap.Strings("procedures", app.Paths()),
	)

	err = server.Serve(ctx)
	logger.Info("routerd stopped")
	return err
}

func newMetricsServer(addr string, metrics *observability.Metrics) *http.Server {
	mux := chi.NewRouter()
	mux.Handle("/metrics", metrics.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func shutdown(s *http.Server, timeout time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
}
