package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/upnext/upnext/internal/config"
	"github.com/upnext/upnext/internal/instrumentation"
	"github.com/upnext/upnext/internal/logging"
	"github.com/upnext/upnext/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	var metricsAddr string
	var metricsEnabled bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server and Notion read proxy",
		Long: `Start the HTTP server exposing the agenda API, task completion toggles,
exports, and the Notion read proxy. Prometheus metrics are served on a
separate listener so operational data stays off the API port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Server.MetricsAddr = metricsAddr
			}
			return runServe(cfg, metricsEnabled)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3001", "API listen address")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Prometheus listen address")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics", true, "serve Prometheus metrics")
	return cmd
}

func runServe(cfg config.Config, metricsEnabled bool) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.New(os.Stderr, logging.Format(cfg.Log.Format), parseLevel(cfg.Log.Level))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("addr", cfg.Server.Addr),
		slog.String("todoist_token", logging.SanitizeToken(cfg.Todoist.Token)),
		slog.String("notion_token", logging.SanitizeToken(cfg.Notion.Token)),
	)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.Enabled = metricsEnabled

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	sc, err := server.NewServerContext(shutdownCtx, cfg, logger, provider.Metrics())
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	errChan := make(chan error, 2)

	var metricsServer *server.MetricsServer
	if provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Server.MetricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	apiServer := server.New(sc, cfg.Server)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("api server: %w", err)
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return err
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer drainCancel()

	if err := apiServer.Shutdown(drainCtx); err != nil {
		logger.Warn("api server shutdown failed", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(drainCtx); err != nil {
			logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}
	return sc.Shutdown()
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
