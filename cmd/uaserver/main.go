// uaserver is the OPC UA TCP server daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/industrial-go/opcua/internal/config"
	uametrics "github.com/industrial-go/opcua/internal/metrics"
	"github.com/industrial-go/opcua/internal/server"
	appversion "github.com/industrial-go/opcua/internal/version"
)

// shutdownTimeout is the maximum time to wait for the metrics HTTP server
// to drain active connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("uaserver starting",
		slog.String("version", appversion.Version),
		slog.String("listen_addr", cfg.Server.ListenAddr),
		slog.String("application_uri", cfg.Server.ApplicationURI),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	reg := prometheus.NewRegistry()
	collector := uametrics.NewCollector(reg)

	srv, err := server.New(cfg, logger, collector)
	if err != nil {
		logger.Error("failed to construct server", slog.String("error", err.Error()))
		return 1
	}

	if err := runServers(srv, cfg, reg, logger, *configPath, logLevel); err != nil {
		logger.Error("uaserver exited with error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("uaserver stopped")
	return 0
}

// runServers runs the OPC UA TCP server and the metrics HTTP server
// concurrently using an errgroup with a signal-aware context for graceful
// shutdown.
func runServers(
	srv *server.Server,
	cfg *config.Config,
	reg *prometheus.Registry,
	logger *slog.Logger,
	configPath string,
	logLevel *slog.LevelVar,
) error {
	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(gCtx); err != nil {
			return fmt.Errorf("ua transport: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics server listening",
			slog.String("addr", cfg.Metrics.Addr),
			slog.String("path", cfg.Metrics.Path),
		)
		return listenAndServe(gCtx, metricsSrv, cfg.Metrics.Addr)
	})

	startReloadGoroutine(gCtx, g, configPath, logLevel, logger)

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(gCtx, srv, metricsSrv, logger)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run servers: %w", err)
	}
	return nil
}

// startReloadGoroutine registers a SIGHUP handler that reloads the dynamic
// log level from configuration. Other settings (listen address, endpoint
// security policies) take effect only on restart.
func startReloadGoroutine(
	ctx context.Context,
	g *errgroup.Group,
	configPath string,
	logLevel *slog.LevelVar,
	logger *slog.Logger,
) {
	sigHUP := make(chan os.Signal, 1)
	signal.Notify(sigHUP, syscall.SIGHUP)

	g.Go(func() error {
		defer signal.Stop(sigHUP)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sigHUP:
				logger.Info("received SIGHUP, reloading log level")
				reloadLogLevel(configPath, logLevel, logger)
			}
		}
	})
}

// reloadLogLevel loads a fresh configuration from configPath and updates
// the dynamic log level. Errors are logged but do not stop the daemon.
func reloadLogLevel(configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	newCfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to reload configuration, keeping current settings",
			slog.String("error", err.Error()),
		)
		return
	}

	oldLevel := logLevel.Level()
	newLevel := config.ParseLogLevel(newCfg.Log.Level)
	logLevel.Set(newLevel)

	logger.Info("configuration reloaded",
		slog.String("old_log_level", oldLevel.String()),
		slog.String("new_log_level", newLevel.String()),
	)
}

// gracefulShutdown closes the OPC UA listener and shuts down the metrics
// server within shutdownTimeout.
func gracefulShutdown(ctx context.Context, srv *server.Server, metricsSrv *http.Server, logger *slog.Logger) error {
	logger.Info("initiating graceful shutdown")

	var shutdownErr error
	if err := srv.Close(); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("close ua server: %w", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown metrics server: %w", err))
	}

	return shutdownErr
}

// listenAndServe creates a TCP listener using a context-aware ListenConfig
// and serves HTTP requests until the server is shut down.
func listenAndServe(ctx context.Context, srv *http.Server, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

// newMetricsServer creates an HTTP server for the Prometheus metrics endpoint.
func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// loadConfig loads configuration from a file path or returns defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

// newLoggerWithLevel creates a structured logger using a shared LevelVar
// for dynamic log level changes via SIGHUP reload.
func newLoggerWithLevel(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
