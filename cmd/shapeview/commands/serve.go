package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/internal/telemetry"
	"github.com/marmos91/shapeview/pkg/api"
	"github.com/marmos91/shapeview/pkg/api/handlers"
	"github.com/marmos91/shapeview/pkg/config"
	"github.com/marmos91/shapeview/pkg/viewer"
)

var serveNoWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the shapeview HTTP API and, when enabled, the Prometheus metrics server.

The configuration file is watched for changes; edits to the dataset list are
applied without a restart. Other settings require a restart.

Examples:
  # Serve with the default configuration
  shapeview serve

  # Serve with a custom config file
  shapeview serve --config /etc/shapeview/config.yaml

  # Override settings with environment variables
  SHAPEVIEW_LOGGING_LEVEL=DEBUG SHAPEVIEW_SERVER_PORT=9000 shapeview serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload the dataset list when the config file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, cfg.TracingConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// ctx is already cancelled here; give exporters their own deadline.
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(flushCtx); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(cfg.ProfilingConfig(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("shapeview starting", "version", Version)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}

	metricsResult := config.InitializeMetrics(cfg)

	v, err := config.BuildViewer(ctx, cfg, metricsResult)
	if err != nil {
		return fmt.Errorf("failed to initialize viewer: %w", err)
	}
	defer func() { _ = v.Store().Close() }()

	logger.Info("Viewer initialized",
		"store", cfg.Storage.Type,
		"datasets", v.Catalog().Len(),
		"shapes_per_chunk", v.ShapesPerChunk())

	if !serveNoWatch {
		watchConfig(v)
	}

	g, gctx := errgroup.WithContext(ctx)
	services := 0

	if cfg.Server.IsEnabled() {
		apiServer := api.NewServer(cfg.Server, v, handlers.Canvas{
			Width:  cfg.Canvas.Width,
			Height: cfg.Canvas.Height,
		})
		g.Go(func() error { return apiServer.Start(gctx) })
		services++
	} else {
		logger.Info("API server disabled")
	}

	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		g.Go(func() error { return metricsResult.Server.Start(gctx) })
		services++
	} else {
		logger.Info("Metrics collection disabled")
	}

	if services == 0 {
		return errors.New("nothing to serve: both the API server and metrics are disabled")
	}

	logger.Info("Server is running. Press Ctrl+C to stop.")

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return serveResult(err)
	case <-gctx.Done():
	}

	logger.Info("Shutdown signal received, initiating graceful shutdown")
	select {
	case err := <-done:
		return serveResult(err)
	case <-time.After(cfg.ShutdownTimeout):
		return fmt.Errorf("graceful shutdown did not finish within %s", cfg.ShutdownTimeout)
	}
}

func serveResult(err error) error {
	if err != nil {
		logger.Error("Server error", logger.Err(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// watchConfig swaps the viewer's dataset catalog whenever the config file
// changes.
func watchConfig(v *viewer.Viewer) {
	path := GetConfigFile()
	if path == "" && config.DefaultConfigExists() {
		path = config.GetDefaultConfigPath()
	}

	err := config.Watch(path, func(next *config.Config) {
		catalog, err := next.Catalog()
		if err != nil {
			logger.Warn("Ignoring reloaded dataset list", logger.Err(err))
			return
		}
		v.SetCatalog(catalog)
		logger.Info("Dataset catalog updated", "datasets", catalog.Len())
	})

	switch {
	case errors.Is(err, config.ErrNoConfigFile):
		logger.Debug("No configuration file to watch")
	case err != nil:
		logger.Warn("Configuration watch disabled", logger.Err(err))
	}
}
