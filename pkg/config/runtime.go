package config

import (
	"context"
	"fmt"

	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/internal/telemetry"
	"github.com/marmos91/shapeview/pkg/metrics"
	"github.com/marmos91/shapeview/pkg/render"
	"github.com/marmos91/shapeview/pkg/shape"
	"github.com/marmos91/shapeview/pkg/viewer"
)

// ServiceName is reported to tracing and profiling backends.
const ServiceName = "shapeview"

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TracingConfig returns the OpenTelemetry settings for a build version.
func (c *Config) TracingConfig(version string) telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// ProfilingConfig returns the Pyroscope settings for a build version.
func (c *Config) ProfilingConfig(version string) telemetry.ProfilingConfig {
	return telemetry.ProfilingConfig{
		Enabled:        c.Telemetry.Profiling.Enabled,
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Endpoint:       c.Telemetry.Profiling.Endpoint,
		ProfileTypes:   c.Telemetry.Profiling.ProfileTypes,
	}
}

// Catalog builds the dataset catalog in configuration order.
func (c *Config) Catalog() (*shape.Catalog, error) {
	datasets := make([]shape.Dataset, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		datasets = append(datasets, shape.Dataset{Key: ds.Key, Name: ds.Name, Path: ds.Path})
	}
	return shape.NewCatalog(datasets...)
}

// RendererOptions converts the canvas section into render options.
func (c *Config) RendererOptions() (render.Options, error) {
	mode, err := render.ParseUnknownBlockMode(c.Canvas.UnknownBlocks)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Padding:       c.Canvas.Padding,
		LineWidth:     c.Canvas.LineWidth,
		UnknownBlocks: mode,
	}, nil
}

// MetricsResult holds the collectors created by InitializeMetrics. All
// fields are nil when metrics are disabled.
type MetricsResult struct {
	Server *metrics.Server
	Viewer *viewer.Metrics
	Store  *metrics.StoreMetrics
}

// InitializeMetrics creates the registry, the /metrics server and the
// component collectors when metrics are enabled. Call it before BuildViewer.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}
	}

	reg := metrics.InitRegistry()
	return &MetricsResult{
		Server: metrics.NewServer(cfg.Metrics.Port, reg),
		Viewer: viewer.NewMetrics(reg),
		Store:  metrics.NewStoreMetrics(reg),
	}
}

// BuildViewer creates the configured store and a Viewer over it. The
// caller owns the returned viewer's store and must close it.
func BuildViewer(ctx context.Context, cfg *Config, m *MetricsResult) (*viewer.Viewer, error) {
	if m == nil {
		m = &MetricsResult{}
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("invalid dataset catalog: %w", err)
	}

	opts, err := cfg.RendererOptions()
	if err != nil {
		return nil, err
	}

	st, err := CreateStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	v, err := viewer.New(viewer.Config{
		Store:          metrics.InstrumentStore(st, m.Store),
		Catalog:        catalog,
		ShapesPerChunk: cfg.ShapesPerChunk,
		MaxChunkSize:   cfg.MaxChunkSize.Int64(),
		MaxLineSize:    int(cfg.MaxLineSize.Int64()),
		Renderer:       render.NewRenderer(opts),
		Metrics:        m.Viewer,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return v, nil
}
