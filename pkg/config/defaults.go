package config

import (
	"strings"
	"time"

	"github.com/marmos91/shapeview/internal/bytesize"
	"github.com/marmos91/shapeview/internal/telemetry"
	"github.com/marmos91/shapeview/pkg/metrics"
	"github.com/marmos91/shapeview/pkg/render"
	"github.com/marmos91/shapeview/pkg/shard"
)

// Default values not owned by another package.
const (
	DefaultCanvasSize      = 500
	DefaultMaxChunkSize    = 512 * bytesize.MiB
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// ApplyDefaults fills zero-valued fields. Explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	cfg.Server.ApplyDefaults()
	applyStorageDefaults(&cfg.Storage)
	applyDatasetDefaults(cfg.Datasets)
	applyCanvasDefaults(&cfg.Canvas)

	if cfg.ShapesPerChunk == 0 {
		cfg.ShapesPerChunk = shard.DefaultShapesPerChunk
	}
	if cfg.MaxChunkSize == 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.MaxLineSize == 0 {
		cfg.MaxLineSize = bytesize.ByteSize(shard.DefaultMaxLineSize)
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = append([]string(nil), telemetry.DefaultProfileTypes...)
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = metrics.DefaultPort
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Type == "" {
		cfg.Type = StorageFilesystem
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.Type == StorageFilesystem && cfg.Filesystem.Path == "" {
		cfg.Filesystem.Path = "."
	}
	if cfg.Type == StorageHTTP && cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = DefaultHTTPTimeout
	}
}

func applyDatasetDefaults(datasets []DatasetConfig) {
	for i := range datasets {
		if datasets[i].Name == "" {
			datasets[i].Name = datasets[i].Key
		}
		if datasets[i].Path == "" {
			datasets[i].Path = datasets[i].Key
		}
	}
}

func applyCanvasDefaults(cfg *CanvasConfig) {
	if cfg.Width == 0 {
		cfg.Width = DefaultCanvasSize
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultCanvasSize
	}
	if cfg.Padding == nil {
		padding := float64(render.DefaultPadding)
		cfg.Padding = &padding
	}
	if cfg.LineWidth == 0 {
		cfg.LineWidth = 1
	}
	if cfg.UnknownBlocks == "" {
		cfg.UnknownBlocks = string(render.UnknownFill)
	}
	cfg.UnknownBlocks = strings.ToLower(cfg.UnknownBlocks)
}

// GetDefaultConfig returns a complete configuration serving the two
// datasets of the reference web folder from the current directory.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Datasets: []DatasetConfig{
			{Key: "web_data", Name: "Set 1 (Tangrams)", Path: "web_data"},
			{Key: "web_data_set2", Name: "Set 2 (Sei Shonagon chie-no-ita)", Path: "web_data_set2"},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
