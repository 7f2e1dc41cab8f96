package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid log level", func(c *Config) { c.Logging.Level = "LOUD" }, "oneof"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "Logging.Format"},
		{"api port out of range", func(c *Config) { c.Server.Port = 70000 }, "max"},
		{"negative shard size", func(c *Config) { c.ShapesPerChunk = -1 }, "ShapesPerChunk"},
		{"no datasets", func(c *Config) { c.Datasets = nil }, "Datasets"},
		{"dataset without key", func(c *Config) { c.Datasets = []DatasetConfig{{Path: "x"}} }, "Key"},
		{"duplicate dataset key", func(c *Config) {
			c.Datasets = []DatasetConfig{{Key: "a", Path: "a"}, {Key: "a", Path: "b"}}
		}, "duplicate"},
		{"dataset key with slash", func(c *Config) { c.Datasets[0].Key = "a/b" }, "must not contain"},
		{"absolute dataset path", func(c *Config) { c.Datasets[0].Path = "/etc" }, "relative"},
		{"escaping dataset path", func(c *Config) { c.Datasets[0].Path = "../secret" }, "relative"},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "ftp" }, "Storage.Type"},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = StorageS3 }, "bucket"},
		{"http without url", func(c *Config) { c.Storage.Type = StorageHTTP }, "base_url"},
		{"http relative url", func(c *Config) {
			c.Storage.Type = StorageHTTP
			c.Storage.HTTP.BaseURL = "/data"
		}, "absolute"},
		{"zero canvas", func(c *Config) { c.Canvas.Width = -5 }, "Canvas.Width"},
		{"canvas within padding", func(c *Config) { c.Canvas.Width = 20 }, "no room inside padding"},
		{"negative padding", func(c *Config) { c.Canvas.Padding = float64Ptr(-1) }, "Canvas.Padding"},
		{"unknown block mode", func(c *Config) { c.Canvas.UnknownBlocks = "glow" }, "UnknownBlocks"},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "lte"},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "telemetry.endpoint"},
		{"unknown profile type", func(c *Config) { c.Telemetry.Profiling.ProfileTypes = []string{"cpu", "gpu"} }, "gpu"},
		{"metrics port clash", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Port = c.Server.Port
		}, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_HTTPStorage(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Type = StorageHTTP
	cfg.Storage.HTTP.BaseURL = "https://example.com/shapes/"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected http storage config to be valid, got: %v", err)
	}
}

func TestValidate_MetricsOnSeparatePort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected metrics config to be valid, got: %v", err)
	}
}

func TestValidate_ZeroPadding(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Canvas.Padding = float64Ptr(0)
	cfg.Canvas.Width, cfg.Canvas.Height = 1, 1

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected zero padding to be valid, got: %v", err)
	}
}

func float64Ptr(v float64) *float64 { return &v }
