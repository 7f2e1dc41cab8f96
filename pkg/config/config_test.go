package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/shapeview/internal/bytesize"
)

// yamlSafePath keeps Windows backslashes out of double-quoted YAML strings.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_MinimalConfig(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, `
logging:
  level: debug

storage:
  type: filesystem
  filesystem:
    path: "`+yamlSafePath(dataDir)+`"

datasets:
  - key: web_data
    name: "Set 1 (Tangrams)"
  - key: set2
    path: web_data_set2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.ShapesPerChunk != 100000 {
		t.Errorf("Expected default shapes_per_chunk 100000, got %d", cfg.ShapesPerChunk)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Canvas.Width != 500 || cfg.Canvas.Height != 500 || cfg.Canvas.Padding == nil || *cfg.Canvas.Padding != 20 {
		t.Errorf("Unexpected canvas defaults: %+v", cfg.Canvas)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default server port 8080, got %d", cfg.Server.Port)
	}

	if len(cfg.Datasets) != 2 {
		t.Fatalf("Expected 2 datasets, got %d", len(cfg.Datasets))
	}
	if ds := cfg.Datasets[0]; ds.Path != "web_data" || ds.Name != "Set 1 (Tangrams)" {
		t.Errorf("Unexpected first dataset: %+v", ds)
	}
	if ds := cfg.Datasets[1]; ds.Name != "set2" || ds.Path != "web_data_set2" {
		t.Errorf("Unexpected second dataset: %+v", ds)
	}
}

func TestLoad_SizesAndDurations(t *testing.T) {
	path := writeConfig(t, `
storage:
  type: memory
datasets:
  - key: a
max_chunk_size: 64Mi
max_line_size: 1048576
shutdown_timeout: 5s
server:
  read_timeout: 2s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.MaxChunkSize != 64*bytesize.MiB {
		t.Errorf("Expected max_chunk_size 64Mi, got %v", cfg.MaxChunkSize)
	}
	if cfg.MaxLineSize != bytesize.MiB {
		t.Errorf("Expected max_line_size 1Mi, got %v", cfg.MaxLineSize)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown_timeout 5s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Server.ReadTimeout != 2*time.Second {
		t.Errorf("Expected read_timeout 2s, got %v", cfg.Server.ReadTimeout)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected defaults when no config file exists, got: %v", err)
	}
	if len(cfg.Datasets) != 2 || cfg.Datasets[0].Key != "web_data" {
		t.Errorf("Expected default datasets, got %+v", cfg.Datasets)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got: %v", err)
	}
	if cfg.Storage.Type != StorageFilesystem {
		t.Errorf("Expected default storage type, got %q", cfg.Storage.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
storage:
  type: memory
datasets:
  - key: a
canvas:
  unknown_blocks: sparkle
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected validation error for unknown_blocks")
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
shapes_per_chunk = 50

[storage]
type = "memory"

[[datasets]]
key = "toml_set"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}
	if cfg.ShapesPerChunk != 50 {
		t.Errorf("Expected shapes_per_chunk 50, got %d", cfg.ShapesPerChunk)
	}
	if len(cfg.Datasets) != 1 || cfg.Datasets[0].Key != "toml_set" {
		t.Errorf("Unexpected datasets: %+v", cfg.Datasets)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("SHAPEVIEW_LOGGING_LEVEL", "ERROR")
	t.Setenv("SHAPEVIEW_SHAPES_PER_CHUNK", "250")

	path := writeConfig(t, `
logging:
  level: INFO
storage:
  type: memory
datasets:
  - key: a
shapes_per_chunk: 100000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.ShapesPerChunk != 250 {
		t.Errorf("Expected shapes_per_chunk 250 from env var, got %d", cfg.ShapesPerChunk)
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := MustLoad(path)
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Storage.Type = StorageMemory
	cfg.MaxChunkSize = 8 * bytesize.MiB
	cfg.Canvas.UnknownBlocks = "skip"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.MaxChunkSize != 8*bytesize.MiB {
		t.Errorf("Expected max_chunk_size 8Mi, got %v", loaded.MaxChunkSize)
	}
	if loaded.Canvas.UnknownBlocks != "skip" {
		t.Errorf("Expected unknown_blocks skip, got %q", loaded.Canvas.UnknownBlocks)
	}
	if len(loaded.Datasets) != len(cfg.Datasets) {
		t.Errorf("Expected %d datasets, got %d", len(cfg.Datasets), len(loaded.Datasets))
	}
}

func TestGetConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if got := GetConfigDir(); got != filepath.Join(xdg, "shapeview") {
		t.Errorf("Expected %s, got %s", filepath.Join(xdg, "shapeview"), got)
	}
	if got := GetDefaultConfigPath(); got != filepath.Join(xdg, "shapeview", "config.yaml") {
		t.Errorf("Unexpected default config path %s", got)
	}
	if DefaultConfigExists() {
		t.Error("Expected no default config in a fresh directory")
	}
}
