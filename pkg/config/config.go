// Package config loads, defaults and validates the shapeview configuration
// and builds the runtime components it describes (object store, dataset
// catalog, renderer, metrics).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/shapeview/internal/bytesize"
	"github.com/marmos91/shapeview/pkg/api"
)

// EnvPrefix is the prefix of environment variable overrides,
// e.g. SHAPEVIEW_LOGGING_LEVEL=DEBUG.
const EnvPrefix = "SHAPEVIEW"

// Config is the shapeview configuration.
//
// Sources, highest precedence first:
//  1. CLI flags
//  2. Environment variables (SHAPEVIEW_*)
//  3. Configuration file (YAML or TOML)
//  4. Defaults
type Config struct {
	// Logging controls log output.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry" json:"telemetry"`

	// Metrics controls the Prometheus endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`

	// Server configures the HTTP API.
	Server api.APIConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Storage selects where dataset files are read from.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`

	// Datasets is the ordered dataset catalog. The first entry is the
	// default selection.
	Datasets []DatasetConfig `mapstructure:"datasets" validate:"required,min=1,dive" yaml:"datasets" json:"datasets"`

	// ShapesPerChunk is the shard size the datasets were generated with.
	// Default: 100000
	ShapesPerChunk int `mapstructure:"shapes_per_chunk" validate:"gt=0" yaml:"shapes_per_chunk" json:"shapes_per_chunk"`

	// MaxChunkSize bounds the bytes read from one shard.
	// Default: 512Mi
	MaxChunkSize bytesize.ByteSize `mapstructure:"max_chunk_size" yaml:"max_chunk_size" json:"max_chunk_size"`

	// MaxLineSize bounds one shard line.
	// Default: 16Mi
	MaxLineSize bytesize.ByteSize `mapstructure:"max_line_size" yaml:"max_line_size" json:"max_line_size"`

	// Canvas configures drawing.
	Canvas CanvasConfig `mapstructure:"canvas" yaml:"canvas" json:"canvas"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum level: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level" json:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format" json:"format"`

	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output" json:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled turns tracing on. Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Endpoint is the OTLP gRPC collector (host:port).
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `mapstructure:"insecure" yaml:"insecure" json:"insecure"`

	// SampleRate is the fraction of traces kept, 0.0 to 1.0. Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate" json:"sample_rate"`

	// Profiling configures Pyroscope continuous profiling.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling" json:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled turns profiling on. Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Endpoint is the Pyroscope server URL.
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`

	// ProfileTypes lists the profiles to collect.
	// Default: cpu, alloc_space, inuse_space, goroutines
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types" json:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false nothing is collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Port is the metrics listen port. Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port" json:"port"`
}

// Storage backend types.
const (
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
	StorageHTTP       = "http"
	StorageMemory     = "memory"
)

// StorageConfig selects and configures the object store holding the
// dataset folders. Only the section matching Type is used.
type StorageConfig struct {
	// Type is filesystem, s3, http or memory. Default: filesystem
	Type string `mapstructure:"type" validate:"required,oneof=filesystem s3 http memory" yaml:"type" json:"type"`

	Filesystem FilesystemStorageConfig `mapstructure:"filesystem" yaml:"filesystem,omitempty" json:"filesystem"`
	S3         S3StorageConfig         `mapstructure:"s3" yaml:"s3,omitempty" json:"s3"`
	HTTP       HTTPStorageConfig       `mapstructure:"http" yaml:"http,omitempty" json:"http"`
}

// FilesystemStorageConfig reads datasets from a local directory laid out
// like the static web folder (<root>/<dataset>/info.json, .../chunks/).
type FilesystemStorageConfig struct {
	// Path is the directory containing the dataset folders. Default: "."
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// S3StorageConfig reads datasets from an S3 bucket.
type S3StorageConfig struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket" json:"bucket"`
	Region          string `mapstructure:"region" yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	KeyPrefix       string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty" json:"key_prefix,omitempty"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
}

// HTTPStorageConfig reads datasets from a web server.
type HTTPStorageConfig struct {
	// BaseURL is the URL the dataset folders are resolved against.
	BaseURL string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`

	// Timeout bounds one fetch including the body. Default: 30s
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// HealthPath is requested by health checks. Default: the base URL itself.
	HealthPath string `mapstructure:"health_path" yaml:"health_path,omitempty" json:"health_path,omitempty"`
}

// DatasetConfig is one catalog entry.
type DatasetConfig struct {
	// Key identifies the dataset in URLs and commands.
	Key string `mapstructure:"key" validate:"required" yaml:"key" json:"key"`

	// Name is the display name. Default: Key
	Name string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`

	// Path is the dataset folder inside the store. Default: Key
	Path string `mapstructure:"path" yaml:"path,omitempty" json:"path,omitempty"`
}

// CanvasConfig configures the drawing surface.
type CanvasConfig struct {
	// Width and Height are the surface size in pixels. Default: 500x500
	Width  int `mapstructure:"width" validate:"gt=0,lte=8192" yaml:"width" json:"width"`
	Height int `mapstructure:"height" validate:"gt=0,lte=8192" yaml:"height" json:"height"`

	// Padding is subtracted from each dimension before scaling. Unset
	// means 20; an explicit 0 disables it. Width and Height must exceed it.
	Padding *float64 `mapstructure:"padding" validate:"omitempty,gte=0" yaml:"padding" json:"padding,omitempty"`

	// LineWidth is the outline width in pixels. Default: 1
	LineWidth float64 `mapstructure:"line_width" validate:"gt=0" yaml:"line_width" json:"line_width"`

	// UnknownBlocks is fill, outline or skip. Default: fill
	UnknownBlocks string `mapstructure:"unknown_blocks" validate:"oneof=fill outline skip" yaml:"unknown_blocks" json:"unknown_blocks"`
}

// Load reads configuration from file and environment, applies defaults and
// validates the result. An empty configPath searches the default location;
// when no file is found defaults are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	return decode(v)
}

// decode unmarshals v into a defaulted, validated Config.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load with a user-facing error when the config file is missing.
func MustLoad(configPath string) (*Config, error) {
	path := configPath
	if path == "" {
		path = GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Create one with:\n"+
			"  shapeview config init --config %s", path, path)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// S3 credentials may be present.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reports whether a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook accepts "64Mi"-style strings and plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			if v < 0 {
				return nil, fmt.Errorf("negative byte size %d", v)
			}
			return bytesize.ByteSize(v), nil
		case int64:
			if v < 0 {
				return nil, fmt.Errorf("negative byte size %d", v)
			}
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			if v < 0 {
				return nil, fmt.Errorf("negative byte size %v", v)
			}
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook accepts "30s"-style strings; raw integers are nanoseconds.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/shapeview, ~/.config/shapeview or ".".
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shapeview")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "shapeview")
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() string {
	return getConfigDir()
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default path.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
