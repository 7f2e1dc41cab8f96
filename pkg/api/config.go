package api

import "time"

// APIConfig configures the HTTP API server.
type APIConfig struct {
	// Enabled controls whether the API server is started.
	// Default: true. A pointer distinguishes "not set" from "explicitly false".
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// Port is the HTTP listen port.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port" json:"port"`

	// ReadTimeout bounds reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`

	// WriteTimeout bounds writing the response. Shard scans run inside it.
	// Default: 60s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`

	// IdleTimeout bounds keep-alive idle time.
	// Default: 120s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" json:"idle_timeout"`

	// RequestTimeout cancels a request's context, aborting in-flight fetches.
	// Default: 55s
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout"`

	// MaxImageSize caps the width and height query parameters of image
	// endpoints.
	// Default: 4096
	MaxImageSize int `mapstructure:"max_image_size" validate:"omitempty,min=1,max=16384" yaml:"max_image_size" json:"max_image_size"`
}

// IsEnabled reports whether the API server should start.
func (c *APIConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// ApplyDefaults fills zero values.
func (c *APIConfig) ApplyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 55 * time.Second
	}
	if c.MaxImageSize == 0 {
		c.MaxImageSize = 4096
	}
}
