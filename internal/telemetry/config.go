package telemetry

import (
	"errors"
	"fmt"
)

// Config holds OpenTelemetry tracing configuration.
type Config struct {
	// Enabled turns tracing on. When false a no-op tracer is installed.
	Enabled bool

	// ServiceName is reported to the trace backend.
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	Endpoint string

	// Insecure disables TLS towards the collector.
	Insecure bool

	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64
}

// DefaultConfig returns tracing disabled with local collector defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "shapeview",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// Validate checks an enabled configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("telemetry endpoint is required when tracing is enabled")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry sample rate %v out of range [0, 1]", c.SampleRate)
	}
	return nil
}
