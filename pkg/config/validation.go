package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/shapeview/internal/telemetry"
	"github.com/marmos91/shapeview/pkg/render"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the cross-field rules tags cannot express.
// Defaults must be applied first.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if err := validateDatasets(cfg.Datasets); err != nil {
		return err
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := validateCanvas(&cfg.Canvas); err != nil {
		return err
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}
	for _, name := range cfg.Telemetry.Profiling.ProfileTypes {
		if !telemetry.ValidProfileType(name) {
			return fmt.Errorf("telemetry.profiling.profile_types: unknown profile type %q", name)
		}
	}
	if cfg.Metrics.Enabled && cfg.Server.IsEnabled() && cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics.port and server.port must differ (both %d)", cfg.Metrics.Port)
	}
	return nil
}

// formatValidationErrors renders "field: tag" pairs using the config key path.
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func validateDatasets(datasets []DatasetConfig) error {
	seen := make(map[string]struct{}, len(datasets))
	for _, ds := range datasets {
		if _, dup := seen[ds.Key]; dup {
			return fmt.Errorf("datasets: duplicate key %q", ds.Key)
		}
		seen[ds.Key] = struct{}{}

		if strings.Contains(ds.Key, "/") {
			return fmt.Errorf("datasets: key %q must not contain '/'", ds.Key)
		}
		if strings.HasPrefix(ds.Path, "/") || strings.Contains(ds.Path, "..") {
			return fmt.Errorf("datasets: path %q of %q must be relative to the store root", ds.Path, ds.Key)
		}
	}
	return nil
}

func validateStorage(cfg *StorageConfig) error {
	switch cfg.Type {
	case StorageS3:
		if cfg.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for s3 storage")
		}
	case StorageHTTP:
		if cfg.HTTP.BaseURL == "" {
			return errors.New("storage.http.base_url is required for http storage")
		}
		u, err := url.Parse(cfg.HTTP.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("storage.http.base_url %q must be an absolute http(s) URL", cfg.HTTP.BaseURL)
		}
	case StorageFilesystem:
		if cfg.Filesystem.Path == "" {
			return errors.New("storage.filesystem.path is required for filesystem storage")
		}
	}
	return nil
}

// validateCanvas rejects a surface that leaves no room inside the padding.
func validateCanvas(cfg *CanvasConfig) error {
	if cfg.Padding == nil {
		return nil
	}
	minSize := render.MinSurfaceSize(*cfg.Padding)
	if cfg.Width < minSize || cfg.Height < minSize {
		return fmt.Errorf("canvas: %dx%d leaves no room inside padding %v (minimum %d)",
			cfg.Width, cfg.Height, *cfg.Padding, minSize)
	}
	return nil
}
