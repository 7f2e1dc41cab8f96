package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/pkg/config"
	"github.com/marmos91/shapeview/pkg/viewer"
)

// loadConfig loads the configuration. An explicit --config file must exist;
// without one the default path is tried and defaults fill the gaps.
func loadConfig() (*config.Config, error) {
	if path := GetConfigFile(); path != "" {
		return config.MustLoad(path)
	}
	return config.Load("")
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openViewer loads the configuration and builds a viewer without metrics,
// for one-shot commands. The returned close func releases the store.
func openViewer(ctx context.Context) (*viewer.Viewer, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, nil, nil, err
	}

	v, err := config.BuildViewer(ctx, cfg, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := v.Store().Close(); err != nil {
			logger.Warn("Failed to close store", logger.Err(err))
		}
	}
	return v, cfg, closeFn, nil
}

// getConfigSource describes where the configuration was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// exitCode maps a lookup failure to a process exit status: 2 for a shape
// that is missing from its shard, 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, viewer.ErrShapeNotFound) {
		return 2
	}
	return 1
}

// defaultDataset returns args[0] or the first configured dataset.
func defaultDataset(v *viewer.Viewer, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	ds, ok := v.Catalog().Default()
	if !ok {
		return "", errors.New("no datasets configured")
	}
	return ds.Key, nil
}
