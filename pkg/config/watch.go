package config

import (
	"errors"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/marmos91/shapeview/internal/logger"
)

// ErrNoConfigFile is returned by Watch when there is no file to watch.
var ErrNoConfigFile = errors.New("no configuration file to watch")

// Watch reloads the configuration whenever the file changes and passes
// each cleanly decoded result to onChange. Invalid edits are logged and
// ignored, leaving the previous configuration in effect. The watcher runs
// for the rest of the process.
func Watch(configPath string, onChange func(*Config)) error {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return err
	}
	if !found {
		return ErrNoConfigFile
	}

	file := v.ConfigFileUsed()
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cfg, err := decode(v)
		if err != nil {
			logger.Warn("Ignoring invalid configuration change", "path", file, "error", err)
			return
		}

		logger.Info("Configuration reloaded", "path", file, "datasets", len(cfg.Datasets))
		onChange(cfg)
	})
	v.WatchConfig()

	logger.Debug("Watching configuration file", "path", file)
	return nil
}
