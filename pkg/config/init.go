package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const sampleHeader = `# shapeview configuration file
#
# Every key can be overridden with an environment variable:
#   SHAPEVIEW_<SECTION>_<KEY>, e.g. SHAPEVIEW_LOGGING_LEVEL=DEBUG
#
# storage.type selects where dataset folders live:
#   filesystem  local directory (storage.filesystem.path)
#   s3          S3 bucket (storage.s3.*)
#   http        web server (storage.http.base_url)
#   memory      empty in-memory store
#
# shapes_per_chunk must equal the value the shards were generated with.

`

// SampleConfig renders the default configuration as commented YAML.
func SampleConfig() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(sampleHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(GetDefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to render sample config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InitConfig writes a sample configuration to the default path and returns it.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a sample configuration to path. An existing file
// is only replaced when force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check config file: %w", err)
		}
	}

	data, err := SampleConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
