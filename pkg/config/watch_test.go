package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeConfig(t, "storage:\n  type: memory\ndatasets:\n  - key: first\n")

	var latest atomic.Pointer[Config]
	require.NoError(t, Watch(path, func(cfg *Config) { latest.Store(cfg) }))

	require.NoError(t, os.WriteFile(path, []byte("storage:\n  type: memory\ndatasets:\n  - key: first\n  - key: second\n"), 0644))

	require.Eventually(t, func() bool {
		cfg := latest.Load()
		return cfg != nil && len(cfg.Datasets) == 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "second", latest.Load().Datasets[1].Key)
}

func TestWatch_IgnoresInvalidChange(t *testing.T) {
	path := writeConfig(t, "storage:\n  type: memory\ndatasets:\n  - key: first\n")

	var calls atomic.Int32
	require.NoError(t, Watch(path, func(*Config) { calls.Add(1) }))

	require.NoError(t, os.WriteFile(path, []byte("storage:\n  type: memory\ndatasets: []\n"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load(), "a config without datasets must not be applied")
}

func TestWatch_NoFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {})
	assert.True(t, errors.Is(err, ErrNoConfigFile))
}
