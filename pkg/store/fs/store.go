// Package fs provides a filesystem-backed object store that serves dataset
// files from a local directory laid out like the static web folder.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marmos91/shapeview/pkg/store"
)

// Config holds configuration for the filesystem object store.
type Config struct {
	// BasePath is the root directory. Object keys are paths relative to it.
	BasePath string
}

// Store is a filesystem-backed implementation of store.Store.
type Store struct {
	mu       sync.RWMutex
	basePath string
	closed   bool
}

// New creates a filesystem store rooted at cfg.BasePath, which must be an
// existing directory.
func New(cfg Config) (*Store, error) {
	if cfg.BasePath == "" {
		return nil, errors.New("base path is required")
	}

	abs, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path %s is not a directory", abs)
	}

	return &Store{basePath: abs}, nil
}

// objectPath maps a key to a path under the base directory, rejecting keys
// that escape it.
func (s *Store) objectPath(key string) (string, error) {
	p := filepath.Join(s.basePath, filepath.FromSlash(key))
	if p != s.basePath && !strings.HasPrefix(p, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes the store root", key)
	}
	return p, nil
}

// Open implements store.Store.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrObjectNotFound
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, store.ErrObjectNotFound
	}

	return f, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// HealthCheck verifies the base directory is still accessible.
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return store.ErrStoreClosed
	}

	info, err := os.Stat(s.basePath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("base path %s is not a directory", s.basePath)
	}
	return nil
}

// Type implements store.Store.
func (s *Store) Type() string {
	return "filesystem"
}

// BasePath returns the absolute root directory.
func (s *Store) BasePath() string {
	return s.basePath
}
