// Package store provides the read-only object store interface that dataset
// files (info.json and shard chunks) are fetched through.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Common errors returned by Store implementations.
var (
	// ErrObjectNotFound is returned when a requested object doesn't exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrStoreClosed is returned when operations are attempted on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrObjectTooLarge is returned by ReadAll when an object exceeds the limit.
	ErrObjectTooLarge = errors.New("object too large")
)

// Store is a read-only key/object store.
//
// Keys use forward slashes as separators, e.g. "web_data/chunks/chunk_1.json".
type Store interface {
	// Open returns a stream over the object's content. Callers must close it.
	// Returns ErrObjectNotFound if the object doesn't exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Close releases any resources held by the store.
	Close() error

	// HealthCheck verifies the store is accessible and operational.
	HealthCheck(ctx context.Context) error

	// Type returns the backend name (filesystem, s3, http, memory).
	Type() string
}

// ReadAll reads a whole object, failing with ErrObjectTooLarge when it is
// bigger than limit bytes. A limit <= 0 disables the check.
func ReadAll(ctx context.Context, s Store, key string, limit int64) ([]byte, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrObjectTooLarge, key, limit)
	}
	return data, nil
}
