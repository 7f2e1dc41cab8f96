// Package memory provides an in-memory object store.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/shapeview/pkg/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
	closed  bool
	opens   int
}

// New creates an empty memory store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
}

// PutString stores a string object.
func (s *Store) PutString(key, data string) {
	s.Put(key, []byte(data))
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

// Open implements store.Store.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	s.opens++

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, ok := s.objects[key]
	if !ok {
		return nil, store.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Opens returns how many times Open was called, found or not.
func (s *Store) Opens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opens
}

// Keys lists stored keys with the given prefix in sorted order.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// HealthCheck implements store.Store.
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrStoreClosed
	}
	return nil
}

// Type implements store.Store.
func (s *Store) Type() string {
	return "memory"
}
