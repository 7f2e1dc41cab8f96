// Package httpstore fetches dataset objects from a static web server, the
// way a browser fetches them relative to the page.
package httpstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/shapeview/pkg/store"
)

// DefaultTimeout bounds a request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the HTTP object store.
type Config struct {
	// BaseURL is the URL objects are resolved against, e.g. "https://cdn.example.com/shapes/".
	BaseURL string

	// Timeout is the whole-request timeout including reading the body.
	Timeout time.Duration

	// HealthPath is fetched by HealthCheck. Any response below 500 counts as healthy.
	HealthPath string
}

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Key        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.Key, e.StatusCode, http.StatusText(e.StatusCode))
}

// Store is an HTTP implementation of store.Store.
type Store struct {
	base       *url.URL
	healthPath string
	httpClient *http.Client

	mu     sync.RWMutex
	closed bool
}

// New creates an HTTP store for cfg.BaseURL.
func New(cfg Config) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", base.Scheme)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Store{
		base:       base,
		healthPath: cfg.HealthPath,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// URL resolves key against the base URL.
func (s *Store) URL(key string) string {
	return s.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(key, "/")}).String()
}

// Open implements store.Store. The response body is returned unread.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, store.ErrStoreClosed
	}

	resp, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, store.ErrObjectNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_ = resp.Body.Close()
		return nil, &StatusError{Key: key, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

func (s *Store) get(ctx context.Context, key string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.httpClient.CloseIdleConnections()
	return nil
}

// HealthCheck fetches HealthPath (or the base URL) and fails on transport
// errors and 5xx responses.
func (s *Store) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return store.ErrStoreClosed
	}

	resp, err := s.get(ctx, s.healthPath)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &StatusError{Key: s.healthPath, StatusCode: resp.StatusCode}
	}
	return nil
}

// Type implements store.Store.
func (s *Store) Type() string {
	return "http"
}

var _ store.Store = (*Store)(nil)
