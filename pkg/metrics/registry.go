// Package metrics owns the process-wide Prometheus registry, the /metrics
// HTTP server and the object store instrumentation.
//
// Metrics are opt-in. Until InitRegistry is called IsEnabled reports false and
// constructors in this package return nil, which every caller treats as
// "no metrics" at zero cost.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the global registry with Go runtime and process
// collectors. Calling it again returns the existing registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry != nil {
		return registry
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry = reg
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the global registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// resetRegistry drops the global registry. Tests only.
func resetRegistry() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
}
