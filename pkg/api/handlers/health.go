package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/shapeview/pkg/viewer"
)

// storeCheckTimeout bounds a single store health check.
const storeCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
//
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Are datasets configured and is the store reachable?
//   - Store health: Detailed health status of the dataset store
type HealthHandler struct {
	viewer    *viewer.Viewer
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
//
// The viewer may be nil, in which case readiness and store health checks
// report unhealthy.
func NewHealthHandler(v *viewer.Viewer) *HealthHandler {
	return &HealthHandler{viewer: v, startedAt: time.Now()}
}

// Liveness handles GET /health.
//
// Returns 200 OK as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt).Round(time.Second)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "shapeview",
		"started_at": h.startedAt.UTC().Format(time.RFC3339),
		"uptime":     uptime.String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready.
//
// Returns 503 Service Unavailable when no dataset is configured or the
// store fails its health check.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.viewer == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("viewer not initialized"))
		return
	}

	datasets := h.viewer.Catalog().Len()
	if datasets == 0 {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("no datasets configured"))
		return
	}

	health := h.checkStore(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("store unhealthy: "+health.Error))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"datasets":         datasets,
		"store":            health.Type,
		"shapes_per_chunk": h.viewer.ShapesPerChunk(),
	}))
}

// StoreHealth represents the health status of a single store.
type StoreHealth struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// StoresResponse represents the detailed store health response.
type StoresResponse struct {
	Stores []StoreHealth `json:"stores"`
}

// Stores handles GET /health/stores.
//
// Returns 200 OK when every store is healthy, 503 otherwise. The body
// lists each store with its check latency.
func (h *HealthHandler) Stores(w http.ResponseWriter, r *http.Request) {
	if h.viewer == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("viewer not initialized"))
		return
	}

	health := h.checkStore(r.Context())
	response := StoresResponse{Stores: []StoreHealth{health}}

	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, healthyResponse(response))
	} else {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(response))
	}
}

func (h *HealthHandler) checkStore(ctx context.Context) StoreHealth {
	st := h.viewer.Store()
	health := StoreHealth{
		Name: "datasets",
		Type: st.Type(),
	}

	ctx, cancel := context.WithTimeout(ctx, storeCheckTimeout)
	defer cancel()

	start := time.Now()
	err := st.HealthCheck(ctx)
	health.Latency = time.Since(start).String()

	if err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
	} else {
		health.Status = "healthy"
	}
	return health
}
