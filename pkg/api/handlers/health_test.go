package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/shapeview/pkg/shape"
	"github.com/marmos91/shapeview/pkg/store/memory"
	"github.com/marmos91/shapeview/pkg/viewer"
)

func newTestViewer(t *testing.T, datasets ...shape.Dataset) (*viewer.Viewer, *memory.Store) {
	t.Helper()

	st := memory.New()
	catalog, err := shape.NewCatalog(datasets...)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	v, err := viewer.New(viewer.Config{Store: st, Catalog: catalog, ShapesPerChunk: 2})
	if err != nil {
		t.Fatalf("Failed to create viewer: %v", err)
	}
	return v, st
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := decodeResponse(t, w)
	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}
	if data["service"] != "shapeview" {
		t.Errorf("Expected service 'shapeview', got '%v'", data["service"])
	}
}

func TestReadiness_NoViewer_Returns503(t *testing.T) {
	handler := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	resp := decodeResponse(t, w)
	if resp.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", resp.Status)
	}
	if resp.Error != "viewer not initialized" {
		t.Errorf("Expected error 'viewer not initialized', got '%s'", resp.Error)
	}
}

func TestReadiness_NoDatasets_Returns503(t *testing.T) {
	v, _ := newTestViewer(t)
	handler := NewHealthHandler(v)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	if resp := decodeResponse(t, w); resp.Error != "no datasets configured" {
		t.Errorf("Expected error 'no datasets configured', got '%s'", resp.Error)
	}
}

func TestReadiness_Ready_Returns200(t *testing.T) {
	v, _ := newTestViewer(t, shape.Dataset{Key: "web_data"}, shape.Dataset{Key: "web_data_set2"})
	handler := NewHealthHandler(v)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}
	if data["datasets"] != float64(2) {
		t.Errorf("Expected 2 datasets, got %v", data["datasets"])
	}
	if data["store"] != "memory" {
		t.Errorf("Expected store 'memory', got %v", data["store"])
	}
}

func TestReadiness_ClosedStore_Returns503(t *testing.T) {
	v, st := newTestViewer(t, shape.Dataset{Key: "web_data"})
	_ = st.Close()

	handler := NewHealthHandler(v)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestStores_ReportsStoreHealth(t *testing.T) {
	v, st := newTestViewer(t, shape.Dataset{Key: "web_data"})
	handler := NewHealthHandler(v)

	req := httptest.NewRequest("GET", "/health/stores", nil)
	w := httptest.NewRecorder()
	handler.Stores(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var body struct {
		Status string         `json:"status"`
		Data   StoresResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Data.Stores) != 1 {
		t.Fatalf("Expected 1 store, got %d", len(body.Data.Stores))
	}
	if s := body.Data.Stores[0]; s.Type != "memory" || s.Status != "healthy" || s.Latency == "" {
		t.Errorf("Unexpected store health: %+v", s)
	}

	_ = st.Close()
	w = httptest.NewRecorder()
	handler.Stores(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Status != "unhealthy" || body.Data.Stores[0].Error == "" {
		t.Errorf("Expected unhealthy store with error, got %+v", body)
	}
}
