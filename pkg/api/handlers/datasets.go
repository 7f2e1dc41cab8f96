package handlers

import (
	"net/http"

	"github.com/marmos91/shapeview/pkg/viewer"
)

// DatasetHandler serves the dataset catalog and metadata.
type DatasetHandler struct {
	viewer *viewer.Viewer
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(v *viewer.Viewer) *DatasetHandler {
	return &DatasetHandler{viewer: v}
}

// DatasetResponse is one catalog entry.
type DatasetResponse struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Default bool   `json:"default,omitempty"`
}

// MetadataResponse is a loaded dataset session.
type MetadataResponse struct {
	Session   *viewer.Session `json:"session"`
	Label     string          `json:"label"`
	DefaultID int             `json:"default_id"`
	Status    viewer.Status   `json:"status"`
}

// List handles GET /api/v1/datasets.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets := h.viewer.Catalog().List()

	resp := make([]DatasetResponse, 0, len(datasets))
	for i, ds := range datasets {
		resp = append(resp, DatasetResponse{
			Key:     ds.Key,
			Name:    ds.Name,
			Path:    ds.Path,
			Default: i == 0,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/datasets/{dataset}/info.
//
// Metadata is loaded on every request; a failed load is reported as a
// problem response with the viewer status line.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.viewer.LoadMetadata(r.Context(), urlParam(r, "dataset"))
	if err != nil {
		writeViewerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MetadataResponse{
		Session:   sess,
		Label:     viewer.TotalShapesLabel(sess),
		DefaultID: sess.DefaultID(),
		Status:    viewer.StatusMetadataLoaded(sess.Dataset.Path, sess.TotalShapes),
	})
}
