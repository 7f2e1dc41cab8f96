package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/marmos91/shapeview/pkg/bufpool"
	"github.com/marmos91/shapeview/pkg/render"
	"github.com/marmos91/shapeview/pkg/viewer"
)

// Canvas sets the image size used when a request does not ask for one.
type Canvas struct {
	Width  int
	Height int

	// MaxSize caps the width and height query parameters.
	MaxSize int
}

// StatusHeader carries the viewer status message on image responses.
const StatusHeader = "X-Shapeview-Status"

// ShapeHandler looks up and renders shapes.
type ShapeHandler struct {
	viewer *viewer.Viewer
	canvas Canvas
}

// NewShapeHandler creates a shape handler.
func NewShapeHandler(v *viewer.Viewer, canvas Canvas) *ShapeHandler {
	return &ShapeHandler{viewer: v, canvas: canvas}
}

// ShapeResponse is a located and laid-out shape.
type ShapeResponse struct {
	*viewer.Result
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Get handles GET /api/v1/datasets/{dataset}/shapes/{id}.
//
// The response carries the record, the chunk it came from and the polygons
// that would be drawn on a canvas of the requested size.
func (h *ShapeHandler) Get(w http.ResponseWriter, r *http.Request) {
	width, height, ok := h.size(w, r)
	if !ok {
		return
	}

	res, ok := h.show(w, r, render.NewRecorder(width, height))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ShapeResponse{Result: res, Width: width, Height: height})
}

// PNG handles GET /api/v1/datasets/{dataset}/shapes/{id}/image.png.
func (h *ShapeHandler) PNG(w http.ResponseWriter, r *http.Request) {
	width, height, ok := h.size(w, r)
	if !ok {
		return
	}

	raster := render.NewRaster(width, height)
	res, ok := h.show(w, r, raster)
	if !ok {
		return
	}

	buf := bufpool.GetBuffer()
	defer bufpool.PutBuffer(buf)
	if err := raster.EncodePNG(buf); err != nil {
		InternalServerError(w, "failed to encode image")
		return
	}
	w.Header().Set(StatusHeader, res.Status.Message)
	writeBody(w, "image/png", buf.Bytes())
}

// SVG handles GET /api/v1/datasets/{dataset}/shapes/{id}/image.svg.
func (h *ShapeHandler) SVG(w http.ResponseWriter, r *http.Request) {
	width, height, ok := h.size(w, r)
	if !ok {
		return
	}

	svg := render.NewSVG(width, height)
	res, ok := h.show(w, r, svg)
	if !ok {
		return
	}

	buf := bufpool.GetBuffer()
	defer bufpool.PutBuffer(buf)
	if _, err := svg.WriteTo(buf); err != nil {
		InternalServerError(w, "failed to encode image")
		return
	}
	w.Header().Set(StatusHeader, res.Status.Message)
	writeBody(w, "image/svg+xml", buf.Bytes())
}

// show loads the dataset's metadata and draws the requested shape onto
// surface. On failure it writes the problem response and returns false.
func (h *ShapeHandler) show(w http.ResponseWriter, r *http.Request, surface render.Surface) (*viewer.Result, bool) {
	ctx := r.Context()

	sess, err := h.viewer.LoadMetadata(ctx, urlParam(r, "dataset"))
	if err != nil {
		writeViewerError(w, r, err)
		return nil, false
	}

	res, err := h.viewer.Show(ctx, sess, urlParam(r, "id"), surface)
	if err != nil {
		writeViewerError(w, r, err)
		return nil, false
	}
	return res, true
}

// size reads the width and height query parameters.
func (h *ShapeHandler) size(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	q := r.URL.Query()
	minSize := h.viewer.Renderer().MinSize()

	width, err := parseDimension(q.Get("width"), h.canvas.Width, minSize, h.canvas.MaxSize)
	if err != nil {
		BadRequest(w, "width: "+err.Error())
		return 0, 0, false
	}
	height, err := parseDimension(q.Get("height"), h.canvas.Height, minSize, h.canvas.MaxSize)
	if err != nil {
		BadRequest(w, "height: "+err.Error())
		return 0, 0, false
	}
	return width, height, true
}

// parseDimension parses a pixel size in [lower, limit]. An empty value
// yields def. A limit <= 0 disables the upper bound.
func parseDimension(raw string, def, lower, limit int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	if n < lower {
		return 0, fmt.Errorf("must be at least %d to fit the padding, got %d", lower, n)
	}
	if limit > 0 && n > limit {
		return 0, fmt.Errorf("must be between %d and %d", lower, limit)
	}
	return n, nil
}
