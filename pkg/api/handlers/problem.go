// Package handlers provides HTTP handlers for the shapeview API.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/pkg/viewer"
)

// Problem represents an RFC 7807 "problem details" response, extended with
// the viewer status line shown to users.
// https://tools.ietf.org/html/rfc7807
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type,omitempty"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// Severity and Message carry the viewer status for this failure.
	Severity viewer.Severity `json:"severity,omitempty"`
	Message  string          `json:"message,omitempty"`

	// Chunk is the shard involved, when there is one.
	Chunk int `json:"chunk,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, &Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func writeProblem(w http.ResponseWriter, p *Problem) {
	writeJSONAs(w, p.Status, ContentTypeProblemJSON, p)
}

// BadRequest writes a 400 Bad Request problem response.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, "Bad Request", detail)
}

// NotFound writes a 404 Not Found problem response.
func NotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusNotFound, "Not Found", detail)
}

// InternalServerError writes a 500 Internal Server Error problem response.
func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// StatusCode maps an error returned by the viewer to an HTTP status.
//
//	unknown dataset       404
//	invalid identifier    400
//	metadata not loaded   503
//	metadata unavailable  502
//	shard unavailable     502
//	shape not found       404
//	deadline exceeded     504
func StatusCode(err error) int {
	switch {
	case errors.Is(err, viewer.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, viewer.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, viewer.ErrNoMetadata):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, viewer.ErrMetadataUnavailable), errors.Is(err, viewer.ErrShardUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, viewer.ErrShapeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeViewerError writes err as a problem response carrying the viewer
// status line.
func writeViewerError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	status := viewer.StatusFor(err)

	p := &Problem{
		Type:     "about:blank",
		Title:    http.StatusText(code),
		Status:   code,
		Detail:   err.Error(),
		Instance: r.URL.Path,
		Severity: status.Severity,
		Message:  status.Message,
	}

	var (
		shardErr    *viewer.ShardUnavailableError
		notFoundErr *viewer.NotFoundError
	)
	switch {
	case errors.As(err, &shardErr):
		p.Chunk = shardErr.Index
	case errors.As(err, &notFoundErr):
		p.Chunk = notFoundErr.Index
	}

	if code >= http.StatusInternalServerError {
		logger.WarnCtx(r.Context(), "API request failed", "status", code, logger.Err(err))
	}
	writeProblem(w, p)
}
