package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/marmos91/shapeview/pkg/viewer"
)

// APIError is an RFC 7807 problem returned by the server.
type APIError struct {
	Type       string          `json:"type,omitempty"`
	Title      string          `json:"title"`
	StatusCode int             `json:"status"`
	Detail     string          `json:"detail,omitempty"`
	Instance   string          `json:"instance,omitempty"`
	Severity   viewer.Severity `json:"severity,omitempty"`
	Message    string          `json:"message,omitempty"`
	Chunk      int             `json:"chunk,omitempty"`
}

// newAPIError decodes a problem body. Bodies that are not problems are
// kept verbatim as the detail.
func newAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) != nil || apiErr.Title == "" {
		apiErr = APIError{
			Title:  http.StatusText(status),
			Detail: strings.TrimSpace(string(body)),
		}
	}
	apiErr.StatusCode = status
	return &apiErr
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	default:
		return e.Title
	}
}

// Status returns the viewer status line carried by the problem. Problems
// without one are reported as errors.
func (e *APIError) Status() viewer.Status {
	if e.Message == "" {
		return viewer.Status{Severity: viewer.SeverityError, Message: e.Error()}
	}
	sev := e.Severity
	if sev == "" {
		sev = viewer.SeverityError
	}
	return viewer.Status{Severity: sev, Message: e.Message}
}

// IsNotFound returns true for a 404 problem.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsShapeNotFound returns true when the shape is missing from its chunk,
// as opposed to an unknown dataset or route.
func (e *APIError) IsShapeNotFound() bool {
	return e.IsNotFound() && e.Severity == viewer.SeverityWarning
}

// IsValidationError returns true for a 400 problem.
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == http.StatusBadRequest
}
