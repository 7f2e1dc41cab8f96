package viewer

import (
	"time"

	"github.com/marmos91/shapeview/pkg/shape"
)

// Session is the result of one metadata load. It is never modified after
// creation; selecting a dataset again creates a new Session.
type Session struct {
	// ID identifies this load in logs and API responses.
	ID string `json:"id"`

	Dataset shape.Dataset `json:"dataset"`
	Info    shape.Info    `json:"info"`

	// TotalShapes bounds valid identifiers to [1, TotalShapes]. It is zero
	// when the metadata failed to load, which disables lookups.
	TotalShapes int `json:"total_shapes"`

	LoadedAt time.Time `json:"loaded_at"`

	// Err is the load failure, nil on success.
	Err error `json:"-"`
}

// Ready reports whether lookups are possible. It is nil-safe.
func (s *Session) Ready() bool {
	return s != nil && s.Err == nil && s.TotalShapes > 0
}

// DefaultID is the identifier preselected after a dataset is chosen.
func (s *Session) DefaultID() int {
	if !s.Ready() {
		return 0
	}
	return 1
}
