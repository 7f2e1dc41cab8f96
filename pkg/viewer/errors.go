package viewer

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below wrap them so callers can match
// with errors.Is and still recover details with errors.As.
var (
	// ErrUnknownDataset is returned for a dataset that is not configured.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrMetadataUnavailable is wrapped by *MetadataError.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrNoMetadata is returned by lookups on a session whose metadata
	// failed to load.
	ErrNoMetadata = errors.New("metadata not loaded")

	// ErrInvalidID is wrapped by *InvalidIDError.
	ErrInvalidID = errors.New("invalid shape id")

	// ErrShardUnavailable is wrapped by *ShardUnavailableError.
	ErrShardUnavailable = errors.New("shard unavailable")

	// ErrShapeNotFound is wrapped by *NotFoundError.
	ErrShapeNotFound = errors.New("shape not found")
)

// MetadataError reports a failed info.json load. Path is the dataset
// folder the status line asks the user to check.
type MetadataError struct {
	Dataset string
	Path    string
	Err     error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("load metadata for %s: %v", e.Dataset, e.Err)
}

func (e *MetadataError) Unwrap() []error {
	return []error{ErrMetadataUnavailable, e.Err}
}

// InvalidIDError reports an identifier that is not an integer in [1, Total].
type InvalidIDError struct {
	Input string
	Total int
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid shape id %q: must be an integer between 1 and %d", e.Input, e.Total)
}

func (e *InvalidIDError) Unwrap() error {
	return ErrInvalidID
}

// ShardUnavailableError reports a shard that could not be fetched or read.
type ShardUnavailableError struct {
	Dataset string
	Index   int
	Err     error
}

func (e *ShardUnavailableError) Error() string {
	return fmt.Sprintf("chunk %d of %s unavailable: %v", e.Index, e.Dataset, e.Err)
}

func (e *ShardUnavailableError) Unwrap() []error {
	return []error{ErrShardUnavailable, e.Err}
}

// NotFoundError reports a shard that was scanned fully without a match.
// It is a warning, not a failure of the system.
type NotFoundError struct {
	Dataset string
	ID      int
	Index   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("shape %d not found in chunk %d of %s", e.ID, e.Index, e.Dataset)
}

func (e *NotFoundError) Unwrap() error {
	return ErrShapeNotFound
}
