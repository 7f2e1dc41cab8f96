package viewer

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Severity classifies a status line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Status is the user-facing message for the outcome of an operation.
type Status struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func StatusLoadingMetadata() Status {
	return Status{SeverityInfo, "Loading metadata..."}
}

// StatusMetadataLoaded names the dataset folder, like the other dataset
// status lines.
func StatusMetadataLoaded(folder string, total int) Status {
	return Status{SeveritySuccess, printer.Sprintf(
		"Successfully loaded metadata for: %s. Enter an ID between 1 and %s.", folder, formatCount(total))}
}

func StatusMetadataFailed(folder string) Status {
	return Status{SeverityError, printer.Sprintf(
		"Error: Could not load data info for %s. Please check the folder and file paths.", folder)}
}

func StatusNoMetadata() Status {
	return Status{SeverityError, "Error: Cannot load. Metadata failed to load."}
}

func StatusInvalidID(total int) Status {
	return Status{SeverityError, printer.Sprintf(
		"Invalid ID. Please enter a number between 1 and %s.", formatCount(total))}
}

func StatusLoadingShape(id int) Status {
	return Status{SeverityInfo, printer.Sprintf("Loading Shape #%s...", formatCount(id))}
}

func StatusShapeDisplayed(id int, folder string) Status {
	return Status{SeveritySuccess, printer.Sprintf(
		"Successfully displayed Shape #%s from %s.", formatCount(id), folder)}
}

// StatusNotFound prints the id without separators, as the viewer always has.
func StatusNotFound(id, chunk int) Status {
	return Status{SeverityWarning, fmt.Sprintf("Warning: ID #%d not found in chunk %d.", id, chunk)}
}

func StatusShardUnavailable(chunk int) Status {
	return Status{SeverityError, fmt.Sprintf(
		"Data load failed: Could not find chunk file %d.", chunk)}
}

// TotalShapesLabel is the summary line shown next to the dataset selector.
func TotalShapesLabel(s *Session) string {
	if !s.Ready() {
		return "Total Unique Shapes: N/A"
	}
	return "Total Unique Shapes: " + formatCount(s.TotalShapes)
}

// StatusFor maps an error from this package to its status line. A nil
// error yields the zero Status.
func StatusFor(err error) Status {
	var (
		metaErr     *MetadataError
		invalidErr  *InvalidIDError
		shardErr    *ShardUnavailableError
		notFoundErr *NotFoundError
	)

	switch {
	case err == nil:
		return Status{}
	case errors.As(err, &metaErr):
		folder := metaErr.Path
		if folder == "" {
			folder = metaErr.Dataset
		}
		return StatusMetadataFailed(folder)
	case errors.Is(err, ErrNoMetadata):
		return StatusNoMetadata()
	case errors.As(err, &invalidErr):
		return StatusInvalidID(invalidErr.Total)
	case errors.As(err, &shardErr):
		return StatusShardUnavailable(shardErr.Index)
	case errors.As(err, &notFoundErr):
		return StatusNotFound(notFoundErr.ID, notFoundErr.Index)
	case errors.Is(err, ErrUnknownDataset):
		return Status{SeverityError, "Error: " + err.Error() + "."}
	default:
		return Status{SeverityError, "Error: " + err.Error()}
	}
}
