package logger

import "log/slog"

// Standard field keys for structured logging. Use them consistently so
// log lines can be queried across the CLI and the server.
const (
	// Tracing
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"

	// Datasets and shapes
	KeyDataset     = "dataset"
	KeySessionID   = "session_id"
	KeyShapeID     = "shape_id"
	KeyChunk       = "chunk"
	KeyTotalShapes = "total_shapes"
	KeyBlocks      = "blocks"
	KeyLine        = "line"
	KeyLines       = "lines"
	KeyMalformed   = "malformed"
	KeyOutcome     = "outcome"

	// Storage
	KeyStoreType = "store_type"
	KeyKey       = "key"
	KeyBucket    = "bucket"
	KeyPath      = "path"
	KeyURL       = "url"

	// HTTP
	KeyMethod = "method"
	KeyRoute  = "route"
	KeyStatus = "status"
	KeyBytes  = "bytes"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyOperation  = "operation"
	KeyFormat     = "format"
)

// TraceID returns a slog.Attr for an OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for an OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RequestID returns a slog.Attr for an HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Dataset returns a slog.Attr for a dataset key
func Dataset(key string) slog.Attr {
	return slog.String(KeyDataset, key)
}

// SessionID returns a slog.Attr for a metadata session ID
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// ShapeID returns a slog.Attr for a shape identifier
func ShapeID(id int) slog.Attr {
	return slog.Int(KeyShapeID, id)
}

// Chunk returns a slog.Attr for a shard index
func Chunk(index int) slog.Attr {
	return slog.Int(KeyChunk, index)
}

// TotalShapes returns a slog.Attr for a dataset's shape count
func TotalShapes(n int) slog.Attr {
	return slog.Int(KeyTotalShapes, n)
}

// Blocks returns a slog.Attr for the number of blocks in a shape
func Blocks(n int) slog.Attr {
	return slog.Int(KeyBlocks, n)
}

// Line returns a slog.Attr for a 1-based line number in a shard
func Line(n int) slog.Attr {
	return slog.Int(KeyLine, n)
}

// Outcome returns a slog.Attr for an operation outcome label
func Outcome(o string) slog.Attr {
	return slog.String(KeyOutcome, o)
}

// StoreType returns a slog.Attr for a store backend
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// Key returns a slog.Attr for an object key
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// Bucket returns a slog.Attr for an S3 bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Path returns a slog.Attr for a filesystem path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// URL returns a slog.Attr for a URL
func URL(u string) slog.Attr {
	return slog.String(KeyURL, u)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Operation returns a slog.Attr for an operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}
