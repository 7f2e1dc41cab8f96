package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging context. Non-empty fields are
// prepended to every *Ctx log call.
type LogContext struct {
	TraceID   string
	SpanID    string
	RequestID string
	ClientIP  string
	Dataset   string
	ShapeID   int
	Chunk     int
	StartTime time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for one request.
func NewLogContext(requestID, clientIP string) *LogContext {
	return &LogContext{
		RequestID: requestID,
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithDataset returns a copy with the dataset set.
func (lc *LogContext) WithDataset(dataset string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Dataset = dataset
	}
	return clone
}

// WithShape returns a copy with the shape id and its chunk set.
func (lc *LogContext) WithShape(id, chunk int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ShapeID = id
		clone.Chunk = chunk
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// Enrich returns ctx with a LogContext derived from the existing one (or a
// fresh one) and modified by fn.
func Enrich(ctx context.Context, fn func(*LogContext)) context.Context {
	lc := FromContext(ctx).Clone()
	if lc == nil {
		lc = &LogContext{StartTime: time.Now()}
	}
	fn(lc)
	return WithContext(ctx, lc)
}
