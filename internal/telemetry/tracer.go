package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys.
const (
	AttrDataset     = "shapeview.dataset"
	AttrSessionID   = "shapeview.session_id"
	AttrShapeID     = "shapeview.shape_id"
	AttrChunk       = "shapeview.chunk"
	AttrTotalShapes = "shapeview.total_shapes"
	AttrBlocks      = "shapeview.blocks"
	AttrLines       = "shapeview.scan.lines"
	AttrMalformed   = "shapeview.scan.malformed"
	AttrFound       = "shapeview.scan.found"
	AttrOutcome     = "shapeview.outcome"
	AttrFormat      = "render.format"
	AttrStoreType   = "store.type"
	AttrKey         = "storage.key"
)

// Span names.
const (
	SpanLoadMetadata = "viewer.load_metadata"
	SpanLookup       = "viewer.lookup"
	SpanFetchShard   = "shard.fetch"
	SpanScanShard    = "shard.scan"
	SpanRender       = "render.draw"
)

func Dataset(key string) attribute.KeyValue    { return attribute.String(AttrDataset, key) }
func SessionID(id string) attribute.KeyValue   { return attribute.String(AttrSessionID, id) }
func ShapeID(id int) attribute.KeyValue        { return attribute.Int(AttrShapeID, id) }
func Chunk(index int) attribute.KeyValue       { return attribute.Int(AttrChunk, index) }
func TotalShapes(n int) attribute.KeyValue     { return attribute.Int(AttrTotalShapes, n) }
func Blocks(n int) attribute.KeyValue          { return attribute.Int(AttrBlocks, n) }
func Lines(n int) attribute.KeyValue           { return attribute.Int(AttrLines, n) }
func Malformed(n int) attribute.KeyValue       { return attribute.Int(AttrMalformed, n) }
func Found(found bool) attribute.KeyValue      { return attribute.Bool(AttrFound, found) }
func Outcome(o string) attribute.KeyValue      { return attribute.String(AttrOutcome, o) }
func Format(f string) attribute.KeyValue       { return attribute.String(AttrFormat, f) }
func StoreType(t string) attribute.KeyValue    { return attribute.String(AttrStoreType, t) }
func StorageKey(key string) attribute.KeyValue { return attribute.String(AttrKey, key) }

// StartDatasetSpan starts an internal span tagged with the dataset key.
func StartDatasetSpan(ctx context.Context, name, dataset string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Dataset(dataset)}, attrs...)
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(all...),
	)
}

// StartStoreSpan starts a client span for an object store read.
func StartStoreSpan(ctx context.Context, name, storeType, key string) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(StoreType(storeType), StorageKey(key)),
	)
}
