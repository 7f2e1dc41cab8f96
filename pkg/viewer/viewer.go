// Package viewer resolves shape identifiers to records in a sharded dataset
// and draws them.
//
// A lookup is a pipeline: the dataset's info.json bounds the identifier,
// shard.Index picks the chunk, the chunk is streamed from the object store
// and scanned until the record is found, and the record's blocks are drawn
// onto a render.Surface.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/internal/telemetry"
	"github.com/marmos91/shapeview/pkg/render"
	"github.com/marmos91/shapeview/pkg/shape"
	"github.com/marmos91/shapeview/pkg/shard"
	"github.com/marmos91/shapeview/pkg/store"
)

// DefaultMaxInfoSize bounds the size of info.json.
const DefaultMaxInfoSize = 1 << 20

// Config configures a Viewer.
type Config struct {
	// Store holds the dataset files. Required.
	Store store.Store

	// Catalog lists the selectable datasets. Required.
	Catalog *shape.Catalog

	// ShapesPerChunk is the shard size used to compute chunk indexes.
	// Default: shard.DefaultShapesPerChunk
	ShapesPerChunk int

	// MaxInfoSize bounds info.json in bytes.
	// Default: DefaultMaxInfoSize
	MaxInfoSize int64

	// MaxChunkSize bounds the bytes read from one shard. Zero disables it.
	MaxChunkSize int64

	// MaxLineSize bounds one shard line.
	// Default: shard.DefaultMaxLineSize
	MaxLineSize int

	// Renderer draws records. Default: render.NewRenderer(render.Options{})
	Renderer *render.Renderer

	// Metrics is optional.
	Metrics *Metrics
}

// Viewer looks up and draws shapes. It is safe for concurrent use; the
// stateful Select/Active pair models a single interactive user on top of
// the stateless LoadMetadata/Lookup/Show operations.
type Viewer struct {
	store          store.Store
	catalog        atomic.Pointer[shape.Catalog]
	shapesPerChunk int
	maxInfoSize    int64
	maxChunkSize   int64
	maxLineSize    int
	renderer       *render.Renderer
	metrics        *Metrics

	active atomic.Pointer[Session]
}

// New creates a Viewer.
func New(cfg Config) (*Viewer, error) {
	if cfg.Store == nil {
		return nil, errors.New("viewer: store is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("viewer: catalog is required")
	}
	if cfg.ShapesPerChunk < 0 {
		return nil, fmt.Errorf("viewer: shapes per chunk must be positive, got %d", cfg.ShapesPerChunk)
	}
	if cfg.ShapesPerChunk == 0 {
		cfg.ShapesPerChunk = shard.DefaultShapesPerChunk
	}
	if cfg.MaxInfoSize <= 0 {
		cfg.MaxInfoSize = DefaultMaxInfoSize
	}
	if cfg.MaxLineSize <= 0 {
		cfg.MaxLineSize = shard.DefaultMaxLineSize
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.NewRenderer(render.Options{})
	}

	v := &Viewer{
		store:          cfg.Store,
		shapesPerChunk: cfg.ShapesPerChunk,
		maxInfoSize:    cfg.MaxInfoSize,
		maxChunkSize:   cfg.MaxChunkSize,
		maxLineSize:    cfg.MaxLineSize,
		renderer:       cfg.Renderer,
		metrics:        cfg.Metrics,
	}
	v.catalog.Store(cfg.Catalog)
	return v, nil
}

// Catalog returns the current dataset catalog.
func (v *Viewer) Catalog() *shape.Catalog {
	return v.catalog.Load()
}

// SetCatalog replaces the dataset catalog. The active session is kept even
// if its dataset is no longer listed.
func (v *Viewer) SetCatalog(c *shape.Catalog) {
	if c != nil {
		v.catalog.Store(c)
	}
}

// ShapesPerChunk returns the configured shard size.
func (v *Viewer) ShapesPerChunk() int {
	return v.shapesPerChunk
}

// Renderer returns the renderer used by Show.
func (v *Viewer) Renderer() *render.Renderer {
	return v.renderer
}

// Store returns the object store.
func (v *Viewer) Store() store.Store {
	return v.store
}

// LoadMetadata fetches info.json for the named dataset and returns a new
// Session. On failure the returned Session has TotalShapes == 0 and the
// error is a *MetadataError. An unconfigured dataset returns a nil Session
// and ErrUnknownDataset without touching the store.
func (v *Viewer) LoadMetadata(ctx context.Context, name string) (*Session, error) {
	ds, ok := v.Catalog().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}

	ctx, span := telemetry.StartDatasetSpan(ctx, telemetry.SpanLoadMetadata, ds.Key)
	defer span.End()
	ctx = logger.Enrich(ctx, func(lc *logger.LogContext) {
		lc.Dataset = ds.Key
		lc.TraceID, lc.SpanID = telemetry.TraceID(ctx), telemetry.SpanID(ctx)
	})

	sess := &Session{
		ID:       uuid.NewString(),
		Dataset:  ds,
		LoadedAt: time.Now(),
	}
	span.SetAttributes(telemetry.SessionID(sess.ID))

	start := time.Now()
	info, err := v.readInfo(ctx, ds)
	v.metrics.recordMetadataLoad(ds.Key, err)
	if err != nil {
		sess.Err = &MetadataError{Dataset: ds.Key, Path: ds.Path, Err: err}
		telemetry.RecordError(ctx, sess.Err)
		logger.WarnCtx(ctx, "Metadata load failed",
			logger.SessionID(sess.ID), logger.Key(shard.InfoKey(ds.Path)), logger.Err(err))
		return sess, sess.Err
	}

	if info.ShapesPerChunk != 0 && info.ShapesPerChunk != v.shapesPerChunk {
		logger.WarnCtx(ctx, "Dataset shard size differs from configuration, using configured value",
			"info_shapes_per_chunk", info.ShapesPerChunk, "shapes_per_chunk", v.shapesPerChunk)
	}

	sess.Info = info
	sess.TotalShapes = info.TotalShapes
	span.SetAttributes(telemetry.TotalShapes(info.TotalShapes))
	logger.InfoCtx(ctx, "Metadata loaded",
		logger.SessionID(sess.ID), logger.TotalShapes(info.TotalShapes), logger.DurationMs(logger.Duration(start)))

	return sess, nil
}

func (v *Viewer) readInfo(ctx context.Context, ds shape.Dataset) (shape.Info, error) {
	data, err := store.ReadAll(ctx, v.store, shard.InfoKey(ds.Path), v.maxInfoSize)
	if err != nil {
		return shape.Info{}, err
	}
	return shape.ParseInfo(data)
}

// Select loads the named dataset's metadata and makes the result the
// active session, replacing the previous one whether or not the load
// succeeded. The surface, when given, is cleared first. An unknown dataset
// leaves the active session unchanged.
func (v *Viewer) Select(ctx context.Context, name string, surface render.Surface) (*Session, Status, error) {
	if surface != nil {
		surface.Clear()
	}

	sess, err := v.LoadMetadata(ctx, name)
	if sess == nil {
		return nil, StatusFor(err), err
	}

	v.active.Store(sess)
	if err != nil {
		return sess, StatusFor(err), err
	}
	return sess, StatusMetadataLoaded(sess.Dataset.Path, sess.TotalShapes), nil
}

// Active returns the session installed by the last Select, or nil.
func (v *Viewer) Active() *Session {
	return v.active.Load()
}

// ParseID validates raw as an identifier in [1, total].
func ParseID(raw string, total int) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 || id > total {
		return 0, &InvalidIDError{Input: raw, Total: total}
	}
	return id, nil
}

// Lookup is a located record.
type Lookup struct {
	Dataset string       `json:"dataset"`
	ID      int          `json:"id"`
	Chunk   int          `json:"chunk"`
	Key     string       `json:"key"`
	Record  shape.Record `json:"record"`
	Stats   shard.Stats  `json:"stats"`
}

// Lookup finds the record for rawID in sess's dataset. It validates the
// identifier before any I/O, fetches exactly one shard, and stops reading
// at the first matching line.
func (v *Viewer) Lookup(ctx context.Context, sess *Session, rawID string) (*Lookup, error) {
	dataset := ""
	if sess != nil {
		dataset = sess.Dataset.Key
	}

	if !sess.Ready() {
		v.metrics.recordLookup(dataset, OutcomeNoMetadata)
		return nil, ErrNoMetadata
	}

	id, err := ParseID(rawID, sess.TotalShapes)
	if err != nil {
		v.metrics.recordLookup(dataset, OutcomeInvalidID)
		return nil, err
	}

	index := shard.Index(id, v.shapesPerChunk)
	key := shard.ChunkKey(sess.Dataset.Path, index)

	ctx, span := telemetry.StartDatasetSpan(ctx, telemetry.SpanLookup, dataset,
		telemetry.SessionID(sess.ID), telemetry.ShapeID(id), telemetry.Chunk(index))
	defer span.End()
	ctx = logger.Enrich(ctx, func(lc *logger.LogContext) {
		lc.Dataset, lc.ShapeID, lc.Chunk = dataset, id, index
		lc.TraceID, lc.SpanID = telemetry.TraceID(ctx), telemetry.SpanID(ctx)
	})

	start := time.Now()
	rec, found, stats, err := v.scanShard(ctx, key, id)
	v.metrics.observeShardFetch(dataset, time.Since(start), stats.Lines, stats.Malformed)
	span.SetAttributes(telemetry.Lines(stats.Lines), telemetry.Malformed(stats.Malformed), telemetry.Found(found))

	if err != nil {
		v.metrics.recordLookup(dataset, OutcomeShardUnavailable)
		shardErr := &ShardUnavailableError{Dataset: dataset, Index: index, Err: err}
		telemetry.RecordError(ctx, shardErr)
		logger.WarnCtx(ctx, "Shard unavailable", logger.Key(key), logger.Err(err))
		return nil, shardErr
	}

	if !found {
		v.metrics.recordLookup(dataset, OutcomeNotFound)
		logger.InfoCtx(ctx, "Shape not found in shard", "lines", stats.Lines)
		return nil, &NotFoundError{Dataset: dataset, ID: id, Index: index}
	}

	v.metrics.recordLookup(dataset, OutcomeFound)
	logger.DebugCtx(ctx, "Shape found",
		logger.Blocks(len(rec.Blocks)), "lines", stats.Lines, logger.DurationMs(logger.Duration(start)))

	return &Lookup{
		Dataset: dataset,
		ID:      id,
		Chunk:   index,
		Key:     key,
		Record:  rec,
		Stats:   stats,
	}, nil
}

func (v *Viewer) scanShard(ctx context.Context, key string, id int) (shape.Record, bool, shard.Stats, error) {
	fetchCtx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanFetchShard, v.store.Type(), key)
	rc, err := v.store.Open(fetchCtx, key)
	if err != nil {
		telemetry.RecordError(fetchCtx, err)
		span.End()
		return shape.Record{}, false, shard.Stats{}, err
	}
	span.End()
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if v.maxChunkSize > 0 {
		r = &limitedReader{r: rc, remaining: v.maxChunkSize}
	}

	_, scanSpan := telemetry.StartSpan(ctx, telemetry.SpanScanShard)
	defer scanSpan.End()

	return shard.Find(r, id, shard.ScanOptions{
		MaxLineSize: v.maxLineSize,
		OnMalformed: func(le *shard.LineError) {
			logger.WarnCtx(ctx, "Skipping malformed shard line", logger.Key(key), logger.Line(le.Line), logger.Err(le.Err))
		},
	})
}

// limitedReader passes through at most limit bytes and fails with
// store.ErrObjectTooLarge if the underlying reader has more.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		var extra [1]byte
		n, err := l.r.Read(extra[:])
		if n > 0 {
			return 0, store.ErrObjectTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

// Result is the outcome of Show.
type Result struct {
	Session string          `json:"session_id,omitempty"`
	Dataset string          `json:"dataset,omitempty"`
	Lookup  *Lookup         `json:"lookup,omitempty"`
	Drawing *render.Drawing `json:"drawing,omitempty"`
	Status  Status          `json:"status"`
}

// Show clears surface, looks up rawID and draws the record. The returned
// Result always carries a Status, also when err is non-nil. A record with
// no blocks leaves the surface blank and still succeeds.
func (v *Viewer) Show(ctx context.Context, sess *Session, rawID string, surface render.Surface) (*Result, error) {
	surface.Clear()

	res := &Result{}
	if sess != nil {
		res.Session = sess.ID
		res.Dataset = sess.Dataset.Key
	}

	lk, err := v.Lookup(ctx, sess, rawID)
	if err != nil {
		res.Status = StatusFor(err)
		return res, err
	}
	res.Lookup = lk

	_, span := telemetry.StartDatasetSpan(ctx, telemetry.SpanRender, lk.Dataset,
		telemetry.ShapeID(lk.ID), telemetry.Blocks(len(lk.Record.Blocks)), telemetry.Format(surfaceKind(surface)))
	start := time.Now()
	drawing, drawn := v.renderer.Draw(surface, lk.Record.Blocks)
	v.metrics.observeRender(surfaceKind(surface), time.Since(start))
	span.End()

	if drawn {
		res.Drawing = &drawing
	}
	res.Status = StatusShapeDisplayed(lk.ID, sess.Dataset.Path)
	return res, nil
}

// ShowActive runs Show against the active session.
func (v *Viewer) ShowActive(ctx context.Context, rawID string, surface render.Surface) (*Result, error) {
	return v.Show(ctx, v.Active(), rawID, surface)
}

func surfaceKind(s render.Surface) string {
	switch s.(type) {
	case *render.Raster:
		return "png"
	case *render.SVG:
		return "svg"
	case *render.Recorder:
		return "recorder"
	default:
		return "other"
	}
}
