package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/shapeview/pkg/render"
	"github.com/marmos91/shapeview/pkg/shape"
	"github.com/marmos91/shapeview/pkg/store"
	"github.com/marmos91/shapeview/pkg/store/memory"
)

// fixture is a viewer over an in-memory store with two datasets and a shard
// size of 2, so ids 1-2 live in chunk 1, 3-4 in chunk 2, and so on.
type fixture struct {
	viewer *Viewer
	store  *memory.Store
	reg    *prometheus.Registry
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()

	st := memory.New()
	st.PutString("web_data/info.json", `{"total_shapes":5,"shapes_per_chunk":2,"total_chunks":3}`)
	st.PutString("web_data/chunks/chunk_1.json", lines(
		`{"id":1,"blocks":[{"x":0,"y":0,"type":15}]}`,
		`{"id":2,"blocks":[]}`,
	))
	st.PutString("web_data/chunks/chunk_2.json", lines(
		`{"id":3,"blocks":[{"x":0,"y":0,"type":15},{"x":1,"y":0,"type":3}]}`,
		``,
		`{"id":4,"blocks":[{"x":0,"y":0,"type":42}]}`,
	))
	// chunk_3 is missing on purpose.
	st.PutString("broken/info.json", `{"shapes":10}`)

	catalog, err := shape.NewCatalog(
		shape.Dataset{Key: "web_data", Name: "Web Data", Path: "web_data"},
		shape.Dataset{Key: "broken", Name: "Broken"},
		shape.Dataset{Key: "absent", Name: "Absent"},
	)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	cfg := Config{
		Store:          st,
		Catalog:        catalog,
		ShapesPerChunk: 2,
		Metrics:        NewMetrics(reg),
	}
	for _, m := range mutate {
		m(&cfg)
	}

	v, err := New(cfg)
	require.NoError(t, err)
	return &fixture{viewer: v, store: st, reg: reg}
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func (f *fixture) session(t *testing.T, name string) *Session {
	t.Helper()
	sess, err := f.viewer.LoadMetadata(context.Background(), name)
	require.NoError(t, err)
	return sess
}

func (f *fixture) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := f.reg.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestNew_Validation(t *testing.T) {
	catalog, err := shape.NewCatalog(shape.Dataset{Key: "a"})
	require.NoError(t, err)

	_, err = New(Config{Catalog: catalog})
	assert.Error(t, err)

	_, err = New(Config{Store: memory.New()})
	assert.Error(t, err)

	_, err = New(Config{Store: memory.New(), Catalog: catalog, ShapesPerChunk: -1})
	assert.Error(t, err)

	v, err := New(Config{Store: memory.New(), Catalog: catalog})
	require.NoError(t, err)
	assert.Equal(t, 100000, v.ShapesPerChunk())
	assert.NotNil(t, v.Renderer())
}

func TestLoadMetadata(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)

		sess, err := f.viewer.LoadMetadata(context.Background(), "web_data")
		require.NoError(t, err)
		assert.True(t, sess.Ready())
		assert.Equal(t, 5, sess.TotalShapes)
		assert.Equal(t, shape.Info{TotalShapes: 5, ShapesPerChunk: 2, TotalChunks: 3}, sess.Info)
		assert.Equal(t, "Web Data", sess.Dataset.Name)
		assert.Equal(t, 1, sess.DefaultID())
		assert.False(t, sess.LoadedAt.IsZero())
		_, err = uuid.Parse(sess.ID)
		assert.NoError(t, err)

		assert.Equal(t, 1.0, f.counter(t, "shapeview_viewer_metadata_loads_total",
			map[string]string{"dataset": "web_data", "outcome": "ok"}))
	})

	t.Run("ByDisplayName", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web data")
		assert.Equal(t, "web_data", sess.Dataset.Key)
	})

	t.Run("UnknownDatasetDoesNotFetch", func(t *testing.T) {
		f := newFixture(t)

		sess, err := f.viewer.LoadMetadata(context.Background(), "nope")
		assert.Nil(t, sess)
		assert.ErrorIs(t, err, ErrUnknownDataset)
		assert.Zero(t, f.store.Opens())
	})

	t.Run("MissingInfo", func(t *testing.T) {
		f := newFixture(t)

		sess, err := f.viewer.LoadMetadata(context.Background(), "absent")
		require.NotNil(t, sess)
		assert.False(t, sess.Ready())
		assert.Zero(t, sess.TotalShapes)
		assert.Zero(t, sess.DefaultID())

		var metaErr *MetadataError
		require.True(t, errors.As(err, &metaErr))
		assert.Equal(t, "absent", metaErr.Dataset)
		assert.ErrorIs(t, err, ErrMetadataUnavailable)
		assert.ErrorIs(t, err, store.ErrObjectNotFound)
		assert.Same(t, sess.Err, err)

		assert.Equal(t, 1.0, f.counter(t, "shapeview_viewer_metadata_loads_total",
			map[string]string{"dataset": "absent", "outcome": "error"}))
	})

	t.Run("MissingTotalShapes", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.viewer.LoadMetadata(context.Background(), "broken")
		assert.ErrorIs(t, err, ErrMetadataUnavailable)
		assert.ErrorIs(t, err, shape.ErrMalformedInfo)
	})

	t.Run("InfoTooLarge", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.MaxInfoSize = 8 })

		_, err := f.viewer.LoadMetadata(context.Background(), "web_data")
		assert.ErrorIs(t, err, store.ErrObjectTooLarge)
	})
}

func TestSelect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	surface := render.NewRecorder(100, 100)

	assert.Nil(t, f.viewer.Active())

	sess, status, err := f.viewer.Select(ctx, "web_data", surface)
	require.NoError(t, err)
	assert.Same(t, sess, f.viewer.Active())
	assert.Equal(t, Status{SeveritySuccess, "Successfully loaded metadata for: web_data. Enter an ID between 1 and 5."}, status)
	assert.Equal(t, 1, surface.Clears())

	t.Run("FailureReplacesActiveSession", func(t *testing.T) {
		failed, status, err := f.viewer.Select(ctx, "absent", surface)
		require.Error(t, err)
		assert.Same(t, failed, f.viewer.Active())
		assert.False(t, f.viewer.Active().Ready())
		assert.Equal(t, "Error: Could not load data info for absent. Please check the folder and file paths.", status.Message)
		assert.Equal(t, SeverityError, status.Severity)
	})

	t.Run("UnknownDatasetKeepsActiveSession", func(t *testing.T) {
		before := f.viewer.Active()
		sess, _, err := f.viewer.Select(ctx, "nope", nil)
		assert.Nil(t, sess)
		assert.ErrorIs(t, err, ErrUnknownDataset)
		assert.Same(t, before, f.viewer.Active())
	})

	t.Run("ReselectCreatesNewSession", func(t *testing.T) {
		a, _, err := f.viewer.Select(ctx, "web_data", nil)
		require.NoError(t, err)
		b, _, err := f.viewer.Select(ctx, "web_data", nil)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Same(t, b, f.viewer.Active())
	})
}

func TestLookup_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.session(t, "web_data")

	t.Run("NoMetadata", func(t *testing.T) {
		failed, _ := f.viewer.LoadMetadata(ctx, "absent")
		opens := f.store.Opens()

		_, err := f.viewer.Lookup(ctx, failed, "1")
		assert.ErrorIs(t, err, ErrNoMetadata)
		_, err = f.viewer.Lookup(ctx, nil, "1")
		assert.ErrorIs(t, err, ErrNoMetadata)
		assert.Equal(t, opens, f.store.Opens())
	})

	opens := f.store.Opens()
	for _, raw := range []string{"0", "-3", "6", "abc", "", "1.5", "2abc", "99999999999999999999"} {
		t.Run(fmt.Sprintf("InvalidID_%q", raw), func(t *testing.T) {
			_, err := f.viewer.Lookup(ctx, sess, raw)

			var invalid *InvalidIDError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, 5, invalid.Total)
			assert.ErrorIs(t, err, ErrInvalidID)
		})
	}
	assert.Equal(t, opens, f.store.Opens(), "rejected ids must not fetch")
	assert.Equal(t, 8.0, f.counter(t, "shapeview_viewer_lookups_total",
		map[string]string{"dataset": "web_data", "outcome": "invalid_id"}))
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web_data")

		lk, err := f.viewer.Lookup(ctx, sess, " 3 ")
		require.NoError(t, err)
		assert.Equal(t, 3, lk.ID)
		assert.Equal(t, 2, lk.Chunk)
		assert.Equal(t, "web_data/chunks/chunk_2.json", lk.Key)
		assert.Len(t, lk.Record.Blocks, 2)
		assert.Equal(t, 1, lk.Stats.Records, "scan stops at the first match")
		assert.Equal(t, 1.0, f.counter(t, "shapeview_viewer_lookups_total",
			map[string]string{"dataset": "web_data", "outcome": "found"}))
	})

	t.Run("Boundaries", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web_data")

		lk, err := f.viewer.Lookup(ctx, sess, "2")
		require.NoError(t, err)
		assert.Equal(t, 1, lk.Chunk)
		assert.Empty(t, lk.Record.Blocks)

		_, err = f.viewer.Lookup(ctx, sess, "5")
		var shardErr *ShardUnavailableError
		require.True(t, errors.As(err, &shardErr))
		assert.Equal(t, 3, shardErr.Index)
		assert.ErrorIs(t, err, ErrShardUnavailable)
		assert.ErrorIs(t, err, store.ErrObjectNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutString("web_data/chunks/chunk_2.json", lines(`{"id":3,"blocks":[]}`))
		sess := f.session(t, "web_data")

		_, err := f.viewer.Lookup(ctx, sess, "4")
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, 4, nf.ID)
		assert.Equal(t, 2, nf.Index)
		assert.ErrorIs(t, err, ErrShapeNotFound)
	})

	t.Run("MalformedLinesAreSkipped", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutString("web_data/chunks/chunk_2.json", lines(
			`{"id":3,"blocks":[`,
			`not json`,
			`{"id":4,"blocks":[{"x":2,"y":2,"type":9}]}`,
		))
		sess := f.session(t, "web_data")

		lk, err := f.viewer.Lookup(ctx, sess, "4")
		require.NoError(t, err)
		assert.Equal(t, 2, lk.Stats.Malformed)
		assert.Equal(t, 2.0, f.counter(t, "shapeview_shard_malformed_lines_total",
			map[string]string{"dataset": "web_data"}))
		assert.Equal(t, 3.0, f.counter(t, "shapeview_shard_lines_scanned_total",
			map[string]string{"dataset": "web_data"}))
	})

	t.Run("ChunkWithinLimit", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.MaxChunkSize = int64(len(`{"id":3,"blocks":[]}` + "\n")) })
		f.store.PutString("web_data/chunks/chunk_2.json", lines(`{"id":3,"blocks":[]}`))
		sess := f.session(t, "web_data")

		_, err := f.viewer.Lookup(ctx, sess, "4")
		assert.ErrorIs(t, err, ErrShapeNotFound)
	})

	t.Run("ChunkTooLarge", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.MaxChunkSize = 16 })
		sess := f.session(t, "web_data")

		_, err := f.viewer.Lookup(ctx, sess, "4")
		assert.ErrorIs(t, err, ErrShardUnavailable)
		assert.ErrorIs(t, err, store.ErrObjectTooLarge)
	})

	t.Run("ConfiguredShardSizeWins", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.ShapesPerChunk = 10 })
		f.store.PutString("web_data/chunks/chunk_1.json", lines(`{"id":4,"blocks":[]}`))
		sess := f.session(t, "web_data")

		lk, err := f.viewer.Lookup(ctx, sess, "4")
		require.NoError(t, err)
		assert.Equal(t, 1, lk.Chunk)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web_data")
		f.store.PutString("web_data/chunks/chunk_2.json", lines(`{"id":3,"blocks":[]}`))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.viewer.Lookup(cctx, sess, "3")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestShow(t *testing.T) {
	ctx := context.Background()

	t.Run("DrawsRecord", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web_data")
		surface := render.NewRecorder(500, 500)

		res, err := f.viewer.Show(ctx, sess, "3", surface)
		require.NoError(t, err)
		assert.Equal(t, Status{SeveritySuccess, "Successfully displayed Shape #3 from web_data."}, res.Status)
		assert.Equal(t, sess.ID, res.Session)
		require.NotNil(t, res.Drawing)
		assert.Len(t, res.Drawing.Polygons, 2)
		assert.Len(t, surface.Polygons(), 2)
		assert.GreaterOrEqual(t, surface.Clears(), 1)
	})

	t.Run("UnknownBlockDrawnAsGraySquare", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web_data")

		res, err := f.viewer.Show(ctx, sess, "4", render.NewRecorder(100, 100))
		require.NoError(t, err)
		require.Len(t, res.Drawing.Polygons, 1)
		assert.Equal(t, "#cccccc", res.Drawing.Polygons[0].Fill)
		assert.Len(t, res.Drawing.Polygons[0].Points, 4)
	})

	t.Run("EmptyBlocksLeaveSurfaceBlank", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web_data")
		surface := render.NewRecorder(100, 100)

		res, err := f.viewer.Show(ctx, sess, "2", surface)
		require.NoError(t, err)
		assert.Nil(t, res.Drawing)
		assert.Empty(t, surface.Polygons())
		assert.Equal(t, SeveritySuccess, res.Status.Severity)
	})

	t.Run("FailureClearsPreviousDrawing", func(t *testing.T) {
		f := newFixture(t)
		sess := f.session(t, "web_data")
		surface := render.NewRecorder(100, 100)

		_, err := f.viewer.Show(ctx, sess, "1", surface)
		require.NoError(t, err)
		require.Len(t, surface.Polygons(), 1)

		res, err := f.viewer.Show(ctx, sess, "5", surface)
		require.Error(t, err)
		assert.Empty(t, surface.Polygons())
		assert.Equal(t, "Data load failed: Could not find chunk file 3.", res.Status.Message)
	})

	t.Run("StatusForEachFailure", func(t *testing.T) {
		f := newFixture(t)
		f.store.PutString("web_data/chunks/chunk_2.json", lines(`{"id":3,"blocks":[]}`))
		sess := f.session(t, "web_data")
		failed, _ := f.viewer.LoadMetadata(ctx, "absent")

		cases := []struct {
			sess *Session
			raw  string
			want Status
		}{
			{failed, "1", Status{SeverityError, "Error: Cannot load. Metadata failed to load."}},
			{sess, "9", Status{SeverityError, "Invalid ID. Please enter a number between 1 and 5."}},
			{sess, "4", Status{SeverityWarning, "Warning: ID #4 not found in chunk 2."}},
		}
		for _, tc := range cases {
			res, err := f.viewer.Show(ctx, tc.sess, tc.raw, render.NewRecorder(10, 10))
			assert.Error(t, err)
			assert.Equal(t, tc.want, res.Status)
		}
	})

	t.Run("ShowActive", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.viewer.Select(ctx, "web_data", nil)
		require.NoError(t, err)

		res, err := f.viewer.ShowActive(ctx, "1", render.NewRaster(64, 64))
		require.NoError(t, err)
		assert.Equal(t, "web_data", res.Dataset)
	})
}

func TestShow_ConcurrentRequests(t *testing.T) {
	f := newFixture(t)
	sess := f.session(t, "web_data")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprint(i%4 + 1)
			surface := render.NewRecorder(50, 50)
			if _, err := f.viewer.Show(ctx, sess, id, surface); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	assert.Equal(t, 40.0, f.counter(t, "shapeview_viewer_lookups_total",
		map[string]string{"dataset": "web_data", "outcome": "found"}))
}

func TestStatusNamesDatasetFolder(t *testing.T) {
	ctx := context.Background()

	st := memory.New()
	st.PutString("sets/tangrams/info.json", `{"total_shapes":2}`)
	st.PutString("sets/tangrams/chunks/chunk_1.json", lines(`{"id":1,"blocks":[]}`))

	catalog, err := shape.NewCatalog(
		shape.Dataset{Key: "tangrams", Path: "sets/tangrams"},
		shape.Dataset{Key: "gone", Path: "sets/gone"},
	)
	require.NoError(t, err)
	v, err := New(Config{Store: st, Catalog: catalog, ShapesPerChunk: 2})
	require.NoError(t, err)

	_, status, err := v.Select(ctx, "tangrams", nil)
	require.NoError(t, err)
	assert.Equal(t, "Successfully loaded metadata for: sets/tangrams. Enter an ID between 1 and 2.", status.Message)

	res, err := v.ShowActive(ctx, "1", render.NewRecorder(100, 100))
	require.NoError(t, err)
	assert.Equal(t, "Successfully displayed Shape #1 from sets/tangrams.", res.Status.Message)
	assert.Equal(t, "tangrams", res.Dataset)

	_, status, err = v.Select(ctx, "gone", nil)
	require.Error(t, err)
	assert.Equal(t, "Error: Could not load data info for sets/gone. Please check the folder and file paths.", status.Message)
}

func TestSetCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	next, err := shape.NewCatalog(shape.Dataset{Key: "renamed", Path: "web_data"})
	require.NoError(t, err)
	f.viewer.SetCatalog(next)
	f.viewer.SetCatalog(nil)

	_, err = f.viewer.LoadMetadata(ctx, "web_data")
	assert.ErrorIs(t, err, ErrUnknownDataset)

	sess := f.session(t, "renamed")
	assert.Equal(t, 5, sess.TotalShapes)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.recordLookup("a", OutcomeFound)
		m.recordMetadataLoad("a", nil)
		m.observeShardFetch("a", 0, 1, 1)
		m.observeRender("png", 0)
	})
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewMetrics(reg)
	b := NewMetrics(reg)
	assert.Same(t, a.LookupsTotal, b.LookupsTotal)
}
