package viewer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes used as metric labels.
const (
	OutcomeFound            = "found"
	OutcomeNotFound         = "not_found"
	OutcomeInvalidID        = "invalid_id"
	OutcomeNoMetadata       = "no_metadata"
	OutcomeShardUnavailable = "shard_unavailable"
	OutcomeOK               = "ok"
	OutcomeError            = "error"
)

// Metrics provides Prometheus metrics for the viewer.
// All methods are nil-safe: calls on a nil *Metrics are no-ops.
type Metrics struct {
	// LookupsTotal counts shape lookups by dataset and outcome.
	LookupsTotal *prometheus.CounterVec

	// MetadataLoadsTotal counts info.json loads by dataset and outcome.
	MetadataLoadsTotal *prometheus.CounterVec

	// ShardFetchDuration observes open plus scan time of one shard.
	ShardFetchDuration *prometheus.HistogramVec

	// LinesScanned counts non-blank shard lines read.
	LinesScanned *prometheus.CounterVec

	// MalformedLines counts shard lines skipped because they did not decode.
	MalformedLines *prometheus.CounterVec

	// RenderDuration observes drawing time by surface kind.
	RenderDuration *prometheus.HistogramVec
}

// NewMetrics creates viewer metrics and registers them with reg. A nil reg
// leaves them unregistered. Collectors already present in reg are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapeview",
			Subsystem: "viewer",
			Name:      "lookups_total",
			Help:      "Total number of shape lookups by outcome",
		}, []string{"dataset", "outcome"}),
		MetadataLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapeview",
			Subsystem: "viewer",
			Name:      "metadata_loads_total",
			Help:      "Total number of dataset metadata loads by outcome",
		}, []string{"dataset", "outcome"}),
		ShardFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shapeview",
			Subsystem: "shard",
			Name:      "fetch_duration_seconds",
			Help:      "Time to open and scan one shard",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"dataset"}),
		LinesScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapeview",
			Subsystem: "shard",
			Name:      "lines_scanned_total",
			Help:      "Total number of non-blank shard lines scanned",
		}, []string{"dataset"}),
		MalformedLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapeview",
			Subsystem: "shard",
			Name:      "malformed_lines_total",
			Help:      "Total number of shard lines skipped because they are not valid records",
		}, []string{"dataset"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shapeview",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time to draw one shape",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"surface"}),
	}

	if reg != nil {
		m.LookupsTotal = registerOrReuse(reg, m.LookupsTotal).(*prometheus.CounterVec)
		m.MetadataLoadsTotal = registerOrReuse(reg, m.MetadataLoadsTotal).(*prometheus.CounterVec)
		m.ShardFetchDuration = registerOrReuse(reg, m.ShardFetchDuration).(*prometheus.HistogramVec)
		m.LinesScanned = registerOrReuse(reg, m.LinesScanned).(*prometheus.CounterVec)
		m.MalformedLines = registerOrReuse(reg, m.MalformedLines).(*prometheus.CounterVec)
		m.RenderDuration = registerOrReuse(reg, m.RenderDuration).(*prometheus.HistogramVec)
	}

	return m
}

// registerOrReuse registers c, returning the existing collector when an
// identical one is already registered. Other registration errors panic.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (m *Metrics) recordLookup(dataset, outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(dataset, outcome).Inc()
}

func (m *Metrics) recordMetadataLoad(dataset string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.MetadataLoadsTotal.WithLabelValues(dataset, outcome).Inc()
}

func (m *Metrics) observeShardFetch(dataset string, d time.Duration, lines, malformed int) {
	if m == nil {
		return
	}
	m.ShardFetchDuration.WithLabelValues(dataset).Observe(d.Seconds())
	m.LinesScanned.WithLabelValues(dataset).Add(float64(lines))
	if malformed > 0 {
		m.MalformedLines.WithLabelValues(dataset).Add(float64(malformed))
	}
}

func (m *Metrics) observeRender(surface string, d time.Duration) {
	if m == nil {
		return
	}
	m.RenderDuration.WithLabelValues(surface).Observe(d.Seconds())
}
