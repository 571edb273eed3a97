package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"InlineRank/internal/domain/repository"
)

var _ repository.Metrics = (*Recorder)(nil)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	batchDuration prometheus.Histogram
	ranked        prometheus.Counter
	excluded      prometheus.Counter
	lastBatch     prometheus.Gauge
	fetchErrors   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		batchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "inlinerank_batch_duration_seconds",
			Help:    "Wall time of one ranking batch including upstream fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ranked: f.NewCounter(prometheus.CounterOpts{
			Name: "inlinerank_instruments_ranked_total",
			Help: "Instruments that made it into a scored batch",
		}),
		excluded: f.NewCounter(prometheus.CounterOpts{
			Name: "inlinerank_instruments_excluded_total",
			Help: "Instruments dropped because of an invalid snapshot",
		}),
		lastBatch: f.NewGauge(prometheus.GaugeOpts{
			Name: "inlinerank_last_batch_size",
			Help: "Number of ranked instruments in the most recent batch",
		}),
		fetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inlinerank_upstream_fetch_errors_total",
			Help: "Upstream fetch failures by kind",
		}, []string{"kind"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "inlinerank_spot_cache_lookups_total",
			Help: "Spot cache lookups by result",
		}, []string{"result"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inlinerank_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (r *Recorder) RecordBatch(size, excluded int, seconds float64) {
	r.batchDuration.Observe(seconds)
	r.ranked.Add(float64(size))
	r.excluded.Add(float64(excluded))
	r.lastBatch.Set(float64(size))
}

// RecordFetchError counts a failed upstream call. kind is one of products, history, spot.
func (r *Recorder) RecordFetchError(kind string) {
	r.fetchErrors.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards everything.
type Nop struct{}

var _ repository.Metrics = Nop{}

func (Nop) RecordBatch(int, int, float64) {}
func (Nop) RecordFetchError(string)       {}
func (Nop) RecordCacheLookup(bool)        {}
func (Nop) RecordLatency(string, float64) {}
