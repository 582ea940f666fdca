package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Quad store metrics
	TermsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsupd_terms_total",
			Help: "Total number of distinct terms in the term dictionary",
		},
	)

	ContextsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsupd_contexts_total",
			Help: "Total number of named graphs in the context set",
		},
	)

	QuadsAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lsupd_quads_added_total",
			Help: "Total number of quads added across all transactions",
		},
	)

	QuadsRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lsupd_quads_removed_total",
			Help: "Total number of quads removed across all transactions",
		},
	)

	// Transaction metrics
	TxnTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lsupd_txn_total",
			Help: "Total number of transactions by result",
		},
		[]string{"result"}, // "commit" or "abort"
	)

	TxnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lsupd_txn_duration_seconds",
			Help:    "Transaction duration in seconds by result",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	// Binary store metrics
	BinaryBytesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsupd_binary_bytes_total",
			Help: "Total bytes of content persisted in the binary store",
		},
	)

	BinaryFilesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsupd_binary_files_total",
			Help: "Total number of distinct digests persisted in the binary store",
		},
	)

	BinaryPersistDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lsupd_binary_persist_duration_seconds",
			Help:    "Time taken to stream and digest a binary into the store",
			Buckets: prometheus.DefBuckets,
		},
	)

	FixityChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lsupd_fixity_checks_total",
			Help: "Total number of fixity checks by result",
		},
		[]string{"result"}, // "ok" or "failed"
	)

	// Resource operation metrics
	ResourceCreateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lsupd_resource_create_duration_seconds",
			Help:    "Time taken to create or replace a resource",
			Buckets: prometheus.DefBuckets,
		},
	)

	ResourceUpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lsupd_resource_update_duration_seconds",
			Help:    "Time taken to apply a SPARQL-Update delta to a resource",
			Buckets: prometheus.DefBuckets,
		},
	)

	ResourceDeleteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lsupd_resource_delete_duration_seconds",
			Help:    "Time taken to bury or forget a resource",
			Buckets: prometheus.DefBuckets,
		},
	)

	VersionCreateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lsupd_version_create_duration_seconds",
			Help:    "Time taken to create a resource version",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Changelog / event metrics
	ChangelogEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lsupd_changelog_events_total",
			Help: "Total number of changelog events drained by event type",
		},
		[]string{"event_type"},
	)

	// Reader slot metrics
	ReaderSlotsInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lsupd_reader_slots_in_use",
			Help: "Number of concurrently open read transactions",
		},
	)
)

func init() {
	prometheus.MustRegister(TermsTotal)
	prometheus.MustRegister(ContextsTotal)
	prometheus.MustRegister(QuadsAddedTotal)
	prometheus.MustRegister(QuadsRemovedTotal)
	prometheus.MustRegister(TxnTotal)
	prometheus.MustRegister(TxnDuration)

	prometheus.MustRegister(BinaryBytesTotal)
	prometheus.MustRegister(BinaryFilesTotal)
	prometheus.MustRegister(BinaryPersistDuration)
	prometheus.MustRegister(FixityChecksTotal)

	prometheus.MustRegister(ResourceCreateDuration)
	prometheus.MustRegister(ResourceUpdateDuration)
	prometheus.MustRegister(ResourceDeleteDuration)
	prometheus.MustRegister(VersionCreateDuration)

	prometheus.MustRegister(ChangelogEventsTotal)
	prometheus.MustRegister(ReaderSlotsInUse)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
