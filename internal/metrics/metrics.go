// Package metrics holds the prometheus collectors of the search service.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty_query"
	OutcomeWarming = "warming"
	OutcomeError   = "error"
)

// Sync results.
const (
	SyncSucceeded = "succeeded"
	SyncFailed    = "failed"
)

// Metrics groups the service collectors.
type Metrics struct {
	searchRequests   *prometheus.CounterVec
	searchDuration   prometheus.Histogram
	syncTotal        *prometheus.CounterVec
	syncDuration     prometheus.Histogram
	snapshotProducts prometheus.Gauge
	snapshotSyncedAt prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_search_requests_total",
			Help: "Search requests by outcome.",
		}, []string{"outcome"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Time spent ranking a search request.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_sync_total",
			Help: "Snapshot rebuilds by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Duration of snapshot rebuilds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		snapshotProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_snapshot_products",
			Help: "Number of products in the current snapshot.",
		}),
		snapshotSyncedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_snapshot_last_sync_timestamp_seconds",
			Help: "Unix time the current snapshot was built.",
		}),
	}
	reg.MustRegister(
		m.searchRequests,
		m.searchDuration,
		m.syncTotal,
		m.syncDuration,
		m.snapshotProducts,
		m.snapshotSyncedAt,
	)
	return m
}

// ObserveSearch records one search request.
func (m *Metrics) ObserveSearch(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(outcome).Inc()
	m.searchDuration.Observe(took.Seconds())
}

// ObserveSync records one rebuild attempt.
func (m *Metrics) ObserveSync(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.syncTotal.WithLabelValues(result).Inc()
	m.syncDuration.Observe(took.Seconds())
}

// SetSnapshot publishes the size and build time of the current snapshot.
func (m *Metrics) SetSnapshot(products int, syncedAt time.Time) {
	if m == nil {
		return
	}
	m.snapshotProducts.Set(float64(products))
	m.snapshotSyncedAt.Set(float64(syncedAt.Unix()))
}
