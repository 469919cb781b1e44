package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides dashboard metrics collection.
// All methods are safe to call on a nil *Collector.
type Collector struct {
	// Lookup metrics
	LookupsTotal   *prometheus.CounterVec
	LookupDuration prometheus.Histogram

	// Upstream metrics
	UpstreamRequestsTotal *prometheus.CounterVec

	// State metrics
	StaleResultsTotal   prometheus.Counter
	StorageErrorsTotal  *prometheus.CounterVec
	HistoryEntriesGauge prometheus.Gauge
}

// NewCollector creates a collector registered on reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Total number of snapshot lookups by outcome",
			},
			[]string{"outcome"},
		),

		LookupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lookup_duration_seconds",
				Help:      "Duration of a full snapshot lookup in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of weather provider requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),

		StaleResultsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_results_total",
				Help:      "Search results discarded because a newer search was issued",
			},
		),

		StorageErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_storage_errors_total",
				Help:      "Search history storage failures by operation",
			},
			[]string{"operation"},
		),

		HistoryEntriesGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_entries",
				Help:      "Current number of search history entries",
			},
		),
	}
}

// ObserveLookup records a finished snapshot lookup.
func (c *Collector) ObserveLookup(start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.LookupsTotal.WithLabelValues(outcome).Inc()
	c.LookupDuration.Observe(time.Since(start).Seconds())
}

// ObserveUpstream records one provider request. result is a short status
// such as "ok", "http_404" or "circuit_open".
func (c *Collector) ObserveUpstream(endpoint, result string) {
	if c == nil {
		return
	}
	c.UpstreamRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

// IncStaleResult counts a discarded search result.
func (c *Collector) IncStaleResult() {
	if c == nil {
		return
	}
	c.StaleResultsTotal.Inc()
}

// IncStorageError counts a failed history load, save or clear.
func (c *Collector) IncStorageError(operation string) {
	if c == nil {
		return
	}
	c.StorageErrorsTotal.WithLabelValues(operation).Inc()
}

// SetHistoryEntries updates the history size gauge.
func (c *Collector) SetHistoryEntries(n int) {
	if c == nil {
		return
	}
	c.HistoryEntriesGauge.Set(float64(n))
}
