package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics tracks calls to the roster service and the size of the loaded collections.
type Metrics struct {
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	collectionSize   *prometheus.GaugeVec
	statusToggles    *prometheus.CounterVec
	feedPublishes    *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		upstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_upstream_requests_total",
				Help: "Roster service requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admin_upstream_request_duration_seconds",
				Help:    "Roster service request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		collectionSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "admin_collection_size",
				Help: "Records held after the last successful load",
			},
			[]string{"collection"},
		),
		statusToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_status_toggles_total",
				Help: "Confirmed status toggles by resulting status",
			},
			[]string{"status"},
		),
		feedPublishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_feed_publishes_total",
				Help: "Status change feed publishes by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveUpstream records one roster service call.
func (m *Metrics) ObserveUpstream(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.upstreamCalls.WithLabelValues(operation, outcome).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// SetCollectionSize records how many records a collection holds.
func (m *Metrics) SetCollectionSize(collection string, n int) {
	if m == nil {
		return
	}
	m.collectionSize.WithLabelValues(collection).Set(float64(n))
}

// TrackToggle counts a confirmed toggle.
func (m *Metrics) TrackToggle(status string) {
	if m == nil {
		return
	}
	m.statusToggles.WithLabelValues(status).Inc()
}

// TrackPublish counts a feed publish attempt.
func (m *Metrics) TrackPublish(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.feedPublishes.WithLabelValues(OutcomeError).Inc()
		return
	}
	m.feedPublishes.WithLabelValues(OutcomeOK).Inc()
}
