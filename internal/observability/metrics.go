// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rthefinder/USDG/internal/storage"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Launch lifecycle metrics
	LaunchesCreated  prometheus.Counter
	PhaseTransitions *prometheus.CounterVec
	LaunchesActive   prometheus.Gauge

	// Admission metrics
	PurchasesAdmitted prometheus.Counter
	PurchasesRejected *prometheus.CounterVec
	PurchaseVolume    prometheus.Counter

	// Notification metrics
	EventsPublished      *prometheus.CounterVec
	EventPublishFailures *prometheus.CounterVec

	// Verification metrics
	ReportsGenerated  *prometheus.CounterVec
	AuthorityChecks   prometheus.Counter
	StatsRefreshes    prometheus.Counter
	WorkerRunDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "usdg"
	}

	return &Metrics{
		// Launch lifecycle metrics
		LaunchesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launchpad",
			Name:      "launches_created_total",
			Help:      "Total number of launches created",
		}),
		PhaseTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launchpad",
			Name:      "phase_transitions_total",
			Help:      "Total number of phase transitions by target phase",
		}, []string{"phase"}),
		LaunchesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "launchpad",
			Name:      "launches_active",
			Help:      "Number of launches not yet finalized",
		}),

		// Admission metrics
		PurchasesAdmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "purchases_admitted_total",
			Help:      "Total number of admitted purchases",
		}),
		PurchasesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "purchases_rejected_total",
			Help:      "Total number of rejected purchases by reason",
		}, []string{"reason"}),
		PurchaseVolume: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "purchase_volume_total",
			Help:      "Total admitted purchase volume in base units",
		}),

		// Notification metrics
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_published_total",
			Help:      "Total number of notification events published by type",
		}, []string{"event_type"}),
		EventPublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "event_publish_failures_total",
			Help:      "Total number of notification publish failures by sink",
		}, []string{"sink"}),

		// Verification metrics
		ReportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verify",
			Name:      "reports_generated_total",
			Help:      "Total number of verification reports generated by overall status",
		}, []string{"status"}),
		AuthorityChecks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verify",
			Name:      "authority_checks_total",
			Help:      "Total number of on-chain authority checks",
		}),
		StatsRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "stats_refreshes_total",
			Help:      "Total number of launch stats refreshes",
		}),
		WorkerRunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "run_duration_seconds",
			Help:      "Background worker run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"job"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordLaunchCreated increments the launches created counter.
func RecordLaunchCreated() {
	DefaultMetrics.LaunchesCreated.Inc()
	DefaultMetrics.LaunchesActive.Inc()
}

// RecordPhaseTransition increments the transition counter for a phase.
func RecordPhaseTransition(phase string) {
	DefaultMetrics.PhaseTransitions.WithLabelValues(phase).Inc()
}

// RecordLaunchFinalized records the transition and drops the active gauge.
func RecordLaunchFinalized() {
	DefaultMetrics.PhaseTransitions.WithLabelValues("FINALIZED").Inc()
	DefaultMetrics.LaunchesActive.Dec()
}

// RecordPurchaseAdmitted increments admission counters and volume.
func RecordPurchaseAdmitted(amount uint64) {
	DefaultMetrics.PurchasesAdmitted.Inc()
	DefaultMetrics.PurchaseVolume.Add(float64(amount))
}

// RecordPurchaseRejected increments the rejection counter for a reason.
func RecordPurchaseRejected(reason string) {
	DefaultMetrics.PurchasesRejected.WithLabelValues(reason).Inc()
}

// RecordEventPublished increments the published-events counter.
func RecordEventPublished(eventType string) {
	DefaultMetrics.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventPublishFailure increments the publish-failure counter for a sink.
func RecordEventPublishFailure(sink string) {
	DefaultMetrics.EventPublishFailures.WithLabelValues(sink).Inc()
}

// ObserveDBQuery records a store operation's duration and, when it
// failed, its error. Intended as a deferred call with the method's
// named error return; the sentinel lookup outcomes ErrNotFound and
// ErrDuplicateKey do not count as query errors.
func ObserveDBQuery(database, operation string, start time.Time, err *error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(time.Since(start).Seconds())
	if err == nil || *err == nil {
		return
	}
	if errors.Is(*err, storage.ErrNotFound) || errors.Is(*err, storage.ErrDuplicateKey) {
		return
	}
	DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
}
