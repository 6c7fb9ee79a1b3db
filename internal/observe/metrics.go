package observe

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recall"

// Metrics holds the store collectors on a private registry so that several
// observers can coexist in one process (tests, multiple store sets).
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	records         *prometheus.GaugeVec
	saveDuration    *prometheus.HistogramVec
}

// NewMetrics builds and registers the store collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Store operations by record kind and operation.",
		}, []string{"kind", "op"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_write_failures_total",
			Help:      "Snapshot writes that failed, by record kind.",
		}, []string{"kind"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records currently held, by record kind.",
		}, []string{"kind"}),
		saveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_save_seconds",
			Help:      "Time spent writing a full snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.operations, m.persistFailures, m.records, m.saveDuration)
	return m
}

// RecordOp counts one store operation.
func (m *Metrics) RecordOp(kind, op string) {
	m.operations.WithLabelValues(kind, op).Inc()
}

// RecordPersistFailure counts a failed snapshot write.
func (m *Metrics) RecordPersistFailure(kind string) {
	m.persistFailures.WithLabelValues(kind).Inc()
}

// RecordSave observes the latency of a snapshot write.
func (m *Metrics) RecordSave(kind string, d time.Duration) {
	m.saveDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// SetRecords updates the record gauge.
func (m *Metrics) SetRecords(kind string, n int) {
	m.records.WithLabelValues(kind).Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
