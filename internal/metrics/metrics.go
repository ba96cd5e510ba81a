// Package metrics provides Prometheus and expvar metrics for the service
package metrics

import (
	"expvar"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// decodes is published at /debug/vars. It is process global like expvar itself.
var decodes = expvar.NewMap("decodes")

// Metrics holds all Prometheus metrics of the service
type Metrics struct {
	Registry *prometheus.Registry

	DecodesTotal   *prometheus.CounterVec
	DecodeDuration *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	RejectedTotal  *prometheus.CounterVec
}

// New creates all metrics and registers them with a new registry
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.DecodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oms_decodes_total",
			Help: "Total number of decoded payloads",
		},
		[]string{"kind", "dialect"},
	)

	m.DecodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oms_decode_duration_seconds",
			Help:    "Duration of parsing and decoding a payload in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"kind"},
	)

	m.CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oms_cache_lookups_total",
			Help: "Cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	m.RejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oms_rejected_requests_total",
			Help: "Requests rejected before decoding, by reason",
		},
		[]string{"reason"},
	)

	m.Registry.MustRegister(
		m.DecodesTotal,
		m.DecodeDuration,
		m.CacheLookups,
		m.RejectedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordDecode records a finished decode of the given kind
// ("metadata" or "custom-properties"). dialect may be empty.
func (m *Metrics) RecordDecode(kind, dialect string, started time.Time) {
	if dialect == "" {
		dialect = "none"
	}
	m.DecodesTotal.WithLabelValues(kind, dialect).Inc()
	m.DecodeDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	decodes.Add(kind, 1)
}

// RecordCacheLookup counts a cache lookup result: "hit", "miss" or "error"
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordRejected counts a request that was refused before decoding
func (m *Metrics) RecordRejected(reason string) {
	m.RejectedTotal.WithLabelValues(reason).Inc()
}
