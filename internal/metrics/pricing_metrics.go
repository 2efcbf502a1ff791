package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes used as metric labels.
const (
	OutcomePriced      = "priced"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// PricingMetrics tracks price lookups and valuation jobs. All methods are
// safe on a nil receiver so components can run without metrics.
type PricingMetrics struct {
	registry *prometheus.Registry

	lookups       *prometheus.CounterVec
	lookupLatency prometheus.Histogram
	jobs          *prometheus.CounterVec
	activeJobs    prometheus.Gauge

	Lookups            atomic.Uint64
	LookupsPriced      atomic.Uint64
	LookupsNotFound    atomic.Uint64
	LookupsUnavailable atomic.Uint64
	JobsStarted        atomic.Uint64
	JobsCompleted      atomic.Uint64
	JobsFailed         atomic.Uint64

	latency   *Window
	startTime time.Time
}

// NewPricingMetrics creates metrics registered on their own registry.
func NewPricingMetrics() *PricingMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PricingMetrics{
		registry: reg,
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "precon",
				Name:      "price_lookups_total",
				Help:      "Price lookups against the card pricing service by outcome.",
			},
			[]string{"outcome"},
		),
		lookupLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "precon",
				Name:      "price_lookup_duration_seconds",
				Help:      "Latency of price lookups, excluding pacing delay.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		jobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "precon",
				Name:      "valuation_jobs_total",
				Help:      "Valuation jobs by terminal status.",
			},
			[]string{"status"},
		),
		activeJobs: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "precon",
				Name:      "valuation_jobs_active",
				Help:      "Valuation jobs currently running.",
			},
		),
		latency:   NewWindow(defaultWindowSize),
		startTime: time.Now(),
	}
}

// RecordLookup records one resolver call.
func (m *PricingMetrics) RecordLookup(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupLatency.Observe(d.Seconds())
	m.latency.Record(d)

	m.Lookups.Add(1)
	switch outcome {
	case OutcomePriced:
		m.LookupsPriced.Add(1)
	case OutcomeNotFound:
		m.LookupsNotFound.Add(1)
	default:
		m.LookupsUnavailable.Add(1)
	}
}

// JobStarted records a job entering processing.
func (m *PricingMetrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsStarted.Add(1)
	m.activeJobs.Inc()
}

// JobFinished records a job reaching a terminal status.
func (m *PricingMetrics) JobFinished(status string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(status).Inc()
	m.activeJobs.Dec()
	if status == "completed" {
		m.JobsCompleted.Add(1)
	} else {
		m.JobsFailed.Add(1)
	}
}

// Handler serves the Prometheus exposition format.
func (m *PricingMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for extra collectors.
func (m *PricingMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// PricingStats is a JSON snapshot of PricingMetrics.
type PricingStats struct {
	LookupLatency      LatencyStats `json:"lookup_latency"`
	Lookups            uint64       `json:"lookups"`
	LookupsPriced      uint64       `json:"lookups_priced"`
	LookupsNotFound    uint64       `json:"lookups_not_found"`
	LookupsUnavailable uint64       `json:"lookups_unavailable"`
	PricedRate         float64      `json:"priced_rate"` // percentage
	JobsStarted        uint64       `json:"jobs_started"`
	JobsCompleted      uint64       `json:"jobs_completed"`
	JobsFailed         uint64       `json:"jobs_failed"`
	Uptime             string       `json:"uptime"`
}

// GetStats returns a snapshot of the current statistics.
func (m *PricingMetrics) GetStats() *PricingStats {
	if m == nil {
		return &PricingStats{}
	}

	lookups := m.Lookups.Load()
	priced := m.LookupsPriced.Load()

	rate := 0.0
	if lookups > 0 {
		rate = float64(priced) / float64(lookups) * 100
	}

	return &PricingStats{
		LookupLatency:      m.latency.Snapshot(),
		Lookups:            lookups,
		LookupsPriced:      priced,
		LookupsNotFound:    m.LookupsNotFound.Load(),
		LookupsUnavailable: m.LookupsUnavailable.Load(),
		PricedRate:         rate,
		JobsStarted:        m.JobsStarted.Load(),
		JobsCompleted:      m.JobsCompleted.Load(),
		JobsFailed:         m.JobsFailed.Load(),
		Uptime:             time.Since(m.startTime).Round(time.Second).String(),
	}
}
