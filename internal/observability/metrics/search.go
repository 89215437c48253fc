package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics tracks per-strategy retrieval behaviour. It satisfies the
// core SearchMonitor port.
type SearchMetrics struct {
	strategyDuration *prometheus.HistogramVec
	strategyHits     *prometheus.HistogramVec
	strategyTimeouts *prometheus.CounterVec
}

func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	m := &SearchMetrics{
		strategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "search",
			Name:      "strategy_duration_seconds",
			Help:      "Latency of a single retrieval strategy.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		strategyHits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "search",
			Name:      "strategy_hits",
			Help:      "Number of hits a strategy contributed before fusion.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"strategy"}),
		strategyTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "search",
			Name:      "strategy_timeouts_total",
			Help:      "Strategies that exceeded their budget and were dropped from fusion.",
		}, []string{"strategy"}),
	}
	reg.MustRegister(m.strategyDuration, m.strategyHits, m.strategyTimeouts)
	return m
}

func (m *SearchMetrics) ObserveStrategy(strategy string, duration time.Duration, hits int, timedOut bool) {
	m.strategyDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.strategyHits.WithLabelValues(strategy).Observe(float64(hits))
	if timedOut {
		m.strategyTimeouts.WithLabelValues(strategy).Inc()
	}
}
