package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the document processing pipeline.
type WorkerMetrics struct {
	registry *prometheus.Registry

	processedTotal  *prometheus.CounterVec
	processDuration prometheus.Histogram
	inFlight        prometheus.Gauge
}

func NewWorkerMetrics() *WorkerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &WorkerMetrics{
		registry: reg,
		processedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "documents_processed_total",
			Help:      "Documents taken through the ingestion pipeline, by outcome.",
		}, []string{"outcome"}),
		processDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "process_duration_seconds",
			Help:      "End to end processing time per document.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docqa",
			Subsystem: "worker",
			Name:      "documents_in_flight",
			Help:      "Documents currently being processed.",
		}),
	}
	reg.MustRegister(m.processedTotal, m.processDuration, m.inFlight)
	return m
}

func (m *WorkerMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveProcessed(outcome string, seconds float64) {
	m.processedTotal.WithLabelValues(outcome).Inc()
	m.processDuration.Observe(seconds)
}

func (m *WorkerMetrics) TrackInFlight() func() {
	m.inFlight.Inc()
	return m.inFlight.Dec
}
