package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	catalogChecksTotal   *prometheus.CounterVec
	publishFailuresTotal prometheus.Counter
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	catalogChecksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oa",
			Subsystem: "worker",
			Name:      "catalog_checks_total",
			Help:      "Total catalog file checks by result.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"result"},
	)
	publishFailuresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "oa",
			Subsystem: "worker",
			Name:      "publish_failures_total",
			Help:      "Total failed catalog-updated publishes.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(catalogChecksTotal, publishFailuresTotal)

	return &WorkerMetrics{
		registry:             registry,
		catalogChecksTotal:   catalogChecksTotal,
		publishFailuresTotal: publishFailuresTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) RecordCheck(result string) {
	m.catalogChecksTotal.WithLabelValues(result).Inc()
}

func (m *WorkerMetrics) RecordPublishFailure() {
	m.publishFailuresTotal.Inc()
}
