package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal  *prometheus.CounterVec
	retrievalDuration  *prometheus.HistogramVec
	retrievedMatches   *prometheus.HistogramVec
	degradedStageTotal *prometheus.CounterVec
	noMatchTotal       *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "oa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oa",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total completed chat requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oa",
			Subsystem: "chat",
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval pipeline duration in seconds (stages 1-3).",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	retrievedMatches := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oa",
			Subsystem: "chat",
			Name:      "retrieved_matches",
			Help:      "Distribution of matches returned per chat request.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	degradedStageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oa",
			Subsystem: "chat",
			Name:      "degraded_stage_total",
			Help:      "Total pipeline stages that fell back to their fail-safe.",
		},
		[]string{"service", "stage"},
	)
	noMatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oa",
			Subsystem: "chat",
			Name:      "no_match_total",
			Help:      "Total chat requests that produced no opportunities.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		retrievalDuration,
		retrievedMatches,
		degradedStageTotal,
		noMatchTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatRequestsTotal:  chatRequestsTotal,
		retrievalDuration:  retrievalDuration,
		retrievedMatches:   retrievedMatches,
		degradedStageTotal: degradedStageTotal,
		noMatchTotal:       noMatchTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordChatObservation(service, outcome string, matchCount int, retrievalLatency time.Duration) {
	m.chatRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.retrievedMatches.WithLabelValues(service).Observe(float64(matchCount))
	m.retrievalDuration.WithLabelValues(service).Observe(retrievalLatency.Seconds())
	if matchCount == 0 {
		m.noMatchTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordDegradedStage(service, stage string) {
	m.degradedStageTotal.WithLabelValues(service, stage).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
