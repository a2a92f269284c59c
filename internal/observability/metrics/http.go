package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

// ServerMetrics owns a private registry with the HTTP server series and
// the claim-pipeline series.
type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsProcessed   *prometheus.CounterVec
	decisionsTotal       *prometheus.CounterVec
	processingDuration   prometheus.Histogram
	extractionConfidence prometheus.Histogram
	validationFindings   *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medclaims",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medclaims",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medclaims",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medclaims",
			Subsystem: "pipeline",
			Name:      "documents_processed_total",
			Help:      "Documents run through the pipeline by classified type.",
		},
		[]string{"service", "document_type"},
	)
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medclaims",
			Subsystem: "pipeline",
			Name:      "claim_decisions_total",
			Help:      "Final claim decisions by status.",
		},
		[]string{"service", "status"},
	)
	processingDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "medclaims",
			Subsystem: "pipeline",
			Name:      "claim_processing_duration_seconds",
			Help:      "End-to-end claim processing duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	extractionConfidence := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "medclaims",
			Subsystem: "pipeline",
			Name:      "extraction_confidence",
			Help:      "Distribution of per-document extraction confidence.",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	validationFindings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medclaims",
			Subsystem: "pipeline",
			Name:      "validation_findings_total",
			Help:      "Validation findings by kind (missing, discrepancy, warning).",
		},
		[]string{"service", "kind"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsProcessed,
		decisionsTotal,
		processingDuration,
		extractionConfidence,
		validationFindings,
	)

	return &ServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		documentsProcessed:   documentsProcessed,
		decisionsTotal:       decisionsTotal,
		processingDuration:   processingDuration,
		extractionConfidence: extractionConfidence,
		validationFindings:   validationFindings,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
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

// RecordClaim records everything one processed claim contributes to the
// pipeline series.
func (m *ServerMetrics) RecordClaim(service string, resp domain.ClaimProcessingResponse) {
	for _, doc := range resp.Documents {
		m.documentsProcessed.WithLabelValues(service, string(doc.Type)).Inc()
		if doc.Confidence > 0 {
			m.extractionConfidence.Observe(doc.Confidence)
		}
	}

	status := string(resp.ClaimDecision.Status)
	if status == "" {
		status = "unknown"
	}
	m.decisionsTotal.WithLabelValues(service, status).Inc()
	m.processingDuration.Observe(resp.ProcessingTime)

	m.recordFindings(service, "missing", len(resp.Validation.MissingDocuments))
	m.recordFindings(service, "discrepancy", len(resp.Validation.Discrepancies))
	m.recordFindings(service, "warning", len(resp.Validation.Warnings))
}

func (m *ServerMetrics) recordFindings(service, kind string, count int) {
	if count <= 0 {
		return
	}
	m.validationFindings.WithLabelValues(service, kind).Add(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
