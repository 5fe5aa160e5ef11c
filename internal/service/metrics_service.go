package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	inspectionsCreated *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	feedback           *prometheus.CounterVec
	signIns            *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	createdCount         uint64
	transitionCount      uint64
	feedbackCount        uint64
	signInSuccessCount   uint64
	signInFailureCount   uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	inspectionsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inspections_created_total",
		Help: "Inspections submitted by students",
	}, []string{"category"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inspection_transitions_total",
		Help: "Inspection status changes",
	}, []string{"from", "to"})

	feedback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inspection_feedback_total",
		Help: "Feedback entries submitted for resolved inspections",
	}, []string{"rating"})

	signIns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sign_in_attempts_total",
		Help: "Sign-in attempts by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, inspectionsCreated, transitions, feedback, signIns, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		inspectionsCreated: inspectionsCreated,
		transitions:        transitions,
		feedback:           feedback,
		signIns:            signIns,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying Prometheus registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordInspectionCreated counts a new submission.
func (m *MetricsService) RecordInspectionCreated(category string) {
	if m == nil {
		return
	}
	m.inspectionsCreated.WithLabelValues(category).Inc()
	atomic.AddUint64(&m.createdCount, 1)
}

// RecordTransition counts a status change.
func (m *MetricsService) RecordTransition(from, to models.InspectionStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
	atomic.AddUint64(&m.transitionCount, 1)
}

// RecordFeedback counts a rating.
func (m *MetricsService) RecordFeedback(rating int) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues(strconv.Itoa(rating)).Inc()
	atomic.AddUint64(&m.feedbackCount, 1)
}

// RecordSignIn counts a sign-in attempt.
func (m *MetricsService) RecordSignIn(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
		atomic.AddUint64(&m.signInSuccessCount, 1)
	} else {
		atomic.AddUint64(&m.signInFailureCount, 1)
	}
	m.signIns.WithLabelValues(result).Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		InspectionsCreated:       atomic.LoadUint64(&m.createdCount),
		StatusTransitions:        atomic.LoadUint64(&m.transitionCount),
		FeedbackSubmitted:        atomic.LoadUint64(&m.feedbackCount),
		SignInSuccess:            atomic.LoadUint64(&m.signInSuccessCount),
		SignInFailure:            atomic.LoadUint64(&m.signInFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
