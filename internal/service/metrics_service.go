package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. A nil
// *MetricsService is valid and records nothing.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	cacheLatency      prometheus.Histogram
	reviewsSubmitted  prometheus.Counter
	batchesSubmitted  prometheus.Counter
	periodTransitions *prometheus.CounterVec
	aggregationTime   prometheus.Histogram
}

// NewMetricsService registers the service collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_cache_lookups_total",
			Help: "Results cache lookups partitioned by outcome",
		}, []string{"outcome"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "results_cache_latency_seconds",
			Help:    "Latency for results cache operations",
			Buckets: prometheus.DefBuckets,
		}),
		reviewsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peer_reviews_submitted_total",
			Help: "Peer review entries received in committed batch submissions",
		}),
		batchesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peer_review_batches_submitted_total",
			Help: "Committed batch submissions",
		}),
		periodTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_period_transitions_total",
			Help: "Review period activation state changes",
		}, []string{"action"}),
		aggregationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "results_aggregation_seconds",
			Help:    "Time spent computing group results from raw reviews",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.cacheLookups,
		m.cacheLatency,
		m.reviewsSubmitted,
		m.batchesSubmitted,
		m.periodTransitions,
		m.aggregationTime,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// RecordBatchSubmission counts a committed batch and the reviews it carried.
func (m *MetricsService) RecordBatchSubmission(reviews int) {
	if m == nil {
		return
	}
	m.batchesSubmitted.Inc()
	m.reviewsSubmitted.Add(float64(reviews))
}

// IncPeriodTransition counts period activation changes.
func (m *MetricsService) IncPeriodTransition(action string) {
	if m == nil {
		return
	}
	m.periodTransitions.WithLabelValues(action).Inc()
}

// ObserveAggregation records time spent aggregating group results.
func (m *MetricsService) ObserveAggregation(duration time.Duration) {
	if m == nil {
		return
	}
	m.aggregationTime.Observe(duration.Seconds())
}
