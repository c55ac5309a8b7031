package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API
// and the matching engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	connectionTotal *prometheus.CounterVec
	matchQueries    prometheus.Counter
	matchDuration   prometheus.Histogram
	matchResultSize prometheus.Histogram
}

// NewMetricsService registers the service's Prometheus collectors on a
// private registry.
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_cache_hits_total",
		Help: "Match pages served from Redis",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_cache_misses_total",
		Help: "Match pages computed from the database",
	})

	connectionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_transitions_total",
		Help: "Connection lifecycle transitions by outcome",
	}, []string{"outcome"})

	matchQueries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_queries_total",
		Help: "Total match queries served",
	})

	matchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_query_duration_seconds",
		Help:    "Time spent scoring and ranking a match query",
		Buckets: prometheus.DefBuckets,
	})

	matchResultSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_result_candidates",
		Help:    "Candidates surviving the score threshold per query",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		connectionTotal, matchQueries, matchDuration, matchResultSize, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		connectionTotal: connectionTotal,
		matchQueries:    matchQueries,
		matchDuration:   matchDuration,
		matchResultSize: matchResultSize,
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

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup counts a match-cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordConnectionTransition counts a lifecycle outcome such as
// "requested", "accepted", "rejected" or "removed".
func (m *MetricsService) RecordConnectionTransition(outcome string) {
	if m == nil {
		return
	}
	m.connectionTotal.WithLabelValues(outcome).Inc()
}

// ObserveMatchQuery records timing and result volume for one scored
// match query.
func (m *MetricsService) ObserveMatchQuery(duration time.Duration, candidates int) {
	if m == nil {
		return
	}
	m.matchQueries.Inc()
	m.matchDuration.Observe(duration.Seconds())
	m.matchResultSize.Observe(float64(candidates))
}
