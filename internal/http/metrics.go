package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics collects the counters and histograms exposed on /metrics.
// Registration happens once per process via newServerMetrics.
type serverMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	decisionsLogged prometheus.Counter
	negativeFlags   prometheus.Counter
	rateLimitHits   prometheus.Counter
	suspiciousReqs  prometheus.Counter
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)
	return &serverMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triad_http_requests_total",
			Help: "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triad_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		decisionsLogged: factory.NewCounter(prometheus.CounterOpts{
			Name: "triad_decisions_logged_total",
			Help: "Decisions appended through the dashboard.",
		}),
		negativeFlags: factory.NewCounter(prometheus.CounterOpts{
			Name: "triad_decision_negative_flags_total",
			Help: "Negative sector flags across logged decisions.",
		}),
		rateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "triad_rate_limit_hits_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		}),
		suspiciousReqs: factory.NewCounter(prometheus.CounterOpts{
			Name: "triad_suspicious_requests_total",
			Help: "Requests flagged by the request pattern checks.",
		}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triad_cache_hits_total",
			Help: "Cache hits by cache name.",
		}, []string{"cache"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "triad_cache_misses_total",
			Help: "Cache misses by cache name.",
		}, []string{"cache"}),
	}
}
