package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "seva", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seva", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "seva", Name: "api_requests_total", Help: "Outbound admin API requests."},
		[]string{"endpoint", "method", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seva", Name: "api_request_duration_seconds",
			Help:    "Outbound admin API request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "seva", Name: "token_refreshes_total", Help: "Access token refresh attempts."},
		[]string{"outcome"}, // outcome: ok|failed
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, APIRequests, APILatency, TokenRefreshes)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveAPI(endpoint, method string, status int, dur time.Duration) {
	APIRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	APILatency.WithLabelValues(endpoint, method).Observe(dur.Seconds())
}

func ObserveRefresh(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	TokenRefreshes.WithLabelValues(outcome).Inc()
}
