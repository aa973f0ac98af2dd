package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	Resolved = "resolved"
	NotFound = "not_found"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portaransas", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portaransas", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ContentLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portaransas", Name: "content_lookups_total", Help: "Entity lookups by kind and outcome."},
		[]string{"kind", "outcome"}, // outcome: resolved|not_found
	)
	Leads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portaransas", Name: "leads_total", Help: "Lead form submissions."},
		[]string{"result"}, // result: saved|invalid|limited|error
	)
	ChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portaransas", Name: "chat_requests_total", Help: "Chat assistant requests."},
		[]string{"result"},
	)
)

// InitRegistry returns a fresh registry with every collector registered.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ContentLookups, Leads, ChatRequests)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveLookup records whether a resolver call found its entity.
func ObserveLookup(kind string, found bool) {
	outcome := NotFound
	if found {
		outcome = Resolved
	}
	ContentLookups.WithLabelValues(kind, outcome).Inc()
}

func ObserveLead(result string) { Leads.WithLabelValues(result).Inc() }

func ObserveChat(result string) { ChatRequests.WithLabelValues(result).Inc() }
