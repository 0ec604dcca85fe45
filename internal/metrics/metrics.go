// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for account operations.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// HTTPRequests counts handled requests by method, matched route and status code.
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tamuroo_http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "tamuroo_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AccountOperations counts lifecycle operations (register, login, ...) by outcome.
var AccountOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tamuroo_account_operations_total",
		Help: "Total number of account lifecycle operations",
	},
	[]string{"operation", "result"},
)

var MailFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tamuroo_mail_failures_total",
		Help: "Total number of notification mails that could not be delivered",
	},
	[]string{"kind"},
)

// RegisterMetrics registers all collectors with reg. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPRequestDuration)
	reg.MustRegister(AccountOperations)
	reg.MustRegister(MailFailures)
}

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordAccountOperation(operation, result string) {
	AccountOperations.WithLabelValues(operation, result).Inc()
}

func RecordMailFailure(kind string) {
	MailFailures.WithLabelValues(kind).Inc()
}
