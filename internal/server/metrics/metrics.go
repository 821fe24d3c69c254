// Package metrics holds the Prometheus collectors of the server. They are
// registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todolist_registrations_total",
			Help: "Registration attempts by result",
		},
		[]string{"result"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todolist_login_attempts_total",
			Help: "Authentication attempts by result",
		},
		[]string{"result"},
	)
	SessionResolves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todolist_session_resolves_total",
			Help: "Session handle resolutions by result",
		},
		[]string{"result"},
	)
	SessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "todolist_sessions_purged_total",
			Help: "Expired sessions removed by the janitor",
		},
	)
	NoMatchingRow = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todolist_no_matching_row_total",
			Help: "Conditioned writes that affected zero rows, by operation",
		},
		[]string{"operation"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todolist_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)
)

// Result label values.
const (
	ResultOK                 = "ok"
	ResultTaken              = "taken"
	ResultInvalid            = "invalid"
	ResultUserNotFound       = "user_not_found"
	ResultInvalidCredentials = "invalid_credentials"
	ResultCorrupt            = "corrupt"
	ResultError              = "error"
)

func init() {
	prometheus.MustRegister(Registrations)
	prometheus.MustRegister(LoginAttempts)
	prometheus.MustRegister(SessionResolves)
	prometheus.MustRegister(SessionsPurged)
	prometheus.MustRegister(NoMatchingRow)
	prometheus.MustRegister(HTTPRequests)
}
