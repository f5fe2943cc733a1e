// Package metrics registers the intake server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of application submissions by outcome",
		},
		[]string{"outcome"},
	)

	ListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_listings_total",
			Help: "Total number of reviewer listing requests by outcome",
		},
		[]string{"outcome"},
	)

	ReviewerLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_reviewer_logins_total",
			Help: "Total number of reviewer login attempts by outcome",
		},
		[]string{"outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)
