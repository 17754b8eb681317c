// Package metrics holds the Prometheus collectors for the authentication flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the auth counters.
const (
	OutcomeSuccess            = "success"
	OutcomeDuplicateUsername  = "duplicate_username"
	OutcomeDuplicateEmail     = "duplicate_email"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInactive           = "inactive"
	OutcomeExpired            = "expired"
	OutcomeInvalidSignature   = "invalid_signature"
	OutcomeMalformed          = "malformed"
	OutcomeUnknownSubject     = "unknown_subject"
	OutcomeError              = "error"
)

var (
	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of registration attempts by outcome",
	}, []string{"outcome"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	tokenResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_resolutions_total",
		Help: "Total number of bearer token resolutions by outcome",
	}, []string{"outcome"})

	tokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Total number of signed tokens by kind",
	}, []string{"kind"})

	hashDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auth_password_hash_duration_seconds",
		Help:    "Histogram of password hashing latency in seconds",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	})
)

func RecordRegistration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

func RecordLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}

func RecordTokenResolution(outcome string) {
	tokenResolutions.WithLabelValues(outcome).Inc()
}

func RecordTokenIssued(kind string) {
	tokensIssued.WithLabelValues(kind).Inc()
}

func ObserveHash(d time.Duration) {
	hashDuration.Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
