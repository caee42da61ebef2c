package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"backend", "result"},
	)

	// Signups counts accounts created per backend.
	Signups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_signups_total",
			Help: "Total number of accounts created",
		},
		[]string{"backend"},
	)

	// GateDecisions counts Authentication Gate outcomes (allow|missing|revoked|invalid).
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_gate_decisions_total",
			Help: "Total number of bearer token checks by outcome",
		},
		[]string{"result"},
	)

	// RevokedTokens tracks entries currently held by the revocation registry.
	RevokedTokens = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accountd_revoked_tokens",
			Help: "Number of revoked tokens awaiting natural expiry",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accountd_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
