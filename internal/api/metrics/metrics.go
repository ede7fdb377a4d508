// Package metrics defines and registers the Prometheus metrics of the
// access-control service. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics are registered with the default registry through promauto when
// the package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/appiso/access-control/internal/core/ports"
)

const namespace = "access_control"

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login outcomes.
// Labels:
//   - result: "success" or "rejected"
//   - reason: rejection reason ("unknown_account", "inactive", "locked",
//     "bad_credentials"), empty on success
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result and rejection reason.",
	},
	[]string{"result", "reason"},
)

// AccountLockoutsTotal counts transitions of an account into the locked state.
var AccountLockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_lockouts_total",
		Help:      "Total number of accounts locked after repeated failed logins.",
	},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// TokenVerificationsTotal counts bearer token checks.
// Label:
//   - result: "valid", "missing", "invalid" or "expired"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// AuthorizationDecisionsTotal counts policy decisions.
// Labels:
//   - policy: policy name (e.g. "CanViewSalaries")
//   - decision: "allow" or "deny"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization decisions, by policy and outcome.",
	},
	[]string{"policy", "decision"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: the matched route pattern (e.g. "/employees/:id/salary")
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// LoginObserver records login outcomes into the counters above.
type LoginObserver struct{}

func NewLoginObserver() LoginObserver {
	return LoginObserver{}
}

func (LoginObserver) LoginSucceeded() {
	LoginAttemptsTotal.WithLabelValues("success", "").Inc()
}

func (LoginObserver) LoginRejected(reason string) {
	LoginAttemptsTotal.WithLabelValues("rejected", reason).Inc()
}

func (LoginObserver) AccountLocked() {
	AccountLockoutsTotal.Inc()
}

var _ ports.LoginObserver = LoginObserver{}
