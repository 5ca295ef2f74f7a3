package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// Reconciles counts beacon reconcile passes by outcome.
	Reconciles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_reconciles_total",
			Help: "Number of beacon reconcile passes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	// ReadinessTimeouts counts waypoint readiness waits that hit the bound.
	ReadinessTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "beacon_waypoint_readiness_timeouts_total",
			Help: "Number of waypoint readiness waits that exceeded ready-timeout.",
		},
	)
	// ManagedPolicies tracks the AuthorizationPolicy objects per beacon.
	ManagedPolicies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "beacon_managed_authorization_policies",
			Help: "Number of AuthorizationPolicy objects currently managed.",
		},
		[]string{"namespace", "name"},
	)
)

func init() {
	ctrlmetrics.Registry.MustRegister(Reconciles, ReadinessTimeouts, ManagedPolicies)
}

// Outcome labels for the Reconciles counter.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)
