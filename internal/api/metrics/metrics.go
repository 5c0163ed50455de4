// Package metrics defines the custom Prometheus metrics of the marketplace
// API. HTTP request metrics come from the echoprometheus middleware; the
// counters here track the project lifecycle.
//
// All metrics are registered with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Project metrics ───────────────────────────────────────────────────────────

// ProjectsSubmittedTotal counts newly created project requests.
// Label:
//   - developer_type: the requested developer type as submitted
var ProjectsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_submitted_total",
		Help:      "Total number of project requests submitted, by developer type.",
	},
	[]string{"developer_type"},
)

// ProjectsReplayedTotal counts submissions answered from an earlier
// Idempotency-Key instead of creating a project.
var ProjectsReplayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_replayed_total",
		Help:      "Total number of project submissions served from an idempotency key.",
	},
)

// ProjectTransitionsTotal counts admin decisions.
// Label:
//   - status: "approved" or "rejected"
var ProjectTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_transitions_total",
		Help:      "Total number of project status transitions, by resulting status.",
	},
	[]string{"status"},
)

// ProjectTransitionErrorsTotal counts rejected admin decisions.
// Label:
//   - reason: "invalid_transition", "developer_unavailable", "type_mismatch", "not_found" or "error"
var ProjectTransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_transition_errors_total",
		Help:      "Total number of failed project status transitions, by reason.",
	},
	[]string{"reason"},
)

// ── Reconciler metrics ────────────────────────────────────────────────────────

// ReconcileRunsTotal counts reconciliation passes.
// Label:
//   - result: "ok" or "error"
var ReconcileRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_runs_total",
		Help:      "Total number of approval reconciliation passes, by result.",
	},
	[]string{"result"},
)

// ReconcileRepairsTotal counts developers whose availability was repaired.
var ReconcileRepairsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_repairs_total",
		Help:      "Total number of developer records repaired by reconciliation.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "created", "rejected" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// ObserveReconcile records the outcome of one reconciliation pass.
func ObserveReconcile(repaired int, err error) {
	if err != nil {
		ReconcileRunsTotal.WithLabelValues("error").Inc()
	} else {
		ReconcileRunsTotal.WithLabelValues("ok").Inc()
	}
	ReconcileRepairsTotal.Add(float64(repaired))
}
