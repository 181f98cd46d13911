package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_transitions_total",
		Help: "Total number of escrow operations, labelled by operation and outcome.",
	}, []string{"operation", "outcome"})

	TransitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "escrow_transition_duration_ms",
		Help:    "Escrow operation latency in milliseconds, lease to commit.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"operation"})

	GatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_gateway_calls_total",
		Help: "Total number of payment processor calls, labelled by call and result.",
	}, []string{"call", "result"})

	LeaseContention = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrow_lease_contention_total",
		Help: "Total number of lease acquisitions that found the transaction busy.",
	})

	ReconciliationAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_reconciliation_alerts_total",
		Help: "Total number of ledger and processor disagreements needing manual reconciliation.",
	}, []string{"reason"})

	Webhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_webhooks_total",
		Help: "Total number of processor notifications, labelled by type and outcome.",
	}, []string{"type", "outcome"})

	SweepItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_sweep_items_total",
		Help: "Total number of transactions visited by sweeps, labelled by job and outcome.",
	}, []string{"job", "outcome"})

	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_scheduler_runs_total",
		Help: "Total number of scheduled job runs, labelled by job and outcome.",
	}, []string{"job", "outcome"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escrow_notifications_dropped_total",
		Help: "Total number of notices rejected due to a full dispatch queue.",
	})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_notifications_failed_total",
		Help: "Total number of notices a sink failed to deliver, labelled by kind.",
	}, []string{"kind"})
)
