// Package metrics provides Prometheus metrics for the rotation engine.
// Labels stay low-cardinality: no request, session or attendant ids.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DistributionsTotal counts distribution attempts by outcome
	// (assigned, no_attendant, invalid_state, error).
	DistributionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rotation_distributions_total",
		Help: "Total number of request distribution attempts, by outcome.",
	}, []string{"outcome"})

	// SessionTransitionsTotal counts committed session transitions.
	SessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rotation_session_transitions_total",
		Help: "Total number of session transitions, by transition.",
	}, []string{"transition"})

	QueueTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rotation_queue_transitions_total",
		Help: "Total number of queue membership changes, by operation.",
	}, []string{"operation"})

	ConflictRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_conflict_retries_total",
		Help: "Total number of transactions retried after a concurrent modification.",
	})

	SweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_sweep_runs_total",
		Help: "Total number of timeout sweep passes.",
	})

	SweepTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_sweep_timeouts_total",
		Help: "Total number of sessions finalized as timed out by the sweeper.",
	})

	// SweepFailuresTotal counts per-session sweep failures that were skipped.
	SweepFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_sweep_failures_total",
		Help: "Total number of per-session failures during timeout sweeps.",
	})

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rotation_notification_failures_total",
		Help: "Total number of notifications that could not be delivered, by sink.",
	}, []string{"sink"})

	// QueueLength tracks attendants currently in the rotation.
	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rotation_queue_length",
		Help: "Current number of available attendants in the rotation.",
	})
)
