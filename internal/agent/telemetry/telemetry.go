// Package telemetry exposes the service's Prometheus metrics. Collectors are
// registered on the default registry and served by the HTTP layer at
// /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Turns counts completed conversation turns by terminal agent.
	Turns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paperchat",
		Name:      "turns_total",
		Help:      "Completed conversation turns, labelled by the agent that produced the final answer.",
	}, []string{"last_agent"})

	// TurnDuration observes wall time of a full graph traversal.
	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "paperchat",
		Name:      "turn_duration_seconds",
		Help:      "Duration of a full conversation turn.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// NodeExecutions counts agent node executions by node name.
	NodeExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paperchat",
		Name:      "node_executions_total",
		Help:      "Agent node executions.",
	}, []string{"node"})

	// NodeDuration observes per-node execution time.
	NodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "paperchat",
		Name:      "node_duration_seconds",
		Help:      "Duration of a single agent node execution.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"node"})

	// ToolInvocations counts research tool calls by tool name.
	ToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paperchat",
		Name:      "tool_invocations_total",
		Help:      "Research tool invocations.",
	}, []string{"tool"})

	// CheckpointFailures counts checkpoint writes that had to be skipped.
	CheckpointFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paperchat",
		Name:      "checkpoint_failures_total",
		Help:      "Checkpoint store writes that failed and were logged instead of aborting the turn.",
	})
)
