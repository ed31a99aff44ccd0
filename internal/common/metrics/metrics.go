// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StepsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_steps_completed_total",
			Help: "Total number of pipeline steps completed, by step and data tier",
		},
		[]string{"step", "tier"},
	)

	StepsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_steps_rejected_total",
			Help: "Total number of step submissions rejected by input validation",
		},
		[]string{"step", "field"},
	)

	ConnectorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_connector_fallbacks_total",
			Help: "Total number of connector tier drops, by connector and cause",
		},
		[]string{"connector", "cause"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_step_duration_seconds",
			Help: "Duration of step processing in seconds",
		},
		[]string{"step"},
	)

	StaleResponsesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stale_responses_discarded_total",
			Help: "Connector results discarded because their step was restarted",
		},
		[]string{"step"},
	)
)
