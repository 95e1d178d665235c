// internal/planning/metrics.go

package planning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planning_plans_generated_total",
		Help: "Total number of event plans generated",
	})

	planDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planning_plan_duration_seconds",
		Help:    "Time spent computing an event plan",
		Buckets: prometheus.DefBuckets,
	})

	eventTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planning_event_transitions_total",
		Help: "Event lifecycle transitions by target status",
	}, []string{"status"})

	feedbackProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planning_feedback_processed_total",
		Help: "Total feedback submissions folded into preference profiles",
	})

	conflictResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planning_conflict_resolutions_total",
		Help: "Conflict resolutions by outcome",
	}, []string{"outcome"})

	remindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planning_reminders_sent_total",
		Help: "Total event reminders dispatched",
	})
)
