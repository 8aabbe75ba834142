package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	widgetOpens = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookwidget",
			Name:      "opens_total",
			Help:      "Widget sessions opened.",
		},
	)

	stepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookwidget",
			Name:      "step_transitions_total",
			Help:      "Wizard step transitions by target step.",
		},
		[]string{"step"},
	)

	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookwidget",
			Name:      "fetch_failures_total",
			Help:      "Background data load failures by resource.",
		},
		[]string{"resource"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookwidget",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(widgetOpens, stepTransitions, fetchFailures, submissions)
	})
}

// IncOpen counts a widget session open.
func IncOpen() {
	widgetOpens.Inc()
}

// IncStep counts a transition onto a step.
func IncStep(step string) {
	stepTransitions.WithLabelValues(step).Inc()
}

// IncFetchFailure counts a failed background load for a resource label.
func IncFetchFailure(resource string) {
	fetchFailures.WithLabelValues(resource).Inc()
}

// IncSubmission counts a booking submission outcome ("success" or "failure").
func IncSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}
