package genie

import "github.com/prometheus/client_golang/prometheus"

var (
	resolveAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_resolve_attempts_total",
			Help: "Connection resolver probes by endpoint, model and outcome.",
		},
		[]string{"endpoint", "model", "outcome"},
	)
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_resolutions_total",
			Help: "Completed resolution runs by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(resolveAttemptsTotal)
	prometheus.MustRegister(resolutionsTotal)
}

// attemptOutcome labels a failed probe with its error code, falling back
// to the stage name for untyped failures.
func attemptOutcome(code, stage string) string {
	if code != "" {
		return code
	}
	return stage
}
