package advisor

import "github.com/prometheus/client_golang/prometheus"

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "advisor_requests_total",
		Help: "Advisory requests by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

// Outcome labels for requestsTotal that do not come from the llm error
// taxonomy.
const (
	outcomeSuccess      = "success"
	outcomeValidation   = "validation_error"
	outcomeNoConnection = "no_connection"
)
