package advisor

// Event topics published by the advisor module.
const (
	TopicAsked    = "advisor.asked"
	TopicAnswered = "advisor.answered"
	TopicFailed   = "advisor.failed"
)

// AskedEvent is the payload for TopicAsked events, published once a
// question passes validation.
type AskedEvent struct {
	RequestID string `json:"request_id"`
	HasBMI    bool   `json:"has_bmi"`
}

// AnsweredEvent is the payload for TopicAnswered events.
type AnsweredEvent struct {
	RequestID  string  `json:"request_id"`
	Model      string  `json:"model"`
	DurationMS float64 `json:"duration_ms"`
}

// FailedEvent is the payload for TopicFailed events, published when the
// model call fails or returns nothing usable.
type FailedEvent struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
}
