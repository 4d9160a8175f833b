package genie

import (
	"time"

	"github.com/HerbHall/healthgenie/pkg/llm"
)

// Event topics published by the genie module.
const (
	TopicResolving = "genie.resolving"
	TopicAttempt   = "genie.attempt"
	TopicConnected = "genie.connected"
	TopicFailed    = "genie.failed"
)

// ResolvingEvent is the payload for TopicResolving events.
type ResolvingEvent struct {
	ResolutionID string `json:"resolution_id"`
	Candidates   int    `json:"candidates"`
}

// AttemptEvent is the payload for TopicAttempt events, one per failed probe.
type AttemptEvent struct {
	ResolutionID string      `json:"resolution_id"`
	Attempt      llm.Attempt `json:"attempt"`
}

// ConnectedEvent is the payload for TopicConnected events.
type ConnectedEvent struct {
	ResolutionID string    `json:"resolution_id"`
	Endpoint     string    `json:"endpoint"`
	Model        string    `json:"model"`
	ServerModels []string  `json:"server_models,omitempty"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

// FailedEvent is the payload for TopicFailed events, published when every
// candidate has been exhausted.
type FailedEvent struct {
	ResolutionID string        `json:"resolution_id"`
	Attempts     []llm.Attempt `json:"attempts"`
	ServerModels []string      `json:"server_models,omitempty"`
	Remediation  string        `json:"remediation,omitempty"`
}
