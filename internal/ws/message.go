package ws

import (
	"time"

	"github.com/HerbHall/healthgenie/pkg/llm"
)

// MessageType discriminates WebSocket messages. The values mirror the
// event bus topics so dashboard code can share one vocabulary.
type MessageType string

const (
	MessageResolving     MessageType = "genie.resolving"
	MessageAttempt       MessageType = "genie.attempt"
	MessageConnected     MessageType = "genie.connected"
	MessageResolveFailed MessageType = "genie.failed"
	MessageAsked         MessageType = "advisor.asked"
	MessageAnswered      MessageType = "advisor.answered"
	MessageAskFailed     MessageType = "advisor.failed"
)

// Message is the envelope for all WebSocket messages. ID carries the
// resolution ID on genie messages and the request ID on advisor ones.
type Message struct {
	Type      MessageType `json:"type"`
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// ResolvingData is the payload for genie.resolving messages.
type ResolvingData struct {
	Candidates int `json:"candidates"`
}

// AttemptData is the payload for genie.attempt messages, one per failed
// probe.
type AttemptData struct {
	Attempt llm.Attempt `json:"attempt"`
}

// ConnectedData is the payload for genie.connected messages.
type ConnectedData struct {
	Endpoint     string   `json:"endpoint"`
	Model        string   `json:"model"`
	ServerModels []string `json:"server_models,omitempty"`
}

// ResolveFailedData is the payload for genie.failed messages.
type ResolveFailedData struct {
	Attempts    []llm.Attempt `json:"attempts,omitempty"`
	Remediation string        `json:"remediation,omitempty"`
}

// AskedData is the payload for advisor.asked messages.
type AskedData struct {
	HasBMI bool `json:"has_bmi"`
}

// AnsweredData is the payload for advisor.answered messages.
type AnsweredData struct {
	Model      string  `json:"model"`
	DurationMS float64 `json:"duration_ms"`
}

// AskFailedData is the payload for advisor.failed messages.
type AskFailedData struct {
	Code string `json:"code"`
}
