package roles

// Notification represents a message to be delivered by a Notifier.
type Notification struct {
	Topic   string         `json:"topic"`
	Summary string         `json:"summary"`
	Body    string         `json:"body,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}
