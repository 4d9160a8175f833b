// Package llm provides the public SDK types for generative-language
// integrations: the Provider interface, per-call options, the typed error
// taxonomy, and the connection resolver that turns ordered endpoint/model
// candidate lists into one usable Conn. Provider implementations live in
// internal/llm/{provider}/ adapters.
package llm

import "context"

// Provider is the core interface implemented by all LLM provider adapters.
// It exposes single-prompt generation and multi-turn chat completion.
type Provider interface {
	// Generate creates a completion from a single prompt.
	// Use CallOption values to override model, sampling, or safety settings.
	Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error)

	// Chat creates a completion from a conversation history.
	// Use CallOption values to override model, sampling, or safety settings.
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)
}

// HealthReporter is optionally implemented by providers that can report
// connection health and model availability. Detected via type assertion.
type HealthReporter interface {
	// Heartbeat checks whether the remote service is reachable.
	Heartbeat(ctx context.Context) error

	// ListModels returns the names of models available from this provider.
	ListModels(ctx context.Context) ([]string, error)
}

// CallOption configures a single Generate or Chat call.
type CallOption func(*CallConfig)

// CallConfig holds the resolved configuration for a single LLM call.
// Users interact through CallOption functions, not this struct directly.
type CallConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	TopP           float64 // 0 = provider default
	TopK           int     // 0 = provider default
	SafetySettings []SafetySetting
	StreamFunc     func(ctx context.Context, chunk []byte) error
}

// WithModel sets the model to use for this call, overriding the provider default.
func WithModel(model string) CallOption {
	return func(c *CallConfig) { c.Model = model }
}

// WithTemperature sets the sampling temperature.
// 0.0 = deterministic, 1.0+ = creative. Provider default if unset.
func WithTemperature(temp float64) CallOption {
	return func(c *CallConfig) { c.Temperature = temp }
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(max int) CallOption {
	return func(c *CallConfig) { c.MaxTokens = max }
}

// WithTopP sets nucleus sampling probability mass. Omitted when zero.
func WithTopP(p float64) CallOption {
	return func(c *CallConfig) { c.TopP = p }
}

// WithTopK limits sampling to the k most likely tokens. Omitted when zero.
func WithTopK(k int) CallOption {
	return func(c *CallConfig) { c.TopK = k }
}

// WithSafetySettings sets the content-filter relaxation levels sent with
// this call. Categories must be valid for the target API version; provider
// configs validate them up front.
func WithSafetySettings(settings []SafetySetting) CallOption {
	return func(c *CallConfig) { c.SafetySettings = settings }
}

// WithStreamFunc enables streaming mode. The function is called for each
// chunk received from the provider. Return a non-nil error to abort streaming.
func WithStreamFunc(fn func(ctx context.Context, chunk []byte) error) CallOption {
	return func(c *CallConfig) { c.StreamFunc = fn }
}

// ApplyOptions creates a CallConfig from a list of options, starting from defaults.
func ApplyOptions(opts ...CallOption) CallConfig {
	cfg := CallConfig{
		Temperature: 0.7,
		MaxTokens:   2048,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
