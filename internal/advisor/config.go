package advisor

import (
	"errors"
	"time"
)

// Config holds generation parameters for advisory requests. Safety
// settings are not configured here: they ride on the provider held by
// the genie plugin, so every consumer sees the same filter policy.
type Config struct {
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	TopP        float64       `mapstructure:"top_p"` // 0 = provider default
	TopK        int           `mapstructure:"top_k"` // 0 = provider default
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns advisor defaults.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     30 * time.Second,
	}
}

// Validate checks the generation parameters.
func (c Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("advisor: temperature must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return errors.New("advisor: max_tokens must be positive")
	}
	if c.TopP < 0 || c.TopP > 1 {
		return errors.New("advisor: top_p must be between 0 and 1")
	}
	if c.TopK < 0 {
		return errors.New("advisor: top_k must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("advisor: timeout must be positive")
	}
	return nil
}
