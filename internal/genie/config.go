package genie

import (
	"errors"
	"os"
	"time"

	"github.com/HerbHall/healthgenie/internal/llm/gemini"
	"github.com/HerbHall/healthgenie/pkg/llm"
)

// Environment variables probed for the API key, in order. The dashed
// spelling is accepted because early .env files shipped with it.
const (
	EnvAPIKey       = "GOOGLE_API_KEY"
	EnvAPIKeyLegacy = "GOOGLE-API-KEY"
)

// Config holds the genie module configuration.
type Config struct {
	// Endpoints are base URLs tried in order; the API version is part of
	// the URL path.
	Endpoints []string `mapstructure:"endpoints"`

	// Models are model IDs tried in order under each endpoint.
	Models []string `mapstructure:"models"`

	// APIKey overrides the environment lookup when set. Prefer the
	// environment; config files get committed.
	APIKey string `mapstructure:"api_key"`

	CheckTimeout   time.Duration `mapstructure:"check_timeout"`   // per-endpoint reachability check
	TestTimeout    time.Duration `mapstructure:"test_timeout"`    // per-candidate trial generation
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // regular traffic after resolution

	// TestPrompt is sent to each candidate during resolution.
	TestPrompt string `mapstructure:"test_prompt"`

	// AutoResolve starts resolution in the background at startup.
	AutoResolve bool `mapstructure:"auto_resolve"`

	// Safety is forwarded on every generate call.
	Safety []llm.SafetySetting `mapstructure:"safety"`
}

// DefaultConfig returns sensible defaults for the genie module.
func DefaultConfig() Config {
	return Config{
		Endpoints: []string{
			gemini.DefaultBaseURL,
			"https://generativelanguage.googleapis.com/v1",
		},
		Models: []string{
			"gemini-1.5-flash",
			"gemini-1.5-pro",
			"gemini-2.0-flash",
			"gemini-pro",
		},
		CheckTimeout:   5 * time.Second,
		TestTimeout:    10 * time.Second,
		RequestTimeout: 30 * time.Second,
		TestPrompt:     "Hello",
		AutoResolve:    true,
		Safety:         gemini.DefaultSafetySettings(),
	}
}

// resolveCredential returns the API key from explicit config or the
// environment. Both env spellings are honored, underscore first.
func resolveCredential(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		return v, nil
	}
	if v := os.Getenv(EnvAPIKeyLegacy); v != "" {
		return v, nil
	}
	return "", errors.New("no API key found: set GOOGLE_API_KEY (or GOOGLE-API-KEY), or plugins.genie.api_key")
}
