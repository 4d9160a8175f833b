package gemini

import (
	"fmt"
	"time"

	"github.com/HerbHall/healthgenie/pkg/llm"
)

// DefaultBaseURL is the public Generative Language API endpoint. The path
// carries the API version; alternate versions (or proxies) are expressed as
// different base URLs, not as a separate knob.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Harm categories accepted by the generateContent safetySettings block.
const (
	CategoryHarassment       = "HARM_CATEGORY_HARASSMENT"
	CategoryHateSpeech       = "HARM_CATEGORY_HATE_SPEECH"
	CategorySexuallyExplicit = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	CategoryDangerousContent = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// Block thresholds accepted by the generateContent safetySettings block.
const (
	ThresholdBlockNone           = "BLOCK_NONE"
	ThresholdBlockOnlyHigh       = "BLOCK_ONLY_HIGH"
	ThresholdBlockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"
	ThresholdBlockLowAndAbove    = "BLOCK_LOW_AND_ABOVE"
)

var validCategories = map[string]bool{
	CategoryHarassment:       true,
	CategoryHateSpeech:       true,
	CategorySexuallyExplicit: true,
	CategoryDangerousContent: true,
}

var validThresholds = map[string]bool{
	ThresholdBlockNone:           true,
	ThresholdBlockOnlyHigh:       true,
	ThresholdBlockMediumAndAbove: true,
	ThresholdBlockLowAndAbove:    true,
}

// Config holds the Gemini provider configuration.
type Config struct {
	BaseURL string              `mapstructure:"base_url"`
	Model   string              `mapstructure:"model"`
	Timeout time.Duration       `mapstructure:"timeout"`
	Safety  []llm.SafetySetting `mapstructure:"safety"`
}

// DefaultConfig returns sensible defaults for Gemini.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Model:   "gemini-1.5-flash",
		Timeout: 30 * time.Second,
		Safety:  DefaultSafetySettings(),
	}
}

// DefaultSafetySettings disables the content filter for every category.
// Health questions routinely trip the default filters (medication, weight,
// self-harm adjacent phrasing), so the service opts out and shows its own
// disclaimer instead.
func DefaultSafetySettings() []llm.SafetySetting {
	return []llm.SafetySetting{
		{Category: CategoryHarassment, Threshold: ThresholdBlockNone},
		{Category: CategoryHateSpeech, Threshold: ThresholdBlockNone},
		{Category: CategorySexuallyExplicit, Threshold: ThresholdBlockNone},
		{Category: CategoryDangerousContent, Threshold: ThresholdBlockNone},
	}
}

// Validate rejects configurations the remote API would reject on every
// call, so a typo fails at startup instead of on the first question.
func (c Config) Validate() error {
	return ValidateSafetySettings(c.Safety)
}

// ValidateSafetySettings checks every category and threshold against the
// vocabulary the generateContent API accepts.
func ValidateSafetySettings(settings []llm.SafetySetting) error {
	for _, s := range settings {
		if !validCategories[s.Category] {
			return fmt.Errorf("gemini: unknown safety category %q", s.Category)
		}
		if !validThresholds[s.Threshold] {
			return fmt.Errorf("gemini: unknown safety threshold %q for %s", s.Threshold, s.Category)
		}
	}
	return nil
}
