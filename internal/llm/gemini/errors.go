package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HerbHall/healthgenie/pkg/llm"
)

// geminiStatusError represents an HTTP error response from the Generative
// Language API. Status carries the google.rpc.Code name (NOT_FOUND,
// RESOURCE_EXHAUSTED, ...) when the body was parseable.
type geminiStatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *geminiStatusError) Error() string {
	return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// mapError translates Gemini and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	var se *geminiStatusError
	if errors.As(err, &se) {
		lower := strings.ToLower(se.Message)
		switch {
		// An invalid key is reported as 400 INVALID_ARGUMENT, not 401.
		case se.StatusCode == 400 && strings.Contains(lower, "api key not valid"):
			return llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		case se.StatusCode == 401 || se.StatusCode == 403 ||
			se.Status == "UNAUTHENTICATED" || se.Status == "PERMISSION_DENIED":
			return llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		case se.StatusCode == 404 || se.Status == "NOT_FOUND":
			return llm.NewProviderError(llm.ErrCodeModelNotFound, se.Message, err)
		case se.StatusCode == 429 || se.Status == "RESOURCE_EXHAUSTED":
			return llm.NewProviderError(llm.ErrCodeRateLimit, se.Message, err)
		case se.StatusCode == 400 &&
			(strings.Contains(lower, "token") || strings.Contains(lower, "context")):
			return llm.NewProviderError(llm.ErrCodeContextLength, se.Message, err)
		case se.StatusCode >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, se.Message, err)
		case se.StatusCode >= 400:
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, se.Message, err)
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeServerError, "gemini server unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "gemini error", err)
}
