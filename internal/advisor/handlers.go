package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/HerbHall/healthgenie/pkg/llm"
	"github.com/HerbHall/healthgenie/pkg/plugin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AskRequest is the body for POST /advisor/ask. BMI is a pointer so the
// handler can tell "no BMI computed yet" apart from a literal zero.
type AskRequest struct {
	Question string   `json:"question"`
	BMI      *float64 `json:"bmi,omitempty"`
}

// AskResponse is the success body for POST /advisor/ask.
type AskResponse struct {
	Answer     string    `json:"answer"`
	Model      string    `json:"model"`
	RequestID  string    `json:"request_id"`
	Usage      llm.Usage `json:"usage"`
	DurationMS float64   `json:"duration_ms"`
}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/ask", Handler: m.handleAsk},
	}
}

// handleAsk answers a free-text health question through the resolved model.
//
//	@Summary		Ask a health question
//	@Description	Sends a dietitian-framed question to the resolved model and returns the advice text.
//	@Tags			advisor
//	@Accept			json
//	@Produce		json
//	@Param			request body AskRequest true "Question and optional BMI"
//	@Success		200 {object} AskResponse
//	@Failure		400 {object} map[string]any "Empty question or invalid body"
//	@Failure		429 {object} map[string]any "Upstream rate limit"
//	@Failure		502 {object} map[string]any "Upstream rejected the request"
//	@Failure		503 {object} map[string]any "No model connection"
//	@Failure		504 {object} map[string]any "Model timed out"
//	@Router			/advisor/ask [post]
func (m *Module) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestsTotal.WithLabelValues(outcomeValidation).Inc()
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		requestsTotal.WithLabelValues(outcomeValidation).Inc()
		writeError(w, http.StatusBadRequest, "Please enter your health question first")
		return
	}

	conn, src := m.conn()
	if conn == nil {
		requestsTotal.WithLabelValues(outcomeNoConnection).Inc()
		detail := "no model connection available"
		if rem, ok := src.(remediator); ok {
			if text := rem.Remediation(); text != "" {
				detail = text
			}
		}
		writeError(w, http.StatusServiceUnavailable, detail)
		return
	}

	requestID := uuid.NewString()
	m.publish(TopicAsked, &AskedEvent{RequestID: requestID, HasBMI: req.BMI != nil})

	m.mu.RLock()
	cfg := m.cfg
	m.mu.RUnlock()

	opts := []llm.CallOption{
		llm.WithTemperature(cfg.Temperature),
		llm.WithMaxTokens(cfg.MaxTokens),
	}
	if cfg.TopP > 0 {
		opts = append(opts, llm.WithTopP(cfg.TopP))
	}
	if cfg.TopK > 0 {
		opts = append(opts, llm.WithTopK(cfg.TopK))
	}

	ctx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := conn.Generate(ctx, buildPrompt(question, req.BMI), opts...)
	elapsed := time.Since(start)

	if err == nil && strings.TrimSpace(resp.Content) == "" {
		// Gemini reports this as a typed error, but a provider is free to
		// hand back a well-formed response with nothing in it.
		err = llm.NewProviderError(llm.ErrCodeEmptyResponse, "model returned no content", nil)
	}
	if err != nil {
		code := llm.ErrorCode(err)
		if code == "" {
			code = "unknown"
		}
		requestsTotal.WithLabelValues(code).Inc()
		m.publish(TopicFailed, &FailedEvent{RequestID: requestID, Code: code})
		m.logger.Warn("advisory request failed",
			zap.String("request_id", requestID),
			zap.String("code", code),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		status, detail := mapFailure(err)
		writeError(w, status, detail)
		return
	}

	durationMS := float64(elapsed.Microseconds()) / 1000.0
	requestsTotal.WithLabelValues(outcomeSuccess).Inc()
	m.publish(TopicAnswered, &AnsweredEvent{
		RequestID:  requestID,
		Model:      resp.Model,
		DurationMS: durationMS,
	})
	m.logger.Info("advisory request answered",
		zap.String("request_id", requestID),
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", elapsed),
	)

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:     resp.Content,
		Model:      resp.Model,
		RequestID:  requestID,
		Usage:      resp.Usage,
		DurationMS: durationMS,
	})
}

// buildPrompt renders the fixed advisory prompt. The BMI context travels
// with each request; the server keeps no session state.
func buildPrompt(question string, bmi *float64) string {
	bmiContext := "No BMI data available. Please calculate your BMI first."
	if bmi != nil {
		bmiContext = fmt.Sprintf("Your BMI is %.2f.", *bmi)
	}
	return fmt.Sprintf("Act as a professional dietitian and health expert. %s %s", bmiContext, question)
}

// mapFailure turns a model call failure into an HTTP status and a message
// the page can show as-is. Requests are never retried here; the user
// decides whether to ask again.
func mapFailure(err error) (int, string) {
	switch {
	case llm.IsTimeoutError(err) || errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The model took too long to answer. Please try again."
	case llm.IsAuthenticationError(err):
		return http.StatusBadGateway, "The upstream service rejected the API key."
	case llm.IsRateLimitError(err):
		return http.StatusTooManyRequests, "Too many requests right now. Please try again in a moment."
	case llm.IsEmptyResponseError(err):
		return http.StatusBadGateway, "No response from the model."
	case llm.IsModelNotFoundError(err):
		return http.StatusBadGateway, "The connected model is no longer available. Refresh the connection and try again."
	case llm.IsInvalidRequestError(err):
		return http.StatusBadGateway, "The upstream service rejected the request: " + err.Error()
	default:
		return http.StatusBadGateway, "Response failed: " + err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://healthgenie.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
