// Package gemini implements llm.Provider for Google's Generative Language
// API (the Gemini wire protocol). One Provider instance is bound to one
// base URL; the resolver builds one per candidate endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/HerbHall/healthgenie/pkg/llm"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ llm.Provider       = (*Provider)(nil)
	_ llm.HealthReporter = (*Provider)(nil)
)

// Provider implements llm.Provider using the generateContent REST API.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// New creates a Gemini provider. The API key is mandatory; the Generative
// Language API rejects anonymous calls on every route.
func New(cfg Config, apiKey string, logger *zap.Logger) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gemini: invalid base URL %q", base)
	}

	return &Provider{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Generate creates a completion from a single prompt.
func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Chat creates a completion from a conversation history. System messages
// are lifted into the systemInstruction block; assistant turns map to the
// wire role "model".
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	cfg := llm.ApplyOptions(opts...)

	model := cfg.Model
	if model == "" {
		model = p.cfg.Model
	}

	var sysParts []part
	contents := make([]content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			sysParts = append(sysParts, part{Text: m.Content})
		case llm.RoleAssistant:
			contents = append(contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if len(contents) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "conversation needs at least one non-system message", nil)
	}

	safety := cfg.SafetySettings
	if len(safety) == 0 {
		safety = p.cfg.Safety
	}

	req := generateRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxTokens,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
		},
		SafetySettings: toWireSafety(safety),
	}
	if len(sysParts) > 0 {
		req.SystemInstruction = &content{Parts: sysParts}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	respBody, err := p.doPost(ctx, "/models/"+model+":generateContent", body)
	if err != nil {
		return nil, mapError(err)
	}
	defer respBody.Close()

	var resp generateResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		msg := "gemini returned no candidates"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			msg = fmt.Sprintf("gemini returned no candidates (block reason: %s)", resp.PromptFeedback.BlockReason)
		}
		return nil, llm.NewProviderError(llm.ErrCodeEmptyResponse, msg, nil)
	}

	cand := resp.Candidates[0]
	var text strings.Builder
	for _, pt := range cand.Content.Parts {
		text.WriteString(pt.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		msg := "gemini returned no text"
		if cand.FinishReason != "" {
			msg = fmt.Sprintf("gemini returned no text (finish reason: %s)", cand.FinishReason)
		}
		return nil, llm.NewProviderError(llm.ErrCodeEmptyResponse, msg, nil)
	}

	respModel := resp.ModelVersion
	if respModel == "" {
		respModel = model
	}

	return &llm.Response{
		Content: text.String(),
		Model:   respModel,
		Usage: llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
		Done: cand.FinishReason == "" || cand.FinishReason == "STOP",
	}, nil
}

// Heartbeat checks whether the endpoint is reachable by listing models.
func (p *Provider) Heartbeat(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	return err
}

// ListModels returns the model IDs the endpoint serves, with the wire
// prefix "models/" stripped so they match candidate-table entries.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	respBody, err := p.doGet(ctx, "/models")
	if err != nil {
		return nil, mapError(err)
	}
	defer respBody.Close()

	var resp listModelsResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

// doPost sends an authenticated POST request and returns the response body.
func (p *Provider) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseStatusError(resp)
	}

	return resp.Body, nil
}

// doGet sends an authenticated GET request and returns the response body.
func (p *Provider) doGet(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseStatusError(resp)
	}

	return resp.Body, nil
}

// parseStatusError reads a google.rpc error response body.
func parseStatusError(resp *http.Response) *geminiStatusError {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || json.Unmarshal(data, &errResp) != nil {
		return &geminiStatusError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	msg := errResp.Error.Message
	if msg == "" {
		msg = resp.Status
	}
	return &geminiStatusError{
		StatusCode: resp.StatusCode,
		Status:     errResp.Error.Status,
		Message:    msg,
	}
}

func toWireSafety(settings []llm.SafetySetting) []safetySetting {
	if len(settings) == 0 {
		return nil
	}
	out := make([]safetySetting, len(settings))
	for i, s := range settings {
		out[i] = safetySetting{Category: s.Category, Threshold: s.Threshold}
	}
	return out
}

// --- Generative Language API types (internal) ---

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []safetySetting   `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  usageMetadata   `json:"usageMetadata"`
	ModelVersion   string          `json:"modelVersion"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type listModelsResponse struct {
	Models []modelInfo `json:"models"`
}

type modelInfo struct {
	Name string `json:"name"`
}
