package genie

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/HerbHall/healthgenie/pkg/llm"
	"go.uber.org/zap"
)

// ModelsResponse lists the models the resolved endpoint serves.
type ModelsResponse struct {
	Endpoint string   `json:"endpoint"`
	Models   []string `json:"models"`
}

// ConfigResponse is the read shape of the genie configuration. The API
// key never appears here.
type ConfigResponse struct {
	Endpoints      []string `json:"endpoints"`
	Models         []string `json:"models"`
	TestPrompt     string   `json:"test_prompt"`
	AutoResolve    bool     `json:"auto_resolve"`
	CheckTimeout   string   `json:"check_timeout"`
	TestTimeout    string   `json:"test_timeout"`
	RequestTimeout string   `json:"request_timeout"`
}

// ConfigRequest updates the candidate table. Omitted fields keep their
// current value.
type ConfigRequest struct {
	Endpoints  []string `json:"endpoints,omitempty"`
	Models     []string `json:"models,omitempty"`
	TestPrompt string   `json:"test_prompt,omitempty"`
}

// handleStatus reports the resolution state.
//
//	@Summary		Connection status
//	@Description	Returns the resolver state, the resolved endpoint/model pair, and failed attempts when resolution is exhausted.
//	@Tags			genie
//	@Produce		json
//	@Success		200 {object} Status
//	@Router			/genie/status [get]
func (m *Module) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.Status())
}

// handleResolve re-runs resolution synchronously.
//
//	@Summary		Re-resolve the connection
//	@Description	Discards the current handle and walks the candidate table again. Returns the resulting status.
//	@Tags			genie
//	@Produce		json
//	@Success		200 {object} Status
//	@Failure		409 {object} map[string]any "Resolution already in progress"
//	@Failure		502 {object} Status "All candidates failed"
//	@Router			/genie/resolve [post]
func (m *Module) handleResolve(w http.ResponseWriter, r *http.Request) {
	_, err := m.Refresh(r.Context())
	switch {
	case errors.Is(err, ErrResolveInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeJSON(w, http.StatusBadGateway, m.Status())
	default:
		writeJSON(w, http.StatusOK, m.Status())
	}
}

// handleModels lists what the resolved endpoint actually serves.
//
//	@Summary		List server models
//	@Description	Asks the resolved endpoint for its model catalog. Falls back to the catalog captured during resolution.
//	@Tags			genie
//	@Produce		json
//	@Success		200 {object} ModelsResponse
//	@Failure		503 {object} map[string]any "No resolved connection"
//	@Router			/genie/models [get]
func (m *Module) handleModels(w http.ResponseWriter, r *http.Request) {
	conn := m.Conn()
	if conn == nil {
		writeError(w, http.StatusServiceUnavailable, m.Remediation())
		return
	}

	models := conn.ServerModels
	if hr, ok := conn.Provider.(llm.HealthReporter); ok {
		if live, err := hr.ListModels(r.Context()); err == nil {
			models = live
		}
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Endpoint: conn.Endpoint, Models: models})
}

// handleGetConfig returns the current candidate table and probe settings.
//
//	@Summary		Get genie config
//	@Description	Returns the candidate table and probe timeouts. The API key is never included.
//	@Tags			genie
//	@Produce		json
//	@Success		200 {object} ConfigResponse
//	@Router			/genie/config [get]
func (m *Module) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.configResponse())
}

// handlePutConfig updates the candidate table and re-resolves in the
// background.
//
//	@Summary		Update genie config
//	@Description	Replaces the endpoint and model priority lists, discards the current handle, and starts a background re-resolution.
//	@Tags			genie
//	@Accept			json
//	@Produce		json
//	@Param			request body ConfigRequest true "Candidate table update"
//	@Success		202 {object} ConfigResponse
//	@Failure		400 {object} map[string]any
//	@Router			/genie/config [put]
func (m *Module) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Endpoints) == 0 && len(req.Models) == 0 && req.TestPrompt == "" {
		writeError(w, http.StatusBadRequest, "nothing to update: provide endpoints, models, or test_prompt")
		return
	}
	for _, e := range req.Endpoints {
		u, err := url.Parse(e)
		if err != nil || u.Scheme == "" || u.Host == "" {
			writeError(w, http.StatusBadRequest, "invalid endpoint URL: "+e)
			return
		}
	}
	for _, model := range req.Models {
		if strings.TrimSpace(model) == "" {
			writeError(w, http.StatusBadRequest, "model names must not be blank")
			return
		}
	}

	m.applyCandidates(req.Endpoints, req.Models, req.TestPrompt)
	m.logger.Info("candidate table updated",
		zap.Strings("endpoints", req.Endpoints),
		zap.Strings("models", req.Models),
	)
	m.resolveAsync()

	writeJSON(w, http.StatusAccepted, m.configResponse())
}

// applyCandidates swaps in the new probe lists and drops the stale handle.
func (m *Module) applyCandidates(endpoints, models []string, testPrompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(endpoints) > 0 {
		m.cfg.Endpoints = endpoints
	}
	if len(models) > 0 {
		m.cfg.Models = models
	}
	if testPrompt != "" {
		m.cfg.TestPrompt = testPrompt
	}
	m.conn = nil
	m.lastErr = nil
	m.lastResolve = nil
}

func (m *Module) configResponse() ConfigResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ConfigResponse{
		Endpoints:      m.cfg.Endpoints,
		Models:         m.cfg.Models,
		TestPrompt:     m.cfg.TestPrompt,
		AutoResolve:    m.cfg.AutoResolve,
		CheckTimeout:   m.cfg.CheckTimeout.String(),
		TestTimeout:    m.cfg.TestTimeout.String(),
		RequestTimeout: m.cfg.RequestTimeout.String(),
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
