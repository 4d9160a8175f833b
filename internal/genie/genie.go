// Package genie resolves and holds the service's connection to a
// generative language endpoint. It probes ordered (endpoint, model)
// candidates until one answers a trivial prompt, then hands the resolved
// connection to anyone who asks for the "llm" role.
package genie

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/HerbHall/healthgenie/internal/llm/gemini"
	"github.com/HerbHall/healthgenie/pkg/llm"
	"github.com/HerbHall/healthgenie/pkg/plugin"
	"github.com/HerbHall/healthgenie/pkg/roles"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.Validator     = (*Module)(nil)
	_ roles.LLMProvider    = (*Module)(nil)
)

// ErrResolveInProgress is returned when a resolution run is requested
// while another is still walking the candidate table.
var ErrResolveInProgress = errors.New("resolution already in progress")

// Module implements the genie plugin.
type Module struct {
	logger *zap.Logger
	bus    plugin.EventBus
	apiKey string

	// factory builds a provider per endpoint; tests swap it out.
	factory func(endpoint string) (llm.Provider, error)

	mu          sync.RWMutex
	cfg         Config
	conn        *llm.Conn
	lastErr     error
	lastResolve *llm.ResolveError
	resolving   bool
	runCtx      context.Context
	runCancel   context.CancelFunc

	wg sync.WaitGroup
}

// New creates a new genie plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "genie",
		Version:     "0.1.0",
		Description: "Resolves and holds the generative language connection",
		Roles:       []string{roles.RoleLLM},
		Required:    true,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal genie config: %w", err)
		}
	}

	// A missing key can never produce a working connection, so refuse to
	// start instead of degrading later.
	apiKey, err := resolveCredential(m.cfg.APIKey)
	if err != nil {
		return err
	}
	m.apiKey = apiKey

	if m.factory == nil {
		m.factory = m.newGeminiProvider
	}

	m.logger.Info("genie plugin initialized",
		zap.Int("endpoints", len(m.cfg.Endpoints)),
		zap.Int("models", len(m.cfg.Models)),
		zap.Bool("auto_resolve", m.cfg.AutoResolve),
	)
	return nil
}

// ValidateConfig implements plugin.Validator. Genie is a required plugin,
// so a bad candidate table or safety vocabulary aborts startup.
func (m *Module) ValidateConfig() error {
	if len(m.cfg.Endpoints) == 0 {
		return errors.New("genie: at least one endpoint is required")
	}
	if len(m.cfg.Models) == 0 {
		return errors.New("genie: at least one model is required")
	}
	return gemini.ValidateSafetySettings(m.cfg.Safety)
}

func (m *Module) Start(_ context.Context) error {
	m.mu.Lock()
	m.runCtx, m.runCancel = context.WithCancel(context.Background())
	autoResolve := m.cfg.AutoResolve
	m.mu.Unlock()

	if !autoResolve {
		m.logger.Info("auto resolve disabled; connection will resolve on demand")
		return nil
	}

	// Resolution happens off the startup path: the server comes up
	// immediately and reports degraded health until a candidate answers.
	m.resolveAsync()
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	m.mu.Lock()
	cancel := m.runCancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.logger.Info("genie plugin stopped")
	return nil
}

// Health implements plugin.HealthChecker. An unresolved connection is
// degraded, not unhealthy: the BMI calculator and the dashboard still work.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case m.conn != nil:
		return plugin.HealthStatus{
			Status: "healthy",
			Details: map[string]string{
				"endpoint": m.conn.Endpoint,
				"model":    m.conn.Model,
			},
		}
	case m.resolving:
		return plugin.HealthStatus{Status: "degraded", Message: "model resolution in progress"}
	case m.lastErr != nil:
		return plugin.HealthStatus{Status: "degraded", Message: "no model connection: " + m.lastErr.Error()}
	default:
		return plugin.HealthStatus{Status: "degraded", Message: "model connection not yet resolved"}
	}
}

// Conn implements roles.LLMProvider. Nil until a resolution run succeeds.
func (m *Module) Conn() *llm.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn
}

// Remediation describes what an operator should do about the current
// connection state. Empty when connected.
func (m *Module) Remediation() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case m.conn != nil:
		return ""
	case m.resolving:
		return "Model resolution is in progress. Retry in a few seconds."
	case m.lastErr != nil:
		return buildRemediation(m.lastResolve)
	default:
		return "Model resolution has not run yet. POST /api/v1/genie/resolve to connect."
	}
}

// Refresh discards the current connection and walks the candidate table
// again, synchronously. Safe for concurrent use; a second caller gets
// ErrResolveInProgress instead of a duplicate probe run.
func (m *Module) Refresh(ctx context.Context) (*llm.Conn, error) {
	return m.resolve(ctx)
}

// Status reports the resolution state for the status endpoint and dashboard.
func (m *Module) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		State:      "unresolved",
		Candidates: len(m.cfg.Endpoints) * len(m.cfg.Models),
	}
	switch {
	case m.resolving:
		s.State = "resolving"
	case m.conn != nil:
		s.State = "connected"
		s.Endpoint = m.conn.Endpoint
		s.Model = m.conn.Model
		t := m.conn.ResolvedAt
		s.ResolvedAt = &t
		s.ServerModels = m.conn.ServerModels
	case m.lastErr != nil:
		s.State = "failed"
		if m.lastResolve != nil {
			s.Attempts = m.lastResolve.Attempts
			s.ServerModels = m.lastResolve.ServerModels
		}
		s.Remediation = buildRemediation(m.lastResolve)
	}
	return s
}

// Status is the JSON shape of the resolution state.
type Status struct {
	State        string        `json:"state"` // "unresolved", "resolving", "connected", "failed"
	Endpoint     string        `json:"endpoint,omitempty"`
	Model        string        `json:"model,omitempty"`
	ResolvedAt   *time.Time    `json:"resolved_at,omitempty"`
	ServerModels []string      `json:"server_models,omitempty"`
	Attempts     []llm.Attempt `json:"attempts,omitempty"`
	Remediation  string        `json:"remediation,omitempty"`
	Candidates   int           `json:"candidates"`
}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/status", Handler: m.handleStatus},
		{Method: "POST", Path: "/resolve", Handler: m.handleResolve},
		{Method: "GET", Path: "/models", Handler: m.handleModels},
		{Method: "GET", Path: "/config", Handler: m.handleGetConfig},
		{Method: "PUT", Path: "/config", Handler: m.handlePutConfig},
		{Method: "POST", Path: "/doctor", Handler: m.handleDoctor},
	}
}

// resolve runs one resolution pass: discard the handle, walk the table,
// publish lifecycle events, record metrics.
func (m *Module) resolve(ctx context.Context) (*llm.Conn, error) {
	id := uuid.NewString()

	m.mu.Lock()
	if m.resolving {
		m.mu.Unlock()
		return nil, ErrResolveInProgress
	}
	m.resolving = true
	m.conn = nil
	candidates := len(m.cfg.Endpoints) * len(m.cfg.Models)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.resolving = false
		m.mu.Unlock()
	}()

	m.publish(ctx, TopicResolving, &ResolvingEvent{ResolutionID: id, Candidates: candidates})
	m.logger.Info("resolving model connection",
		zap.String("resolution_id", id),
		zap.Int("candidates", candidates),
	)

	start := time.Now()
	conn, err := m.newResolver(ctx, id).Resolve(ctx)
	if err != nil {
		resolutionsTotal.WithLabelValues("failure").Inc()
		var re *llm.ResolveError
		errors.As(err, &re)
		m.setFailure(err, re)
		m.logger.Error("model resolution failed",
			zap.String("resolution_id", id),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		failed := &FailedEvent{ResolutionID: id, Remediation: buildRemediation(re)}
		if re != nil {
			failed.Attempts = re.Attempts
			failed.ServerModels = re.ServerModels
		}
		m.publish(ctx, TopicFailed, failed)
		return nil, err
	}

	resolveAttemptsTotal.WithLabelValues(conn.Endpoint, conn.Model, "success").Inc()
	resolutionsTotal.WithLabelValues("success").Inc()
	m.setConn(conn)
	m.logger.Info("model connection resolved",
		zap.String("resolution_id", id),
		zap.String("endpoint", conn.Endpoint),
		zap.String("model", conn.Model),
		zap.Duration("took", time.Since(start)),
	)
	m.publish(ctx, TopicConnected, &ConnectedEvent{
		ResolutionID: id,
		Endpoint:     conn.Endpoint,
		Model:        conn.Model,
		ServerModels: conn.ServerModels,
		ResolvedAt:   conn.ResolvedAt,
	})
	return conn, nil
}

// newResolver snapshots the current config into a single-run resolver.
func (m *Module) newResolver(ctx context.Context, id string) *llm.Resolver {
	m.mu.RLock()
	cfg := m.cfg
	m.mu.RUnlock()

	return &llm.Resolver{
		Credential:   m.apiKey,
		Table:        llm.CandidateTable(cfg.Endpoints, cfg.Models),
		Factory:      m.factory,
		CheckTimeout: cfg.CheckTimeout,
		TestTimeout:  cfg.TestTimeout,
		TestPrompt:   cfg.TestPrompt,
		OnAttempt: func(a llm.Attempt) {
			resolveAttemptsTotal.WithLabelValues(a.Endpoint, a.Model, attemptOutcome(a.Code, a.Stage)).Inc()
			m.logger.Warn("candidate failed",
				zap.String("resolution_id", id),
				zap.String("endpoint", a.Endpoint),
				zap.String("model", a.Model),
				zap.String("stage", a.Stage),
				zap.String("code", a.Code),
				zap.String("error", a.Err),
			)
			m.publish(ctx, TopicAttempt, &AttemptEvent{ResolutionID: id, Attempt: a})
		},
	}
}

// resolveAsync runs one resolution pass in the background, tracked so
// Stop can wait for it.
func (m *Module) resolveAsync() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_, _ = m.resolve(m.runContext())
	}()
}

func (m *Module) runContext() context.Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.runCtx != nil {
		return m.runCtx
	}
	return context.Background()
}

func (m *Module) newGeminiProvider(endpoint string) (llm.Provider, error) {
	m.mu.RLock()
	timeout := m.cfg.RequestTimeout
	safety := m.cfg.Safety
	m.mu.RUnlock()

	return gemini.New(gemini.Config{
		BaseURL: endpoint,
		Timeout: timeout,
		Safety:  safety,
	}, m.apiKey, m.logger.Named("gemini"))
}

func (m *Module) setConn(conn *llm.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = conn
	m.lastErr = nil
	m.lastResolve = nil
}

func (m *Module) setFailure(err error, re *llm.ResolveError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = nil
	m.lastErr = err
	m.lastResolve = re
}

func (m *Module) publish(ctx context.Context, topic string, payload any) {
	if m.bus == nil {
		return
	}
	m.bus.PublishAsync(ctx, plugin.Event{
		Topic:     topic,
		Source:    "genie",
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// buildRemediation turns a resolution failure into one actionable sentence.
func buildRemediation(re *llm.ResolveError) string {
	if re == nil || len(re.Attempts) == 0 {
		return "No endpoint/model candidate produced a working connection. POST /api/v1/genie/resolve to retry, or POST /api/v1/genie/doctor to diagnose connectivity."
	}

	allUnreachable := true
	var hasAuth bool
	for _, a := range re.Attempts {
		if a.Stage != llm.StageListModels {
			allUnreachable = false
		}
		if a.Code == llm.ErrCodeAuthentication {
			hasAuth = true
		}
	}

	switch {
	case hasAuth:
		return "The service rejected the API key. Verify GOOGLE_API_KEY and any key restrictions, then POST /api/v1/genie/resolve to retry."
	case allUnreachable:
		return "No configured endpoint was reachable. Check network connectivity and proxy settings; POST /api/v1/genie/doctor for a connectivity diagnosis."
	case len(re.ServerModels) > 0:
		return fmt.Sprintf("No configured model answered. The endpoint reports: %s. Update the model list via PUT /api/v1/genie/config and retry.", strings.Join(re.ServerModels, ", "))
	default:
		return "No endpoint/model candidate produced a working connection. POST /api/v1/genie/resolve to retry, or POST /api/v1/genie/doctor to diagnose connectivity."
	}
}
