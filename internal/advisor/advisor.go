package advisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HerbHall/healthgenie/pkg/llm"
	"github.com/HerbHall/healthgenie/pkg/plugin"
	"github.com/HerbHall/healthgenie/pkg/roles"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ plugin.Validator     = (*Module)(nil)
)

// remediator is optionally implemented by the handle source to explain
// why no connection is available. Detected via type assertion, the same
// way optional plugin capabilities are discovered elsewhere.
type remediator interface {
	Remediation() string
}

// Module implements the advisor plugin. It owns no connection state of
// its own: the model handle is resolved per request through the llm role
// so a background re-resolution in genie is picked up immediately.
type Module struct {
	logger  *zap.Logger
	bus     plugin.EventBus
	plugins plugin.PluginResolver

	mu  sync.RWMutex
	cfg Config

	runCtx    context.Context
	runCancel context.CancelFunc
}

// New creates a new advisor plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:         "advisor",
		Version:      "0.1.0",
		Description:  "Answers health questions through the resolved model",
		Dependencies: []string{"genie"},
		APIVersion:   plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.plugins = deps.Plugins

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal advisor config: %w", err)
		}
	}

	m.logger.Info("advisor plugin initialized",
		zap.Float64("temperature", m.cfg.Temperature),
		zap.Int("max_tokens", m.cfg.MaxTokens),
		zap.Duration("timeout", m.cfg.Timeout),
	)
	return nil
}

// ValidateConfig implements plugin.Validator.
func (m *Module) ValidateConfig() error {
	return m.cfg.Validate()
}

func (m *Module) Start(_ context.Context) error {
	m.runCtx, m.runCancel = context.WithCancel(context.Background())
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.runCancel != nil {
		m.runCancel()
	}
	return nil
}

// Health implements plugin.HealthChecker. The advisor itself is stateless;
// what matters to callers is whether a model handle exists right now.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	details := map[string]string{"llm_available": "false"}
	if conn, _ := m.conn(); conn != nil {
		details["llm_available"] = "true"
		details["model"] = conn.Model
	}
	return plugin.HealthStatus{
		Status:  "healthy",
		Details: details,
	}
}

// conn resolves the current model handle through the llm role. The second
// return carries the role holder so callers can ask it for remediation
// when the handle is nil.
func (m *Module) conn() (*llm.Conn, roles.LLMProvider) {
	if m.plugins == nil {
		return nil, nil
	}
	for _, p := range m.plugins.ResolveByRole(roles.RoleLLM) {
		if src, ok := p.(roles.LLMProvider); ok {
			return src.Conn(), src
		}
	}
	return nil, nil
}

func (m *Module) publish(topic string, payload any) {
	if m.bus == nil {
		return
	}
	ctx := m.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	m.bus.PublishAsync(ctx, plugin.Event{
		Topic:     topic,
		Source:    "advisor",
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
