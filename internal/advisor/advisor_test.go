package advisor

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/HerbHall/healthgenie/pkg/llm"
	"github.com/HerbHall/healthgenie/pkg/plugin"
	"github.com/HerbHall/healthgenie/pkg/plugin/plugintest"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	hgconfig "github.com/HerbHall/healthgenie/internal/config"
)

// stubSource stands in for the genie plugin behind the llm role.
type stubSource struct {
	conn        *llm.Conn
	remediation string
}

func (s *stubSource) Info() plugin.PluginInfo {
	return plugin.PluginInfo{Name: "genie", Roles: []string{"llm"}}
}
func (s *stubSource) Init(context.Context, plugin.Dependencies) error { return nil }
func (s *stubSource) Start(context.Context) error                     { return nil }
func (s *stubSource) Stop(context.Context) error                      { return nil }
func (s *stubSource) Conn() *llm.Conn                                 { return s.conn }
func (s *stubSource) Remediation() string                             { return s.remediation }

// stubResolver returns the same plugins for every role.
type stubResolver struct {
	plugins []plugin.Plugin
}

func (r *stubResolver) Resolve(string) (plugin.Plugin, bool) {
	if len(r.plugins) == 0 {
		return nil, false
	}
	return r.plugins[0], true
}

func (r *stubResolver) ResolveByRole(string) []plugin.Plugin { return r.plugins }

func TestContract(t *testing.T) {
	plugintest.TestPluginContract(t, func() plugin.Plugin { return New() })
}

func TestInit_ConfigOverrides(t *testing.T) {
	v := viper.New()
	v.Set("temperature", 0.2)
	v.Set("max_tokens", 512)
	v.Set("top_k", 40)
	v.Set("timeout", "5s")

	m := New()
	deps := plugin.Dependencies{Logger: zap.NewNop(), Config: hgconfig.New(v)}
	if err := m.Init(context.Background(), deps); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if m.cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", m.cfg.Temperature)
	}
	if m.cfg.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", m.cfg.MaxTokens)
	}
	if m.cfg.TopK != 40 {
		t.Errorf("TopK = %d, want 40", m.cfg.TopK)
	}
	if m.cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", m.cfg.Timeout)
	}
	// Keys not set keep their defaults.
	if m.cfg.TopP != 0 {
		t.Errorf("TopP = %v, want 0", m.cfg.TopP)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults_valid", func(*Config) {}, ""},
		{"temperature_too_high", func(c *Config) { c.Temperature = 2.5 }, "temperature"},
		{"temperature_negative", func(c *Config) { c.Temperature = -0.1 }, "temperature"},
		{"zero_max_tokens", func(c *Config) { c.MaxTokens = 0 }, "max_tokens"},
		{"top_p_out_of_range", func(c *Config) { c.TopP = 1.5 }, "top_p"},
		{"negative_top_k", func(c *Config) { c.TopK = -1 }, "top_k"},
		{"zero_timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	bmi := 24.22
	got := buildPrompt("What should I eat?", &bmi)
	want := "Act as a professional dietitian and health expert. Your BMI is 24.22. What should I eat?"
	if got != want {
		t.Errorf("buildPrompt with BMI = %q, want %q", got, want)
	}

	got = buildPrompt("What should I eat?", nil)
	want = "Act as a professional dietitian and health expert. No BMI data available. Please calculate your BMI first. What should I eat?"
	if got != want {
		t.Errorf("buildPrompt without BMI = %q, want %q", got, want)
	}
}

func TestMapFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			"timeout",
			llm.NewProviderError(llm.ErrCodeTimeout, "deadline", nil),
			http.StatusGatewayTimeout,
			"The model took too long to answer. Please try again.",
		},
		{
			"context_deadline",
			context.DeadlineExceeded,
			http.StatusGatewayTimeout,
			"The model took too long to answer. Please try again.",
		},
		{
			"authentication",
			llm.NewProviderError(llm.ErrCodeAuthentication, "bad key", nil),
			http.StatusBadGateway,
			"The upstream service rejected the API key.",
		},
		{
			"rate_limit",
			llm.NewProviderError(llm.ErrCodeRateLimit, "slow down", nil),
			http.StatusTooManyRequests,
			"Too many requests right now. Please try again in a moment.",
		},
		{
			"empty_response",
			llm.NewProviderError(llm.ErrCodeEmptyResponse, "nothing", nil),
			http.StatusBadGateway,
			"No response from the model.",
		},
		{
			"model_not_found",
			llm.NewProviderError(llm.ErrCodeModelNotFound, "gone", nil),
			http.StatusBadGateway,
			"The connected model is no longer available. Refresh the connection and try again.",
		},
		{
			"unknown",
			errors.New("wire snapped"),
			http.StatusBadGateway,
			"Response failed: wire snapped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := mapFailure(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", detail, tt.wantDetail)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	m := New()
	deps := plugin.Dependencies{Logger: zap.NewNop()}
	if err := m.Init(context.Background(), deps); err != nil {
		t.Fatalf("Init: %v", err)
	}

	h := m.Health(context.Background())
	if h.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", h.Status)
	}
	if h.Details["llm_available"] != "false" {
		t.Errorf("llm_available = %q, want false", h.Details["llm_available"])
	}

	m.plugins = &stubResolver{plugins: []plugin.Plugin{
		&stubSource{conn: &llm.Conn{Endpoint: "https://a.example", Model: "gemini-1.5-flash"}},
	}}
	h = m.Health(context.Background())
	if h.Details["llm_available"] != "true" {
		t.Errorf("llm_available = %q, want true", h.Details["llm_available"])
	}
	if h.Details["model"] != "gemini-1.5-flash" {
		t.Errorf("model = %q, want gemini-1.5-flash", h.Details["model"])
	}
}
