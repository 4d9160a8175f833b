package genie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HerbHall/healthgenie/pkg/llm"
	"github.com/HerbHall/healthgenie/pkg/llm/llmtest"
	"github.com/HerbHall/healthgenie/pkg/plugin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	hgconfig "github.com/HerbHall/healthgenie/internal/config"
)

// testSecret is deliberately distinctive so a substring match cannot
// collide with ordinary log text.
const testSecret = "hygiene-key-3f9a1c-do-not-log"

// newObservedModule initializes a module with the secret supplied through
// the explicit config path, the worst case for leaks, and captures every
// log entry it emits.
func newObservedModule(t *testing.T, provider llm.Provider) (*Module, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	v := viper.New()
	v.Set("api_key", testSecret)

	m := New()
	m.factory = func(string) (llm.Provider, error) { return provider, nil }

	deps := plugin.Dependencies{Logger: logger, Config: hgconfig.New(v)}
	if err := m.Init(context.Background(), deps); err != nil {
		t.Fatalf("Init: %v", err)
	}

	m.mu.Lock()
	m.cfg.Endpoints = []string{"https://a.example/v1beta"}
	m.cfg.Models = []string{"flash"}
	m.mu.Unlock()
	return m, logs
}

// containsSecret checks if any log entry contains the secret string.
func containsSecret(logs *observer.ObservedLogs, secret string) bool {
	entries := logs.All()
	for i := range entries {
		// Check the message itself.
		if strings.Contains(entries[i].Message, secret) {
			return true
		}
		// Check all field values.
		for j := range entries[i].Context {
			if strings.Contains(entries[i].Context[j].String, secret) {
				return true
			}
			// Check interface values (like errors).
			if entries[i].Context[j].Interface != nil {
				if s, ok := entries[i].Context[j].Interface.(string); ok && strings.Contains(s, secret) {
					return true
				}
				if err, ok := entries[i].Context[j].Interface.(error); ok && strings.Contains(err.Error(), secret) {
					return true
				}
			}
		}
	}
	return false
}

func TestAPIKeyNotInLogs_SuccessfulResolution(t *testing.T) {
	m, logs := newObservedModule(t, llmtest.NewFake(llmtest.Reply("Hi")))

	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if containsSecret(logs, testSecret) {
		t.Error("API key found in log output after successful resolution")
	}
}

func TestAPIKeyNotInLogs_FailedResolution(t *testing.T) {
	fail := llmtest.Fail(llm.ErrCodeAuthentication, "API key not valid")
	m, logs := newObservedModule(t, llmtest.NewFake(fail))

	if _, err := m.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded, want failure")
	}

	// Failure paths log the resolve error and every attempt record.
	if containsSecret(logs, testSecret) {
		t.Error("API key found in log output after failed resolution")
	}
}

func TestAPIKeyNotInResponses(t *testing.T) {
	m, _ := newObservedModule(t, llmtest.NewFake(llmtest.Reply("Hi")))
	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	mux := http.NewServeMux()
	for _, rt := range m.Routes() {
		mux.HandleFunc(rt.Method+" "+rt.Path, rt.Handler)
	}

	for _, path := range []string{"/status", "/models", "/config"} {
		t.Run(strings.TrimPrefix(path, "/"), func(t *testing.T) {
			req := httptest.NewRequest("GET", path, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			body := w.Body.String()
			if strings.Contains(body, testSecret) {
				t.Errorf("%s response contains the API key", path)
			}
			if strings.Contains(body, "api_key") {
				t.Errorf("%s response exposes an api_key field", path)
			}
		})
	}
}
