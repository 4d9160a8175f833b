package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Candidate pairs one endpoint base URL with one model identifier. The
// resolver probes candidates in slice order and stops at the first success.
type Candidate struct {
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
}

// CandidateTable builds the ordered probe table from an endpoint priority
// list and a model priority list: endpoint-major cross product, so every
// model is tried against an endpoint before the next endpoint is considered.
func CandidateTable(endpoints, models []string) []Candidate {
	table := make([]Candidate, 0, len(endpoints)*len(models))
	for _, e := range endpoints {
		for _, m := range models {
			table = append(table, Candidate{Endpoint: e, Model: m})
		}
	}
	return table
}

// Probe stage names recorded in Attempt.Stage.
const (
	StageCredential = "credential"  // pre-network credential presence check
	StageListModels = "list-models" // endpoint reachability check
	StageTestPrompt = "test-prompt" // per-model trial generation
)

// Attempt records one failed probe. Attempts replace silent skip-and-continue
// fallback: every candidate that did not produce a working connection leaves
// a typed record behind for diagnostics.
type Attempt struct {
	Endpoint  string  `json:"endpoint,omitempty"`
	Model     string  `json:"model,omitempty"`
	Stage     string  `json:"stage"`
	Code      string  `json:"code,omitempty"` // ErrCode* constant when known
	Err       string  `json:"error"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// Conn is a live handle to one resolved (endpoint, model) pair. It holds no
// mutable state after creation and is reused for every request until the
// caller discards it (for example via an explicit refresh).
type Conn struct {
	Endpoint     string    `json:"endpoint"`
	Model        string    `json:"model"`
	Provider     Provider  `json:"-"`
	ServerModels []string  `json:"server_models,omitempty"` // as reported by the endpoint, best-effort
	ResolvedAt   time.Time `json:"resolved_at"`
}

// Generate sends a prompt through the resolved model. The pinned model is
// applied first so callers may still override per call.
func (c *Conn) Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error) {
	merged := make([]CallOption, 0, len(opts)+1)
	merged = append(merged, WithModel(c.Model))
	merged = append(merged, opts...)
	return c.Provider.Generate(ctx, prompt, merged...)
}

// Chat sends a conversation through the resolved model.
func (c *Conn) Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error) {
	merged := make([]CallOption, 0, len(opts)+1)
	merged = append(merged, WithModel(c.Model))
	merged = append(merged, opts...)
	return c.Provider.Chat(ctx, messages, merged...)
}

// ResolveError aggregates every failed attempt of one resolution run.
// ServerModels carries the most recent model list any endpoint reported;
// it is best-effort and its absence is not itself an error.
type ResolveError struct {
	Attempts     []Attempt `json:"attempts"`
	ServerModels []string  `json:"server_models,omitempty"`
}

func (e *ResolveError) Error() string {
	if len(e.Attempts) == 0 {
		return "resolution failed: no candidates configured"
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("resolution failed after %d attempt(s): last %s %s: %s",
		len(e.Attempts), last.Stage, candidateLabel(last), last.Err)
}

func candidateLabel(a Attempt) string {
	switch {
	case a.Endpoint == "":
		return ""
	case a.Model == "":
		return a.Endpoint
	default:
		return a.Endpoint + " " + a.Model
	}
}

// Resolver walks an ordered candidate table until one (endpoint, model)
// pair answers a trivial test prompt with non-empty text. Pure linear
// fallback: no backoff, no parallel probing, no memory of failed attempts
// across calls.
type Resolver struct {
	// Credential is checked for presence before any network attempt.
	Credential string

	// Table is the ordered probe table; see CandidateTable.
	Table []Candidate

	// Factory builds a provider for one endpoint. The same provider is
	// reused for every model under that endpoint.
	Factory func(endpoint string) (Provider, error)

	// CheckTimeout bounds the per-endpoint reachability check (default 5s).
	CheckTimeout time.Duration

	// TestTimeout bounds each per-model trial generation (default 10s).
	TestTimeout time.Duration

	// TestPrompt is the trivial prompt sent to each candidate (default "Hello").
	TestPrompt string

	// OnAttempt, when set, is invoked for every failed attempt as it happens.
	OnAttempt func(Attempt)
}

// endpointState caches the per-endpoint probe outcome within one Resolve run.
type endpointState struct {
	provider    Provider
	models      []string
	unreachable bool
}

// Resolve probes the candidate table in order and returns the first working
// connection. On exhaustion it returns a *ResolveError listing every failed
// attempt in probe order.
func (r *Resolver) Resolve(ctx context.Context) (*Conn, error) {
	if strings.TrimSpace(r.Credential) == "" {
		a := Attempt{
			Stage: StageCredential,
			Code:  ErrCodeAuthentication,
			Err:   "credential is empty; set GOOGLE_API_KEY or plugins.genie.api_key",
		}
		r.record(&a)
		return nil, &ResolveError{Attempts: []Attempt{a}}
	}
	if r.Factory == nil {
		return nil, errors.New("resolver: Factory must not be nil")
	}

	checkTimeout := r.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = 5 * time.Second
	}
	testTimeout := r.TestTimeout
	if testTimeout <= 0 {
		testTimeout = 10 * time.Second
	}
	testPrompt := r.TestPrompt
	if testPrompt == "" {
		testPrompt = "Hello"
	}

	var (
		attempts     []Attempt
		serverModels []string
		states       = make(map[string]*endpointState)
	)

	for _, cand := range r.Table {
		if ctx.Err() != nil {
			break
		}

		state, ok := states[cand.Endpoint]
		if !ok {
			state = r.checkEndpoint(ctx, cand.Endpoint, checkTimeout, &attempts)
			states[cand.Endpoint] = state
			if len(state.models) > 0 {
				serverModels = state.models
			}
		}
		if state.unreachable {
			// Models under a dead endpoint are skipped, not re-recorded.
			continue
		}

		start := time.Now()
		genCtx, cancel := context.WithTimeout(ctx, testTimeout)
		// The probe only needs proof of non-empty text, so cap the output.
		resp, err := state.provider.Generate(genCtx, testPrompt,
			WithModel(cand.Model), WithMaxTokens(8))
		cancel()

		if err == nil && strings.TrimSpace(resp.Content) != "" {
			return &Conn{
				Endpoint:     cand.Endpoint,
				Model:        cand.Model,
				Provider:     state.provider,
				ServerModels: state.models,
				ResolvedAt:   time.Now(),
			}, nil
		}

		a := Attempt{
			Endpoint:  cand.Endpoint,
			Model:     cand.Model,
			Stage:     StageTestPrompt,
			ElapsedMS: elapsedMS(start),
		}
		if err != nil {
			a.Code = ErrorCode(err)
			a.Err = err.Error()
		} else {
			a.Code = ErrCodeEmptyResponse
			a.Err = "model returned empty text"
		}
		r.record(&a)
		attempts = append(attempts, a)
	}

	return nil, &ResolveError{Attempts: attempts, ServerModels: serverModels}
}

// checkEndpoint builds the endpoint's provider and runs the lightweight
// reachability check (list models). Failures are recorded as a single
// list-models attempt and mark the endpoint unreachable for this run.
func (r *Resolver) checkEndpoint(ctx context.Context, endpoint string, timeout time.Duration, attempts *[]Attempt) *endpointState {
	start := time.Now()

	fail := func(err error) *endpointState {
		a := Attempt{
			Endpoint:  endpoint,
			Stage:     StageListModels,
			Code:      ErrorCode(err),
			Err:       err.Error(),
			ElapsedMS: elapsedMS(start),
		}
		r.record(&a)
		*attempts = append(*attempts, a)
		return &endpointState{unreachable: true}
	}

	provider, err := r.Factory(endpoint)
	if err != nil {
		return fail(err)
	}

	hr, ok := provider.(HealthReporter)
	if !ok {
		// No reachability probe available; let the test prompts decide.
		return &endpointState{provider: provider}
	}

	listCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	models, err := hr.ListModels(listCtx)
	if err != nil {
		return fail(err)
	}

	return &endpointState{provider: provider, models: models}
}

func (r *Resolver) record(a *Attempt) {
	if r.OnAttempt != nil {
		r.OnAttempt(*a)
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
