package llmtest

import (
	"context"
	"sync"
	"time"

	"github.com/HerbHall/healthgenie/pkg/llm"
)

// Compile-time interface guards.
var (
	_ llm.Provider       = (*Fake)(nil)
	_ llm.HealthReporter = (*Fake)(nil)
)

// Step scripts the outcome of one Generate or Chat call.
type Step struct {
	Response *llm.Response
	Err      error
}

// Reply scripts a successful call returning the given text.
func Reply(text string) Step {
	return Step{Response: &llm.Response{Content: text, Done: true}}
}

// Fail scripts a call failing with a typed provider error.
func Fail(code, message string) Step {
	return Step{Err: llm.NewProviderError(code, message, nil)}
}

// Call records one Generate or Chat invocation and the options it carried.
type Call struct {
	Prompt   string
	Messages []llm.Message
	Config   llm.CallConfig
}

// Fake is a scripted llm.Provider and llm.HealthReporter for resolver and
// handler tests. Steps are consumed in order; when the script runs out the
// last step repeats. Every call is recorded with its resolved CallConfig.
type Fake struct {
	mu        sync.Mutex
	steps     []Step
	next      int
	calls     []Call
	models    []string
	modelsErr error
	listCalls int
	delay     time.Duration
}

// NewFake creates a scripted provider. With no steps every call fails with
// a server error, which keeps an unconfigured fake from passing as healthy.
func NewFake(steps ...Step) *Fake {
	return &Fake{steps: steps, models: []string{"fake-model"}}
}

// SetModels scripts the ListModels result.
func (f *Fake) SetModels(models ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models = models
}

// FailListModels makes Heartbeat and ListModels return err.
func (f *Fake) FailListModels(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modelsErr = err
}

// SetDelay makes each Generate and Chat call block for d before answering,
// or fail with a timeout error if the context expires first.
func (f *Fake) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *Fake) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	cfg := llm.ApplyOptions(opts...)
	f.record(Call{Prompt: prompt, Config: cfg})
	return f.answer(ctx, cfg)
}

func (f *Fake) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "llmtest: messages must not be empty", nil)
	}
	cfg := llm.ApplyOptions(opts...)
	f.record(Call{Messages: messages, Config: cfg})
	return f.answer(ctx, cfg)
}

func (f *Fake) Heartbeat(ctx context.Context) error {
	_, err := f.ListModels(ctx)
	return err
}

func (f *Fake) ListModels(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.modelsErr != nil {
		return nil, f.modelsErr
	}
	out := make([]string, len(f.models))
	copy(out, f.models)
	return out, nil
}

// Calls returns a copy of every recorded Generate and Chat invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many Generate and Chat calls were made.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ListModelCalls returns how many times ListModels ran (Heartbeat included).
func (f *Fake) ListModelCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *Fake) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *Fake) answer(ctx context.Context, cfg llm.CallConfig) (*llm.Response, error) {
	f.mu.Lock()
	delay := f.delay
	step, ok := f.takeStep()
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, llm.NewProviderError(llm.ErrCodeTimeout, "llmtest: context already done", err)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, llm.NewProviderError(llm.ErrCodeTimeout, "llmtest: request timed out", ctx.Err())
		}
	}

	if !ok {
		return nil, llm.NewProviderError(llm.ErrCodeServerError, "llmtest: no scripted response", nil)
	}
	if step.Err != nil {
		return nil, step.Err
	}

	resp := *step.Response
	if resp.Model == "" {
		resp.Model = cfg.Model
	}
	if resp.Model == "" {
		resp.Model = "fake-model"
	}
	return &resp, nil
}

// takeStep must be called with f.mu held.
func (f *Fake) takeStep() (Step, bool) {
	if len(f.steps) == 0 {
		return Step{}, false
	}
	if f.next >= len(f.steps) {
		return f.steps[len(f.steps)-1], true
	}
	step := f.steps[f.next]
	f.next++
	return step, true
}
