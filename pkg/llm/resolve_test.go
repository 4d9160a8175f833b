package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/HerbHall/healthgenie/pkg/llm"
	"github.com/HerbHall/healthgenie/pkg/llm/llmtest"
)

func TestCandidateTable_EndpointMajorOrder(t *testing.T) {
	table := llm.CandidateTable(
		[]string{"https://a.example/v1beta", "https://b.example/v1"},
		[]string{"flash", "pro"},
	)

	want := []llm.Candidate{
		{Endpoint: "https://a.example/v1beta", Model: "flash"},
		{Endpoint: "https://a.example/v1beta", Model: "pro"},
		{Endpoint: "https://b.example/v1", Model: "flash"},
		{Endpoint: "https://b.example/v1", Model: "pro"},
	}
	if len(table) != len(want) {
		t.Fatalf("len(table) = %d, want %d", len(table), len(want))
	}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("table[%d] = %+v, want %+v", i, table[i], want[i])
		}
	}
}

func TestResolve_EmptyCredential_NoNetwork(t *testing.T) {
	factoryCalls := 0
	r := &llm.Resolver{
		Credential: "   ",
		Table:      llm.CandidateTable([]string{"https://a.example"}, []string{"flash"}),
		Factory: func(string) (llm.Provider, error) {
			factoryCalls++
			return llmtest.NewFake(llmtest.Reply("hi")), nil
		},
	}

	conn, err := r.Resolve(context.Background())
	if conn != nil {
		t.Fatalf("Resolve() conn = %+v, want nil", conn)
	}
	var re *llm.ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("Resolve() error = %T, want *llm.ResolveError", err)
	}
	if factoryCalls != 0 {
		t.Errorf("factory called %d times, want 0", factoryCalls)
	}
	if len(re.Attempts) != 1 {
		t.Fatalf("len(Attempts) = %d, want 1", len(re.Attempts))
	}
	a := re.Attempts[0]
	if a.Stage != llm.StageCredential {
		t.Errorf("Stage = %q, want %q", a.Stage, llm.StageCredential)
	}
	if a.Code != llm.ErrCodeAuthentication {
		t.Errorf("Code = %q, want %q", a.Code, llm.ErrCodeAuthentication)
	}
	if !strings.Contains(a.Err, "GOOGLE_API_KEY") {
		t.Errorf("Err = %q, want mention of GOOGLE_API_KEY", a.Err)
	}
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	fake := llmtest.NewFake(llmtest.Reply("Hi there"))
	fake.SetModels("gemini-1.5-flash", "gemini-1.5-pro")

	r := &llm.Resolver{
		Credential: "test-key",
		Table: llm.CandidateTable(
			[]string{"https://a.example/v1beta"},
			[]string{"gemini-1.5-flash", "gemini-1.5-pro"},
		),
		Factory: func(string) (llm.Provider, error) { return fake, nil },
	}

	conn, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if conn.Endpoint != "https://a.example/v1beta" {
		t.Errorf("Endpoint = %q, want first endpoint", conn.Endpoint)
	}
	if conn.Model != "gemini-1.5-flash" {
		t.Errorf("Model = %q, want gemini-1.5-flash", conn.Model)
	}
	if conn.ResolvedAt.IsZero() {
		t.Error("ResolvedAt is zero")
	}
	if len(conn.ServerModels) != 2 {
		t.Errorf("len(ServerModels) = %d, want 2", len(conn.ServerModels))
	}

	// One probe only: the second model must never be tried.
	if got := fake.CallCount(); got != 1 {
		t.Fatalf("Generate calls = %d, want 1", got)
	}
	call := fake.Calls()[0]
	if call.Config.Model != "gemini-1.5-flash" {
		t.Errorf("probe model = %q, want gemini-1.5-flash", call.Config.Model)
	}
	if call.Config.MaxTokens != 8 {
		t.Errorf("probe MaxTokens = %d, want 8", call.Config.MaxTokens)
	}
}

func TestResolve_PinnedConnForwardsModel(t *testing.T) {
	fake := llmtest.NewFake(llmtest.Reply("Hi"), llmtest.Reply("answer"))
	r := &llm.Resolver{
		Credential: "test-key",
		Table:      llm.CandidateTable([]string{"https://a.example"}, []string{"flash"}),
		Factory:    func(string) (llm.Provider, error) { return fake, nil },
	}

	conn, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := conn.Generate(context.Background(), "real question", llm.WithMaxTokens(100)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	calls := fake.Calls()
	last := calls[len(calls)-1]
	if last.Config.Model != "flash" {
		t.Errorf("pinned model = %q, want flash", last.Config.Model)
	}
	if last.Config.MaxTokens != 100 {
		t.Errorf("MaxTokens = %d, want caller override 100", last.Config.MaxTokens)
	}
}

func TestResolve_FallsThroughToNextEndpoint(t *testing.T) {
	dead := llmtest.NewFake()
	dead.FailListModels(llm.NewProviderError(llm.ErrCodeServerError, "gemini server unreachable", nil))

	alive := llmtest.NewFake(
		llmtest.Fail(llm.ErrCodeModelNotFound, "models/gemini-1.5-flash is not found"),
		llmtest.Reply("Hello!"),
	)
	alive.SetModels("gemini-1.5-pro")

	fakes := map[string]*llmtest.Fake{
		"https://a.example": dead,
		"https://b.example": alive,
	}
	var seen []llm.Attempt
	r := &llm.Resolver{
		Credential: "test-key",
		Table: llm.CandidateTable(
			[]string{"https://a.example", "https://b.example"},
			[]string{"gemini-1.5-flash", "gemini-1.5-pro"},
		),
		Factory:   func(endpoint string) (llm.Provider, error) { return fakes[endpoint], nil },
		OnAttempt: func(a llm.Attempt) { seen = append(seen, a) },
	}

	conn, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if conn.Endpoint != "https://b.example" {
		t.Errorf("Endpoint = %q, want https://b.example", conn.Endpoint)
	}
	if conn.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q, want gemini-1.5-pro", conn.Model)
	}

	// Dead endpoint: one list-models failure, and its models are skipped
	// rather than probed individually.
	if got := dead.ListModelCalls(); got != 1 {
		t.Errorf("dead ListModels calls = %d, want 1", got)
	}
	if got := dead.CallCount(); got != 0 {
		t.Errorf("dead Generate calls = %d, want 0", got)
	}

	if len(seen) != 2 {
		t.Fatalf("attempts = %d, want 2: %+v", len(seen), seen)
	}
	if seen[0].Stage != llm.StageListModels || seen[0].Endpoint != "https://a.example" || seen[0].Model != "" {
		t.Errorf("attempt[0] = %+v, want list-models on https://a.example", seen[0])
	}
	if seen[1].Stage != llm.StageTestPrompt || seen[1].Model != "gemini-1.5-flash" {
		t.Errorf("attempt[1] = %+v, want test-prompt on gemini-1.5-flash", seen[1])
	}
	if seen[1].Code != llm.ErrCodeModelNotFound {
		t.Errorf("attempt[1].Code = %q, want %q", seen[1].Code, llm.ErrCodeModelNotFound)
	}
}

func TestResolve_ExhaustionAggregatesAttempts(t *testing.T) {
	a := llmtest.NewFake(
		llmtest.Fail(llm.ErrCodeModelNotFound, "models/flash is not found"),
		llmtest.Fail(llm.ErrCodeRateLimit, "quota exceeded"),
	)
	a.SetModels("gemini-2.0-flash")
	b := llmtest.NewFake()
	b.FailListModels(llm.NewProviderError(llm.ErrCodeTimeout, "deadline exceeded", context.DeadlineExceeded))

	fakes := map[string]*llmtest.Fake{"https://a.example": a, "https://b.example": b}
	r := &llm.Resolver{
		Credential: "test-key",
		Table: llm.CandidateTable(
			[]string{"https://a.example", "https://b.example"},
			[]string{"flash", "pro"},
		),
		Factory: func(endpoint string) (llm.Provider, error) { return fakes[endpoint], nil },
	}

	conn, err := r.Resolve(context.Background())
	if conn != nil {
		t.Fatalf("Resolve() conn = %+v, want nil", conn)
	}
	var re *llm.ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("Resolve() error = %T, want *llm.ResolveError", err)
	}

	wantStages := []string{llm.StageTestPrompt, llm.StageTestPrompt, llm.StageListModels}
	if len(re.Attempts) != len(wantStages) {
		t.Fatalf("len(Attempts) = %d, want %d: %+v", len(re.Attempts), len(wantStages), re.Attempts)
	}
	for i, want := range wantStages {
		if re.Attempts[i].Stage != want {
			t.Errorf("Attempts[%d].Stage = %q, want %q", i, re.Attempts[i].Stage, want)
		}
	}
	if re.Attempts[1].Code != llm.ErrCodeRateLimit {
		t.Errorf("Attempts[1].Code = %q, want %q", re.Attempts[1].Code, llm.ErrCodeRateLimit)
	}

	// The reachable endpoint reported its catalog; exhaustion keeps it for
	// the operator.
	if len(re.ServerModels) != 1 || re.ServerModels[0] != "gemini-2.0-flash" {
		t.Errorf("ServerModels = %v, want [gemini-2.0-flash]", re.ServerModels)
	}
	if !strings.Contains(re.Error(), "3 attempt(s)") {
		t.Errorf("Error() = %q, want attempt count", re.Error())
	}
}

func TestResolve_EmptyTextCountsAsFailure(t *testing.T) {
	fake := llmtest.NewFake(llmtest.Reply("   \n"), llmtest.Reply("ok"))
	var seen []llm.Attempt
	r := &llm.Resolver{
		Credential: "test-key",
		Table:      llm.CandidateTable([]string{"https://a.example"}, []string{"flash", "pro"}),
		Factory:    func(string) (llm.Provider, error) { return fake, nil },
		OnAttempt:  func(a llm.Attempt) { seen = append(seen, a) },
	}

	conn, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if conn.Model != "pro" {
		t.Errorf("Model = %q, want pro (flash answered blank)", conn.Model)
	}
	if len(seen) != 1 {
		t.Fatalf("attempts = %d, want 1", len(seen))
	}
	if seen[0].Code != llm.ErrCodeEmptyResponse {
		t.Errorf("attempt Code = %q, want %q", seen[0].Code, llm.ErrCodeEmptyResponse)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factoryCalls := 0
	r := &llm.Resolver{
		Credential: "test-key",
		Table:      llm.CandidateTable([]string{"https://a.example"}, []string{"flash"}),
		Factory: func(string) (llm.Provider, error) {
			factoryCalls++
			return llmtest.NewFake(llmtest.Reply("hi")), nil
		},
	}

	conn, err := r.Resolve(ctx)
	if conn != nil {
		t.Fatalf("Resolve() conn = %+v, want nil", conn)
	}
	var re *llm.ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("Resolve() error = %T, want *llm.ResolveError", err)
	}
	if factoryCalls != 0 {
		t.Errorf("factory called %d times after cancel, want 0", factoryCalls)
	}
}

func TestResolve_FactoryErrorMarksEndpointUnreachable(t *testing.T) {
	r := &llm.Resolver{
		Credential: "test-key",
		Table:      llm.CandidateTable([]string{"://bad"}, []string{"flash", "pro"}),
		Factory: func(string) (llm.Provider, error) {
			return nil, errors.New("invalid base URL")
		},
	}

	_, err := r.Resolve(context.Background())
	var re *llm.ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("Resolve() error = %T, want *llm.ResolveError", err)
	}
	// One attempt for the endpoint, not one per model.
	if len(re.Attempts) != 1 {
		t.Fatalf("len(Attempts) = %d, want 1: %+v", len(re.Attempts), re.Attempts)
	}
	if re.Attempts[0].Stage != llm.StageListModels {
		t.Errorf("Stage = %q, want %q", re.Attempts[0].Stage, llm.StageListModels)
	}
}
