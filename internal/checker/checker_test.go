// File path: internal/checker/checker_test.go
package checker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/termcheck/termcheck/internal/engine"
	"github.com/termcheck/termcheck/internal/llm"
	"github.com/termcheck/termcheck/internal/term"
	"github.com/termcheck/termcheck/internal/tokenize"
)

var (
	registryOnce sync.Once
	testRegistry *tokenize.Registry
)

func sharedRegistry(t *testing.T) *tokenize.Registry {
	t.Helper()
	registryOnce.Do(func() {
		var err error
		testRegistry, err = tokenize.NewRegistry()
		if err != nil {
			t.Fatalf("build registry: %v", err)
		}
	})
	return testRegistry
}

type mockProvider struct {
	name   string
	issues []term.Issue
	err    error
	block  bool

	mu       sync.Mutex
	requests []llm.Request
}

func (m *mockProvider) Analyze(ctx context.Context, req llm.Request) ([]term.Issue, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.issues, nil
}

func (m *mockProvider) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func newTestChecker(t *testing.T, provider llm.Provider, timeout time.Duration) (*Checker, *term.Store, *term.RuleStore) {
	t.Helper()
	terms := term.NewStore()
	rules := term.NewRuleStore()
	eng := engine.New(terms, rules, sharedRegistry(t))
	c, err := New(terms, rules, eng, provider, nil, timeout)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}
	return c, terms, rules
}

func TestCheckDeterministicOnlyWithoutProvider(t *testing.T) {
	c, _, _ := newTestChecker(t, nil, 0)
	if _, err := c.AddRule(context.Background(), "en", `\blogin\b`, "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}

	result, err := c.Check(context.Background(), "Please login here", "en", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.LLMUsed || result.Provider != "" {
		t.Fatalf("no provider configured, got %+v", result)
	}
	if len(result.Issues) != 1 || result.Issues[0].Suggestion != "sign in" {
		t.Fatalf("unexpected issues: %+v", result.Issues)
	}
	if c.LLMAvailable() {
		t.Fatalf("LLMAvailable should be false without a provider")
	}
}

func TestCheckLocalProviderCountsAsUnavailable(t *testing.T) {
	c, _, _ := newTestChecker(t, &mockProvider{name: "local"}, 0)
	result, err := c.Check(context.Background(), "anything", "en", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.LLMUsed || c.LLMAvailable() {
		t.Fatalf("local provider must not count as AI capability")
	}
}

func TestCheckMergesAdditiveAIIssues(t *testing.T) {
	provider := &mockProvider{issues: []term.Issue{
		{Type: term.TypeSuggestion, Original: "here", Suggestion: "now", Start: 13, End: 17, Severity: term.SeverityInfo, Source: term.SourceAI},
	}}
	c, _, _ := newTestChecker(t, provider, 0)
	if _, err := c.AddRule(context.Background(), "en", `\blogin\b`, "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}

	result, err := c.Check(context.Background(), "Please login here", "en", "ui context")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.LLMUsed || result.Provider != "mock" {
		t.Fatalf("expected AI pass to run, got %+v", result)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected merged issues, got %+v", result.Issues)
	}
	if result.Issues[0].Source != term.SourceRule || result.Issues[1].Source != term.SourceAI {
		t.Fatalf("expected ascending order rule then ai, got %+v", result.Issues)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.requests) != 1 {
		t.Fatalf("expected one provider call, got %d", len(provider.requests))
	}
	req := provider.requests[0]
	if req.Context != "ui context" || !strings.Contains(req.TermContext, "sign in") {
		t.Fatalf("provider request missing context: %+v", req)
	}
}

func TestCheckDropsAIIssueOverlappingDeterministic(t *testing.T) {
	provider := &mockProvider{issues: []term.Issue{
		{Type: term.TypeSuggestion, Original: "login", Suggestion: "log on", Start: 7, End: 12, Source: term.SourceAI},
	}}
	c, _, _ := newTestChecker(t, provider, 0)
	if _, err := c.AddRule(context.Background(), "en", `\blogin\b`, "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}

	result, err := c.Check(context.Background(), "Please login here", "en", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("overlapping AI issue must be dropped, got %+v", result.Issues)
	}
	if result.Issues[0].Suggestion != "sign in" || result.Issues[0].Source != term.SourceRule {
		t.Fatalf("deterministic issue must win, got %+v", result.Issues[0])
	}
	if !result.LLMUsed {
		t.Fatalf("AI pass ran, LLMUsed should be true")
	}
}

func TestCheckFallsBackOnProviderError(t *testing.T) {
	provider := &mockProvider{err: errors.New("upstream 500")}
	c, _, _ := newTestChecker(t, provider, 0)
	if _, err := c.AddRule(context.Background(), "en", `\blogin\b`, "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}

	result, err := c.Check(context.Background(), "Please login here", "en", "")
	if err != nil {
		t.Fatalf("provider failure must not fail the check: %v", err)
	}
	if result.LLMUsed {
		t.Fatalf("LLMUsed must be false on provider failure")
	}
	if len(result.Issues) != 1 || result.Issues[0].Source != term.SourceRule {
		t.Fatalf("deterministic baseline must survive, got %+v", result.Issues)
	}
}

func TestCheckEnforcesProviderTimeout(t *testing.T) {
	provider := &mockProvider{block: true}
	c, _, _ := newTestChecker(t, provider, 50*time.Millisecond)

	start := time.Now()
	result, err := c.Check(context.Background(), "Please login here", "en", "")
	if err != nil {
		t.Fatalf("timeout must degrade, not fail: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("check did not respect provider timeout, took %s", elapsed)
	}
	if result.LLMUsed {
		t.Fatalf("LLMUsed must be false after timeout")
	}
}

func TestAddRuleRejectsInvalidPattern(t *testing.T) {
	c, _, rules := newTestChecker(t, nil, 0)
	if _, err := c.AddRule(context.Background(), "en", "(unclosed", "x", term.TypePreferredSynonym, term.SeverityWarning, ""); err == nil {
		t.Fatalf("expected pattern error")
	}
	if rules.Count() != 0 {
		t.Fatalf("invalid rule must not be stored")
	}
}

func TestTerminologyContextIncludesRulesAndPairs(t *testing.T) {
	c, _, _ := newTestChecker(t, nil, 0)
	ctx := context.Background()
	if _, err := c.AddRule(ctx, "en", `\blogin\b`, "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	if _, err := c.AddTerminology(ctx, "en", "en", "email", "e-mail", term.StatusDeprecated, "ui"); err != nil {
		t.Fatalf("add terminology: %v", err)
	}

	block := c.TerminologyContext("en")
	if !strings.HasPrefix(block, "ENGLISH UI TERMINOLOGY PREFERENCES:") {
		t.Fatalf("missing header: %q", block)
	}
	if !strings.Contains(block, `"sign in"`) || !strings.Contains(block, "KEY TERMINOLOGY:") {
		t.Fatalf("context missing sections: %q", block)
	}
	if jp := c.TerminologyContext("jp"); !strings.HasPrefix(jp, "JAPANESE UI TERMINOLOGY PREFERENCES:") {
		t.Fatalf("missing japanese header: %q", jp)
	}
}

func TestStatsReflectBothStores(t *testing.T) {
	c, _, _ := newTestChecker(t, nil, 0)
	ctx := context.Background()
	if _, err := c.AddRule(ctx, "en", `\bOk\b`, "OK", term.TypeStyle, term.SeverityInfo, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	if _, err := c.AddTerminology(ctx, "en", "jp", "password", "パスワード", term.StatusPreferred, "auth"); err != nil {
		t.Fatalf("add terminology: %v", err)
	}

	stats := c.Stats()
	if stats.RuleCount != 1 {
		t.Fatalf("rule count: %+v", stats)
	}
	if stats.TermCount != 2 {
		t.Fatalf("expected both variants counted, got %+v", stats)
	}
	if stats.Languages["en"] != 1 || stats.Languages["jp"] != 1 {
		t.Fatalf("language counts: %+v", stats.Languages)
	}
}
