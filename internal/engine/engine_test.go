// File path: internal/engine/engine_test.go
package engine

import (
	"reflect"
	"sync"
	"testing"

	"github.com/termcheck/termcheck/internal/term"
	"github.com/termcheck/termcheck/internal/tokenize"
)

var (
	registryOnce sync.Once
	registry     *tokenize.Registry
	registryErr  error
)

func testRegistry(t *testing.T) *tokenize.Registry {
	t.Helper()
	registryOnce.Do(func() {
		registry, registryErr = tokenize.NewRegistry()
	})
	if registryErr != nil {
		t.Fatalf("build tokenizer registry: %v", registryErr)
	}
	return registry
}

func newTestEngine(t *testing.T) (*Engine, *term.Store, *term.RuleStore) {
	t.Helper()
	terms := term.NewStore()
	rules := term.NewRuleStore()
	return New(terms, rules, testRegistry(t)), terms, rules
}

func addEmailEntry(t *testing.T, terms *term.Store) {
	t.Helper()
	err := terms.AddEntry(&term.Entry{ID: "email", Variants: map[string][]term.Variant{
		"en": {
			{Text: "email", Status: term.StatusPreferred},
			{Text: "e-mail", Status: term.StatusDeprecated},
		},
	}})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
}

func TestMatchCombinesRuleAndTerminologyPasses(t *testing.T) {
	eng, terms, rules := newTestEngine(t)
	if _, err := rules.AddRule("en", "login", "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	addEmailEntry(t, terms)

	issues, err := eng.Match("Please login to access your e-mail account", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(issues), issues)
	}
	first := issues[0]
	if first.Source != term.SourceRule || first.Original != "login" || first.Suggestion != "sign in" {
		t.Fatalf("unexpected rule issue: %+v", first)
	}
	if first.Start != 7 || first.End != 12 {
		t.Fatalf("rule issue offsets: got %d..%d, want 7..12", first.Start, first.End)
	}
	second := issues[1]
	if second.Source != term.SourceTerminology || second.Original != "e-mail" || second.Suggestion != "email" {
		t.Fatalf("unexpected terminology issue: %+v", second)
	}
	if second.Start != 28 || second.End != 34 {
		t.Fatalf("terminology issue offsets: got %d..%d, want 28..34", second.Start, second.End)
	}
	if second.Type != term.TypePreferredSynonym {
		t.Fatalf("expected preferred_synonym, got %s", second.Type)
	}
}

func TestMatchRuleWinsOverTerminologyOnSameSpan(t *testing.T) {
	eng, terms, rules := newTestEngine(t)
	if _, err := rules.AddRule("en", `e-mail`, "email", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	addEmailEntry(t, terms)

	issues, err := eng.Match("check your e-mail", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected the overlapping terminology issue to be dropped, got %d issues", len(issues))
	}
	if issues[0].Source != term.SourceRule {
		t.Fatalf("expected rule issue to win, got %s", issues[0].Source)
	}
}

func TestMatchIsDeterministicAndOrdered(t *testing.T) {
	eng, terms, rules := newTestEngine(t)
	if _, err := rules.AddRule("en", "login", "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	if _, err := rules.AddRule("en", `\bOk\b`, "OK", term.TypeStyle, term.SeverityInfo, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	addEmailEntry(t, terms)

	text := "Ok, login and open your e-mail"
	first, err := eng.Match(text, "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	second, err := eng.Match(text, "en")
	if err != nil {
		t.Fatalf("second match: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("match not deterministic:\n%+v\n%+v", first, second)
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Start > first[i].Start {
			t.Fatalf("issues out of order at %d: %+v", i, first)
		}
	}
	for i := range first {
		for j := i + 1; j < len(first); j++ {
			if first[i].Source == first[j].Source && first[i].Overlaps(first[j]) {
				t.Fatalf("same-source overlap between %+v and %+v", first[i], first[j])
			}
		}
	}
}

func TestMatchNonOverlappingRuleMatchesLeftmostWins(t *testing.T) {
	eng, _, rules := newTestEngine(t)
	// Both rules match "aba" in "ababa"; the leftmost match consumes the
	// region and scanning resumes after it.
	if _, err := rules.AddRule("en", "aba", "x", term.TypeConsistency, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	issues, err := eng.Match("ababa", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 non-overlapping match, got %d", len(issues))
	}
	if issues[0].Start != 0 || issues[0].End != 3 {
		t.Fatalf("expected leftmost match 0..3, got %d..%d", issues[0].Start, issues[0].End)
	}
}

func TestMatchJapaneseRulePassUsesRuneOffsets(t *testing.T) {
	eng, _, rules := newTestEngine(t)
	if _, err := rules.AddRule("jp", "ログイン", "サインイン", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	issues, err := eng.Match("ログインしてください", "jp")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Start != 0 || issues[0].End != 4 {
		t.Fatalf("expected rune offsets 0..4, got %d..%d", issues[0].Start, issues[0].End)
	}
	if issues[0].Suggestion != "サインイン" {
		t.Fatalf("unexpected suggestion: %q", issues[0].Suggestion)
	}
}

func TestMatchJapaneseTerminologyPass(t *testing.T) {
	eng, terms, _ := newTestEngine(t)
	err := terms.AddEntry(&term.Entry{ID: "password", Variants: map[string][]term.Variant{
		"jp": {
			{Text: "暗証番号", Status: term.StatusPreferred},
			{Text: "パスワード", Status: term.StatusDeprecated},
		},
	}})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	issues, err := eng.Match("パスワードを入力", "jp")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %+v", len(issues), issues)
	}
	if issues[0].Start != 0 || issues[0].End != 5 {
		t.Fatalf("expected rune offsets 0..5, got %d..%d", issues[0].Start, issues[0].End)
	}
	if issues[0].Suggestion != "暗証番号" {
		t.Fatalf("unexpected suggestion: %q", issues[0].Suggestion)
	}
}

func TestMatchPreferredTermNotFlagged(t *testing.T) {
	eng, terms, _ := newTestEngine(t)
	addEmailEntry(t, terms)
	issues, err := eng.Match("send an email", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("preferred term should not be flagged: %+v", issues)
	}
}

func TestMatchFlagsMinimalPlaceholders(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	issues, err := eng.Match("Save {} now", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 placeholder issue, got %d", len(issues))
	}
	got := issues[0]
	if got.Source != term.SourceValidation || got.Type != term.TypePlaceholder {
		t.Fatalf("unexpected issue: %+v", got)
	}
	if got.Start != 5 || got.End != 7 {
		t.Fatalf("expected offsets 5..7, got %d..%d", got.Start, got.End)
	}
}

func TestMatchNamedPlaceholderNotFlagged(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	issues, err := eng.Match("Hello {name}, welcome back", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("named placeholder should pass: %+v", issues)
	}
}

func TestMatchReplacementTemplatesExpand(t *testing.T) {
	eng, _, rules := newTestEngine(t)
	if _, err := rules.AddRule("en", `\b[Ll]og[- ]?in\b`, "sign in", term.TypePreferredSynonym, term.SeverityWarning, ""); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	issues, err := eng.Match("Log in here", "en")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(issues) != 1 || issues[0].Suggestion != "sign in" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}
