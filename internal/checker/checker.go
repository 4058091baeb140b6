// File path: internal/checker/checker.go
package checker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/termcheck/termcheck/internal/catalog"
	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/engine"
	"github.com/termcheck/termcheck/internal/llm"
	"github.com/termcheck/termcheck/internal/term"
)

const defaultLLMTimeout = 15 * time.Second

// Checker is the orchestration layer: it always computes the deterministic
// rule and terminology result, optionally augments it with a bounded AI
// call, and owns the mutating operations against both stores.
type Checker struct {
	terms    *term.Store
	rules    *term.RuleStore
	engine   *engine.Engine
	provider llm.Provider
	catalog  *catalog.Store
	timeout  time.Duration
}

// Result is the outcome of one analysis call. Provider is empty when the AI
// path was not used.
type Result struct {
	Issues   []term.Issue
	LLMUsed  bool
	Provider string
}

// New wires a checker over the shared stores. The catalog may be nil for
// in-memory operation; provider may be nil to disable the AI pass entirely.
func New(terms *term.Store, rules *term.RuleStore, eng *engine.Engine, provider llm.Provider, cat *catalog.Store, llmTimeout time.Duration) (*Checker, error) {
	if terms == nil || rules == nil || eng == nil {
		return nil, errors.New("terminology store, rule store and engine required")
	}
	if llmTimeout <= 0 {
		llmTimeout = defaultLLMTimeout
	}
	return &Checker{terms: terms, rules: rules, engine: eng, provider: provider, catalog: cat, timeout: llmTimeout}, nil
}

// Check analyzes text in the given language. The deterministic result is the
// guaranteed baseline; AI findings are merged in strictly additively, and
// any provider failure or timeout degrades to the deterministic result with
// LLMUsed false.
func (c *Checker) Check(ctx context.Context, text, language, requestContext string) (Result, error) {
	logger := common.Logger()
	baseline, err := c.engine.Match(text, language)
	if err != nil {
		return Result{}, fmt.Errorf("match: %w", err)
	}
	result := Result{Issues: baseline}
	if !c.aiAvailable() {
		return result, nil
	}
	aiCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	aiIssues, err := c.provider.Analyze(aiCtx, llm.Request{
		Text:        text,
		Language:    language,
		Context:     requestContext,
		TermContext: c.TerminologyContext(language),
	})
	if err != nil {
		logger.Warn("checker: ai analysis unavailable, returning deterministic result", "provider", c.provider.Name(), "error", err)
		return result, nil
	}
	result.Issues = mergeAI(baseline, aiIssues)
	result.LLMUsed = true
	result.Provider = c.provider.Name()
	logger.Debug("checker: analysis complete", "deterministic", len(baseline), "ai", len(aiIssues), "merged", len(result.Issues))
	return result, nil
}

// LLMAvailable reports whether an AI provider is configured.
func (c *Checker) LLMAvailable() bool {
	return c != nil && c.aiAvailable()
}

func (c *Checker) aiAvailable() bool {
	// The local provider exists so offline runs stay deterministic; it is
	// not an AI capability.
	return c.provider != nil && c.provider.Name() != "local"
}

// mergeAI appends AI issues onto the deterministic set. Where an AI issue
// overlaps a deterministic one the deterministic issue is kept and the AI
// issue dropped, preserving reproducibility of the baseline.
func mergeAI(deterministic, ai []term.Issue) []term.Issue {
	merged := append([]term.Issue(nil), deterministic...)
	for _, issue := range ai {
		conflict := false
		for _, kept := range deterministic {
			if kept.Overlaps(issue) {
				conflict = true
				break
			}
		}
		if !conflict {
			merged = append(merged, issue)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Start != merged[j].Start {
			return merged[i].Start < merged[j].Start
		}
		return merged[i].End < merged[j].End
	})
	return merged
}

// AddTerminology upserts a term pair in the store and writes the updated
// entry through to the catalog when one is configured.
func (c *Checker) AddTerminology(ctx context.Context, sourceLang, targetLang, sourceTerm, targetTerm string, termType term.Status, domain string) (*term.Entry, error) {
	entry, err := c.terms.AddTerminology(sourceLang, targetLang, sourceTerm, targetTerm, termType, domain)
	if err != nil {
		return nil, err
	}
	if c.catalog != nil {
		if err := c.catalog.SaveEntry(ctx, entry); err != nil {
			common.Logger().Error("checker: catalog write failed", "entry", entry.ID, "error", err)
		}
	}
	return entry, nil
}

// AddRule validates, compiles and stores a rule, persisting it when a
// catalog is configured. An invalid pattern leaves both stores unchanged.
func (c *Checker) AddRule(ctx context.Context, language, pattern, replacement, ruleType string, severity term.Severity, description string) (term.Rule, error) {
	rule, err := c.rules.AddRule(language, pattern, replacement, ruleType, severity, description)
	if err != nil {
		return term.Rule{}, err
	}
	if c.catalog != nil {
		if _, err := c.catalog.SaveRule(ctx, catalog.RuleRecord{
			Language:    rule.Language,
			Pattern:     rule.Pattern,
			Replacement: rule.Replacement,
			Type:        rule.Type,
			Severity:    string(rule.Severity),
			Description: rule.Description,
		}); err != nil {
			common.Logger().Error("checker: rule persist failed", "pattern", rule.Pattern, "error", err)
		}
	}
	return rule, nil
}

// Terms lists flattened term pairs for a language.
func (c *Checker) Terms(language string, limit int) []term.TermPair {
	return c.terms.Terms(language, limit)
}

// Search finds term pairs containing the query.
func (c *Checker) Search(query, language string) []term.TermPair {
	return c.terms.Search(query, language)
}

// Rules lists the rules for a language in insertion order.
func (c *Checker) Rules(language string) []term.Rule {
	return c.rules.RulesFor(language)
}

// Stats recomputes the aggregate view over both stores.
func (c *Checker) Stats() term.Stats {
	return term.Stats{
		TermCount: c.terms.Count(),
		RuleCount: c.rules.Count(),
		Languages: c.terms.LanguageCounts(),
	}
}

// TerminologyContext renders the stores as a compact prompt block: the top
// rules and term pairs for a language, the same way the dashboard shows them.
func (c *Checker) TerminologyContext(language string) string {
	var lines []string
	if language == "jp" {
		lines = append(lines, "JAPANESE UI TERMINOLOGY PREFERENCES:")
	} else {
		lines = append(lines, "ENGLISH UI TERMINOLOGY PREFERENCES:")
	}
	rules := c.rules.RulesFor(language)
	if len(rules) > 10 {
		rules = rules[:10]
	}
	for _, rule := range rules {
		lines = append(lines, fmt.Sprintf("- Use %q instead of pattern %q", rule.Replacement, rule.Pattern))
	}
	pairs := c.terms.Terms(language, 20)
	if len(pairs) > 0 {
		lines = append(lines, "", "KEY TERMINOLOGY:")
		for _, pair := range pairs {
			line := fmt.Sprintf("- %q -> %q", pair.Source, pair.Target)
			if pair.Domain != "" {
				line += fmt.Sprintf(" (%s)", pair.Domain)
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
