// File path: internal/engine/engine.go
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/term"
	"github.com/termcheck/termcheck/internal/tokenize"
)

// Engine scans input text against the terminology and rule stores and emits
// offset-tagged issues. It only reads the stores; all offsets in the result
// are rune offsets into the input.
type Engine struct {
	terms      *term.Store
	rules      *term.RuleStore
	tokenizers *tokenize.Registry
}

// New builds an engine over the shared stores.
func New(terms *term.Store, rules *term.RuleStore, tokenizers *tokenize.Registry) *Engine {
	return &Engine{terms: terms, rules: rules, tokenizers: tokenizers}
}

// Match runs the rule, terminology and placeholder passes over text and
// merges them into one sequence ordered by ascending start offset. Issues
// from different sources never overlap in the result: rule issues win over
// terminology issues, which win over placeholder validation issues.
func (e *Engine) Match(text, language string) ([]term.Issue, error) {
	if e == nil {
		return nil, fmt.Errorf("engine not initialized")
	}
	offsets := runeOffsets(text)

	ruleIssues := e.rulePass(text, language, offsets)
	termIssues, err := e.terminologyPass(text, language)
	if err != nil {
		return nil, fmt.Errorf("terminology pass: %w", err)
	}
	placeholderIssues := placeholderPass(text, offsets)

	merged := mergeBySourcePriority(ruleIssues, termIssues, placeholderIssues)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Start != merged[j].Start {
			return merged[i].Start < merged[j].Start
		}
		return merged[i].End < merged[j].End
	})
	common.Logger().Debug("engine: match complete", "language", language, "issues", len(merged))
	return merged, nil
}

// rulePass scans text left to right with every rule for the language. Within
// the pass matches never overlap: the leftmost match wins at each position
// and rule insertion order breaks ties.
func (e *Engine) rulePass(text, language string, offsets []int) []term.Issue {
	rules := e.rules.RulesFor(language)
	if len(rules) == 0 {
		return nil
	}
	type candidate struct {
		issue term.Issue
		order int
	}
	var candidates []candidate
	for order, rule := range rules {
		re := rule.Regexp()
		if re == nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			original := text[loc[0]:loc[1]]
			suggestion := re.ReplaceAllString(original, rule.Replacement)
			reason := rule.Description
			if reason == "" {
				reason = fmt.Sprintf("use %q instead of %q", suggestion, original)
			}
			candidates = append(candidates, candidate{
				issue: term.Issue{
					Type:       rule.Type,
					Original:   original,
					Suggestion: suggestion,
					Reason:     reason,
					Start:      offsets[loc[0]],
					End:        offsets[loc[1]],
					Severity:   rule.Severity,
					Source:     term.SourceRule,
				},
				order: order,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].issue.Start != candidates[j].issue.Start {
			return candidates[i].issue.Start < candidates[j].issue.Start
		}
		return candidates[i].order < candidates[j].order
	})
	var issues []term.Issue
	consumed := -1
	for _, c := range candidates {
		if c.issue.Start < consumed {
			continue
		}
		issues = append(issues, c.issue)
		consumed = c.issue.End
	}
	return issues
}

// terminologyPass tokenizes text into whole-word spans and looks each one up
// in the terminology store. Adjacent spans are probed longest-first (up to
// three) so that compound terms produced by morphological segmentation still
// resolve; once a span is consumed the scan resumes after it.
func (e *Engine) terminologyPass(text, language string) ([]term.Issue, error) {
	spans, err := e.tokenizers.For(language).Tokenize(text)
	if err != nil {
		return nil, err
	}
	var issues []term.Issue
	for i := 0; i < len(spans); {
		consumed := 1
		for n := maxJoin(len(spans) - i); n >= 1; n-- {
			if !contiguous(spans[i : i+n]) {
				continue
			}
			candidate := joinSpans(spans[i : i+n])
			entry, status, ok := e.terms.Lookup(language, candidate)
			if !ok {
				continue
			}
			if status == term.StatusDeprecated || status == term.StatusAdmitted {
				if preferred, found := entry.Preferred(language); found && preferred.Text != candidate {
					issues = append(issues, term.Issue{
						Type:       term.TypePreferredSynonym,
						Original:   candidate,
						Suggestion: preferred.Text,
						Reason:     fmt.Sprintf("%q is %s; the preferred term is %q", candidate, status, preferred.Text),
						Start:      spans[i].Start,
						End:        spans[i+n-1].End,
						Severity:   term.SeverityWarning,
						Source:     term.SourceTerminology,
					})
				}
			}
			consumed = n
			break
		}
		i += consumed
	}
	return issues, nil
}

// mergeBySourcePriority keeps every issue from the highest-priority source
// and drops lower-priority issues that share any offset with a kept one.
func mergeBySourcePriority(groups ...[]term.Issue) []term.Issue {
	var kept []term.Issue
	for _, group := range groups {
		for _, issue := range group {
			if overlapsAny(kept, issue) {
				continue
			}
			kept = append(kept, issue)
		}
	}
	return kept
}

func overlapsAny(issues []term.Issue, candidate term.Issue) bool {
	for _, issue := range issues {
		if issue.Overlaps(candidate) {
			return true
		}
	}
	return false
}

func maxJoin(remaining int) int {
	if remaining > 3 {
		return 3
	}
	return remaining
}

func contiguous(spans []tokenize.Span) bool {
	for i := 1; i < len(spans); i++ {
		if spans[i].Start != spans[i-1].End {
			return false
		}
	}
	return true
}

func joinSpans(spans []tokenize.Span) string {
	if len(spans) == 1 {
		return spans[0].Text
	}
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// runeOffsets maps every byte boundary in text to its rune offset, so that
// regexp byte positions translate to the code-point offsets issues carry.
func runeOffsets(text string) []int {
	offsets := make([]int, len(text)+1)
	count := 0
	for i := range text {
		offsets[i] = count
		count++
	}
	offsets[len(text)] = count
	return offsets
}
