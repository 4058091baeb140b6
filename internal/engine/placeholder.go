// File path: internal/engine/placeholder.go
package engine

import (
	"fmt"
	"regexp"

	"github.com/termcheck/termcheck/internal/term"
)

type placeholderPattern struct {
	re   *regexp.Regexp
	name string
}

var placeholderPatterns = []placeholderPattern{
	{regexp.MustCompile(`\{[^}]*\}`), "curly brace placeholder"},
	{regexp.MustCompile(`%[sd]`), "printf-style placeholder"},
	{regexp.MustCompile(`\$\{[^}]*\}`), "shell-style placeholder"},
	{regexp.MustCompile(`%\([^)]+\)[sd]`), "named format placeholder"},
}

// placeholderPass flags placeholders with no discernible content, such as
// bare {} or positional %s markers that give translators nothing to anchor
// on. These issues never suppress rule or terminology findings.
func placeholderPass(text string, offsets []int) []term.Issue {
	var issues []term.Issue
	for _, p := range placeholderPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			placeholder := text[loc[0]:loc[1]]
			if !minimalPlaceholder(placeholder) {
				continue
			}
			issues = append(issues, term.Issue{
				Type:       term.TypePlaceholder,
				Original:   placeholder,
				Suggestion: "verify placeholder content",
				Reason:     fmt.Sprintf("empty or minimal %s", p.name),
				Start:      offsets[loc[0]],
				End:        offsets[loc[1]],
				Severity:   term.SeverityWarning,
				Source:     term.SourceValidation,
			})
		}
	}
	// Different placeholder patterns can match the same region, e.g. ${x}
	// and {x}; keep the first non-overlapping set.
	return mergeBySourcePriority(nil, issues)
}

func minimalPlaceholder(placeholder string) bool {
	switch placeholder {
	case "{}", "%s", "%d":
		return true
	}
	return len(placeholder) <= 2
}
