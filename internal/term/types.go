// File path: internal/term/types.go
package term

import "regexp"

// Status classifies a term variant within an entry.
type Status string

const (
	StatusPreferred  Status = "preferred"
	StatusDeprecated Status = "deprecated"
	StatusAdmitted   Status = "admitted"
)

// ValidStatus reports whether s is one of the enumerated variant statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPreferred, StatusDeprecated, StatusAdmitted:
		return true
	}
	return false
}

// Severity grades how strongly an issue should be surfaced.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Source identifies which pass produced an issue.
type Source string

const (
	SourceRule        Source = "rule"
	SourceTerminology Source = "terminology"
	SourceValidation  Source = "validation"
	SourceAI          Source = "ai"
)

// Issue type labels shared across the deterministic and AI passes.
const (
	TypePreferredSynonym = "preferred_synonym"
	TypeForbiddenTerm    = "forbidden_term"
	TypeConsistency      = "consistency"
	TypeStyle            = "style"
	TypePlaceholder      = "placeholder_issue"
	TypeSuggestion       = "terminology_suggestion"
)

// ValidRuleType reports whether t is an accepted rule category.
func ValidRuleType(t string) bool {
	switch t {
	case TypePreferredSynonym, TypeForbiddenTerm, TypeConsistency, TypeStyle:
		return true
	}
	return false
}

// Variant is one language-specific form of a concept.
type Variant struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	Status   Status `json:"status"`
}

/// Entry is a cross-language concept: an identifier, a subject domain, an
// optional definition and the per-language variants that express it.
type Entry struct {
	ID         string               `json:"id"`
	Domain     string               `json:"domain,omitempty"`
	Definition string               `json:"definition,omitempty"`
	Variants   map[string][]Variant `json:"variants"`
}

// Clone returns a deep copy so callers never observe store-internal state.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := &Entry{ID: e.ID, Domain: e.Domain, Definition: e.Definition}
	if e.Variants != nil {
		out.Variants = make(map[string][]Variant, len(e.Variants))
		for lang, variants := range e.Variants {
			out.Variants[lang] = append([]Variant(nil), variants...)
		}
	}
	return out
}

// Rule is a compiled per-language pattern with its replacement. The compiled
// handle is built once at insertion and reused for every match call.
type Rule struct {
	ID          int64    `json:"id"`
	Language    string   `json:"language"`
	Pattern     string   `json:"pattern"`
	Replacement string   `json:"replacement"`
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern handle.
func (r Rule) Regexp() *regexp.Regexp {
	return r.re
}

// Issue is one located terminology problem in analyzed text. Offsets are
// rune offsets into the analyzed input.
type Issue struct {
	Type       string   `json:"type"`
	Original   string   `json:"original"`
	Suggestion string   `json:"suggestion"`
	Reason     string   `json:"reason"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Severity   Severity `json:"severity"`
	Source     Source   `json:"source"`
}

// Overlaps reports whether two issues share any rune offset.
func (i Issue) Overlaps(other Issue) bool {
	return i.Start < other.End && other.Start < i.End
}

// Stats is the derived read-only view over both stores.
type Stats struct {
	TermCount int            `json:"term_count"`
	RuleCount int            `json:"rule_count"`
	Languages map[string]int `json:"languages"`
}

// TermPair is a flattened source/target view of an entry, used by listings
// and by the terminology context handed to the AI provider.
type TermPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Status Status `json:"status"`
	Domain string `json:"domain,omitempty"`
}
