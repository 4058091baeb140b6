// File path: internal/api/types.go
package api

import "github.com/termcheck/termcheck/internal/term"

type checkRequest struct {
	Text    string `json:"text"`
	Lang    string `json:"lang"`
	Context string `json:"context,omitempty"`
}

type checkResponse struct {
	Issues   []term.Issue `json:"issues"`
	Text     string       `json:"text"`
	Lang     string       `json:"lang"`
	LLMUsed  bool         `json:"llm_used"`
	Provider *string      `json:"provider"`
}

type addTerminologyRequest struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	SourceTerm string `json:"source_term"`
	TargetTerm string `json:"target_term"`
	TermType   string `json:"term_type,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

type addRuleRequest struct {
	Language    string `json:"language"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	RuleType    string `json:"rule_type,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description,omitempty"`
}

type importRequest struct {
	Path string `json:"path"`
}
