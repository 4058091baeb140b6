// File path: internal/llm/providers/provider.go
package providers

import (
	"context"

	"github.com/termcheck/termcheck/internal/term"
)

// Request carries one analysis call to an AI provider. TermContext is the
// exported terminology snapshot injected into the system prompt so the model
// grounds its suggestions in the curated term bank.
type Request struct {
	Text        string
	Language    string
	Context     string
	TermContext string
}

// Provider is the abstract AI capability. Analyze returns candidate issues
// located against the same text the deterministic engine saw; any error is
// safely ignorable by the caller.
type Provider interface {
	Analyze(ctx context.Context, req Request) ([]term.Issue, error)
	Name() string
}
