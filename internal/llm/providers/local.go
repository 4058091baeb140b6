// File path: internal/llm/providers/local.go
package providers

import (
	"context"

	"github.com/termcheck/termcheck/internal/term"
)

// LocalProvider is the offline fallback: it reports no issues so the
// deterministic result passes through unchanged and repeatably.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Analyze(ctx context.Context, req Request) ([]term.Issue, error) {
	return nil, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
