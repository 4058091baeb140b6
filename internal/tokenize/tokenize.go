// File path: internal/tokenize/tokenize.go
package tokenize

import (
	"strings"
	"unicode"
)

// Span is one token of analyzed text. Start and End are rune offsets into
// the original input, end exclusive.
type Span struct {
	Text  string
	Start int
	End   int
}

// Tokenizer splits text into whole-word spans for terminology lookup.
// Implementations are safe for concurrent use.
type Tokenizer interface {
	Tokenize(text string) ([]Span, error)
}

// Registry maps language codes to tokenizers with a word-scanner fallback
// for languages without a dedicated implementation.
type Registry struct {
	byLang   map[string]Tokenizer
	fallback Tokenizer
}

// NewRegistry builds the default registry: a word scanner for English and a
// kagome morphological tokenizer for Japanese. Building the Japanese
// dictionary is the expensive part, so the registry is constructed once and
// shared.
func NewRegistry() (*Registry, error) {
	jp, err := NewJapanese()
	if err != nil {
		return nil, err
	}
	words := Words{}
	return &Registry{
		byLang:   map[string]Tokenizer{"en": words, "jp": jp, "ja": jp},
		fallback: words,
	}, nil
}

// For returns the tokenizer registered for a language, or the fallback.
func (r *Registry) For(language string) Tokenizer {
	if r == nil {
		return Words{}
	}
	if tok, ok := r.byLang[strings.ToLower(strings.TrimSpace(language))]; ok {
		return tok
	}
	return r.fallback
}

// Words tokenizes space-delimited text. A word is a maximal run of letters,
// digits, hyphens and apostrophes containing at least one letter or digit,
// so compounds like "e-mail" stay one token.
type Words struct{}

func (Words) Tokenize(text string) ([]Span, error) {
	var spans []Span
	start := -1
	pos := 0
	var current strings.Builder
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := current.String()
		if strings.ContainsFunc(word, isWordCore) {
			spans = append(spans, Span{Text: word, Start: start, End: end})
		}
		current.Reset()
		start = -1
	}
	for _, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = pos
			}
			current.WriteRune(r)
		} else {
			flush(pos)
		}
		pos++
	}
	flush(pos)
	return spans, nil
}

func isWordRune(r rune) bool {
	return isWordCore(r) || r == '-' || r == '\''
}

func isWordCore(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
