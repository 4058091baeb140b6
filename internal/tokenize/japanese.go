// File path: internal/tokenize/japanese.go
package tokenize

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Japanese segments text with the kagome morphological analyzer, which is
// how word boundaries are recovered in the absence of whitespace.
type Japanese struct {
	t *tokenizer.Tokenizer
}

// NewJapanese builds a tokenizer backed by the bundled IPA dictionary.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init kagome tokenizer: %w", err)
	}
	return &Japanese{t: t}, nil
}

func (j *Japanese) Tokenize(text string) ([]Span, error) {
	if j == nil || j.t == nil {
		return nil, fmt.Errorf("japanese tokenizer not initialized")
	}
	tokens := j.t.Tokenize(text)
	spans := make([]Span, 0, len(tokens))
	for _, token := range tokens {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		// kagome reports Start/End as rune offsets into the input.
		spans = append(spans, Span{Text: token.Surface, Start: token.Start, End: token.End})
	}
	return spans, nil
}
