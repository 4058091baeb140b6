// File path: internal/tokenize/tokenize_test.go
package tokenize

import "testing"

func TestWordsKeepsCompoundsTogether(t *testing.T) {
	spans, err := Words{}.Tokenize("Please login to access your e-mail account")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []Span{
		{"Please", 0, 6},
		{"login", 7, 12},
		{"to", 13, 15},
		{"access", 16, 22},
		{"your", 23, 27},
		{"e-mail", 28, 34},
		{"account", 35, 42},
	}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d: %#v", len(want), len(spans), spans)
	}
	for i, span := range spans {
		if span != want[i] {
			t.Fatalf("span %d: got %#v, want %#v", i, span, want[i])
		}
	}
}

func TestWordsUsesRuneOffsets(t *testing.T) {
	spans, err := Words{}.Tokenize("héllo wörld")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Start != 6 || spans[1].End != 11 {
		t.Fatalf("expected rune offsets 6..11, got %d..%d", spans[1].Start, spans[1].End)
	}
}

func TestWordsSkipsBarePunctuation(t *testing.T) {
	spans, err := Words{}.Tokenize("-- yes --")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(spans) != 1 || spans[0].Text != "yes" {
		t.Fatalf("expected single token 'yes', got %#v", spans)
	}
}

func TestJapaneseSegmentsWithoutWhitespace(t *testing.T) {
	jp, err := NewJapanese()
	if err != nil {
		t.Fatalf("new japanese tokenizer: %v", err)
	}
	spans, err := jp.Tokenize("パスワードを入力")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(spans) == 0 {
		t.Fatalf("expected spans for japanese text")
	}
	if spans[0].Text != "パスワード" || spans[0].Start != 0 || spans[0].End != 5 {
		t.Fatalf("unexpected first span: %#v", spans[0])
	}
	last := spans[len(spans)-1]
	if last.End != 8 {
		t.Fatalf("expected final rune offset 8, got %d", last.End)
	}
}

func TestRegistryFallback(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if _, ok := reg.For("en").(Words); !ok {
		t.Fatalf("expected word scanner for en")
	}
	if _, ok := reg.For("de").(Words); !ok {
		t.Fatalf("expected fallback word scanner for unregistered language")
	}
	if _, ok := reg.For("jp").(*Japanese); !ok {
		t.Fatalf("expected kagome tokenizer for jp")
	}
}
