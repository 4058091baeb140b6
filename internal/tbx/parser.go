// File path: internal/tbx/parser.go
package tbx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/termcheck/termcheck/internal/term"
)

// TBX (TermBase eXchange) is the tag-based interchange format used to move
// bilingual terminology between translation tools. A document nests
// termEntry records under the martif body; each record carries descrip
// annotations and one langSet per language holding term groups in either
// the classic tig or the newer ntig shape.

type termEntry struct {
	ID          string    `xml:"id,attr"`
	Descrips    []descrip `xml:"descrip"`
	GrpDescrips []descrip `xml:"descripGrp>descrip"`
	LangSets    []langSet `xml:"langSet"`
}

type descrip struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type langSet struct {
	Lang  string   `xml:"lang,attr"`
	Tigs  []tig    `xml:"tig"`
	Ntigs []ntig   `xml:"ntig"`
	Terms []string `xml:"term"`
}

type tig struct {
	Term  string     `xml:"term"`
	Notes []termNote `xml:"termNote"`
}

type ntig struct {
	TermGrps []termGrp `xml:"termGrp"`
}

type termGrp struct {
	Term  string     `xml:"term"`
	Notes []termNote `xml:"termNote"`
}

type termNote struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// parseDocument streams termEntry elements out of a TBX document regardless
// of how deeply the surrounding envelope nests them. Invalid markup aborts
// the document with an error; entries that fail validation are reported
// individually and do not stop the rest of the document.
func parseDocument(r io.Reader, source string) ([]*term.Entry, []error, error) {
	decoder := xml.NewDecoder(r)
	var entries []*term.Entry
	var recordErrs []error
	index := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, recordErrs, fmt.Errorf("parse tbx: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "termEntry" {
			continue
		}
		var raw termEntry
		if err := decoder.DecodeElement(&raw, &start); err != nil {
			return nil, recordErrs, fmt.Errorf("decode termEntry: %w", err)
		}
		index++
		entry, err := buildEntry(raw, source, index)
		if err != nil {
			recordErrs = append(recordErrs, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, recordErrs, nil
}

func buildEntry(raw termEntry, source string, index int) (*term.Entry, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = fmt.Sprintf("%s#%d", source, index)
	}
	entry := &term.Entry{ID: id, Variants: make(map[string][]term.Variant)}
	for _, d := range append(raw.Descrips, raw.GrpDescrips...) {
		switch d.Type {
		case "subjectField":
			entry.Domain = strings.TrimSpace(d.Value)
		case "definition":
			entry.Definition = strings.TrimSpace(d.Value)
		}
	}
	if len(raw.LangSets) == 0 {
		return nil, fmt.Errorf("entry %s: missing language grouping", id)
	}
	for _, ls := range raw.LangSets {
		lang := NormalizeLang(ls.Lang)
		if lang == "" {
			return nil, fmt.Errorf("entry %s: language grouping without language code", id)
		}
		variants := collectVariants(ls, lang)
		if len(variants) == 0 {
			return nil, fmt.Errorf("entry %s: language grouping %s has no term string", id, lang)
		}
		entry.Variants[lang] = variants
	}
	return entry, nil
}

func collectVariants(ls langSet, lang string) []term.Variant {
	var variants []term.Variant
	for _, t := range ls.Tigs {
		if v, ok := variantFrom(t.Term, t.Notes, lang); ok {
			variants = append(variants, v)
		}
	}
	for _, n := range ls.Ntigs {
		for _, grp := range n.TermGrps {
			if v, ok := variantFrom(grp.Term, grp.Notes, lang); ok {
				variants = append(variants, v)
			}
		}
	}
	if len(variants) == 0 {
		// Older exports place bare term elements directly in the langSet.
		for _, text := range ls.Terms {
			if v, ok := variantFrom(text, nil, lang); ok {
				variants = append(variants, v)
			}
		}
	}
	return variants
}

func variantFrom(text string, notes []termNote, lang string) (term.Variant, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return term.Variant{}, false
	}
	status := term.StatusPreferred
	for _, note := range notes {
		if note.Type != "termType" {
			continue
		}
		status = normalizeStatus(note.Value)
		break
	}
	return term.Variant{Language: lang, Text: trimmed, Status: status}, true
}

func normalizeStatus(value string) term.Status {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(term.StatusPreferred):
		return term.StatusPreferred
	case string(term.StatusDeprecated), "deprecatedterm", "supersededterm":
		return term.StatusDeprecated
	default:
		// Unrecognized term types are usable but never suggested.
		return term.StatusAdmitted
	}
}

// NormalizeLang folds regioned language codes onto the two-letter codes the
// stores key by: en-US becomes en, ja and jp variants become jp.
func NormalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch {
	case strings.HasPrefix(lang, "en"):
		return "en"
	case strings.HasPrefix(lang, "ja"), strings.HasPrefix(lang, "jp"):
		return "jp"
	}
	return lang
}
