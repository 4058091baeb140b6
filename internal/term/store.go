// File path: internal/term/store.go
package term

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Store holds cross-language term entries indexed for exact per-language
// lookup. Reads are concurrent; writes are serialized and each entry becomes
// visible atomically.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	byKey   map[string]string
	index   map[string]map[string]string
	seq     int64
}

// NewStore returns an empty terminology store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
		byKey:   make(map[string]string),
		index:   make(map[string]map[string]string),
	}
}

// AddEntry inserts a fully-formed entry. An entry whose identifier is already
// present is rejected with ErrDuplicateEntry so importers can count skips
// without clobbering existing records.
func (s *Store) AddEntry(entry *Entry) error {
	if s == nil {
		return errors.New("terminology store not initialized")
	}
	if entry == nil || strings.TrimSpace(entry.ID) == "" {
		return errors.New("entry id required")
	}
	if len(entry.Variants) == 0 {
		return fmt.Errorf("entry %s: no language variants", entry.ID)
	}
	normalized := entry.Clone()
	for lang, variants := range normalized.Variants {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("entry %s: empty language code", entry.ID)
		}
		kept := variants[:0]
		for _, v := range variants {
			if strings.TrimSpace(v.Text) == "" {
				return fmt.Errorf("entry %s: empty term in %s", entry.ID, lang)
			}
			if v.Status == "" {
				v.Status = StatusPreferred
			}
			if !ValidStatus(v.Status) {
				return fmt.Errorf("entry %s: %w: %q", entry.ID, ErrInvalidTermType, v.Status)
			}
			v.Language = lang
			kept = append(kept, v)
		}
		normalized.Variants[lang] = demoteExtraPreferred(kept)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[normalized.ID]; exists {
		return fmt.Errorf("entry %s: %w", normalized.ID, ErrDuplicateEntry)
	}
	s.insertLocked(normalized)
	return nil
}

// AddTerminology upserts a source/target variant pair. The entry is keyed by
// (domain, source term): an existing entry gains the new variants, otherwise
// a fresh entry is created. The term type applies to the target variant; the
// source variant is registered as preferred in its language.
func (s *Store) AddTerminology(sourceLang, targetLang, sourceTerm, targetTerm string, termType Status, domain string) (*Entry, error) {
	if s == nil {
		return nil, errors.New("terminology store not initialized")
	}
	sourceLang = strings.TrimSpace(sourceLang)
	targetLang = strings.TrimSpace(targetLang)
	sourceTerm = strings.TrimSpace(sourceTerm)
	targetTerm = strings.TrimSpace(targetTerm)
	if sourceLang == "" || targetLang == "" || sourceTerm == "" || targetTerm == "" {
		return nil, errors.New("source and target language and term required")
	}
	if termType == "" {
		termType = StatusPreferred
	}
	if !ValidStatus(termType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTermType, termType)
	}
	key := upsertKey(domain, sourceTerm)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entryForKeyLocked(key)
	if entry == nil {
		s.seq++
		entry = &Entry{
			ID:       fmt.Sprintf("term-%d", s.seq),
			Domain:   strings.TrimSpace(domain),
			Variants: make(map[string][]Variant),
		}
		s.entries[entry.ID] = entry
		s.byKey[key] = entry.ID
	}
	s.attachVariantLocked(entry, Variant{Language: sourceLang, Text: sourceTerm, Status: StatusPreferred})
	s.attachVariantLocked(entry, Variant{Language: targetLang, Text: targetTerm, Status: termType})
	return entry.Clone(), nil
}

// Lookup finds the entry containing an exact, case-sensitive occurrence of
// text as a variant in the given language, along with that variant's status.
func (s *Store) Lookup(language, text string) (*Entry, Status, bool) {
	if s == nil {
		return nil, "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	langIndex, ok := s.index[language]
	if !ok {
		return nil, "", false
	}
	entryID, ok := langIndex[text]
	if !ok {
		return nil, "", false
	}
	entry := s.entries[entryID]
	if entry == nil {
		return nil, "", false
	}
	for _, v := range entry.Variants[language] {
		if v.Text == text {
			return entry.Clone(), v.Status, true
		}
	}
	return nil, "", false
}

// Preferred returns the single preferred variant of an entry for a language.
func (e *Entry) Preferred(language string) (Variant, bool) {
	if e == nil {
		return Variant{}, false
	}
	for _, v := range e.Variants[language] {
		if v.Status == StatusPreferred {
			return v, true
		}
	}
	return Variant{}, false
}

// Terms returns up to limit flattened source/target pairs for a language,
// pairing each variant with the preferred form of the other languages in the
// same entry. Limit <= 0 means no limit.
func (s *Store) Terms(language string, limit int) []TermPair {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pairs []TermPair
	for _, id := range s.sortedEntryIDsLocked() {
		entry := s.entries[id]
		variants := entry.Variants[language]
		if len(variants) == 0 {
			continue
		}
		target := s.counterpartLocked(entry, language)
		for _, v := range variants {
			pairs = append(pairs, TermPair{Source: v.Text, Target: target, Status: v.Status, Domain: entry.Domain})
			if limit > 0 && len(pairs) >= limit {
				return pairs
			}
		}
	}
	return pairs
}

// Search returns pairs whose source or target contains query, optionally
// restricted to one language. Matching is case-insensitive.
func (s *Store) Search(query, language string) []TermPair {
	if s == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pairs []TermPair
	for _, id := range s.sortedEntryIDsLocked() {
		entry := s.entries[id]
		for lang, variants := range entry.Variants {
			if language != "" && lang != language {
				continue
			}
			target := s.counterpartLocked(entry, lang)
			for _, v := range variants {
				if strings.Contains(strings.ToLower(v.Text), needle) || strings.Contains(strings.ToLower(target), needle) {
					pairs = append(pairs, TermPair{Source: v.Text, Target: target, Status: v.Status, Domain: entry.Domain})
				}
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Source < pairs[j].Source })
	return pairs
}

// Count returns the total number of term variants across all entries.
func (s *Store) Count() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, entry := range s.entries {
		for _, variants := range entry.Variants {
			total += len(variants)
		}
	}
	return total
}

// LanguageCounts returns the number of variants per language.
func (s *Store) LanguageCounts() map[string]int {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, entry := range s.entries {
		for lang, variants := range entry.Variants {
			counts[lang] += len(variants)
		}
	}
	return counts
}

func (s *Store) insertLocked(entry *Entry) {
	s.entries[entry.ID] = entry
	for lang, variants := range entry.Variants {
		langIndex := s.index[lang]
		if langIndex == nil {
			langIndex = make(map[string]string)
			s.index[lang] = langIndex
		}
		for _, v := range variants {
			if _, taken := langIndex[v.Text]; !taken {
				langIndex[v.Text] = entry.ID
			}
		}
	}
}

func (s *Store) attachVariantLocked(entry *Entry, variant Variant) {
	variants := entry.Variants[variant.Language]
	for i, existing := range variants {
		if existing.Text == variant.Text {
			variants[i].Status = variant.Status
			if variant.Status == StatusPreferred {
				entry.Variants[variant.Language] = promoteLocked(variants, i)
			}
			return
		}
	}
	if variant.Status == StatusPreferred {
		for i := range variants {
			if variants[i].Status == StatusPreferred {
				variants[i].Status = StatusAdmitted
			}
		}
	}
	entry.Variants[variant.Language] = append(variants, variant)
	langIndex := s.index[variant.Language]
	if langIndex == nil {
		langIndex = make(map[string]string)
		s.index[variant.Language] = langIndex
	}
	if _, taken := langIndex[variant.Text]; !taken {
		langIndex[variant.Text] = entry.ID
	}
}

// promoteLocked keeps the variant at idx as the only preferred form.
func promoteLocked(variants []Variant, idx int) []Variant {
	for i := range variants {
		if i != idx && variants[i].Status == StatusPreferred {
			variants[i].Status = StatusAdmitted
		}
	}
	return variants
}

func (s *Store) entryForKeyLocked(key string) *Entry {
	id, ok := s.byKey[key]
	if !ok {
		return nil
	}
	return s.entries[id]
}

func (s *Store) counterpartLocked(entry *Entry, language string) string {
	langs := make([]string, 0, len(entry.Variants))
	for lang := range entry.Variants {
		if lang != language {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if preferred, ok := entry.Preferred(lang); ok {
			return preferred.Text
		}
		if variants := entry.Variants[lang]; len(variants) > 0 {
			return variants[0].Text
		}
	}
	return ""
}

func (s *Store) sortedEntryIDsLocked() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func demoteExtraPreferred(variants []Variant) []Variant {
	seen := false
	for i := range variants {
		if variants[i].Status != StatusPreferred {
			continue
		}
		if seen {
			variants[i].Status = StatusAdmitted
			continue
		}
		seen = true
	}
	return variants
}

func upsertKey(domain, sourceTerm string) string {
	return strings.TrimSpace(domain) + "\x00" + sourceTerm
}

// RuleStore holds compiled per-language rules in insertion order. Insertion
// order is the tie-break for equal-priority matches during a scan.
type RuleStore struct {
	mu     sync.RWMutex
	rules  []Rule
	byLang map[string][]int
	seq    int64
}

// NewRuleStore returns an empty rule store.
func NewRuleStore() *RuleStore {
	return &RuleStore{byLang: make(map[string][]int)}
}

// AddRule compiles and stores a rule. Patterns that fail to compile or can
// produce a zero-length match are rejected with ErrInvalidPattern and the
// store is left unchanged.
func (s *RuleStore) AddRule(language, pattern, replacement, ruleType string, severity Severity, description string) (Rule, error) {
	if s == nil {
		return Rule{}, errors.New("rule store not initialized")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return Rule{}, errors.New("rule language required")
	}
	if strings.TrimSpace(pattern) == "" {
		return Rule{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	if ruleType == "" {
		ruleType = TypePreferredSynonym
	}
	if !ValidRuleType(ruleType) {
		return Rule{}, fmt.Errorf("invalid rule type %q", ruleType)
	}
	if severity == "" {
		severity = SeverityWarning
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	// A pattern that matches the empty string would yield zero-length issues.
	if re.FindStringIndex("") != nil {
		return Rule{}, fmt.Errorf("%w: pattern matches empty string", ErrInvalidPattern)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rule := Rule{
		ID:          s.seq,
		Language:    language,
		Pattern:     pattern,
		Replacement: replacement,
		Type:        ruleType,
		Severity:    severity,
		Description: description,
		re:          re,
	}
	s.byLang[language] = append(s.byLang[language], len(s.rules))
	s.rules = append(s.rules, rule)
	return rule, nil
}

// RulesFor returns the rules for a language in insertion order.
func (s *RuleStore) RulesFor(language string) []Rule {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byLang[language]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Rule, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.rules[i])
	}
	return out
}

// Count returns the total number of stored rules.
func (s *RuleStore) Count() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// LanguageCounts returns the number of rules per language.
func (s *RuleStore) LanguageCounts() map[string]int {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int, len(s.byLang))
	for lang, idxs := range s.byLang {
		counts[lang] = len(idxs)
	}
	return counts
}
