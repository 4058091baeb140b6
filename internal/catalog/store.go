// File path: internal/catalog/store.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/termcheck/termcheck/internal/term"
)

// Store persists term entries and rules in a SQLite catalog so the in-memory
// stores can be rebuilt across restarts.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store backed by the SQLite database at path. The schema
// is migrated on first use.
func Open(path string) (*Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		cfg.Path = trimmed
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig constructs a Store using the provided configuration.
func OpenWithConfig(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("catalog path required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	busy := int(cfg.BusyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_fk=1", abs, busy)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("catalog not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS term_variants (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                entry_id TEXT NOT NULL,
                domain TEXT NOT NULL DEFAULT '',
                definition TEXT NOT NULL DEFAULT '',
                language TEXT NOT NULL,
                term TEXT NOT NULL,
                status TEXT NOT NULL DEFAULT 'preferred',
                created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_term_variants_entry ON term_variants(entry_id);`,
	`CREATE INDEX IF NOT EXISTS idx_term_variants_lookup ON term_variants(language, term);`,
	`CREATE TABLE IF NOT EXISTS rules (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                language TEXT NOT NULL,
                pattern TEXT NOT NULL,
                replacement TEXT NOT NULL,
                rule_type TEXT NOT NULL,
                severity TEXT NOT NULL DEFAULT 'warning',
                description TEXT NOT NULL DEFAULT '',
                created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_rules_language ON rules(language);`,
}

type variantRow struct {
	EntryID    string `db:"entry_id"`
	Domain     string `db:"domain"`
	Definition string `db:"definition"`
	Language   string `db:"language"`
	Term       string `db:"term"`
	Status     string `db:"status"`
}

// RuleRecord is the persisted form of a rule. Patterns are recompiled when
// the rule store is rehydrated.
type RuleRecord struct {
	ID          int64  `db:"id"`
	Language    string `db:"language"`
	Pattern     string `db:"pattern"`
	Replacement string `db:"replacement"`
	Type        string `db:"rule_type"`
	Severity    string `db:"severity"`
	Description string `db:"description"`
}

// SaveEntry writes all variants of an entry, replacing any previously
// persisted rows for the same entry identifier.
func (s *Store) SaveEntry(ctx context.Context, entry *term.Entry) error {
	if s == nil || s.db == nil {
		return errors.New("catalog not initialised")
	}
	if entry == nil || strings.TrimSpace(entry.ID) == "" {
		return errors.New("entry id required")
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM term_variants WHERE entry_id = ?`, entry.ID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear entry rows: %w", err)
	}
	for lang, variants := range entry.Variants {
		for _, v := range variants {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO term_variants (entry_id, domain, definition, language, term, status) VALUES (?, ?, ?, ?, ?, ?)`,
				entry.ID, entry.Domain, entry.Definition, lang, v.Text, string(v.Status))
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("insert variant: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// ListEntries reconstructs every persisted entry.
func (s *Store) ListEntries(ctx context.Context) ([]*term.Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog not initialised")
	}
	rows := []variantRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT entry_id, domain, definition, language, term, status FROM term_variants ORDER BY entry_id, language, id`); err != nil {
		return nil, fmt.Errorf("select variants: %w", err)
	}
	var entries []*term.Entry
	byID := make(map[string]*term.Entry)
	for _, row := range rows {
		entry := byID[row.EntryID]
		if entry == nil {
			entry = &term.Entry{
				ID:         row.EntryID,
				Domain:     row.Domain,
				Definition: row.Definition,
				Variants:   make(map[string][]term.Variant),
			}
			byID[row.EntryID] = entry
			entries = append(entries, entry)
		}
		entry.Variants[row.Language] = append(entry.Variants[row.Language], term.Variant{
			Language: row.Language,
			Text:     row.Term,
			Status:   term.Status(row.Status),
		})
	}
	return entries, nil
}

// SaveRule persists one rule and returns its catalog identifier.
func (s *Store) SaveRule(ctx context.Context, record RuleRecord) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("catalog not initialised")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rules (language, pattern, replacement, rule_type, severity, description) VALUES (?, ?, ?, ?, ?, ?)`,
		record.Language, record.Pattern, record.Replacement, record.Type, record.Severity, record.Description)
	if err != nil {
		return 0, fmt.Errorf("insert rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("rule id: %w", err)
	}
	return id, nil
}

// ListRules returns every persisted rule in insertion order.
func (s *Store) ListRules(ctx context.Context) ([]RuleRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog not initialised")
	}
	records := []RuleRecord{}
	if err := s.db.SelectContext(ctx, &records, `SELECT id, language, pattern, replacement, rule_type, severity, description FROM rules ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}
	return records, nil
}

// Stats recomputes aggregate catalog counts on demand.
func (s *Store) Stats(ctx context.Context) (term.Stats, error) {
	if s == nil || s.db == nil {
		return term.Stats{}, errors.New("catalog not initialised")
	}
	stats := term.Stats{Languages: make(map[string]int)}
	if err := s.db.GetContext(ctx, &stats.TermCount, `SELECT COUNT(*) FROM term_variants`); err != nil {
		return term.Stats{}, fmt.Errorf("count terms: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.RuleCount, `SELECT COUNT(*) FROM rules`); err != nil {
		return term.Stats{}, fmt.Errorf("count rules: %w", err)
	}
	rows, err := s.db.QueryxContext(ctx, `SELECT language, COUNT(*) FROM term_variants GROUP BY language`)
	if err != nil {
		return term.Stats{}, fmt.Errorf("count languages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var language string
		var count int
		if err := rows.Scan(&language, &count); err != nil {
			return term.Stats{}, fmt.Errorf("scan language count: %w", err)
		}
		stats.Languages[language] = count
	}
	if err := rows.Err(); err != nil {
		return term.Stats{}, fmt.Errorf("language counts: %w", err)
	}
	return stats, nil
}
