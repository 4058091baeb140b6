// File path: cmd/termcheckd/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/termcheck/termcheck/internal/api"
	"github.com/termcheck/termcheck/internal/catalog"
	"github.com/termcheck/termcheck/internal/checker"
	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/engine"
	"github.com/termcheck/termcheck/internal/llm"
	"github.com/termcheck/termcheck/internal/tbx"
	"github.com/termcheck/termcheck/internal/term"
	"github.com/termcheck/termcheck/internal/tokenize"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("termcheck: .env file not loaded", "error", err)
	} else {
		logger.Info("termcheck: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite terminology catalog")
	seedPath := flag.String("seed", strings.TrimSpace(os.Getenv("TERMCHECK_SEED_DIR")), "TBX file or directory to import at startup")
	languages := flag.String("languages", "en,jp", "comma-separated supported language codes")
	flag.Parse()

	logger.Info("termcheck: startup initiated", "addr", *addr, "catalog", *catalogPath)

	cat, err := catalog.Open(*catalogPath)
	if err != nil {
		logger.Error("termcheck: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer cat.Close()

	terms := term.NewStore()
	rules := term.NewRuleStore()
	if err := hydrate(ctx, cat, terms, rules); err != nil {
		logger.Error("termcheck: catalog hydration failed", "error", err)
		fmt.Println("hydration error:", err)
		os.Exit(1)
	}

	tokenizers, err := tokenize.NewRegistry()
	if err != nil {
		logger.Error("termcheck: tokenizer init failed", "error", err)
		fmt.Println("tokenizer error:", err)
		os.Exit(1)
	}

	provider := llm.NewProvider(llm.LoadConfig())
	logger.Info("termcheck: llm provider ready", "provider", provider.Name())

	eng := engine.New(terms, rules, tokenizers)
	chk, err := checker.New(terms, rules, eng, provider, cat, llm.LoadConfig().Timeout)
	if err != nil {
		logger.Error("termcheck: checker construction failed", "error", err)
		fmt.Println("checker error:", err)
		os.Exit(1)
	}

	if rules.Count() == 0 {
		seedDefaultRules(ctx, chk)
	}

	importer := tbx.NewImporter(terms, cat)
	if trimmed := strings.TrimSpace(*seedPath); trimmed != "" {
		report, err := importer.Import(ctx, trimmed)
		if err != nil {
			logger.Error("termcheck: seed import failed", "path", trimmed, "error", err)
		} else {
			logger.Info("termcheck: seed import finished", "path", trimmed, "imported", report.Imported, "skipped", report.Skipped, "errors", len(report.Errors))
		}
	}

	cfg := api.DefaultConfig()
	cfg.Languages = parseLanguages(*languages)
	cfg.APIToken = strings.TrimSpace(os.Getenv("TERMCHECK_API_TOKEN"))

	server, err := api.NewServer(chk, importer, &cfg)
	if err != nil {
		logger.Error("termcheck: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	stats := chk.Stats()
	logger.Info("termcheck: server listening", "addr", *addr, "terms", stats.TermCount, "rules", stats.RuleCount)
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("termcheck: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func hydrate(ctx context.Context, cat *catalog.Store, terms *term.Store, rules *term.RuleStore) error {
	logger := common.Logger()
	entries, err := cat.ListEntries(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := terms.AddEntry(entry); err != nil {
			if errors.Is(err, term.ErrDuplicateEntry) {
				continue
			}
			logger.Warn("termcheck: skipping persisted entry", "entry", entry.ID, "error", err)
		}
	}
	records, err := cat.ListRules(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		if _, err := rules.AddRule(record.Language, record.Pattern, record.Replacement, record.Type, term.Severity(record.Severity), record.Description); err != nil {
			logger.Warn("termcheck: skipping persisted rule", "pattern", record.Pattern, "error", err)
		}
	}
	logger.Info("termcheck: catalog hydrated", "entries", len(entries), "rules", len(records))
	return nil
}

type seedRule struct {
	language    string
	pattern     string
	replacement string
	severity    term.Severity
	description string
}

// Curated defaults applied to a fresh catalog.
var defaultRules = []seedRule{
	{"en", `\blogin\b`, "sign in", term.SeverityWarning, `Prefer "sign in" over "login"`},
	{"en", `\bLogout\b`, "Sign out", term.SeverityWarning, `Prefer "Sign out" over "Logout"`},
	{"en", `\be-mail\b`, "email", term.SeverityWarning, `Use "email" without hyphen`},
	{"en", `\bOk\b`, "OK", term.SeverityInfo, `Use "OK" in all caps`},
	{"jp", `ログイン`, "サインイン", term.SeverityWarning, `Use "サインイン" instead of "ログイン"`},
	{"jp", `ログアウト`, "サインアウト", term.SeverityWarning, `Use "サインアウト" instead of "ログアウト"`},
}

func seedDefaultRules(ctx context.Context, chk *checker.Checker) {
	logger := common.Logger()
	for _, seed := range defaultRules {
		if _, err := chk.AddRule(ctx, seed.language, seed.pattern, seed.replacement, term.TypePreferredSynonym, seed.severity, seed.description); err != nil {
			logger.Warn("termcheck: default rule rejected", "pattern", seed.pattern, "error", err)
		}
	}
	logger.Info("termcheck: default rules seeded", "count", len(defaultRules))
}

func parseLanguages(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func defaultCatalogPath() string {
	if env := strings.TrimSpace(os.Getenv("TERMCHECK_DB_PATH")); env != "" {
		return env
	}
	return filepath.Join("data", "terms.db")
}
