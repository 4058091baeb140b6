// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/termcheck/termcheck/internal/checker"
	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/tbx"
)

type Server struct {
	router    chi.Router
	checker   *checker.Checker
	importer  *tbx.Importer
	languages map[string]struct{}
	apiToken  string
}

// Config controls the HTTP surface: which languages requests may name and
// the bearer token guarding the v1 endpoints (empty disables auth).
type Config struct {
	Languages []string
	APIToken  string
}

// DefaultConfig returns the standard configuration used when no overrides
// are provided.
func DefaultConfig() Config {
	return Config{Languages: []string{"en", "jp"}}
}

// Merge overlays non-empty configuration from the override onto the base.
func (c Config) Merge(override Config) Config {
	result := c
	if len(override.Languages) > 0 {
		result.Languages = append([]string(nil), override.Languages...)
	}
	if strings.TrimSpace(override.APIToken) != "" {
		result.APIToken = strings.TrimSpace(override.APIToken)
	}
	return result
}

func NewServer(chk *checker.Checker, importer *tbx.Importer, cfg *Config) (*Server, error) {
	logger := common.Logger()
	if chk == nil {
		return nil, fmt.Errorf("checker required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	languages := make(map[string]struct{}, len(configuration.Languages))
	for _, lang := range configuration.Languages {
		trimmed := strings.ToLower(strings.TrimSpace(lang))
		if trimmed == "" {
			continue
		}
		languages[trimmed] = struct{}{}
	}
	if len(languages) == 0 {
		return nil, fmt.Errorf("at least one supported language required")
	}
	srv := &Server{
		router:    chi.NewRouter(),
		checker:   chk,
		importer:  importer,
		languages: languages,
		apiToken:  configuration.APIToken,
	}
	srv.routes()
	logger.Info("api: server ready", "languages", len(languages), "auth", srv.apiToken != "", "llm_available", chk.LLMAvailable())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/check", s.handleCheck)
		r.Post("/terminology", s.handleAddTerminology)
		r.Get("/terminology", s.handleListTerminology)
		r.Get("/terminology/search", s.handleSearchTerminology)
		r.Post("/rules", s.handleAddRule)
		r.Get("/rules", s.handleListRules)
		r.Post("/import", s.handleImport)
		r.Get("/stats", s.handleStats)
		r.Get("/logs", s.handleLogs)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"llm_available": s.checker.LLMAvailable(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func (s *Server) supportedLanguage(lang string) bool {
	_, ok := s.languages[strings.ToLower(strings.TrimSpace(lang))]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
