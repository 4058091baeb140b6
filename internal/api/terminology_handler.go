// File path: internal/api/terminology_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/term"
)

func (s *Server) handleAddTerminology(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req addTerminologyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: terminology decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.checker.AddTerminology(r.Context(), req.SourceLang, req.TargetLang, req.SourceTerm, req.TargetTerm, term.Status(req.TermType), req.Domain)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, term.ErrInvalidTermType) && !isValidationError(err) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err)
		return
	}
	logger.Info("api: terminology added", "entry", entry.ID, "source", req.SourceTerm, "target", req.TargetTerm)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListTerminology(w http.ResponseWriter, r *http.Request) {
	lang := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang")))
	if !s.supportedLanguage(lang) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported language %q", lang))
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}
	pairs := s.checker.Terms(lang, limit)
	if pairs == nil {
		pairs = []term.TermPair{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lang": lang, "terms": pairs})
}

func (s *Server) handleSearchTerminology(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("query required"))
		return
	}
	lang := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang")))
	if lang != "" && !s.supportedLanguage(lang) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported language %q", lang))
		return
	}
	pairs := s.checker.Search(query, lang)
	if pairs == nil {
		pairs = []term.TermPair{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"query": query, "terms": pairs})
}

// isValidationError separates caller mistakes from internal failures for
// status code selection.
func isValidationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "required") || strings.Contains(msg, "invalid")
}
