// File path: internal/api/rules_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/term"
)

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req addRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: rule decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rule, err := s.checker.AddRule(r.Context(), req.Language, req.Pattern, req.Replacement, req.RuleType, term.Severity(req.Severity), req.Description)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info("api: rule added", "language", rule.Language, "pattern", rule.Pattern)
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	lang := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang")))
	if !s.supportedLanguage(lang) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported language %q", lang))
		return
	}
	rules := s.checker.Rules(lang)
	if rules == nil {
		rules = []term.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lang": lang, "rules": rules})
}
