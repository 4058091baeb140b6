// File path: internal/api/check_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/term"
)

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: check decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("text required"))
		return
	}
	lang := strings.ToLower(strings.TrimSpace(req.Lang))
	if !s.supportedLanguage(lang) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported language %q", req.Lang))
		return
	}
	result, err := s.checker.Check(r.Context(), req.Text, lang, req.Context)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	resp := checkResponse{
		Issues:  result.Issues,
		Text:    req.Text,
		Lang:    lang,
		LLMUsed: result.LLMUsed,
	}
	if resp.Issues == nil {
		resp.Issues = []term.Issue{}
	}
	if result.Provider != "" {
		resp.Provider = &result.Provider
	}
	logger.Info("api: check complete", "lang", lang, "issues", len(result.Issues), "llm_used", result.LLMUsed)
	writeJSON(w, http.StatusOK, resp)
}
