// File path: internal/api/import_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/termcheck/termcheck/internal/common"
)

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if s.importer == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("importer not configured"))
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: import decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("path required"))
		return
	}
	report, err := s.importer.Import(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info("api: import finished", "path", req.Path, "imported", report.Imported, "skipped", report.Skipped, "errors", len(report.Errors))
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.checker.Stats())
}
