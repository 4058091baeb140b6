// File path: internal/api/auth.go
package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/termcheck/termcheck/internal/common"
)

// requireToken guards the v1 endpoints with a static bearer token. An empty
// configured token disables the check, which is the local-development mode.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" {
			writeError(w, http.StatusUnauthorized, fmt.Errorf("missing bearer token"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
			common.Logger().Warn("api: rejected token", "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
