package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"wavecrate/config"
	"wavecrate/core/auth"
	"wavecrate/core/media"
	"wavecrate/core/stats"
	"wavecrate/logger"
)

// APIHandler holds the handler dependencies: the media service, admin
// credential verification and session tokens, the global counters, and
// config.
type APIHandler struct {
	media    *media.Service
	verifier auth.CredentialVerifier
	tokens   *auth.TokenIssuer
	counters *stats.Counters
	cfg      *config.Config
}

// NewAPIHandler creates the API handler set.
func NewAPIHandler(
	mediaSvc *media.Service,
	verifier auth.CredentialVerifier,
	tokens *auth.TokenIssuer,
	counters *stats.Counters,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		media:    mediaSvc,
		verifier: verifier,
		tokens:   tokens,
		counters: counters,
		cfg:      cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// writeError writes the standard {success:false, message} error shape.
// Raw error messages reach clients; acceptable only in a trusted
// deployment.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// AdminAuthMiddleware enforces a bearer session token on admin routes
// when ADMIN_AUTH_REQUIRED is set. Left open by default, matching the
// original deployment behavior.
func (h *APIHandler) AdminAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.cfg.AdminAuthRequired {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		if _, err := h.tokens.Validate(token); err != nil {
			logger.Warn("rejected admin request", logger.ErrorField(err))
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r)
	}
}
