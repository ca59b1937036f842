package http

import (
	"context"
	"net/http"
	"strings"

	"rentdesk-backend/internal/logger"
)

type contextKey string

const operatorIDKey contextKey = "operator-id"

// OperatorIDFromContext returns the authenticated operator, if any.
func OperatorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(operatorIDKey).(string)
	return id, ok && id != ""
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "authorization token is not provided")
			return
		}

		claims, err := h.tokenManager.ValidateToken(token)
		if err != nil {
			logger.Debug("Rejected token", "path", r.URL.Path, "error", err)
			respondError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), operatorIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) (string, bool) {
	token := r.Header.Get("Authorization")
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
