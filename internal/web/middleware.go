package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"tasktide/internal/web/res"
)

type contextKey string

const userContextKey contextKey = "user"

// TokenVerifier resolves a bearer token to a user id
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware rejects requests without a valid bearer token. Browsers
// cannot set headers on WebSocket upgrades, so access_token is also read
// from the query string.
func AuthMiddleware(log *slog.Logger, tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.URL.Query().Get("access_token")
			if header := r.Header.Get("Authorization"); header != "" {
				scheme, value, ok := strings.Cut(header, " ")
				if !ok || !strings.EqualFold(scheme, "Bearer") {
					res.Error(w, "invalid authorization format", http.StatusUnauthorized)
					return
				}
				token = strings.TrimSpace(value)
			}
			if token == "" {
				res.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				log.Debug("rejected token", slog.String("path", r.URL.Path), slog.Any("error", err))
				res.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user id
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userContextKey).(string)
	return userID, ok && userID != ""
}
