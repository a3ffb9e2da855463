package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/loan-approval/internal/session"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type contextKey string

const sessionKey contextKey = "session"

// Refreshed session token and its expiry, returned on every authenticated response
const (
	TokenHeader        = "X-Session-Token"
	TokenExpiresHeader = "X-Session-Expires"
)

// AuthMiddleware resolves the bearer token to a live session and stores it in the request context.
// Each accepted request receives a fresh token in TokenHeader.
func AuthMiddleware(tokens *session.Tokens, store *session.Store, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			id, err := tokens.Parse(raw)
			if err != nil {
				log.WithError(err).Debug("Rejected session token")
				unauthorized(w, "invalid session token")
				return
			}

			sess, err := store.Get(id)
			if err != nil {
				unauthorized(w, "session expired or ended")
				return
			}

			// Roll the token so it expires TTL after the last request, like the session itself
			if fresh, expires, err := tokens.Issue(sess); err == nil {
				w.Header().Set(TokenHeader, fresh)
				w.Header().Set(TokenExpiresHeader, expires.UTC().Format(time.RFC3339))
			} else {
				log.WithError(err).Warn("Failed to refresh session token")
			}

			ctx := WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session attached by AuthMiddleware
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}

// WithSession attaches a session to ctx
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"code": "UNAUTHORIZED", "message": msg})
}
