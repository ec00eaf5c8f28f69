// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

// ErrUnauthorized is the body text written for rejected requests.
var ErrUnauthorized = errors.New("unauthorized")

// SessionResolver resolves a bearer token to its session.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*models.Session, error)
}

// SessionAuth is a middleware that requires a valid bearer session.
//
// It reads the token from the Authorization header, resolves it and stores
// the session in the request context for GetUserIDFromContext and
// GetSessionFromContext. Requests without a live session get 401.
func SessionAuth(resolver SessionResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}
			sess, err := resolver.Session(r.Context(), token)
			if err != nil || sess == nil {
				if err != nil {
					log.Debug("session rejected", zap.Error(err))
				}
				http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// GetSessionFromContext returns the session stored by SessionAuth, or nil.
func GetSessionFromContext(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(sessionKey).(*models.Session)
	return sess
}

// GetUserIDFromContext extracts the signed-in user ID from the request context.
// Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	if sess := GetSessionFromContext(ctx); sess != nil {
		return sess.UserID
	}
	return ""
}
