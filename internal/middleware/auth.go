package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aura-clinic/aura/internal/http/respond"
)

type ctxKey string

const userIDKey ctxKey = "uid"

// TokenParser validates a bearer token and returns the user ID it carries.
type TokenParser interface {
	Parse(raw string) (int64, error)
}

// Auth rejects requests without a valid bearer token and stores the
// authenticated user ID in the request context.
func Auth(tokens TokenParser, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// token from Authorization: Bearer <jwt>
		header := r.Header.Get("Authorization")
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			respond.Error(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		uid, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "Credenciais invalidas ou token expirado")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// UserID returns the authenticated user ID stored by Auth.
func UserID(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}
