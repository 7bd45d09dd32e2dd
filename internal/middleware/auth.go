package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fairsplit/fairsplit/internal/auth"
	"github.com/fairsplit/fairsplit/internal/common"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
)

// GetUserID extracts the authenticated user id from the context. Empty if
// the request carried no valid token.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// GetEmail extracts the authenticated user's email from the context.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth validates the Bearer token and rejects requests without one.
// On success the user id and email are stored on the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", auth.ErrMissingToken.Error(), nil)
				return
			}
			claims, err := jwtManager.Validate(token)
			if err != nil {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", auth.ErrInvalidToken.Error(), nil)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches user info to the context when a valid Bearer token
// is present but lets anonymous requests through. Invalid tokens are
// treated as anonymous rather than rejected.
func OptionalAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := jwtManager.Validate(token); err == nil {
					ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
					ctx = context.WithValue(ctx, emailKey, claims.Email)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
