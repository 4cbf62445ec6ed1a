package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fintrack-server/src/auth"
	"fintrack-server/src/models"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

type contextKey struct{}

var userKey = contextKey{}

var errMalformedAuth = errors.New("invalid auth header")

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", models.ErrMissingAuth
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMalformedAuth
	}
	return strings.TrimSpace(token), nil
}

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the caller's identity in the request context.
func JWTAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				unauthorized(w, err)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, models.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity JWTAuthMiddleware stored.
func UserFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(userKey).(auth.Identity)
	return identity, ok
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
