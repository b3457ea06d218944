package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the bound identity.
type contextKey string

const userIDKey contextKey = "userID"

// ErrNoToken is returned by bearerToken when the Authorization header is
// absent or not a Bearer credential.
var ErrNoToken = errors.New("auth: no bearer token")

// RequireAuth is the access gate applied to every protected route.
//
// It extracts the bearer token from the Authorization header, validates it,
// and binds the resolved identity ID into the request context before the
// handler runs. A missing token and an invalid/expired token are both 401s
// but carry distinct error bodies; in either case the downstream handler is
// never invoked. The middleware holds no state of its own.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeAuthError(w, "missing_token", "authentication required: no token provided")
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				writeAuthError(w, "invalid_token", "authentication failed: invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated identity ID bound by
// RequireAuth. Returns ("", false) when the request never passed the gate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// bearerToken pulls the token out of "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
