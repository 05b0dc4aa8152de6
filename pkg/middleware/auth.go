package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	userIDKey contextKeyType = "user_id"
	walletKey contextKeyType = "wallet_address"
)

// Identity is the verified caller identity supplied by the upstream
// authentication collaborator: a platform user ID and the wallet address the
// user proved ownership of. This service trusts it and does not re-verify
// signatures.
type Identity struct {
	UserID        string `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
}

// TokenVerifier resolves a bearer token into a verified Identity.
type TokenVerifier func(token string) (*Identity, error)

// Auth validates the bearer token and injects the caller identity into context.
func Auth(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			identity, err := verify(parts[1])
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, identity.UserID)
			ctx = context.WithValue(ctx, walletKey, identity.WalletAddress)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WalletFromContext extracts the authenticated wallet address from the request context.
func WalletFromContext(ctx context.Context) string {
	if addr, ok := ctx.Value(walletKey).(string); ok {
		return addr
	}
	return ""
}

// WithIdentity returns a context carrying the given identity. Intended for tests
// and internal calls that bypass the HTTP middleware.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	ctx = context.WithValue(ctx, userIDKey, identity.UserID)
	return context.WithValue(ctx, walletKey, identity.WalletAddress)
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
