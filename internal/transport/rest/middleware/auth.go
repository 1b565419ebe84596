package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"reviewpilot/internal/model"
	"strings"
)

type contextKey string

const (
	BusinessIDKey contextKey = "businessId"
	RequestIDKey  contextKey = "requestId"
)

// OwnerTokenValidator validates owner JWTs
type OwnerTokenValidator interface {
	ValidateOwnerToken(token string) (*model.OwnerClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc OwnerTokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc OwnerTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireOwner validates a business owner JWT from the Authorization header
func (m *AuthMiddleware) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := m.authSvc.ValidateOwnerToken(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), BusinessIDKey, claims.BusinessID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetBusinessID extracts the authenticated owner's business ID from context
func GetBusinessID(ctx context.Context) string {
	if v := ctx.Value(BusinessIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
