package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pressgate/broker-api/internal/domain"
)

// Middleware authenticates requests and attaches the user context.
// Two credentials are accepted: a bearer token signed by the broker, or the
// admin API key header used by service integrations.
type Middleware struct {
	verifier *TokenVerifier
	apiKey   string
	logger   *zap.Logger
}

// NewMiddleware creates an auth Middleware
func NewMiddleware(verifier *TokenVerifier, apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{verifier: verifier, apiKey: apiKey, logger: logger}
}

// Authenticate rejects requests without a valid credential.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// API key first: service integrations don't carry bearer tokens
		if m.apiKey != "" && r.Header.Get("X-API-Key") == m.apiKey {
			userCtx := &UserContext{
				UserID:      "api-service",
				DisplayName: "API Service",
				Roles:       []string{RoleAPIToken},
			}
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed Authorization header")
			return
		}

		userCtx, err := m.verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.Debug("token verification failed", zap.Error(err))
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireRoles rejects authenticated requests lacking all of the given roles.
func (m *Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated")
				return
			}
			if !userCtx.HasAnyRole(roles...) && !userCtx.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, errType, title string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errType,
		Title:  title,
		Status: status,
	})
}
