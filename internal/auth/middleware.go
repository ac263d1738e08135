package auth

import (
	"net/http"
	"strings"

	"github.com/shiftwise/shiftwise/internal/platform/httpx"
	"github.com/shiftwise/shiftwise/internal/shared"
)

// BearerToken extracts the token from an Authorization header. Empty when
// the header is missing or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireUser resolves the bearer token and injects the caller identity.
// Requests without a valid session get 401.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.Identify(r.Context(), BearerToken(r))
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin rejects non-admin identities with 403. Must be mounted inside
// RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		if !identity.IsAdmin() {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
