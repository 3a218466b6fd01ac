package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jubilee25/celebration-api/internal/domain"
)

// TokenVerifier turns a bearer token into the authenticated principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Principal, error)
}

// NewAuthMiddleware enforces Authorization: Bearer <JWT> and stores the verified
// principal in the request context.
func NewAuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeUnauthorized(w, "missing Authorization header")
				return
			}
			const prefix = "Bearer "
			if len(authz) < len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
				writeUnauthorized(w, "malformed Authorization header")
				return
			}
			raw := strings.TrimSpace(authz[len(prefix):])
			if raw == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			p, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// The principal comes from X-Debug-Subject and X-Debug-Email, falling back to the given
// defaults. With no subject at all the request is unauthenticated. Never enable this in
// a deployed environment.
func NewDevAuthMiddleware(defaultSubject, defaultEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := strings.TrimSpace(r.Header.Get("X-Debug-Subject"))
			email := strings.TrimSpace(r.Header.Get("X-Debug-Email"))
			if sub == "" {
				sub = strings.TrimSpace(defaultSubject)
				if email == "" {
					email = strings.TrimSpace(defaultEmail)
				}
			}
			if sub == "" {
				writeUnauthorized(w, "missing subject (set X-Debug-Subject)")
				return
			}

			p := domain.Principal{Subject: domain.SubjectID(sub), Email: email}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdminDomain admits only principals whose email is in adminDomain. It must run
// after an auth middleware; a missing principal is answered with 401.
func RequireAdminDomain(adminDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, "authentication required")
				return
			}
			if !p.IsAdminDomainUser(adminDomain) {
				writeForbidden(w, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// denyAll stands in when no auth middleware is configured.
func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeUnauthorized(w, "authentication is not configured")
	})
}

// NoStore marks every response as uncacheable, error responses included.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, max-age=0")
		next.ServeHTTP(w, r)
	})
}
