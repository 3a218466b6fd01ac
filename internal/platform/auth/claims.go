// Package auth holds what the token verifiers share: the claim set, the principal
// mapping and the common parser options.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jubilee25/celebration-api/internal/domain"
)

var ErrUnauthorized = errors.New("unauthorized")

// Claims is the access-token claim set: registered claims plus the email the admin
// gate checks. Supabase tokens also carry role; it is informational only.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Principal maps verified claims to the API principal. sub is required.
func (c *Claims) Principal() (domain.Principal, error) {
	sub := strings.TrimSpace(c.Subject)
	if sub == "" {
		return domain.Principal{}, ErrUnauthorized
	}
	return domain.Principal{
		Subject: domain.SubjectID(sub),
		Email:   strings.TrimSpace(c.Email),
	}, nil
}

// ParserOptions returns the validation options both verifiers apply. Empty issuer or
// audience disables that check.
func ParserOptions(alg, issuer, audience string, leeway time.Duration, now func() time.Time) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}
