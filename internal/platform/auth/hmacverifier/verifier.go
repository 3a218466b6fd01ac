// Package hmacverifier verifies HS256 access tokens signed with a shared secret, the
// scheme Supabase projects use with their legacy JWT secret.
package hmacverifier

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/platform/auth"
)

var ErrUnauthorized = auth.ErrUnauthorized

type Config struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	// RequireUUIDSubject rejects tokens whose sub is not a UUID (Supabase user ids are).
	RequireUUIDSubject bool
}

type Verifier struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) (*Verifier, error) {
	return NewWithClock(cfg, nil)
}

// NewWithClock is New with an injectable time source for tests.
func NewWithClock(cfg Config, now func() time.Time) (*Verifier, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("hs256 secret must be at least 32 bytes")
	}
	return &Verifier{cfg: cfg, now: now}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (domain.Principal, error) {
	_ = ctx
	var claims auth.Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.cfg.Secret, nil
	}, auth.ParserOptions("HS256", v.cfg.Issuer, v.cfg.Audience, v.cfg.ClockSkew, v.now)...)
	if err != nil {
		return domain.Principal{}, ErrUnauthorized
	}
	if v.cfg.RequireUUIDSubject {
		if _, err := uuid.Parse(claims.Subject); err != nil {
			return domain.Principal{}, ErrUnauthorized
		}
	}
	return claims.Principal()
}

// MintOptions describes a token to sign with Mint.
type MintOptions struct {
	Subject  string
	Email    string
	Issuer   string
	Audience string
	Role     string
	Now      time.Time
	TTL      time.Duration
}

// Mint signs an HS256 token. It backs the dev token issuer and tests.
func Mint(secret []byte, o MintOptions) (string, error) {
	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}
	claims := auth.Claims{
		Email: o.Email,
		Role:  o.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   o.Subject,
			Issuer:    o.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(o.TTL)),
		},
	}
	if o.Audience != "" {
		claims.Audience = jwt.ClaimStrings{o.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
