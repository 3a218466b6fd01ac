package config

import "time"

// JWTConfig configures access-token verification, either against a JWKS endpoint
// (RS256) or a shared secret (HS256).
type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	Secret   string

	ClockSkew              time.Duration
	JWKSRefreshInterval    time.Duration
	JWKSMinRefreshInterval time.Duration

	HTTPTimeout time.Duration
}
