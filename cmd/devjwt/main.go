package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jubilee25/celebration-api/internal/platform/auth"
	"github.com/jubilee25/celebration-api/internal/platform/auth/hmacverifier"
	"github.com/jubilee25/celebration-api/internal/platform/logging"
)

// Tiny dev-only JWT issuer + JWKS server.
//
// This is NOT a full OIDC provider. It exists to exercise the admin routes locally
// against real RS256 (JWKS) or HS256 (shared secret) verification.

type jwk struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

func main() {
	logger := logging.Setup(getenv("LOG_LEVEL", "info"))

	port := getenv("PORT", "5556")
	issuer := getenv("ISSUER", "http://devjwt:5556")
	audience := getenv("AUDIENCE", "celebration-admin")
	kid := getenv("KID", "dev-kid-1")
	secret := os.Getenv("JWT_SECRET")
	ttl := getenvDuration("TTL", 30*time.Minute)

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		logger.Error("generate key", "error", err)
		os.Exit(1)
	}

	jwksJSON, err := marshalJWKS(priv.PublicKey, kid)
	if err != nil {
		logger.Error("marshal jwks", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Common JWKS path used by many providers.
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(jwksJSON)
	})

	// Mint a JWT:
	//   GET /token?sub=dev|alice&email=alice@temple.org
	//   GET /token?sub=...&email=...&alg=hs256   (requires JWT_SECRET)
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sub := strings.TrimSpace(q.Get("sub"))
		if sub == "" {
			http.Error(w, "missing sub", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(q.Get("email"))
		alg := strings.ToLower(strings.TrimSpace(q.Get("alg")))

		now := time.Now().UTC()
		var (
			token string
			err   error
		)
		switch alg {
		case "", "rs256":
			alg = "rs256"
			token, err = mintRS256JWT(priv, kid, issuer, audience, sub, email, now, ttl)
		case "hs256":
			if len(secret) < 32 {
				http.Error(w, "JWT_SECRET (>= 32 bytes) is not configured", http.StatusBadRequest)
				return
			}
			token, err = hmacverifier.Mint([]byte(secret), hmacverifier.MintOptions{
				Subject:  sub,
				Email:    email,
				Issuer:   issuer,
				Audience: audience,
				Role:     "authenticated",
				Now:      now,
				TTL:      ttl,
			})
		default:
			http.Error(w, "alg must be rs256 or hs256", http.StatusBadRequest)
			return
		}
		if err != nil {
			logger.Error("mint token", "error", err, "alg", alg)
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"alg":   alg,
			"sub":   sub,
			"email": email,
			"iss":   issuer,
			"aud":   audience,
			"exp":   now.Add(ttl).Unix(),
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("devjwt listening", "port", port, "iss", issuer, "aud", audience, "kid", kid, "ttl", ttl, "hs256", len(secret) >= 32)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}
}

func marshalJWKS(pub rsa.PublicKey, kid string) ([]byte, error) {
	enc := base64.RawURLEncoding
	set := jwks{
		Keys: []jwk{{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			Kid: kid,
			N:   enc.EncodeToString(pub.N.Bytes()),
			E:   enc.EncodeToString(big.NewInt(int64(pub.E)).Bytes()), // big-endian unsigned
		}},
	}
	return json.Marshal(set)
}

func mintRS256JWT(priv *rsa.PrivateKey, kid, iss, aud, sub, email string, now time.Time, ttl time.Duration) (string, error) {
	claims := auth.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss,
			Audience:  jwt.ClaimStrings{aud},
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)), // small skew tolerance for local use
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	return tok.SignedString(priv)
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
