package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Auth modes.
const (
	AuthModeJWKS  = "jwks"
	AuthModeHS256 = "hs256"
	AuthModeDev   = "dev"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSupabase = "supabase"
)

// App is the full process configuration, read from the environment.
type App struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	AuthMode         string `envconfig:"AUTH_MODE" default:"jwks"`
	AdminEmailDomain string `envconfig:"ADMIN_EMAIL_DOMAIN"`
	DevSubject       string `envconfig:"DEV_SUBJECT" default:"dev|local"`
	DevEmail         string `envconfig:"DEV_EMAIL"`

	JWTIssuer                 string        `envconfig:"JWT_ISSUER"`
	JWTAudience               string        `envconfig:"JWT_AUDIENCE"`
	JWTJWKSURL                string        `envconfig:"JWT_JWKS_URL"`
	JWTSecret                 string        `envconfig:"JWT_SECRET"`
	JWTClockSkew              time.Duration `envconfig:"JWT_CLOCK_SKEW" default:"30s"`
	JWTJWKSRefreshInterval    time.Duration `envconfig:"JWT_JWKS_REFRESH_INTERVAL" default:"5m"`
	JWTJWKSMinRefreshInterval time.Duration `envconfig:"JWT_JWKS_MIN_REFRESH_INTERVAL" default:"10s"`

	StorageBackend         string `envconfig:"STORAGE_BACKEND" default:"memory"`
	DatabaseURL            string `envconfig:"DATABASE_URL"`
	SupabaseURL            string `envconfig:"SUPABASE_URL"`
	SupabaseServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`

	ExportChunkSize int    `envconfig:"EXPORT_CHUNK_SIZE" default:"500"`
	EventsFile      string `envconfig:"EVENTS_FILE"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"celebration-api"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads .env (when present) and then the process environment, and validates the
// result. Real environment variables win over .env entries.
func Load() (App, error) {
	if err := LoadDotEnv(); err != nil {
		return App{}, err
	}
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, err
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return App{}, err
	}
	return c, nil
}

// LoadDotEnv copies .env into the process environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c *App) normalize() {
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.AdminEmailDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.AdminEmailDomain), "@"))
	if c.AuthMode == "jwt" {
		c.AuthMode = AuthModeJWKS
	}
}

// Validate reports the first missing or inconsistent setting.
func (c App) Validate() error {
	switch c.AuthMode {
	case AuthModeJWKS:
		if c.JWTIssuer == "" || c.JWTAudience == "" || c.JWTJWKSURL == "" {
			return errors.New("AUTH_MODE=jwks requires JWT_ISSUER, JWT_AUDIENCE and JWT_JWKS_URL")
		}
	case AuthModeHS256:
		if len(c.JWTSecret) < 32 {
			return errors.New("AUTH_MODE=hs256 requires JWT_SECRET of at least 32 bytes")
		}
	case AuthModeDev:
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (expected jwks|hs256|dev)", c.AuthMode)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	case StorageSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" {
			return errors.New("STORAGE_BACKEND=supabase requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected memory|postgres|supabase)", c.StorageBackend)
	}

	if c.ExportChunkSize <= 0 {
		return errors.New("EXPORT_CHUNK_SIZE must be positive")
	}
	return nil
}

// JWT returns the verifier settings for the jwks and hs256 modes.
func (c App) JWT() JWTConfig {
	return JWTConfig{
		Issuer:                 c.JWTIssuer,
		Audience:               c.JWTAudience,
		JWKSURL:                c.JWTJWKSURL,
		Secret:                 c.JWTSecret,
		ClockSkew:              c.JWTClockSkew,
		JWKSRefreshInterval:    c.JWTJWKSRefreshInterval,
		JWKSMinRefreshInterval: c.JWTJWKSMinRefreshInterval,
		HTTPTimeout:            5 * time.Second,
	}
}
