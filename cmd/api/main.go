package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jubilee25/celebration-api/internal/adapters/httpapi"
	memidempotency "github.com/jubilee25/celebration-api/internal/adapters/memory/idempotency"
	memregistrationrepo "github.com/jubilee25/celebration-api/internal/adapters/memory/registrationrepo"
	postgres "github.com/jubilee25/celebration-api/internal/adapters/postgres"
	pgidempotency "github.com/jubilee25/celebration-api/internal/adapters/postgres/idempotency"
	pgregistrationrepo "github.com/jubilee25/celebration-api/internal/adapters/postgres/registrationrepo"
	"github.com/jubilee25/celebration-api/internal/adapters/static/eventcatalog"
	suparegistrationrepo "github.com/jubilee25/celebration-api/internal/adapters/supabase/registrationrepo"
	"github.com/jubilee25/celebration-api/internal/app/events"
	"github.com/jubilee25/celebration-api/internal/app/registrations"
	"github.com/jubilee25/celebration-api/internal/platform/auth/hmacverifier"
	"github.com/jubilee25/celebration-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/jubilee25/celebration-api/internal/platform/clock"
	"github.com/jubilee25/celebration-api/internal/platform/config"
	"github.com/jubilee25/celebration-api/internal/platform/logging"
	"github.com/jubilee25/celebration-api/internal/platform/telemetry"
	idempotencyport "github.com/jubilee25/celebration-api/internal/ports/out/idempotency"
	registrationrepoport "github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, logger, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	authMW, err := newAuthMiddleware(cfg)
	if err != nil {
		return err
	}
	if cfg.AdminEmailDomain == "" {
		logger.Warn("ADMIN_EMAIL_DOMAIN is empty; every admin request will be refused")
	}

	repo, idem, cleanup, err := newStores(ctx, cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	catalog, err := eventcatalog.NewFromFile(cfg.EventsFile)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	regs := registrations.NewService(repo, platformclock.NewSystemClock())
	regs.ExportChunkSize = cfg.ExportChunkSize

	handler := httpapi.NewRouter(
		httpapi.NewHandlers(regs, events.NewService(catalog), idem, logger),
		httpapi.RouterOptions{
			AuthMiddleware:   authMW,
			AdminEmailDomain: cfg.AdminEmailDomain,
			Logger:           logger,
			ServiceName:      cfg.ServiceName,
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening",
			"port", cfg.Port,
			"auth_mode", cfg.AuthMode,
			"storage", cfg.StorageBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// newAuthMiddleware selects bearer verification for the admin routes.
//   - jwks: RS256 against a JWKS endpoint
//   - hs256: shared-secret tokens (Supabase-style)
//   - dev: X-Debug-Subject / X-Debug-Email headers, local only
func newAuthMiddleware(cfg config.App) (func(http.Handler) http.Handler, error) {
	switch cfg.AuthMode {
	case config.AuthModeDev:
		return httpapi.NewDevAuthMiddleware(cfg.DevSubject, cfg.DevEmail), nil
	case config.AuthModeHS256:
		jwtCfg := cfg.JWT()
		v, err := hmacverifier.New(hmacverifier.Config{
			Secret:             []byte(jwtCfg.Secret),
			Issuer:             jwtCfg.Issuer,
			Audience:           jwtCfg.Audience,
			ClockSkew:          jwtCfg.ClockSkew,
			RequireUUIDSubject: cfg.StorageBackend == config.StorageSupabase,
		})
		if err != nil {
			return nil, fmt.Errorf("invalid auth config: %w", err)
		}
		return httpapi.NewAuthMiddleware(v), nil
	default:
		return httpapi.NewAuthMiddleware(jwtverifier.New(cfg.JWT())), nil
	}
}

// newStores opens the registration store for the configured backend. Idempotency
// records live in Postgres for the postgres backend and in process memory otherwise.
func newStores(ctx context.Context, cfg config.App) (registrationrepoport.Repository, idempotencyport.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid postgres config: %w", err)
		}
		return pgregistrationrepo.NewRepo(pool), pgidempotency.NewStore(pool), pool.Close, nil
	case config.StorageSupabase:
		repo, err := suparegistrationrepo.NewRepo(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, suparegistrationrepo.Options{})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid supabase config: %w", err)
		}
		return repo, memidempotency.NewStore(), nil, nil
	default:
		return memregistrationrepo.NewRepo(), memidempotency.NewStore(), nil, nil
	}
}
