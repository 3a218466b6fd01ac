package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	postgres "github.com/jubilee25/celebration-api/internal/adapters/postgres"
	"github.com/jubilee25/celebration-api/internal/platform/config"
	"github.com/jubilee25/celebration-api/internal/platform/logging"
)

// Applies the embedded schema and stored functions to DATABASE_URL.
//
//	migrate up          apply all pending migrations
//	migrate down [n]    roll back n migrations (default 1)
//	migrate version     print the current version
func main() {
	flag.Parse()
	logger := logging.Setup(os.Getenv("LOG_LEVEL"))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("load .env", "error", err)
		os.Exit(1)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(2)
	}

	if err := run(logger, dsn, flag.Args()); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, dsn string, args []string) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}

	m, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "down":
		n := 1
		if len(args) > 1 {
			if n, err = strconv.Atoi(args[1]); err != nil || n <= 0 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q (expected up|down|version)", cmd)
	}

	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("schema is empty", "command", cmd)
	case err != nil:
		return err
	default:
		logger.Info("schema version", "command", cmd, "version", v, "dirty", dirty)
	}
	return nil
}
