// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON logger at the named level (debug, info, warn, error). Unknown
// levels fall back to info and are reported through the returned error; an empty
// level is info.
func New(w io.Writer, level string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	lvl := slog.LevelInfo
	var err error
	if s := strings.TrimSpace(level); s != "" {
		if err = lvl.UnmarshalText([]byte(s)); err != nil {
			lvl = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), err
}

// Setup builds the logger and installs it as the slog default.
func Setup(level string) *slog.Logger {
	logger, err := New(os.Stdout, level)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("unable to parse log level, using info", "level-input", level, "error", err)
	}
	return logger
}
