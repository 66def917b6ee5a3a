// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel turns a config level into a zerolog level. Unknown or empty
// values mean warn.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// Setup sends log output to the file at path, appending. The returned
// closer must be closed on exit.
func Setup(level, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	use(f, level)
	return f, nil
}

// SetupConsole sends human-readable log output to w.
func SetupConsole(level string, w io.Writer) {
	use(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}, level)
}

func use(w io.Writer, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}
