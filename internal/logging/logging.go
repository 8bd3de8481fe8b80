// Package logging builds the application logger. The TUI owns the terminal,
// so logs go to a file under the state directory.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FileName is the log file name inside the state directory.
const FileName = "marquee.log"

// Config selects the log destination and level.
type Config struct {
	Dir   string // directory for FileName
	Level string // zerolog level name; empty means info
}

// New opens (appending) the log file and returns a logger writing to it.
// The returned closer closes the file.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "create log directory")
	}
	f, err := os.OpenFile(filepath.Join(cfg.Dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "open log file")
	}

	return NewWriter(f, level), f, nil
}

// NewWriter returns a timestamped logger writing to w at level.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, errors.Wrapf(err, "log level %q", name)
	}
	return level, nil
}
