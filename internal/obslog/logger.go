// Package obslog wires structured logging for the demo binary and the
// server/render layers around the core lineterm package. The core
// package itself never logs: logging is ambient, applied one layer
// out, exactly the way the teacher keeps its own headlessterm package
// free of any *log.Logger dependency.
package obslog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Config controls how New builds a Logger.
type Config struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	// Unrecognized or empty defaults to "info".
	Level string
	// Pretty enables zerolog's human-readable console writer instead of
	// the default JSON output, for local development.
	Pretty bool
	// Output is where log lines are written. Defaults to os.Stderr.
	Output io.Writer
}

// New builds a zerolog.Logger from cfg, adding a "component" field
// fixed to component for every entry written through it.
func New(cfg Config, component string) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
