// Package logger provides the process-wide zerolog logger.
//
// Call Init once from main, then Get or Component anywhere else.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Pretty switches to coloured console output for local development.
	Pretty bool
	// Service is attached to every entry as the "service" field.
	Service string
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	mu          sync.RWMutex
	instance    zerolog.Logger
	initialized bool
)

// Init builds the logger. Only the first call has an effect until Reset.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := ParseLevel(opts.Level)
	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if opts.Pretty {
		ctx = ctx.Caller()
	}

	instance = ctx.Logger()
	initialized = true
	return instance
}

// Get returns the logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	l := Get()
	return l.With().Str("component", name).Logger()
}

// Reset discards the logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	instance = zerolog.Logger{}
	initialized = false
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
