// Package logger holds the process-wide zerolog logger.
//
// Init builds it once from Options; Get and Component hand it out to the
// rest of the program. Production output is one JSON object per line.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how Init builds the logger.
type Options struct {
	// Level is one of trace, debug, info, warn (or warning), error. Anything
	// else falls back to info.
	Level string
	// Pretty switches to zerolog's coloured console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is added to every entry as "service".
	Service string
}

var (
	mu      sync.RWMutex
	current *zerolog.Logger
)

// Init builds the logger from opts and returns it. Only the first call after
// start (or after Reset) has any effect; later calls return the existing one.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		l := build(opts)
		current = &l
	}
	return *current
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

// Get returns the logger built by Init. It panics when Init was never called.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		panic("logger: Get() called before Init()")
	}
	return *current
}

// Component returns the logger tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the logger so the next Init builds a new one. Tests only.
func Reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl > zerolog.ErrorLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
