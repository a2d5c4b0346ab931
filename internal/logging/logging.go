// Package logging builds the zerolog logger the CLI hands to every command
// through its context.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options selects verbosity. Quiet wins over Verbose.
type Options struct {
	Verbose bool
	Quiet   bool
	// NoColor disables ANSI in the console writer.
	NoColor bool
}

// Level maps the options to a zerolog level: warn by default, debug when
// verbose, disabled when quiet.
func (o Options) Level() zerolog.Level {
	switch {
	case o.Quiet:
		return zerolog.Disabled
	case o.Verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.WarnLevel
	}
}

// New returns a console logger on w tagged with a fresh run id.
func New(w io.Writer, opts Options) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    opts.NoColor,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(cw).
		Level(opts.Level()).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()
}

// WithContext attaches logger to ctx for zerolog.Ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// From returns the logger attached to ctx, or a disabled one.
func From(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
