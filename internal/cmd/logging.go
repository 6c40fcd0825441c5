package cmd

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// newLogger builds the command logger. It writes human-readable output to
// stderr so structured command output on stdout stays clean.
func newLogger(w io.Writer, debug, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.ErrorLevel
	}

	console := zerolog.ConsoleWriter{Out: w}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

func withLogger(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func loggerFromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
			return log
		}
	}
	return zerolog.Nop()
}
