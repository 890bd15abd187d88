package utils

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	// JSON switches from the human console format to one JSON object per line.
	JSON bool
	// Level is the diagnostic level the logger follows.
	Level DiagnosticLevel
	// NoColor disables console colors.
	NoColor bool
}

// NewLogger returns the structured logger used for per-file events.
func NewLogger(out io.Writer, opts LoggerOptions) zerolog.Logger {
	w := out
	if !opts.JSON {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.Kitchen,
		}
	}
	return zerolog.New(w).Level(zerologLevel(opts.Level)).With().Timestamp().Logger()
}

func zerologLevel(level DiagnosticLevel) zerolog.Level {
	switch level {
	case DiagnosticSilent:
		return zerolog.Disabled
	case DiagnosticError:
		return zerolog.ErrorLevel
	case DiagnosticWarn:
		return zerolog.WarnLevel
	case DiagnosticInfo:
		return zerolog.InfoLevel
	case DiagnosticVerbose:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
