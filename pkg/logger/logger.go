package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewWithConfig logs to stderr. Stdout is reserved for report output.
func NewWithConfig(level string, pretty, noColor bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, pretty, noColor)
}

func NewWithWriter(out io.Writer, level string, pretty, noColor bool) zerolog.Logger {
	var log zerolog.Logger

	if pretty {
		output := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    noColor,
		}
		log = zerolog.New(output).With().Timestamp().Logger()
	} else {
		log = zerolog.New(out).With().Timestamp().Logger()
	}

	return log.Level(ParseLevel(level))
}

// ParseLevel falls back to warn for anything it does not recognise.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}
