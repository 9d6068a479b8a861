package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Setup configures zerolog for the process and returns the root logger.
// Logs go to stderr so stdout stays clean for the JSON run summary.
// level accepts zerolog level names ("debug", "info", "warn", "error");
// anything else falls back to info.
func Setup(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).With().Timestamp().Logger().Level(lvl)
}
