package infra

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so the pipeline packages depend on the
// logging contract without importing the third-party module directly.
type Logger = zerolog.Logger

// NewLogger builds the process logger: human-readable console output at
// debug level in development, JSON at info level everywhere else. Events
// carry timestamps either way so generation timing fields line up across
// environments.
func NewLogger(appEnv string) Logger {
	if appEnv == "development" {
		console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(console).
			Level(zerolog.DebugLevel).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}
