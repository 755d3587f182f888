package logging

import (
	"log/slog"
	"os"
)

// Init installs the process-wide logger. Output goes to stderr so it
// never mixes with the chat view on stdout, and stays at error level
// unless PARLEY_LOG_LEVEL asks for more.
func Init() {
	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLevel(os.Getenv("PARLEY_LOG_LEVEL")),
		}),
	)
	slog.SetDefault(logger)
}

// parseLevel maps PARLEY_LOG_LEVEL to a slog level. Unset or
// unrecognized values keep errors-only.
func parseLevel(value string) slog.Level {
	switch value {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
