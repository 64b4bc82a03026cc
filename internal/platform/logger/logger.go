package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output keeps log
// aggregation simple; level defaults to info unless GATEPASS_LOG_DEBUG is set.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("GATEPASS_LOG_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
