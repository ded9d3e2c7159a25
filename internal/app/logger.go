package app

import (
	"log/slog"
	"os"
)

const logFormatJSON = "json"

// NewLogger builds the process logger. JSON output is meant for log
// shipping; any other format falls back to the human-readable text handler.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg != nil && cfg.LogFormat == logFormatJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
