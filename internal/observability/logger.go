package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. Dev gets debug and
// source locations, everywhere else logs info and up. Records emitted
// with a context carry the active trace/span ids.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)

	return slog.New(NewTraceHandler(handler)).With(
		slog.String("service", "taskhub"),
		slog.String("env", env),
	)
}
