package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithSession returns a logger with chat session context fields attached.
// Use this for all logging within a query/feedback/update flow.
func WithSession(sessionID, userID string) *slog.Logger {
	return slog.With(
		"session_id", sessionID,
		"user_id", userID,
	)
}

// WithProvider returns a logger scoped to an external NLP provider call.
func WithProvider(logger *slog.Logger, service, language string) *slog.Logger {
	return logger.With(
		"service", service,
		"language", language,
	)
}
