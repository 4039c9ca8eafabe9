// Package observability provides the structured logger and Prometheus
// metrics shared by the easel client components.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a structured logger for easel components.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger tagged with the component name.
func NewLogger(component string, level slog.Level) *Logger {
	return NewLoggerTo(os.Stderr, component, level)
}

// NewLoggerTo is NewLogger with an explicit destination. Tests pass
// io.Discard or a buffer.
func NewLoggerTo(w io.Writer, component string, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With(
		slog.String("component", component),
		slog.String("system", "easel"),
	)
	return &Logger{Logger: logger}
}

// WithSession returns a logger with session-specific fields.
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("session_id", sessionID))}
}

// WithPiece returns a logger with piece-specific fields.
func (l *Logger) WithPiece(pieceNumber int) *Logger {
	return &Logger{Logger: l.Logger.With(slog.Int("piece_number", pieceNumber))}
}

// WithBatch returns a logger with stroke-batch fields.
func (l *Logger) WithBatch(batchID int) *Logger {
	return &Logger{Logger: l.Logger.With(slog.Int("batch_id", batchID))}
}
