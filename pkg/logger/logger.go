package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		// Use JSON handler for unattended runs (structured)
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		// Use text handler for interactive runs (more readable)
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithWorkerID adds a worker ID to logger context
func (l *Logger) WithWorkerID(workerID int) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.Int("worker_id", workerID)),
	}
}

// WithRaceID adds a race ID to logger context
func (l *Logger) WithRaceID(raceID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("race_id", raceID)),
	}
}

// WithError adds an error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Remote call logging methods

// LogAPIRequest logs a request against the remote e-ticket API
func (l *Logger) LogAPIRequest(ctx context.Context, method, endpoint string, status int, duration time.Duration) {
	l.Logger.DebugContext(ctx,
		"API Request",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", status),
		slog.Duration("duration", duration),
	)
}

// LogAPIError logs a failed remote call
func (l *Logger) LogAPIError(ctx context.Context, method, endpoint string, err error) {
	l.Logger.ErrorContext(ctx,
		"API Error",
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.String("error", err.Error()),
	)
}

// Booking lifecycle logging methods

// LogRaceStarted logs the start of a seat race
func (l *Logger) LogRaceStarted(ctx context.Context, raceID string, tripID, workerCount int) {
	l.Logger.InfoContext(ctx,
		"Race Started",
		slog.String("race_id", raceID),
		slog.Int("trip_id", tripID),
		slog.Int("worker_count", workerCount),
	)
}

// LogSeatsClaimed logs a winning claim
func (l *Logger) LogSeatsClaimed(ctx context.Context, raceID string, workerID int, seats []string) {
	l.Logger.InfoContext(ctx,
		"Seats Claimed",
		slog.String("race_id", raceID),
		slog.Int("worker_id", workerID),
		slog.Any("seats", seats),
	)
}

// LogBookingConfirmed logs a confirmed booking
func (l *Logger) LogBookingConfirmed(ctx context.Context, tripID int, ticketIDs []int) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.Int("trip_id", tripID),
		slog.Any("ticket_ids", ticketIDs),
	)
}

// LogAttemptFailed logs a failed outer-loop attempt and whether it will be retried
func (l *Logger) LogAttemptFailed(ctx context.Context, attempt int, reason string, willRetry bool) {
	l.Logger.WarnContext(ctx,
		"Attempt Failed",
		slog.Int("attempt", attempt),
		slog.String("reason", reason),
		slog.Bool("will_retry", willRetry),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// DebugWithContext logs a debug message with context
func (l *Logger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.DebugContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
