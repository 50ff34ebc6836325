package http

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerContextKey      contextKey = "logger"
	bookingIDContextKey   contextKey = "booking_id"
	eventTypeIDContextKey contextKey = "event_type_id"
)

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext extracts the request-scoped logger if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerContextKey).(*slog.Logger)
	return logger
}

// ContextWithBookingID injects the booking identifier resolved from the
// request path.
func ContextWithBookingID(ctx context.Context, bookingID string) context.Context {
	return context.WithValue(ctx, bookingIDContextKey, bookingID)
}

// BookingIDFromContext extracts a booking identifier previously associated
// with the context.
func BookingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(bookingIDContextKey).(string)
	return id, ok
}

// ContextWithEventTypeID injects the event type identifier resolved from the
// request path.
func ContextWithEventTypeID(ctx context.Context, eventTypeID string) context.Context {
	return context.WithValue(ctx, eventTypeIDContextKey, eventTypeID)
}

// EventTypeIDFromContext extracts an event type identifier previously
// associated with the context.
func EventTypeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventTypeIDContextKey).(string)
	return id, ok
}
