package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithStream adds stream context to the logger.
func WithStream(ctx context.Context, streamID string) context.Context {
	logger := FromContext(ctx)
	newLogger := logger.With().Str("stream_id", streamID).Logger()
	return WithLogger(ctx, &newLogger)
}

// WithZone adds zone context to the logger.
func WithZone(ctx context.Context, zoneID string) context.Context {
	logger := FromContext(ctx)
	newLogger := logger.With().Str("zone_id", zoneID).Logger()
	return WithLogger(ctx, &newLogger)
}
