package http

import (
	"context"
	"log/slog"
)

const serviceName = "invisible-load-reducer"

// requestLogger returns the adapter logger tagged with the request id from ctx.
func requestLogger(ctx context.Context) *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "http",
		"layer", "adapter",
		"request_id", requestIDFromContext(ctx),
	)
}

// levelForStatus logs 5xx at error, 4xx at warn, everything else at info.
func levelForStatus(statusCode int) slog.Level {
	switch {
	case statusCode >= 500:
		return slog.LevelError
	case statusCode >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func logHTTPOperationError(ctx context.Context, operation string, statusCode int, code, message string, err error) {
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"status_code", statusCode,
		"error_code", code,
		"message", message,
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	requestLogger(ctx).Log(ctx, levelForStatus(statusCode), "http operation failed", fields...)
}
