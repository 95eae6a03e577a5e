package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher writes events to the log. Used when no Kafka brokers are configured.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType, partitionKey string, payload []byte) error {
	p.logger.InfoContext(ctx, "published event",
		"module", "events.logging_publisher",
		"layer", "adapter",
		"operation", "publish_event",
		"outcome", "success",
		"event_type", eventType,
		"partition_key", partitionKey,
		"payload", string(payload),
	)
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }
