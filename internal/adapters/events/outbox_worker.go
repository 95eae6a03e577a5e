package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
)

// OutboxWorker pulls unpublished outbox records and publishes them.
type OutboxWorker struct {
	logger     *slog.Logger
	outbox     ports.OutboxRepository
	publisher  ports.EventPublisher
	interval   time.Duration
	batchSize  int
	claimTTL   time.Duration
	maxRetries int
	nowFn      func() time.Time
}

func NewOutboxWorker(
	logger *slog.Logger,
	outbox ports.OutboxRepository,
	publisher ports.EventPublisher,
	interval time.Duration,
	batchSize int,
	claimTTL time.Duration,
	maxRetries int,
) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if claimTTL <= 0 {
		claimTTL = 30 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &OutboxWorker{
		logger:     logger,
		outbox:     outbox,
		publisher:  publisher,
		interval:   interval,
		batchSize:  batchSize,
		claimTTL:   claimTTL,
		maxRetries: maxRetries,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the periodic outbox publish loop until context cancellation.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "outbox_process_once",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// BatchStats summarizes one ProcessOnce pass.
type BatchStats struct {
	Claimed      int
	Published    int
	Failed       int
	DeadLettered int
}

// ProcessOnce claims one batch and attempts to publish every record in it.
func (w *OutboxWorker) ProcessOnce(ctx context.Context) (BatchStats, error) {
	claimToken := uuid.NewString()
	records, err := w.outbox.ClaimUnpublished(ctx, w.batchSize, claimToken, w.nowFn().Add(w.claimTTL))
	if err != nil {
		return BatchStats{}, err
	}

	stats := BatchStats{Claimed: len(records)}
	for _, rec := range records {
		now := w.nowFn()
		if rec.RetryCount >= w.maxRetries {
			stats.DeadLettered++
			_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, "retry threshold reached before publish", now)
			continue
		}

		if err := w.publisher.Publish(ctx, rec.EventType, rec.PartitionKey, rec.Payload); err != nil {
			stats.Failed++
			retries := rec.RetryCount + 1
			fields := []any{
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "publish_event",
				"outcome", "failure",
				"outbox_id", rec.OutboxID,
				"event_type", rec.EventType,
				"retry_count", retries,
				"error", err,
			}
			if retries >= w.maxRetries {
				stats.DeadLettered++
				w.logger.ErrorContext(ctx, "outbox message dead-lettered", fields...)
				_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, err.Error(), now)
				continue
			}
			w.logger.WarnContext(ctx, "outbox publish failed; retry scheduled", fields...)
			_ = w.outbox.MarkFailed(ctx, rec.OutboxID, claimToken, err.Error(), now)
			continue
		}
		stats.Published++
		_ = w.outbox.MarkPublished(ctx, rec.OutboxID, claimToken, now)
	}

	if stats.Claimed > 0 {
		w.logger.InfoContext(ctx, "outbox batch processed",
			"module", "events.outbox_worker",
			"layer", "adapter",
			"operation", "outbox_process_once",
			"outcome", "success",
			"batch_size", stats.Claimed,
			"published_count", stats.Published,
			"failed_count", stats.Failed,
			"dead_lettered_count", stats.DeadLettered,
		)
	}
	return stats, nil
}
