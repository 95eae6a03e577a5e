package application

import (
	"encoding/json"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
)

const (
	// eventTypeUserRegistered is emitted when an account is created.
	eventTypeUserRegistered = "user.registered"
	// eventTypeBrainDumpCompleted is emitted after a brain dump is stored and counted.
	eventTypeBrainDumpCompleted = "brain_dump.completed"
	// eventTypeUserPremiumUnlocked is emitted only when is_premium flips to true.
	eventTypeUserPremiumUnlocked = "user.premium_unlocked"
)

// EventTypes lists every event type the service writes to the outbox.
func EventTypes() []string {
	return []string{eventTypeUserRegistered, eventTypeBrainDumpCompleted, eventTypeUserPremiumUnlocked}
}

func newOutboxEvent(eventType, partitionKey string, payload map[string]any, at time.Time) ports.OutboxEvent {
	raw, _ := json.Marshal(payload)
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      raw,
		OccurredAt:   at,
	}
}
