package ports

import (
	"context"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/google/uuid"
)

// CreateUserParams carries the already-hashed credentials for a new account.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository owns account rows and their usage counters.
type UserRepository interface {
	CreateWithOutboxTx(ctx context.Context, params CreateUserParams, outboxEvent OutboxEvent) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
}

// BrainDumpCreateParams is a categorized brain dump ready to be stored.
type BrainDumpCreateParams struct {
	UserID         uuid.UUID
	Input          string
	Categorization domain.Categorization
	CreatedAt      time.Time
}

// BrainDumpRepository stores brain dumps. CreateAndCountTx inserts the record and
// increments the owner's brain_dump_count in one transaction.
type BrainDumpRepository interface {
	CreateAndCountTx(ctx context.Context, params BrainDumpCreateParams, outboxEvent OutboxEvent) (domain.BrainDump, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BrainDump, error)
}

// ResetRepository records completed reset sessions and bumps reset_count alongside.
type ResetRepository interface {
	CreateAndCountTx(ctx context.Context, userID uuid.UUID, completedAt time.Time) (domain.Reset, error)
}

type ScoreRepository interface {
	Create(ctx context.Context, score domain.QuizScore) (domain.QuizScore, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.QuizScore, error)
}

type FavoriteRepository interface {
	Create(ctx context.Context, favorite domain.Favorite) (domain.Favorite, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error)
	// DeleteOwned removes a favorite only when it belongs to userID; otherwise ErrNotFound.
	DeleteOwned(ctx context.Context, favoriteID, userID uuid.UUID) error
}

// CompletePurchaseParams describes a paid checkout session. WebhookEventID is set when
// the completion comes from a provider event and is used to drop redeliveries.
type CompletePurchaseParams struct {
	UserID           uuid.UUID
	StripeSessionID  string
	StripeCustomerID string
	WebhookEventID   string
	WebhookEventType string
	CompletedAt      time.Time
}

// CompletePurchaseResult reports what the completion transaction changed.
type CompletePurchaseResult struct {
	// Duplicate is true when WebhookEventID was already processed; nothing was written.
	Duplicate bool
	// PremiumGranted is true only when is_premium flipped from false to true.
	PremiumGranted bool
}

type PurchaseRepository interface {
	CreatePending(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error)
	// CompleteWithPremiumTx marks the purchase completed, flips is_premium and, when the
	// flag changed, stores outboxEvent. All of it commits or none of it does.
	CompleteWithPremiumTx(ctx context.Context, params CompletePurchaseParams, outboxEvent OutboxEvent) (CompletePurchaseResult, error)
}

// OutboxEvent is the write-side event payload prior to storage.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository drives the publish-retry workflow for stored events.
type OutboxRepository interface {
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
