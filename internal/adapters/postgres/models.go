package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string    `gorm:"column:email"`
	PasswordHash   string    `gorm:"column:password_hash"`
	IsPremium      bool      `gorm:"column:is_premium"`
	BrainDumpCount int       `gorm:"column:brain_dump_count"`
	ResetCount     int       `gorm:"column:reset_count"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type brainDumpModel struct {
	BrainDumpID uuid.UUID `gorm:"column:brain_dump_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id"`
	Input       string    `gorm:"column:input"`
	Today       string    `gorm:"column:today;type:jsonb"`
	CanWait     string    `gorm:"column:can_wait;type:jsonb"`
	Delegate    string    `gorm:"column:delegate;type:jsonb"`
	IgnoreTasks string    `gorm:"column:ignore_tasks;type:jsonb"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (brainDumpModel) TableName() string { return "brain_dumps" }

type resetModel struct {
	ResetID     uuid.UUID `gorm:"column:reset_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id"`
	CompletedAt time.Time `gorm:"column:completed_at"`
}

func (resetModel) TableName() string { return "resets" }

type scoreModel struct {
	ScoreID   uuid.UUID `gorm:"column:score_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	Score     int       `gorm:"column:score"`
	Answers   string    `gorm:"column:answers;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (scoreModel) TableName() string { return "scores" }

type favoriteModel struct {
	FavoriteID uuid.UUID `gorm:"column:favorite_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id"`
	Type       string    `gorm:"column:type"`
	Category   *string   `gorm:"column:category"`
	Content    string    `gorm:"column:content"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (favoriteModel) TableName() string { return "favorites" }

type purchaseModel struct {
	PurchaseID       uuid.UUID `gorm:"column:purchase_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"column:user_id"`
	StripeSessionID  string    `gorm:"column:stripe_session_id"`
	StripeCustomerID *string   `gorm:"column:stripe_customer_id"`
	Amount           int64     `gorm:"column:amount"`
	Status           string    `gorm:"column:status"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (purchaseModel) TableName() string { return "purchases" }

type processedWebhookEventModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (processedWebhookEventModel) TableName() string { return "processed_webhook_events" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	FirstSeenAt    time.Time  `gorm:"column:first_seen_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "outbox" }
