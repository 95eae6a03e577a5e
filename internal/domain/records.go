package domain

import (
	"time"

	"github.com/google/uuid"
)

// Categorization is the four-way sort of a brain dump.
type Categorization struct {
	Today    []string
	CanWait  []string
	Delegate []string
	Ignore   []string
}

type BrainDump struct {
	BrainDumpID uuid.UUID
	UserID      uuid.UUID
	Input       string
	Categorization
	CreatedAt time.Time
}

type Reset struct {
	ResetID     uuid.UUID
	UserID      uuid.UUID
	CompletedAt time.Time
}

// QuizScore is a persisted quiz submission.
type QuizScore struct {
	ScoreID   uuid.UUID
	UserID    uuid.UUID
	Score     int
	Answers   []float64
	CreatedAt time.Time
}

type Favorite struct {
	FavoriteID uuid.UUID
	UserID     uuid.UUID
	Type       string
	Category   *string
	Content    string
	CreatedAt  time.Time
}
