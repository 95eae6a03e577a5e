package application

import (
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/google/uuid"
)

type Config struct {
	Usage             domain.UsageLimits
	PremiumPriceCents int64
}

const DefaultPremiumPriceCents = 1400

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserView struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	IsPremium      bool      `json:"isPremium"`
	BrainDumpCount int       `json:"brainDumpCount"`
	ResetCount     int       `json:"resetCount"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type MeResponse struct {
	UserView
	CanUseBrainDump     bool `json:"canUseBrainDump"`
	CanUseReset         bool `json:"canUseReset"`
	RemainingBrainDumps int  `json:"remainingBrainDumps"`
	RemainingResets     int  `json:"remainingResets"`
}

type BrainDumpRequest struct {
	Input string `json:"input"`
}

type CategorizationView struct {
	Today    []string `json:"today"`
	CanWait  []string `json:"canWait"`
	Delegate []string `json:"delegate"`
	Ignore   []string `json:"ignore"`
}

type BrainDumpResponse struct {
	ID uuid.UUID `json:"id"`
	CategorizationView
}

type BrainDumpRecord struct {
	ID    uuid.UUID `json:"id"`
	Input string    `json:"input"`
	CategorizationView
	CreatedAt time.Time `json:"createdAt"`
}

type ScriptsRequest struct {
	Category  string `json:"category"`
	Situation string `json:"situation,omitempty"`
}

type ScriptsResponse struct {
	Category     string   `json:"category"`
	ShortScripts []string `json:"shortScripts"`
	LongScripts  []string `json:"longScripts"`
}

type ResetResponse struct {
	ID          uuid.UUID `json:"id"`
	CompletedAt time.Time `json:"completedAt"`
	TotalResets int       `json:"totalResets"`
}

type ResetCountResponse struct {
	Count int `json:"count"`
}

type ScoreRequest struct {
	Answers []float64 `json:"answers"`
}

type ScoreResponse struct {
	ID         uuid.UUID `json:"id"`
	Score      int       `json:"score"`
	Comparison string    `json:"comparison"`
	Message    string    `json:"message"`
}

type ScoreRecord struct {
	ID        uuid.UUID `json:"id"`
	Score     int       `json:"score"`
	Answers   []float64 `json:"answers"`
	CreatedAt time.Time `json:"createdAt"`
}

type FavoriteRequest struct {
	Type     string  `json:"type"`
	Category *string `json:"category,omitempty"`
	Content  string  `json:"content"`
}

type FavoriteView struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Category  *string   `json:"category"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckoutRequest carries the origin the payment provider redirects back to.
type CheckoutRequest struct {
	BaseURL string
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type VerifyPurchaseRequest struct {
	SessionID string `json:"sessionId"`
}

type VerifyPurchaseResponse struct {
	Success   bool `json:"success"`
	IsPremium bool `json:"isPremium"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
