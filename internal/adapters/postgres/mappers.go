package postgres

import (
	"encoding/json"
	"errors"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"gorm.io/gorm"
)

func toDomainUser(row userModel) domain.User {
	return domain.User{
		UserID:         row.UserID,
		Email:          row.Email,
		PasswordHash:   row.PasswordHash,
		IsPremium:      row.IsPremium,
		BrainDumpCount: row.BrainDumpCount,
		ResetCount:     row.ResetCount,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func toDomainBrainDump(row brainDumpModel) domain.BrainDump {
	return domain.BrainDump{
		BrainDumpID: row.BrainDumpID,
		UserID:      row.UserID,
		Input:       row.Input,
		Categorization: domain.Categorization{
			Today:    decodeStrings(row.Today),
			CanWait:  decodeStrings(row.CanWait),
			Delegate: decodeStrings(row.Delegate),
			Ignore:   decodeStrings(row.IgnoreTasks),
		},
		CreatedAt: row.CreatedAt,
	}
}

func toDomainScore(row scoreModel) domain.QuizScore {
	answers := []float64{}
	_ = json.Unmarshal([]byte(row.Answers), &answers)
	return domain.QuizScore{
		ScoreID:   row.ScoreID,
		UserID:    row.UserID,
		Score:     row.Score,
		Answers:   answers,
		CreatedAt: row.CreatedAt,
	}
}

func toDomainFavorite(row favoriteModel) domain.Favorite {
	return domain.Favorite{
		FavoriteID: row.FavoriteID,
		UserID:     row.UserID,
		Type:       row.Type,
		Category:   row.Category,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
	}
}

func toDomainPurchase(row purchaseModel) domain.Purchase {
	return domain.Purchase{
		PurchaseID:       row.PurchaseID,
		UserID:           row.UserID,
		StripeSessionID:  row.StripeSessionID,
		StripeCustomerID: row.StripeCustomerID,
		Amount:           row.Amount,
		Status:           row.Status,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func toOutboxModel(event ports.OutboxEvent) outboxModel {
	payload := string(event.Payload)
	if payload == "" {
		payload = "{}"
	}
	return outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
		FirstSeenAt:  event.OccurredAt,
	}
}

// encodeStrings always yields a JSON array, never null.
func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeStrings(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
