package postgres

import (
	"context"
	"errors"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type purchaseRepository struct {
	db *gorm.DB
}

func (r *purchaseRepository) CreatePending(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	rec := purchaseModel{
		PurchaseID:      uuid.New(),
		UserID:          purchase.UserID,
		StripeSessionID: purchase.StripeSessionID,
		Amount:          purchase.Amount,
		Status:          domain.PurchaseStatusPending,
		CreatedAt:       purchase.CreatedAt,
		UpdatedAt:       purchase.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Purchase{}, err
	}
	return toDomainPurchase(rec), nil
}

// errDuplicateEvent aborts the completion transaction for an already-seen webhook event.
var errDuplicateEvent = errors.New("webhook event already processed")

func (r *purchaseRepository) CompleteWithPremiumTx(ctx context.Context, params ports.CompletePurchaseParams, outboxEvent ports.OutboxEvent) (ports.CompletePurchaseResult, error) {
	var result ports.CompletePurchaseResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if params.WebhookEventID != "" {
			ledger := processedWebhookEventModel{
				EventID:     params.WebhookEventID,
				EventType:   params.WebhookEventType,
				ProcessedAt: params.CompletedAt,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ledger)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errDuplicateEvent
			}
		}

		updates := map[string]any{
			"status":     domain.PurchaseStatusCompleted,
			"updated_at": params.CompletedAt,
		}
		if params.StripeCustomerID != "" {
			updates["stripe_customer_id"] = params.StripeCustomerID
		}
		if err := tx.Model(&purchaseModel{}).
			Where("stripe_session_id = ?", params.StripeSessionID).
			Updates(updates).Error; err != nil {
			return err
		}

		res := tx.Model(&userModel{}).
			Where("user_id = ? AND is_premium = ?", params.UserID, false).
			Updates(map[string]any{
				"is_premium": true,
				"updated_at": params.CompletedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&userModel{}).Where("user_id = ?", params.UserID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrNotFound
			}
			return nil
		}

		result.PremiumGranted = true
		outbox := toOutboxModel(outboxEvent)
		return tx.Create(&outbox).Error
	})
	if errors.Is(err, errDuplicateEvent) {
		return ports.CompletePurchaseResult{Duplicate: true}, nil
	}
	if err != nil {
		return ports.CompletePurchaseResult{}, err
	}
	return result, nil
}
