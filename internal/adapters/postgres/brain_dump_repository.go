package postgres

import (
	"context"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type brainDumpRepository struct {
	db *gorm.DB
}

func (r *brainDumpRepository) CreateAndCountTx(ctx context.Context, params ports.BrainDumpCreateParams, outboxEvent ports.OutboxEvent) (domain.BrainDump, error) {
	rec := brainDumpModel{
		BrainDumpID: uuid.New(),
		UserID:      params.UserID,
		Input:       params.Input,
		Today:       encodeStrings(params.Categorization.Today),
		CanWait:     encodeStrings(params.Categorization.CanWait),
		Delegate:    encodeStrings(params.Categorization.Delegate),
		IgnoreTasks: encodeStrings(params.Categorization.Ignore),
		CreatedAt:   params.CreatedAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		if err := incrementCounter(tx, params.UserID, "brain_dump_count", params.CreatedAt); err != nil {
			return err
		}
		outbox := toOutboxModel(outboxEvent)
		return tx.Create(&outbox).Error
	})
	if err != nil {
		return domain.BrainDump{}, err
	}
	return toDomainBrainDump(rec), nil
}

func (r *brainDumpRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BrainDump, error) {
	var rows []brainDumpModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.BrainDump, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainBrainDump(row))
	}
	return out, nil
}

// incrementCounter bumps a usage counter in SQL so concurrent increments never lose updates.
func incrementCounter(tx *gorm.DB, userID uuid.UUID, column string, at any) error {
	res := tx.Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			column:       gorm.Expr(column + " + 1"),
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
