package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type resetRepository struct {
	db *gorm.DB
}

func (r *resetRepository) CreateAndCountTx(ctx context.Context, userID uuid.UUID, completedAt time.Time) (domain.Reset, error) {
	rec := resetModel{
		ResetID:     uuid.New(),
		UserID:      userID,
		CompletedAt: completedAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return incrementCounter(tx, userID, "reset_count", completedAt)
	})
	if err != nil {
		return domain.Reset{}, err
	}
	return domain.Reset{ResetID: rec.ResetID, UserID: rec.UserID, CompletedAt: rec.CompletedAt}, nil
}

type scoreRepository struct {
	db *gorm.DB
}

func (r *scoreRepository) Create(ctx context.Context, score domain.QuizScore) (domain.QuizScore, error) {
	answers, err := json.Marshal(score.Answers)
	if err != nil {
		return domain.QuizScore{}, err
	}
	rec := scoreModel{
		ScoreID:   uuid.New(),
		UserID:    score.UserID,
		Score:     score.Score,
		Answers:   string(answers),
		CreatedAt: score.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.QuizScore{}, err
	}
	return toDomainScore(rec), nil
}

func (r *scoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.QuizScore, error) {
	var rows []scoreModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.QuizScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainScore(row))
	}
	return out, nil
}

type favoriteRepository struct {
	db *gorm.DB
}

func (r *favoriteRepository) Create(ctx context.Context, favorite domain.Favorite) (domain.Favorite, error) {
	rec := favoriteModel{
		FavoriteID: uuid.New(),
		UserID:     favorite.UserID,
		Type:       favorite.Type,
		Category:   favorite.Category,
		Content:    favorite.Content,
		CreatedAt:  favorite.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Favorite{}, err
	}
	return toDomainFavorite(rec), nil
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	var rows []favoriteModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Favorite, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainFavorite(row))
	}
	return out, nil
}

func (r *favoriteRepository) DeleteOwned(ctx context.Context, favoriteID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("favorite_id = ? AND user_id = ?", favoriteID, userID).
		Delete(&favoriteModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
