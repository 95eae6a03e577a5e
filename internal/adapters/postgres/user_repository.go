package postgres

import (
	"context"
	"encoding/json"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) CreateWithOutboxTx(ctx context.Context, params ports.CreateUserParams, outboxEvent ports.OutboxEvent) (domain.User, error) {
	rec := userModel{
		UserID:       uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrEmailTaken
			}
			return err
		}

		outboxEvent.PartitionKey = rec.UserID.String()
		outboxEvent.Payload = withUserID(outboxEvent.Payload, rec.UserID)
		outbox := toOutboxModel(outboxEvent)
		return tx.Create(&outbox).Error
	})
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return toDomainUser(rec), nil
}

// withUserID stamps the generated user id into a JSON object payload.
func withUserID(payload []byte, userID uuid.UUID) []byte {
	obj := map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &obj); err != nil {
			return payload
		}
	}
	obj["user_id"] = userID.String()
	adjusted, err := json.Marshal(obj)
	if err != nil {
		return payload
	}
	return adjusted
}
