package postgres

import (
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"gorm.io/gorm"
)

// Repositories bundles every Postgres-backed port.
type Repositories struct {
	Users      ports.UserRepository
	BrainDumps ports.BrainDumpRepository
	Resets     ports.ResetRepository
	Scores     ports.ScoreRepository
	Favorites  ports.FavoriteRepository
	Purchases  ports.PurchaseRepository
	Outbox     ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:      &userRepository{db: db},
		BrainDumps: &brainDumpRepository{db: db},
		Resets:     &resetRepository{db: db},
		Scores:     &scoreRepository{db: db},
		Favorites:  &favoriteRepository{db: db},
		Purchases:  &purchaseRepository{db: db},
		Outbox:     &outboxRepository{db: db},
	}
}
