package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/google/uuid"
)

const serviceName = "invisible-load-reducer"

func logger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "application",
		"layer", "application",
	)
}

// freshUser re-reads the caller's row. A user deleted after token issue is reported
// the same way as a forged token.
func (s *Service) freshUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidToken
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// gate evaluates the usage policy for feature against a fresh identity.
func (s *Service) gate(ctx context.Context, identity domain.Identity, feature domain.Feature) error {
	err := s.cfg.Usage.Check(identity, feature)
	if err == nil {
		return nil
	}
	if s.gateDenials != nil {
		s.gateDenials.ObserveGateDenial(string(feature))
	}
	logger().InfoContext(ctx, "usage gate denied",
		"operation", "usage_gate",
		"outcome", "denied",
		"feature", string(feature),
		"user_id", identity.ID,
	)
	return err
}

func toUserView(user domain.User) UserView {
	return UserView{
		ID:             user.UserID,
		Email:          user.Email,
		IsPremium:      user.IsPremium,
		BrainDumpCount: user.BrainDumpCount,
		ResetCount:     user.ResetCount,
	}
}

func toCategorizationView(c domain.Categorization) CategorizationView {
	return CategorizationView{
		Today:    nonNil(c.Today),
		CanWait:  nonNil(c.CanWait),
		Delegate: nonNil(c.Delegate),
		Ignore:   nonNil(c.Ignore),
	}
}

// nonNil keeps JSON arrays from encoding as null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
