package application

import (
	"context"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
)

// CompleteReset records a finished reset session. totalResets is computed from the
// counter read before the transaction, plus the one just added.
func (s *Service) CompleteReset(ctx context.Context, identity domain.Identity) (ResetResponse, error) {
	user, err := s.freshUser(ctx, identity.ID)
	if err != nil {
		return ResetResponse{}, err
	}
	if err := s.gate(ctx, user.Identity(), domain.FeatureReset); err != nil {
		return ResetResponse{}, err
	}

	reset, err := s.resets.CreateAndCountTx(ctx, user.UserID, s.nowFn())
	if err != nil {
		return ResetResponse{}, err
	}
	return ResetResponse{
		ID:          reset.ResetID,
		CompletedAt: reset.CompletedAt,
		TotalResets: user.ResetCount + 1,
	}, nil
}

// ResetCount returns the caller's reset counter from a fresh read.
func (s *Service) ResetCount(ctx context.Context, identity domain.Identity) (ResetCountResponse, error) {
	user, err := s.freshUser(ctx, identity.ID)
	if err != nil {
		return ResetCountResponse{}, err
	}
	return ResetCountResponse{Count: user.ResetCount}, nil
}
