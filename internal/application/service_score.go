package application

import (
	"context"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/google/uuid"
)

// SubmitScore scores a load quiz and stores it. Invalid answers are rejected before scoring.
func (s *Service) SubmitScore(ctx context.Context, identity domain.Identity, req ScoreRequest) (ScoreResponse, error) {
	result, err := domain.ScoreQuiz(req.Answers)
	if err != nil {
		return ScoreResponse{}, err
	}

	stored, err := s.scores.Create(ctx, domain.QuizScore{
		ScoreID:   uuid.New(),
		UserID:    identity.ID,
		Score:     result.Score,
		Answers:   req.Answers,
		CreatedAt: s.nowFn(),
	})
	if err != nil {
		return ScoreResponse{}, err
	}
	return ScoreResponse{
		ID:         stored.ScoreID,
		Score:      result.Score,
		Comparison: result.Comparison,
		Message:    result.Message,
	}, nil
}

// ScoreHistory lists past quiz scores for premium callers, newest first.
func (s *Service) ScoreHistory(ctx context.Context, identity domain.Identity) ([]ScoreRecord, error) {
	user, err := s.freshUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if err := s.gate(ctx, user.Identity(), domain.FeatureScoreHistory); err != nil {
		return nil, err
	}

	scores, err := s.scores.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]ScoreRecord, 0, len(scores))
	for _, sc := range scores {
		out = append(out, ScoreRecord{
			ID:        sc.ScoreID,
			Score:     sc.Score,
			Answers:   nonNil(sc.Answers),
			CreatedAt: sc.CreatedAt,
		})
	}
	return out, nil
}
