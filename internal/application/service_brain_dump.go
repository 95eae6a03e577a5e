package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
)

// BrainDump categorizes free text and counts it against the free allowance.
//
// The gate reads a fresh counter, then the assistant runs, then one transaction stores the
// record and increments brain_dump_count. A failed assistant call consumes nothing. The
// assistant call is not atomic with the increment: a crash between them grants an uncounted
// use, and concurrent requests that pass the gate on the same read are all counted.
func (s *Service) BrainDump(ctx context.Context, identity domain.Identity, req BrainDumpRequest) (BrainDumpResponse, error) {
	if strings.TrimSpace(req.Input) == "" {
		return BrainDumpResponse{}, fmt.Errorf("%w: input is required", domain.ErrInvalidInput)
	}

	user, err := s.freshUser(ctx, identity.ID)
	if err != nil {
		return BrainDumpResponse{}, err
	}
	if err := s.gate(ctx, user.Identity(), domain.FeatureBrainDump); err != nil {
		return BrainDumpResponse{}, err
	}

	categorization, err := s.assistant.CategorizeBrainDump(ctx, req.Input)
	if err != nil {
		return BrainDumpResponse{}, fmt.Errorf("categorize brain dump: %w", err)
	}

	now := s.nowFn()
	event := newOutboxEvent(eventTypeBrainDumpCompleted, user.UserID.String(), map[string]any{
		"user_id":      user.UserID,
		"item_count":   len(categorization.Today) + len(categorization.CanWait) + len(categorization.Delegate) + len(categorization.Ignore),
		"completed_at": now,
	}, now)

	record, err := s.brainDumps.CreateAndCountTx(ctx, ports.BrainDumpCreateParams{
		UserID:         user.UserID,
		Input:          req.Input,
		Categorization: categorization,
		CreatedAt:      now,
	}, event)
	if err != nil {
		return BrainDumpResponse{}, err
	}

	return BrainDumpResponse{
		ID:                 record.BrainDumpID,
		CategorizationView: toCategorizationView(categorization),
	}, nil
}

// BrainDumpHistory lists the caller's brain dumps, newest first.
func (s *Service) BrainDumpHistory(ctx context.Context, identity domain.Identity) ([]BrainDumpRecord, error) {
	records, err := s.brainDumps.ListByUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	out := make([]BrainDumpRecord, 0, len(records))
	for _, r := range records {
		out = append(out, BrainDumpRecord{
			ID:                 r.BrainDumpID,
			Input:              r.Input,
			CategorizationView: toCategorizationView(r.Categorization),
			CreatedAt:          r.CreatedAt,
		})
	}
	return out, nil
}
