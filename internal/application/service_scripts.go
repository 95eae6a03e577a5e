package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
)

// Scripts generates conversation scripts for a premium caller. Nothing is stored.
// Free callers are refused before the body is validated.
func (s *Service) Scripts(ctx context.Context, identity domain.Identity, req ScriptsRequest) (ScriptsResponse, error) {
	if _, err := s.premiumUser(ctx, identity, domain.FeatureScripts); err != nil {
		return ScriptsResponse{}, err
	}
	category, err := domain.NormalizeScriptCategory(req.Category)
	if err != nil {
		return ScriptsResponse{}, err
	}

	scripts, err := s.assistant.GenerateScripts(ctx, category, strings.TrimSpace(req.Situation))
	if err != nil {
		return ScriptsResponse{}, fmt.Errorf("generate scripts: %w", err)
	}
	return ScriptsResponse{
		Category:     category,
		ShortScripts: nonNil(scripts.ShortScripts),
		LongScripts:  nonNil(scripts.LongScripts),
	}, nil
}
