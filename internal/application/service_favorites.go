package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/google/uuid"
)

func (s *Service) premiumUser(ctx context.Context, identity domain.Identity, feature domain.Feature) (domain.User, error) {
	user, err := s.freshUser(ctx, identity.ID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.gate(ctx, user.Identity(), feature); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) CreateFavorite(ctx context.Context, identity domain.Identity, req FavoriteRequest) (FavoriteView, error) {
	user, err := s.premiumUser(ctx, identity, domain.FeatureFavorites)
	if err != nil {
		return FavoriteView{}, err
	}
	favType := strings.TrimSpace(req.Type)
	if favType == "" || strings.TrimSpace(req.Content) == "" {
		return FavoriteView{}, fmt.Errorf("%w: type and content required", domain.ErrInvalidInput)
	}

	var category *string
	if req.Category != nil {
		if c := strings.TrimSpace(*req.Category); c != "" {
			category = &c
		}
	}

	favorite, err := s.favorites.Create(ctx, domain.Favorite{
		FavoriteID: uuid.New(),
		UserID:     user.UserID,
		Type:       favType,
		Category:   category,
		Content:    req.Content,
		CreatedAt:  s.nowFn(),
	})
	if err != nil {
		return FavoriteView{}, err
	}
	return toFavoriteView(favorite), nil
}

func (s *Service) ListFavorites(ctx context.Context, identity domain.Identity) ([]FavoriteView, error) {
	user, err := s.premiumUser(ctx, identity, domain.FeatureFavorites)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favorites.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, toFavoriteView(f))
	}
	return out, nil
}

// DeleteFavorite removes one of the caller's favorites. Someone else's favorite is
// reported as not found.
func (s *Service) DeleteFavorite(ctx context.Context, identity domain.Identity, favoriteID uuid.UUID) (SuccessResponse, error) {
	user, err := s.premiumUser(ctx, identity, domain.FeatureFavorites)
	if err != nil {
		return SuccessResponse{}, err
	}
	if err := s.favorites.DeleteOwned(ctx, favoriteID, user.UserID); err != nil {
		return SuccessResponse{}, err
	}
	return SuccessResponse{Success: true}, nil
}

func toFavoriteView(f domain.Favorite) FavoriteView {
	return FavoriteView{
		ID:        f.FavoriteID,
		Type:      f.Type,
		Category:  f.Category,
		Content:   f.Content,
		CreatedAt: f.CreatedAt,
	}
}
