// Package testutil holds in-memory implementations of the ports for tests.
package testutil

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
)

// Store is a mutex-guarded stand-in for the Postgres repositories.
type Store struct {
	mu              sync.Mutex
	users           map[uuid.UUID]domain.User
	brainDumps      []domain.BrainDump
	resets          []domain.Reset
	scores          []domain.QuizScore
	favorites       []domain.Favorite
	purchases       map[string]domain.Purchase
	processedEvents map[string]struct{}
	outbox          []ports.OutboxEvent
}

func NewStore() *Store {
	return &Store{
		users:           map[uuid.UUID]domain.User{},
		purchases:       map[string]domain.Purchase{},
		processedEvents: map[string]struct{}{},
	}
}

func (s *Store) Users() ports.UserRepository           { return userRepo{s} }
func (s *Store) BrainDumps() ports.BrainDumpRepository { return brainDumpRepo{s} }
func (s *Store) Resets() ports.ResetRepository         { return resetRepo{s} }
func (s *Store) Scores() ports.ScoreRepository         { return scoreRepo{s} }
func (s *Store) Favorites() ports.FavoriteRepository   { return favoriteRepo{s} }
func (s *Store) Purchases() ports.PurchaseRepository   { return purchaseRepo{s} }

// User returns a copy of the stored row.
func (s *Store) User(id uuid.UUID) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) SetPremium(id uuid.UUID, premium bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsPremium = premium
		s.users[id] = u
	}
}

func (s *Store) DeleteUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *Store) Purchase(sessionID string) (domain.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[sessionID]
	return p, ok
}

// OutboxEventTypes lists enqueued event types in insertion order.
func (s *Store) OutboxEventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.outbox))
	for _, e := range s.outbox {
		out = append(out, e.EventType)
	}
	return out
}

func (s *Store) OutboxEvents() []ports.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.OutboxEvent(nil), s.outbox...)
}

type userRepo struct{ s *Store }

func (r userRepo) CreateWithOutboxTx(_ context.Context, params ports.CreateUserParams, event ports.OutboxEvent) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == params.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	user := domain.User{
		UserID:       uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	r.s.users[user.UserID] = user

	var payload map[string]any
	if err := json.Unmarshal(event.Payload, &payload); err == nil {
		payload["user_id"] = user.UserID.String()
		event.Payload, _ = json.Marshal(payload)
	}
	r.s.outbox = append(r.s.outbox, event)
	return user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r userRepo) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type brainDumpRepo struct{ s *Store }

func (r brainDumpRepo) CreateAndCountTx(_ context.Context, params ports.BrainDumpCreateParams, event ports.OutboxEvent) (domain.BrainDump, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[params.UserID]
	if !ok {
		return domain.BrainDump{}, domain.ErrNotFound
	}
	u.BrainDumpCount++
	u.UpdatedAt = params.CreatedAt
	r.s.users[u.UserID] = u

	record := domain.BrainDump{
		BrainDumpID:    uuid.New(),
		UserID:         params.UserID,
		Input:          params.Input,
		Categorization: params.Categorization,
		CreatedAt:      params.CreatedAt,
	}
	r.s.brainDumps = append(r.s.brainDumps, record)
	r.s.outbox = append(r.s.outbox, event)
	return record, nil
}

func (r brainDumpRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.BrainDump, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.BrainDump
	for _, b := range r.s.brainDumps {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type resetRepo struct{ s *Store }

func (r resetRepo) CreateAndCountTx(_ context.Context, userID uuid.UUID, completedAt time.Time) (domain.Reset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.Reset{}, domain.ErrNotFound
	}
	u.ResetCount++
	r.s.users[userID] = u
	reset := domain.Reset{ResetID: uuid.New(), UserID: userID, CompletedAt: completedAt}
	r.s.resets = append(r.s.resets, reset)
	return reset, nil
}

type scoreRepo struct{ s *Store }

func (r scoreRepo) Create(_ context.Context, score domain.QuizScore) (domain.QuizScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.scores = append(r.s.scores, score)
	return score, nil
}

func (r scoreRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.QuizScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.QuizScore
	for _, sc := range r.s.scores {
		if sc.UserID == userID {
			out = append(out, sc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type favoriteRepo struct{ s *Store }

func (r favoriteRepo) Create(_ context.Context, favorite domain.Favorite) (domain.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.favorites = append(r.s.favorites, favorite)
	return favorite, nil
}

func (r favoriteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Favorite
	for _, f := range r.s.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r favoriteRepo) DeleteOwned(_ context.Context, favoriteID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, f := range r.s.favorites {
		if f.FavoriteID == favoriteID && f.UserID == userID {
			r.s.favorites = append(r.s.favorites[:i], r.s.favorites[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) CreatePending(_ context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	purchase.Status = domain.PurchaseStatusPending
	r.s.purchases[purchase.StripeSessionID] = purchase
	return purchase, nil
}

func (r purchaseRepo) CompleteWithPremiumTx(_ context.Context, params ports.CompletePurchaseParams, event ports.OutboxEvent) (ports.CompletePurchaseResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if params.WebhookEventID != "" {
		if _, seen := r.s.processedEvents[params.WebhookEventID]; seen {
			return ports.CompletePurchaseResult{Duplicate: true}, nil
		}
	}
	u, ok := r.s.users[params.UserID]
	if !ok {
		return ports.CompletePurchaseResult{}, domain.ErrNotFound
	}
	if params.WebhookEventID != "" {
		r.s.processedEvents[params.WebhookEventID] = struct{}{}
	}
	if p, ok := r.s.purchases[params.StripeSessionID]; ok {
		p.Status = domain.PurchaseStatusCompleted
		if params.StripeCustomerID != "" {
			customer := params.StripeCustomerID
			p.StripeCustomerID = &customer
		}
		p.UpdatedAt = params.CompletedAt
		r.s.purchases[params.StripeSessionID] = p
	}
	if u.IsPremium {
		return ports.CompletePurchaseResult{}, nil
	}
	u.IsPremium = true
	r.s.users[u.UserID] = u
	r.s.outbox = append(r.s.outbox, event)
	return ports.CompletePurchaseResult{PremiumGranted: true}, nil
}
