package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
)

// Signup creates an account, enqueues user.registered and returns a bearer token.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (AuthResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return AuthResponse{}, fmt.Errorf("%w: email and password required", domain.ErrInvalidInput)
	}
	if err := domain.ValidateEmail(email); err != nil {
		return AuthResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return AuthResponse{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	event := newOutboxEvent(eventTypeUserRegistered, email, map[string]any{
		"user_id":       nil,
		"email":         email,
		"registered_at": now,
	}, now)

	user, err := s.users.CreateWithOutboxTx(ctx, ports.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, event)
	if err != nil {
		return AuthResponse{}, err
	}

	token, err := s.tokens.Issue(user.UserID, user.Email)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}

	logger().InfoContext(ctx, "user signed up",
		"operation", "signup",
		"outcome", "success",
		"user_id", user.UserID,
	)
	return AuthResponse{Token: token, User: toUserView(user)}, nil
}

// Login checks credentials. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return AuthResponse{}, fmt.Errorf("%w: email and password required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		logger().WarnContext(ctx, "login rejected",
			"operation", "login",
			"outcome", "failure",
			"reason", "USER_NOT_FOUND",
		)
		return AuthResponse{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResponse{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		logger().WarnContext(ctx, "login rejected",
			"operation", "login",
			"outcome", "failure",
			"reason", "INVALID_PASSWORD",
			"user_id", user.UserID,
		)
		return AuthResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.UserID, user.Email)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResponse{Token: token, User: toUserView(user)}, nil
}

// Authenticate resolves a bearer token to a fresh identity snapshot. The user row is
// always re-read, so a token for a deleted account fails like a forged one.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, domain.ErrNoCredential
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	user, err := s.freshUser(ctx, claims.UserID)
	if err != nil {
		return domain.Identity{}, err
	}
	return user.Identity(), nil
}

// Logout is acknowledged only. Tokens stay valid until expiry.
func (s *Service) Logout(ctx context.Context, identity domain.Identity) SuccessResponse {
	logger().InfoContext(ctx, "user logged out",
		"operation", "logout",
		"outcome", "success",
		"user_id", identity.ID,
	)
	return SuccessResponse{Success: true}
}

// Me re-reads the caller and reports the usage gate state from that read.
func (s *Service) Me(ctx context.Context, identity domain.Identity) (MeResponse, error) {
	user, err := s.freshUser(ctx, identity.ID)
	if err != nil {
		return MeResponse{}, err
	}
	fresh := user.Identity()
	limits := s.cfg.Usage
	return MeResponse{
		UserView:            toUserView(user),
		CanUseBrainDump:     limits.Allowed(fresh, domain.FeatureBrainDump),
		CanUseReset:         limits.Allowed(fresh, domain.FeatureReset),
		RemainingBrainDumps: limits.Remaining(fresh, domain.FeatureBrainDump),
		RemainingResets:     limits.Remaining(fresh, domain.FeatureReset),
	}, nil
}
