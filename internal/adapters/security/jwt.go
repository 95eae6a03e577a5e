package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// TokenConfig is the explicit configuration of the token issuer.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// JWTIssuer issues and verifies HS256 bearer tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	nowFn  func() time.Time
}

func NewJWTIssuer(cfg TokenConfig) (*JWTIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &JWTIssuer{secret: secret, ttl: ttl, nowFn: nowFn}, nil
}

type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (i *JWTIssuer) Issue(userID uuid.UUID, email string) (string, error) {
	now := i.nowFn().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure is domain.ErrInvalidToken.
func (i *JWTIssuer) Verify(raw string) (ports.TokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.nowFn),
	)
	if err != nil || !token.Valid {
		return ports.TokenClaims{}, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ports.TokenClaims{}, domain.ErrInvalidToken
	}

	out := ports.TokenClaims{
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
