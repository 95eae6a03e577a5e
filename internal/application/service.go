package application

import (
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
)

type Service struct {
	cfg         Config
	users       ports.UserRepository
	brainDumps  ports.BrainDumpRepository
	resets      ports.ResetRepository
	scores      ports.ScoreRepository
	favorites   ports.FavoriteRepository
	purchases   ports.PurchaseRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	assistant   ports.Assistant
	payments    ports.PaymentGateway
	gateDenials GateObserver
	nowFn       func() time.Time
}

// GateObserver is notified whenever the usage gate refuses a feature.
type GateObserver interface {
	ObserveGateDenial(feature string)
}

type Dependencies struct {
	Config     Config
	Users      ports.UserRepository
	BrainDumps ports.BrainDumpRepository
	Resets     ports.ResetRepository
	Scores     ports.ScoreRepository
	Favorites  ports.FavoriteRepository
	Purchases  ports.PurchaseRepository
	Hasher     ports.PasswordHasher
	Tokens     ports.TokenIssuer
	Assistant  ports.Assistant
	// Payments is nil when no provider key is configured.
	Payments    ports.PaymentGateway
	GateDenials GateObserver
	Now         func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	// An entirely unset config gets the default free tier; explicit zero limits are kept.
	if cfg == (Config{}) {
		cfg.Usage = domain.DefaultUsageLimits()
	}
	if cfg.PremiumPriceCents <= 0 {
		cfg.PremiumPriceCents = DefaultPremiumPriceCents
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:         cfg,
		users:       deps.Users,
		brainDumps:  deps.BrainDumps,
		resets:      deps.Resets,
		scores:      deps.Scores,
		favorites:   deps.Favorites,
		purchases:   deps.Purchases,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		assistant:   deps.Assistant,
		payments:    deps.Payments,
		gateDenials: deps.GateDenials,
		nowFn:       nowFn,
	}
}

// PaymentsConfigured reports whether a payment provider is wired.
func (s *Service) PaymentsConfigured() bool {
	return s.payments != nil
}
