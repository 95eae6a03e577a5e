package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	aiadapter "github.com/Shoiba023/invisible-load-reducer/internal/adapters/ai"
	cacheadapter "github.com/Shoiba023/invisible-load-reducer/internal/adapters/cache"
	eventadapter "github.com/Shoiba023/invisible-load-reducer/internal/adapters/events"
	httpadapter "github.com/Shoiba023/invisible-load-reducer/internal/adapters/http"
	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/metrics"
	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/payments"
	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/postgres"
	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/ratelimit"
	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/security"
	"github.com/Shoiba023/invisible-load-reducer/internal/application"
	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
)

type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	janitor    *ratelimit.FixedWindowLimiter
	outbox     *eventadapter.OutboxWorker
	cleanupFns []func() error
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping invisible load reducer",
		"service", cfg.ServiceID,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"rate_limit_backend", cfg.RateLimitBackend,
	)

	rt := &Runtime{cfg: cfg, logger: logger}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	rt.cleanupFns = append(rt.cleanupFns, sqlDB.Close)

	if err := postgres.RunMigrations(ctx, db); err != nil {
		rt.cleanup()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			rt.cleanup()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.cleanupFns = append(rt.cleanupFns, redisClient.Close)
	}

	repos := postgres.NewRepositories(db)
	m := metrics.New()

	limiterCfg := ratelimit.Config{Limit: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	var limiter ports.RateLimiter
	if cfg.RateLimitBackend == "redis" {
		limiter = ratelimit.NewRedisFixedWindowLimiter(redisClient, limiterCfg, "ratelimit")
	} else {
		memory := ratelimit.NewFixedWindowLimiter(limiterCfg)
		rt.janitor = memory
		limiter = memory
	}

	tokens, err := security.NewJWTIssuer(security.TokenConfig{
		Secret: []byte(cfg.SessionSecret),
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		rt.cleanup()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}
	if cfg.AIAPIKey == "" {
		logger.Warn("AI_INTEGRATIONS_OPENAI_API_KEY is not set; brain dump and scripts will fail")
	}

	deps := application.Dependencies{
		Config: application.Config{
			Usage: domain.UsageLimits{
				BrainDumps: cfg.FreeBrainDumpLimit,
				Resets:     cfg.FreeResetLimit,
			},
			PremiumPriceCents: cfg.PremiumPriceCents,
		},
		Users:      repos.Users,
		BrainDumps: repos.BrainDumps,
		Resets:     repos.Resets,
		Scores:     repos.Scores,
		Favorites:  repos.Favorites,
		Purchases:  repos.Purchases,
		Hasher:     security.NewBcryptHasher(cfg.BcryptCost),
		Tokens:     tokens,
		Assistant: aiadapter.NewClient(aiadapter.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		}, m),
		GateDenials: m,
	}
	if gw := payments.NewGateway(payments.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	}); gw != nil {
		deps.Payments = gw
	} else {
		logger.Warn("STRIPE_SECRET_KEY is not set; checkout and webhooks are disabled")
	}
	svc := application.NewService(deps)

	handler := httpadapter.NewHandler(svc, httpadapter.Options{
		Limiter:               limiter,
		Metrics:               m,
		AllowedOrigins:        cfg.AllowedOrigins,
		AuthThrottlePerMinute: cfg.AuthThrottlePerMinute,
		AuthThrottleBurst:     cfg.AuthThrottleBurst,
		TrustedProxies:        cfg.TrustedProxies,
	})
	rt.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	rt.grpcServer = grpc.NewServer()
	rt.health = health.NewServer()
	healthpb.RegisterHealthServer(rt.grpcServer, rt.health)

	var publisher eventPublisher = eventadapter.NewLoggingPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, nil)
		if err != nil {
			rt.cleanup()
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		publisher = kafkaPublisher
	}
	rt.cleanupFns = append(rt.cleanupFns, publisher.Close)

	rt.outbox = eventadapter.NewOutboxWorker(
		logger,
		repos.Outbox,
		publisher,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)
	return rt, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanup()
		return fmt.Errorf("listen gRPC: %w", err)
	}
	r.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc health server started", "addr", lis.Addr().String())
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	if r.janitor != nil {
		go func() { _ = r.janitor.Run(janitorCtx) }()
	}

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error("server failure", "error", runErr)
	}

	r.health.Shutdown()
	stopJanitor()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanup()
	return runErr
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	r.cleanup()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// cleanup closes resources in reverse acquisition order.
func (r *Runtime) cleanup() {
	for i := len(r.cleanupFns) - 1; i >= 0; i-- {
		if err := r.cleanupFns[i](); err != nil {
			r.logger.Warn("cleanup failed", "error", err)
		}
	}
	r.cleanupFns = nil
}
