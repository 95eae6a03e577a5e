package bootstrap

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	httpadapter "github.com/Shoiba023/invisible-load-reducer/internal/adapters/http"
)

// devSessionSecret signs tokens only when JWT_ALLOW_DEV_SECRET is set and no
// SESSION_SECRET is configured.
const devSessionSecret = "invisible-load-reducer-dev-secret"

// Config is the resolved runtime configuration for the API and the outbox worker.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	SessionSecret  string
	AllowDevSecret bool
	TokenTTL       time.Duration
	BcryptCost     int

	RateLimitBackend      string
	RateLimitWindow       time.Duration
	RateLimitMax          int
	AuthThrottlePerMinute int
	AuthThrottleBurst     int
	// TrustedProxies gate X-Forwarded-For; empty means the header is ignored.
	TrustedProxies        []netip.Prefix

	FreeBrainDumpLimit int
	FreeResetLimit     int
	PremiumPriceCents  int64

	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string

	AllowedOrigins []string

	KafkaBrokers       []string
	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Limits struct {
		FreeBrainDumps    *int  `yaml:"free_brain_dumps"`
		FreeResets        *int  `yaml:"free_resets"`
		PremiumPriceCents int64 `yaml:"premium_price_cents"`
	} `yaml:"limits"`
	RateLimit struct {
		Backend        string   `yaml:"backend"`
		WindowSeconds  int      `yaml:"window_seconds"`
		Max            int      `yaml:"max"`
		AuthPerMinute  int      `yaml:"auth_per_minute"`
		AuthBurst      int      `yaml:"auth_burst"`
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"rate_limit"`
	AI struct {
		BaseURL        string `yaml:"base_url"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ai"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "invisible-load-reducer",
		HTTPPort:              5000,
		GRPCPort:              9090,
		TokenTTL:              30 * 24 * time.Hour,
		BcryptCost:            12,
		RateLimitBackend:      "memory",
		RateLimitWindow:       time.Minute,
		RateLimitMax:          20,
		AuthThrottlePerMinute: 10,
		AuthThrottleBurst:     5,
		FreeBrainDumpLimit:    2,
		FreeResetLimit:        1,
		PremiumPriceCents:     1400,
		AIModel:               "gpt-5.1",
		AITimeout:             60 * time.Second,
		MaxDBConns:            20,
		OutboxPollInterval:    2 * time.Second,
		OutboxBatchSize:       100,
		OutboxClaimTTL:        30 * time.Second,
		OutboxMaxRetries:      5,
	}

	var trustedProxies []string
	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		applyFile(&cfg, f)
		trustedProxies = f.RateLimit.TrustedProxies
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.HTTPPort = envInt("PORT", envInt("HTTP_PORT", cfg.HTTPPort))
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", envOrDefault("DB_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)

	cfg.SessionSecret = envOrDefault("SESSION_SECRET", cfg.SessionSecret)
	cfg.AllowDevSecret = envBool("JWT_ALLOW_DEV_SECRET", cfg.AllowDevSecret)
	cfg.TokenTTL = time.Duration(envInt("TOKEN_TTL_DAYS", int(cfg.TokenTTL/(24*time.Hour)))) * 24 * time.Hour
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)

	cfg.RateLimitBackend = strings.ToLower(strings.TrimSpace(envOrDefault("RATE_LIMIT_BACKEND", cfg.RateLimitBackend)))
	cfg.RateLimitWindow = time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", int(cfg.RateLimitWindow/time.Second))) * time.Second
	cfg.RateLimitMax = envInt("RATE_LIMIT_MAX", cfg.RateLimitMax)
	cfg.AuthThrottlePerMinute = envInt("AUTH_THROTTLE_PER_MINUTE", cfg.AuthThrottlePerMinute)
	cfg.AuthThrottleBurst = envInt("AUTH_THROTTLE_BURST", cfg.AuthThrottleBurst)
	trustedProxies = envCSV("TRUSTED_PROXIES", trustedProxies)

	cfg.FreeBrainDumpLimit = envInt("FREE_BRAIN_DUMP_LIMIT", cfg.FreeBrainDumpLimit)
	cfg.FreeResetLimit = envInt("FREE_RESET_LIMIT", cfg.FreeResetLimit)
	cfg.PremiumPriceCents = int64(envInt("PREMIUM_PRICE_CENTS", int(cfg.PremiumPriceCents)))

	cfg.AIAPIKey = envOrDefault("AI_INTEGRATIONS_OPENAI_API_KEY", cfg.AIAPIKey)
	cfg.AIBaseURL = envOrDefault("AI_INTEGRATIONS_OPENAI_BASE_URL", cfg.AIBaseURL)
	cfg.AIModel = envOrDefault("OPENAI_MODEL", cfg.AIModel)
	cfg.AITimeout = time.Duration(envInt("AI_TIMEOUT_SECONDS", int(cfg.AITimeout/time.Second))) * time.Second

	cfg.StripeSecretKey = envOrDefault("STRIPE_SECRET_KEY", cfg.StripeSecretKey)
	cfg.StripeWebhookSecret = envOrDefault("STRIPE_WEBHOOK_SECRET", cfg.StripeWebhookSecret)

	cfg.AllowedOrigins = envCSV("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	if dev := strings.TrimSpace(os.Getenv("REPLIT_DEV_DOMAIN")); dev != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, "https://"+dev)
	}
	for _, d := range envCSV("REPLIT_DOMAINS", nil) {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, "https://"+d)
	}

	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_INTERVAL_MS", int(cfg.OutboxPollInterval/time.Millisecond))) * time.Millisecond
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL/time.Second))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.TrustedProxies, err = httpadapter.ParseTrustedProxies(trustedProxies); err != nil {
		return Config{}, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DATABASE_URL/DB_URL")
	}
	if cfg.SessionSecret == "" {
		if !cfg.AllowDevSecret {
			return Config{}, fmt.Errorf("missing SESSION_SECRET")
		}
		cfg.SessionSecret = devSessionSecret
	}
	switch cfg.RateLimitBackend {
	case "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("missing REDIS_URL for redis rate limit backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", cfg.RateLimitBackend)
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return Config{}, fmt.Errorf("rate limit window and max must be positive")
	}
	if cfg.FreeBrainDumpLimit < 0 || cfg.FreeResetLimit < 0 {
		return Config{}, fmt.Errorf("free limits must not be negative")
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
	}
	if f.Limits.FreeBrainDumps != nil {
		cfg.FreeBrainDumpLimit = *f.Limits.FreeBrainDumps
	}
	if f.Limits.FreeResets != nil {
		cfg.FreeResetLimit = *f.Limits.FreeResets
	}
	if f.Limits.PremiumPriceCents > 0 {
		cfg.PremiumPriceCents = f.Limits.PremiumPriceCents
	}
	if f.RateLimit.Backend != "" {
		cfg.RateLimitBackend = f.RateLimit.Backend
	}
	if f.RateLimit.WindowSeconds > 0 {
		cfg.RateLimitWindow = time.Duration(f.RateLimit.WindowSeconds) * time.Second
	}
	if f.RateLimit.Max > 0 {
		cfg.RateLimitMax = f.RateLimit.Max
	}
	if f.RateLimit.AuthPerMinute > 0 {
		cfg.AuthThrottlePerMinute = f.RateLimit.AuthPerMinute
	}
	if f.RateLimit.AuthBurst > 0 {
		cfg.AuthThrottleBurst = f.RateLimit.AuthBurst
	}
	if f.AI.BaseURL != "" {
		cfg.AIBaseURL = f.AI.BaseURL
	}
	if f.AI.Model != "" {
		cfg.AIModel = f.AI.Model
	}
	if f.AI.TimeoutSeconds > 0 {
		cfg.AITimeout = time.Duration(f.AI.TimeoutSeconds) * time.Second
	}
	if len(f.CORS.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = f.CORS.AllowedOrigins
	}
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
