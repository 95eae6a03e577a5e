package bootstrap

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SERVICE_ID", "PORT", "HTTP_PORT", "GRPC_PORT", "DATABASE_URL", "DB_URL", "REDIS_URL",
		"SESSION_SECRET", "JWT_ALLOW_DEV_SECRET", "TOKEN_TTL_DAYS", "BCRYPT_ROUNDS",
		"RATE_LIMIT_BACKEND", "RATE_LIMIT_WINDOW_SECONDS", "RATE_LIMIT_MAX",
		"AUTH_THROTTLE_PER_MINUTE", "AUTH_THROTTLE_BURST", "TRUSTED_PROXIES",
		"FREE_BRAIN_DUMP_LIMIT", "FREE_RESET_LIMIT", "PREMIUM_PRICE_CENTS",
		"AI_INTEGRATIONS_OPENAI_API_KEY", "AI_INTEGRATIONS_OPENAI_BASE_URL", "OPENAI_MODEL", "AI_TIMEOUT_SECONDS",
		"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
		"CORS_ALLOWED_ORIGINS", "REPLIT_DEV_DOMAIN", "REPLIT_DOMAINS",
		"KAFKA_BROKERS", "DB_MAX_CONNS", "OUTBOX_POLL_INTERVAL_MS", "OUTBOX_BATCH_SIZE",
		"OUTBOX_CLAIM_TTL_SECONDS", "OUTBOX_MAX_RETRIES",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/ilr")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, 2, cfg.FreeBrainDumpLimit)
	assert.Equal(t, 1, cfg.FreeResetLimit)
	assert.Equal(t, int64(1400), cfg.PremiumPriceCents)
	assert.Equal(t, "memory", cfg.RateLimitBackend)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 20, cfg.RateLimitMax)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "gpt-5.1", cfg.AIModel)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `
service:
  http_port: 7000
dependencies:
  postgres_url: postgres://file/ilr
  kafka_brokers: [kafka:9092]
limits:
  free_brain_dumps: 0
  free_resets: 3
rate_limit:
  window_seconds: 30
  max: 5
  trusted_proxies: [10.0.0.0/8]
cors:
  allowed_origins: [https://app.example.com]
`)
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("RATE_LIMIT_MAX", "9")
	t.Setenv("REPLIT_DEV_DOMAIN", "dev.example.repl.co")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "postgres://file/ilr", cfg.DatabaseURL)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 0, cfg.FreeBrainDumpLimit)
	assert.Equal(t, 3, cfg.FreeResetLimit)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 9, cfg.RateLimitMax)
	assert.Equal(t, []string{"https://app.example.com", "https://dev.example.repl.co"}, cfg.AllowedOrigins)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}, cfg.TrustedProxies)
}

func TestLoadConfigTrustedProxies(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("SESSION_SECRET", "s")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")
	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
	}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "load-balancer")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUSTED_PROXIES")
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing database",
			env:     map[string]string{"SESSION_SECRET": "s"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "missing secret",
			env:     map[string]string{"DATABASE_URL": "postgres://x"},
			wantErr: "SESSION_SECRET",
		},
		{
			name:    "redis backend without url",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "SESSION_SECRET": "s", "RATE_LIMIT_BACKEND": "redis"},
			wantErr: "REDIS_URL",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "SESSION_SECRET": "s", "RATE_LIMIT_BACKEND": "etcd"},
			wantErr: "unknown RATE_LIMIT_BACKEND",
		},
		{
			name:    "negative free limit",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "SESSION_SECRET": "s", "FREE_RESET_LIMIT": "-1"},
			wantErr: "must not be negative",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfigDevSecret(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_ALLOW_DEV_SECRET", "true")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
}
