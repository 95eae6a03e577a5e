package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/metrics"
	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/ratelimit"
	"github.com/Shoiba023/invisible-load-reducer/internal/adapters/security"
	"github.com/Shoiba023/invisible-load-reducer/internal/application"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/Shoiba023/invisible-load-reducer/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	store    *testutil.Store
	payments *testutil.Payments
}

func newTestEnv(t *testing.T, withPayments bool, opts Options) testEnv {
	t.Helper()
	tokens, err := security.NewJWTIssuer(security.TokenConfig{Secret: []byte("router-test-secret")})
	require.NoError(t, err)

	env := testEnv{store: testutil.NewStore()}
	deps := application.Dependencies{
		Users:      env.store.Users(),
		BrainDumps: env.store.BrainDumps(),
		Resets:     env.store.Resets(),
		Scores:     env.store.Scores(),
		Favorites:  env.store.Favorites(),
		Purchases:  env.store.Purchases(),
		Hasher:     testutil.PlainHasher{},
		Tokens:     tokens,
		Assistant:  testutil.NewAssistant(),
	}
	if withPayments {
		env.payments = testutil.NewPayments()
		deps.Payments = env.payments
	}
	env.router = NewRouter(NewHandler(application.NewService(deps), opts))
	return env
}

func (e testEnv) do(t *testing.T, method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (e testEnv) signup(t *testing.T, email string) (string, uuid.UUID) {
	t.Helper()
	rec, body := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := body["user"].(map[string]any)
	return body["token"].(string), uuid.MustParse(user["id"].(string))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	rec, body := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSignupLoginMeLogout(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	token, userID := env.signup(t, "mom@example.com")

	rec, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "mom@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["token"])

	rec, body = env.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), body["id"])
	assert.Equal(t, false, body["isPremium"])
	assert.Equal(t, true, body["canUseBrainDump"])
	assert.Equal(t, 2.0, body["remainingBrainDumps"])
	assert.Equal(t, 1.0, body["remainingResets"])

	rec, body = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	// logout is client-side only
	rec, _ = env.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthErrors(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	env.signup(t, "a@b.co")

	rec, body := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@b.co", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", body["code"])
	assert.Equal(t, "Email already registered", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "c@b.co", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password must be at least 6 characters", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.co", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
	assert.Equal(t, "Invalid email or password", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@b.co","password":"secret1","admin":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	rec, body = env.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_CREDENTIAL", body["code"])

	rec, body = env.do(t, http.MethodGet, "/api/me", "forged.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIAL", body["code"])
	assert.Nil(t, body["requiresPremium"])
}

func TestBrainDumpGate(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	token, userID := env.signup(t, "a@b.co")

	for i := 0; i < 2; i++ {
		rec, body := env.do(t, http.MethodPost, "/api/brain-dump", token, map[string]string{"input": "dishes, forms, calls"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, body["id"])
		assert.Len(t, body["today"], 1)
		assert.Contains(t, body, "canWait")
	}

	rec, body := env.do(t, http.MethodPost, "/api/brain-dump", token, map[string]string{"input": "more"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, true, body["requiresPremium"])
	assert.Equal(t, "PREMIUM_REQUIRED", body["code"])
	assert.Equal(t, "free brain dump limit reached", body["error"])

	env.store.SetPremium(userID, true)
	rec, _ = env.do(t, http.MethodPost, "/api/brain-dump", token, map[string]string{"input": "more"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/brain-dump/history", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 3)
}

func TestRateLimitedRoutes(t *testing.T) {
	limiter := ratelimit.NewFixedWindowLimiter(ratelimit.Config{Limit: 3, Window: time.Minute})
	m := metrics.New()
	env := newTestEnv(t, false, Options{Limiter: limiter, Metrics: m})
	token, _ := env.signup(t, "a@b.co")
	answers := map[string]any{"answers": []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3}}

	for i := 0; i < 3; i++ {
		rec, body := env.do(t, http.MethodPost, "/api/score", token, answers)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 60.0, body["score"])
		assert.Equal(t, "+18", body["comparison"])
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec, body := env.do(t, http.MethodPost, "/api/score", token, answers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// routes outside the limited group are unaffected
	rec, _ = env.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `invisible_load_ratelimit_rejections_total{limiter="api"} 1`)
}

func TestScoreValidation(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	token, _ := env.signup(t, "a@b.co")

	rec, body := env.do(t, http.MethodPost, "/api/score", token, map[string]any{"answers": []float64{1, 2, 3}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "10 answers required", body["error"])

	rec, _ = env.do(t, http.MethodPost, "/api/score", token, map[string]any{"answers": []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 6}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/score", token, map[string]any{"answers": []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20.0, body["score"])
	assert.Equal(t, "-22", body["comparison"])

	rec, body = env.do(t, http.MethodGet, "/api/score/history", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, true, body["requiresPremium"])
}

func TestResetRoutes(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	token, _ := env.signup(t, "a@b.co")

	rec, body := env.do(t, http.MethodPost, "/api/reset", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["totalResets"])

	rec, body = env.do(t, http.MethodPost, "/api/reset", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, true, body["requiresPremium"])

	rec, body = env.do(t, http.MethodGet, "/api/reset/count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["count"])
}

func TestFavoriteRoutes(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	token, userID := env.signup(t, "a@b.co")
	otherToken, otherID := env.signup(t, "b@b.co")

	// Free callers see the upgrade prompt even when the body is incomplete.
	rec, body := env.do(t, http.MethodPost, "/api/favorites", token, map[string]string{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, true, body["requiresPremium"])
	rec, body = env.do(t, http.MethodPost, "/api/scripts", token, map[string]string{"category": "neighbours"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, true, body["requiresPremium"])

	env.store.SetPremium(userID, true)
	env.store.SetPremium(otherID, true)

	rec, body = env.do(t, http.MethodPost, "/api/favorites", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/favorites", token, map[string]string{"type": "script", "category": "kids", "content": "Shoes on, please."})
	require.Equal(t, http.StatusOK, rec.Code)
	favID := body["id"].(string)

	rec, _ = env.do(t, http.MethodDelete, "/api/favorites/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = env.do(t, http.MethodDelete, "/api/favorites/"+favID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	rec, body = env.do(t, http.MethodDelete, "/api/favorites/"+favID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = env.do(t, http.MethodGet, "/api/favorites", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestPaymentsNotConfigured(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	token, _ := env.signup(t, "a@b.co")

	rec, body := env.do(t, http.MethodPost, "/api/purchases/checkout-session", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "PAYMENTS_NOT_CONFIGURED", body["code"])

	rec, body = env.do(t, http.MethodPost, "/webhooks/stripe", "", "{}")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "PAYMENTS_NOT_CONFIGURED", body["code"])
}

func TestCheckoutWebhookAndVerify(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	token, userID := env.signup(t, "a@b.co")

	rec, body := env.do(t, http.MethodPost, "/api/purchases/checkout-session", token, nil, "Origin", "https://app.example")
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := body["sessionId"].(string)
	assert.NotEmpty(t, body["url"])
	require.Len(t, env.payments.Created, 1)
	assert.Equal(t, "https://app.example/payment-cancelled", env.payments.Created[0].CancelURL)

	payload := testutil.WebhookPayload("evt_9", ports.EventCheckoutSessionComplete, sessionID)
	env.payments.MarkPaid(sessionID, "cus_9")

	rec, body = env.do(t, http.MethodPost, "/webhooks/stripe", "", payload, "Stripe-Signature", "t=1,v1=bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid signature", body["error"])

	for i := 0; i < 2; i++ {
		rec, body = env.do(t, http.MethodPost, "/webhooks/stripe", "", payload, "Stripe-Signature", testutil.ValidSignature)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["received"])
	}
	user, _ := env.store.User(userID)
	assert.True(t, user.IsPremium)

	rec, body = env.do(t, http.MethodPost, "/api/purchases/checkout-session", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_PREMIUM", body["code"])
	assert.Equal(t, "Already premium", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/verify-purchase", token, map[string]string{"sessionId": sessionID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["isPremium"])

	rec, _ = env.do(t, http.MethodPost, "/api/verify-purchase", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, false, Options{AllowedOrigins: []string{"https://app.example"}})

	rec, _ := env.do(t, http.MethodOptions, "/api/brain-dump", "", nil, "Origin", "https://app.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec, _ = env.do(t, http.MethodOptions, "/api/brain-dump", "", nil, "Origin", "https://evil.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = env.do(t, http.MethodGet, "/health", "", nil, "Origin", "https://app.example")
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthThrottle(t *testing.T) {
	env := newTestEnv(t, false, Options{AuthThrottlePerMinute: 2, AuthThrottleBurst: 2})
	creds := map[string]string{"email": "a@b.co", "password": "secret1"}

	rec, _ := env.do(t, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", body["code"])

	wrong := map[string]string{"email": "a@b.co", "password": "guess"}
	for i := 0; i < 20; i++ {
		rec, _ = env.do(t, http.MethodPost, "/api/auth/login", "", wrong, "X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "attempt %d", i)
	}
}

func TestAuthThrottleBehindTrustedProxy(t *testing.T) {
	// httptest requests arrive from 192.0.2.1.
	env := newTestEnv(t, false, Options{
		AuthThrottlePerMinute: 1,
		AuthThrottleBurst:     1,
		TrustedProxies:        []netip.Prefix{netip.MustParsePrefix("192.0.2.1/32")},
	})
	wrong := map[string]string{"email": "a@b.co", "password": "guess"}

	rec, _ := env.do(t, http.MethodPost, "/api/auth/login", "", wrong, "X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = env.do(t, http.MethodPost, "/api/auth/login", "", wrong, "X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A client-supplied prefix does not buy a fresh bucket.
	rec, _ = env.do(t, http.MethodPost, "/api/auth/login", "", wrong, "X-Forwarded-For", "6.6.6.6, 203.0.113.9")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/auth/login", "", wrong, "X-Forwarded-For", "203.0.113.10")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
