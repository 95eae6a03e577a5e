package http

import (
	"net/http"
	"net/netip"

	"github.com/Shoiba023/invisible-load-reducer/internal/application"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/go-chi/chi/v5"
)

// Observability is the metrics surface the router needs.
type Observability interface {
	Instrument(next http.Handler) http.Handler
	Handler() http.Handler
	ObserveRateLimited(limiter string)
}

type Options struct {
	Limiter               ports.RateLimiter
	Metrics               Observability
	AllowedOrigins        []string
	AuthThrottlePerMinute int
	AuthThrottleBurst     int
	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	TrustedProxies        []netip.Prefix
}

// Handler is the HTTP adapter entrypoint for the wellness API.
type Handler struct {
	service        *application.Service
	limiter        ports.RateLimiter
	metrics        Observability
	allowedOrigins map[string]struct{}
	authThrottle   *ipThrottle
	clientIP       clientIPResolver
}

func NewHandler(service *application.Service, opts Options) *Handler {
	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		if o != "" {
			origins[o] = struct{}{}
		}
	}
	return &Handler{
		service:        service,
		limiter:        opts.Limiter,
		metrics:        opts.Metrics,
		allowedOrigins: origins,
		authThrottle:   newIPThrottle(opts.AuthThrottlePerMinute, opts.AuthThrottleBurst),
		clientIP:       clientIPResolver{trusted: opts.TrustedProxies},
	}
}

// NewRouter registers routes and the middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	if handler.metrics != nil {
		r.Use(handler.metrics.Instrument)
	}
	r.Use(loggingMiddleware)
	r.Use(handler.corsMiddleware)

	r.Get("/health", handler.health)
	if handler.metrics != nil {
		r.Method(http.MethodGet, "/metrics", handler.metrics.Handler())
	}
	r.Post("/webhooks/stripe", handler.stripeWebhook)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(handler.authThrottleMiddleware)
			r.Post("/auth/signup", handler.signup)
			r.Post("/auth/login", handler.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/auth/logout", handler.logout)
			r.Get("/me", handler.me)
			r.Get("/brain-dump/history", handler.brainDumpHistory)
			r.Post("/reset", handler.completeReset)
			r.Get("/reset/count", handler.resetCount)
			r.Get("/score/history", handler.scoreHistory)
			r.Post("/favorites", handler.createFavorite)
			r.Get("/favorites", handler.listFavorites)
			r.Delete("/favorites/{id}", handler.deleteFavorite)
			r.Post("/purchases/checkout-session", handler.createCheckoutSession)
			r.Post("/verify-purchase", handler.verifyPurchase)

			r.Group(func(r chi.Router) {
				r.Use(handler.rateLimitMiddleware)
				r.Post("/brain-dump", handler.brainDump)
				r.Post("/scripts", handler.scripts)
				r.Post("/score", handler.submitScore)
			})
		})
	})

	return r
}
