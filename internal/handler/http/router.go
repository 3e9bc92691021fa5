package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/internal/oauth"
	"github.com/Aphidet6/earth-bettashop/internal/service"
	"github.com/Aphidet6/earth-bettashop/pkg/health"
	"github.com/Aphidet6/earth-bettashop/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	AuthService    *service.AuthService
	ProductService *service.ProductService
	OrderService   *service.OrderService
	Linker         *service.ProviderLinker
	Providers      []*oauth.Provider
	States         *oauth.StateSigner
	LoginLimiter   *middleware.RateLimiter
	HealthHandler  *health.Handler
	FrontendURL    string
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Health check endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	oauthHandler := NewOAuthHandler(deps.Providers, deps.States, deps.Linker, deps.FrontendURL, deps.Logger)
	productHandler := NewProductHandler(deps.ProductService, deps.Logger)
	orderHandler := NewOrderHandler(deps.OrderService, deps.Logger)

	authenticate := middleware.Auth(deps.AuthService.Authenticate)

	// Auth endpoints (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.With(deps.LoginLimiter.Middleware()).Post("/login", authHandler.Login)

		// Provider routes are registered only when at least one provider is
		// configured.
		if len(deps.Providers) > 0 {
			r.Get("/{provider}", oauthHandler.Redirect)
			r.Get("/{provider}/callback", oauthHandler.Callback)
		}

		r.With(authenticate).Get("/me", authHandler.Me)
	})

	// Product catalog
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Get("/{id}", productHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRole(domain.RoleSeller))

			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
	})

	// Orders
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.List)
		r.Get("/{id}", orderHandler.Get)

		r.With(middleware.RequireRole(domain.RoleAdmin)).Put("/{id}", orderHandler.UpdateStatus)
	})

	return r
}
