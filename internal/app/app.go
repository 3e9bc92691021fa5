package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aphidet6/earth-bettashop/internal/auth"
	"github.com/Aphidet6/earth-bettashop/internal/config"
	handler "github.com/Aphidet6/earth-bettashop/internal/handler/http"
	"github.com/Aphidet6/earth-bettashop/internal/oauth"
	"github.com/Aphidet6/earth-bettashop/internal/repository/postgres"
	"github.com/Aphidet6/earth-bettashop/internal/service"
	"github.com/Aphidet6/earth-bettashop/migrations"
	"github.com/Aphidet6/earth-bettashop/pkg/database"
	"github.com/Aphidet6/earth-bettashop/pkg/health"
	"github.com/Aphidet6/earth-bettashop/pkg/middleware"
)

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	pool         *pgxpool.Pool
	loginLimiter *middleware.RateLimiter
	httpServer   *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Build the dependency graph.
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenLifetime)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	authService := service.NewAuthService(userRepo, tokenManager, logger)
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, logger)
	linker := service.NewProviderLinker(userRepo, tokenManager, logger)

	// OAuth providers, only those with configured credentials.
	var providers []*oauth.Provider
	for _, creds := range cfg.EnabledProviders() {
		provider, err := oauth.NewProvider(creds)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("configure oauth provider: %w", err)
		}
		providers = append(providers, provider)
		logger.Info("oauth provider enabled", slog.String("provider", creds.Name))
	}
	states := oauth.NewStateSigner(cfg.JWTSecret, 10*time.Minute)

	// Per-IP login rate limiter.
	loginLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Window:          cfg.LoginRateWindow,
		Max:             cfg.LoginRateMax,
		CleanupInterval: 5 * time.Minute,
	})

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		AuthService:    authService,
		ProductService: productService,
		OrderService:   orderService,
		Linker:         linker,
		Providers:      providers,
		States:         states,
		LoginLimiter:   loginLimiter,
		HealthHandler:  healthHandler,
		FrontendURL:    cfg.FrontendURL,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		pool:         pool,
		loginLimiter: loginLimiter,
		httpServer:   httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: drain in-flight HTTP requests,
// stop the rate limiter's cleanup goroutine, then close the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.loginLimiter.Stop()
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
