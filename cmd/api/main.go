// Package main is the entrypoint for the North Pole Direct API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/npdirect/npdirect/internal/auth"
	"github.com/npdirect/npdirect/internal/cache"
	"github.com/npdirect/npdirect/internal/config"
	"github.com/npdirect/npdirect/internal/handler"
	"github.com/npdirect/npdirect/internal/metrics"
	"github.com/npdirect/npdirect/internal/middleware"
	"github.com/npdirect/npdirect/internal/payments"
	"github.com/npdirect/npdirect/internal/repository"
	"github.com/npdirect/npdirect/internal/santa"
	"github.com/npdirect/npdirect/internal/server"
)

func main() {
	ctx := context.Background()

	// In development a .env file stands in for real environment config.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Apply schema migrations before opening the pool.
	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Metrics
	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(registry)

	// External collaborators and services
	stripeClient := payments.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, payments.Pack{
		Credits:    cfg.CreditPackSize,
		PriceCents: cfg.CreditPackPriceCents,
	})
	mailer := auth.NewLogMailer(logger)
	authService := auth.NewService(repo, cacheClient, mailer, logger, cfg.LoginTokenTTL, cfg.SessionTTL)
	simulator := santa.NewSimulator(cfg.SantaDelay)
	baseURL := handler.NewBaseURLResolver(cfg.BaseURL, cfg.PublicHost)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	loginHandler := handler.NewLoginHandler(authService, baseURL, logger, recorder)
	checkoutHandler := handler.NewCheckoutHandler(stripeClient, baseURL, logger, recorder)
	webhookHandler := handler.NewWebhookHandler(stripeClient, repo, logger, recorder)
	chatHandler := handler.NewChatHandler(repo, simulator, logger, recorder)
	creditsHandler := handler.NewCreditsHandler(repo, logger)

	r := setupRouter(routerDeps{
		base:     h,
		health:   healthHandler,
		login:    loginHandler,
		checkout: checkoutHandler,
		webhook:  webhookHandler,
		chat:     chatHandler,
		credits:  creditsHandler,
		metrics:  metrics.Handler(registry),
		auth:     authService,
		cache:    cacheClient,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("database", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"credit_pack_size", cfg.CreditPackSize,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base     *handler.Handler
	health   *handler.HealthHandler
	login    *handler.LoginHandler
	checkout *handler.CheckoutHandler
	webhook  *handler.WebhookHandler
	chat     *handler.ChatHandler
	credits  *handler.CreditsHandler
	metrics  http.Handler
	auth     *auth.Service
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Prometheus metrics
	r.Method("GET", "/metrics", deps.metrics)

	// Passwordless login (no auth required)
	r.Route("/auth", func(r chi.Router) {
		r.Use(chimiddleware.RequestSize(deps.cfg.MaxRequestBodySize))
		r.Post("/login", deps.login.Start)
		r.Get("/verify", deps.login.Verify)
		r.Post("/logout", deps.login.Logout)
	})

	// Payment webhook; the provider's signature is the only auth here.
	r.Post("/webhooks/stripe", deps.webhook.Receive)

	authCfg := middleware.AuthConfig{
		Logger: deps.logger,
		Auth:   deps.auth,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Limiter: deps.cache,
		Enabled: deps.cfg.RateLimitChatEnabled,
		RPM:     deps.cfg.RateLimitChatRPM,
		Burst:   deps.cfg.RateLimitChatBurst,
	}

	// API v1 routes (require a session)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.RequestSize(deps.cfg.MaxRequestBodySize))
		r.Use(middleware.Auth(authCfg))

		r.Post("/checkout", deps.checkout.Create)
		r.Get("/credits", deps.credits.Get)
		r.With(middleware.RateLimitChat(rateLimitCfg)).Post("/chat", deps.chat.Turn)
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
