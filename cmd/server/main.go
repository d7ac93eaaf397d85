package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/stockify/stockify-server/internal/clerk"
	"github.com/stockify/stockify-server/internal/config"
	"github.com/stockify/stockify-server/internal/database"
	"github.com/stockify/stockify-server/internal/handler"
	"github.com/stockify/stockify-server/internal/middleware"
	"github.com/stockify/stockify-server/internal/queue"
	"github.com/stockify/stockify-server/internal/repository"
	"github.com/stockify/stockify-server/internal/router"
	"github.com/stockify/stockify-server/internal/service"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	expenses := repository.NewExpenseRepo(db)

	// The verifier is nil when no JWKS URL is configured; RequireAuth
	// then answers 500 on protected routes instead of letting anything
	// through.
	var verifier middleware.TokenVerifier
	if cfg.ClerkJWKSURL != "" {
		v, err := clerk.NewVerifier(cfg.ClerkJWKSURL, 5*time.Minute)
		if err != nil {
			log.Fatalf("token verifier: %v", err)
		}
		verifier = v
	} else {
		log.Printf("CLERK_JWKS_URL not set; authenticated routes will refuse requests")
	}

	provider := clerk.NewClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey)
	resolver := service.NewRoleResolver(users, provider, cfg.AdminUserID)
	sync := service.NewSyncClient(cfg.SyncURL, cfg.SyncSecret)

	// Redis backs the response cache and rate limiter; both degrade to
	// pass-throughs when the connection cannot be established.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	// Background consumer draining the user.events queue into the
	// audit log. Runs a reconnect loop for the life of the process.
	go func() {
		if err := queue.StartUserEventConsumer(); err != nil {
			log.Printf("user event consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		SyncSecret: cfg.SyncSecret,
		Users:      handler.NewUserHandler(users, sync, cfg.AdminUserID),
		Webhook:    handler.NewWebhookHandler(cfg.ClerkWebhookSecret, users, sync, cfg.AdminUserID),
		Products:   handler.NewProductHandler(products),
		Expenses:   handler.NewExpenseHandler(expenses),
		Dashboard:  handler.NewDashboardHandler(products, expenses, users),
		Auth:       middleware.RequireAuth(cfg.ClerkSecretKey, verifier, resolver),
		Cache:      middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
