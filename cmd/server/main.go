package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"diningwatch/internal/config"
	"diningwatch/internal/db"
	"diningwatch/internal/email"
	"diningwatch/internal/engine"
	"diningwatch/internal/handlers"
	"diningwatch/internal/jobs"
	"diningwatch/internal/menu"
	"diningwatch/internal/metrics"
	"diningwatch/internal/notify"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	halls, err := config.LoadHalls(cfg.HallsFile)
	if err != nil {
		log.Fatalf("Failed to load hall table: %v", err)
	}
	log.Printf("Watching %d dining halls", len(halls))

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	metrics.Init()

	// Daily cache: Redis when configured, in-process otherwise
	var store menu.Store
	if cfg.RedisURL != "" {
		redisStore := menu.NewRedisStore(cfg.RedisURL, cfg.CacheRetentionDays)
		defer redisStore.Close()
		store = redisStore
		log.Println("Daily cache backed by Redis")
	} else {
		store = menu.NewMemoryStore(cfg.CacheRetentionDays)
	}

	fetcher := menu.NewFetcher(halls, store, cfg.FetchTimeout)
	matcher := engine.New(fetcher)
	mailer := email.NewService(cfg)
	templates := email.NewTemplates(cfg)

	// Initialize handlers
	subscriptionHandler := handlers.NewSubscriptionHandler(database, cfg, mailer, templates, halls)
	healthHandler := handlers.NewHealthHandler(database)

	// Initialize Fiber
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"status": "error",
				"error":  message,
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())

	app.Post("/subscribe", subscriptionHandler.Subscribe)
	app.Post("/unsubscribe", subscriptionHandler.Unsubscribe)
	app.Get("/healthz", healthHandler.Healthz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Optional in-process dispatcher; most deployments run cmd/notify from cron
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	if cfg.NotifyInterval > 0 {
		dispatcher := notify.NewDispatcher(database, matcher, mailer, templates)
		notifier := jobs.NewNotifier(dispatcher, cfg.NotifyInterval)
		go notifier.Start(jobCtx)
	}

	// Graceful shutdown
	go func() {
		if err := app.Listen(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelJobs()
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
