// Command notify runs one notification pass over all subscriptions.
// It is meant to be invoked once per day by cron or a similar scheduler.
package main

import (
	"context"
	"flag"
	"log"

	"diningwatch/internal/config"
	"diningwatch/internal/db"
	"diningwatch/internal/email"
	"diningwatch/internal/engine"
	"diningwatch/internal/menu"
	"diningwatch/internal/metrics"
	"diningwatch/internal/notify"
)

func main() {
	force := flag.Bool("force", false, "re-notify subscribers already notified today")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	halls, err := config.LoadHalls(cfg.HallsFile)
	if err != nil {
		log.Fatalf("Failed to load hall table: %v", err)
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	metrics.Init()

	// Redis lets repeated cron runs within a day share one fetch per hall;
	// without it the cache only lives for this process.
	var store menu.Store
	if cfg.RedisURL != "" {
		redisStore := menu.NewRedisStore(cfg.RedisURL, cfg.CacheRetentionDays)
		defer redisStore.Close()
		store = redisStore
	} else {
		store = menu.NewMemoryStore(cfg.CacheRetentionDays)
	}

	fetcher := menu.NewFetcher(halls, store, cfg.FetchTimeout)
	matcher := engine.New(fetcher)
	mailer := email.NewService(cfg)
	templates := email.NewTemplates(cfg)

	dispatcher := notify.NewDispatcher(database, matcher, mailer, templates)
	dispatcher.Force = *force

	if err := dispatcher.Run(ctx); err != nil {
		log.Fatalf("Notification run failed: %v", err)
	}
}
