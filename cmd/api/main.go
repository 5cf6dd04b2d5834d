package main

import (
	"log"
	"time"

	"shadowsync/internal/api"
	"shadowsync/internal/config"
	"shadowsync/internal/database"
	"shadowsync/internal/events"
	"shadowsync/internal/logger"
	"shadowsync/internal/ratelimit"
	"shadowsync/internal/services/commerce"
	"shadowsync/internal/store"
	"shadowsync/internal/syncer"
	"shadowsync/internal/webhooks"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// One shared limiter guards the platform quota across the batch path and
	// everything else; never one bucket per caller.
	limiter := ratelimit.NewPerMinute(cfg.RateLimitCapacity, cfg.RateLimitPerMinute)

	shadowStore := store.New(db.DB, logger)
	client := commerce.NewClient(cfg.ShopDomain, cfg.CommerceAccessToken, limiter, logger)
	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	orchestrator := syncer.NewOrchestrator(
		client,
		shadowStore,
		limiter,
		publisher,
		logger,
		cfg.SyncChunkSize,
		time.Duration(cfg.SyncChunkPauseSeconds)*time.Second,
	)

	verifier := webhooks.NewVerifier(cfg.WebhookSecret, cfg.ShopDomain)
	dispatcher := webhooks.NewDispatcher(shadowStore, publisher, logger)

	// Initialize API server
	server := api.New(cfg, logger, shadowStore, orchestrator, verifier, dispatcher)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
