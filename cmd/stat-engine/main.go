package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/courtline/stat-engine/internal/awards"
	"github.com/courtline/stat-engine/internal/cache"
	"github.com/courtline/stat-engine/internal/config"
	"github.com/courtline/stat-engine/internal/consumer"
	"github.com/courtline/stat-engine/internal/handlers"
	"github.com/courtline/stat-engine/internal/processor"
	"github.com/courtline/stat-engine/internal/publisher"
	"github.com/courtline/stat-engine/internal/recalc"
	"github.com/courtline/stat-engine/internal/store"
)

func main() {
	fmt.Println("=== Courtline Stat Engine v0 ===")

	// Load .env if present; real environments set variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("⚠️  Error loading .env file: %v\n", err)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	weekStart, _ := cfg.WeekStart()

	// Load and validate the award catalog before anything else runs: a
	// malformed rule must fail at startup, not during evaluation.
	catalog, err := awards.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		fmt.Printf("❌ Failed to load award catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded award catalog %s (%d rules)\n", catalog.Version, len(catalog.Rules))

	// Connect to Postgres
	storeClient, err := store.NewClient(cfg.DatabaseDSN)
	if err != nil {
		fmt.Printf("❌ Failed to connect to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer storeClient.Close()
	fmt.Println("✓ Connected to Postgres")

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		fmt.Printf("❌ Failed to parse Redis URL: %v\n", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to Redis")

	// Initialize components
	cacheWriter := cache.NewWriter(redisClient)
	streamConsumer := consumer.NewStreamConsumer(redisClient, cfg.ConsumerID, cfg.GroupName)
	streamPublisher := publisher.NewStreamPublisher(redisClient)
	proc := processor.NewProcessor(streamConsumer, streamPublisher, storeClient, cacheWriter, weekStart)
	engine := awards.NewEngine(catalog, storeClient, storeClient)
	recalculator := recalc.NewRecalculator(redisClient, engine, storeClient, storeClient, cacheWriter, cfg.RecalcInterval)
	handler := handlers.NewHandler(storeClient, cacheWriter, engine)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handler.HealthCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games/{game_id}/boxscore", handler.HandleGetBoxScore)
		r.Get("/seasons/{season_id}/players/{player_id}", handler.HandleGetPlayerSeason)
		r.Get("/seasons/{season_id}/leaderboard", handler.HandleGetLeaderboard)
		r.Get("/seasons/{season_id}/awards", handler.HandleGetAwards)
		r.Post("/recalculate", handler.HandleRecalculate)
	})

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start workers
	workCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 2)
	go func() {
		errChan <- proc.Start(workCtx)
	}()
	go func() {
		errChan <- recalculator.Start(workCtx)
	}()

	// Metrics reporter
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-workCtx.Done():
				return
			case <-ticker.C:
				processed, errors := proc.GetMetrics()
				fmt.Printf("📊 Metrics: processed=%d errors=%d\n", processed, errors)
			}
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("✓ Stat engine listening on %s\n", cfg.Port)
		fmt.Printf("  Consumer ID: %s\n", cfg.ConsumerID)
		fmt.Printf("  Week start: %s\n", weekStart)
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal or fatal error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)

	case err := <-errChan:
		if err != nil {
			fmt.Printf("❌ Worker error: %v\n", err)
			os.Exit(1)
		}

	case sig := <-shutdown:
		fmt.Printf("\n⚠️  Received signal: %v\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("⚠️  Graceful shutdown failed: %v\n", err)
			if err := srv.Close(); err != nil {
				fmt.Printf("❌ Could not stop server: %v\n", err)
			}
		}
	}

	fmt.Println("✓ Shutdown complete")
}
