package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"reviewpilot/internal/cache"
	"reviewpilot/internal/config"
	"reviewpilot/internal/logger"
	"reviewpilot/internal/repository"
	"reviewpilot/internal/service"
	"reviewpilot/internal/transport/rest"
	"reviewpilot/internal/transport/ws"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// @title ReviewPilot Suggestions API
// @version 1.0
// @description Pre-written review suggestions served from a per-business AI-generated pool
// @host localhost:8080
// @BasePath /v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()

	ctx := context.Background()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	log.Info("AI config",
		"reviewsModel", aiConfig.Models.Reviews,
		"timeoutMs", aiConfig.TimeoutMS,
		"apiKeySet", aiConfig.IsEnabled(),
	)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}
	log.Info("Connected to MongoDB", "database", cfg.MongoDB)

	db := mongoClient.Database(cfg.MongoDB)

	// Initialize repositories
	reviewRepo := repository.NewReviewRepo(db)
	businessRepo := repository.NewBusinessRepo(db)
	locationRepo := repository.NewLocationRepo(db)

	indexCtx, indexCancel := context.WithTimeout(ctx, 10*time.Second)
	defer indexCancel()
	if err := reviewRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("Failed to create review pool indexes", "error", err)
	}

	// Text generation
	var textClient service.TextClient
	if aiConfig.IsEnabled() {
		gemini, err := service.NewGeminiClient(ctx, aiConfig)
		if err != nil {
			log.Fatal("Failed to create Gemini client", "error", err)
		}
		textClient = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, serving canned offline reviews")
		textClient = service.OfflineClient{}
	}
	generator := service.NewReviewGenerator(textClient)

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	poolSvc := service.NewReviewPoolService(reviewRepo, businessRepo, locationRepo, generator, service.PoolSettings{
		BatchSize:  cfg.Pool.BatchSize,
		SampleSize: cfg.Pool.SampleSize,
		LockWait:   cfg.Pool.LockWait,
	}, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	poolSvc.SetBroadcaster(wsHub)

	// Redis is only needed for the advisory pool lock
	if cfg.Pool.LockEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis", "addr", cfg.RedisAddr, "error", err)
		}
		poolSvc.SetPoolLock(cache.NewPoolLock(rdb, cfg.Pool.LockTTL))
		log.Info("Pool lock enabled", "redis", cfg.RedisAddr, "ttl", cfg.Pool.LockTTL)
	}

	// Create router with container
	container := &rest.Container{
		ReviewPool:         poolSvc,
		AuthService:        authSvc,
		WSHub:              wsHub,
		Logger:             log,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info("Server starting",
			"port", cfg.HTTPPort,
			"batchSize", cfg.Pool.BatchSize,
			"sampleSize", cfg.Pool.SampleSize,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
