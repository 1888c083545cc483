package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ncpa-assist/internal/ai"
	"ncpa-assist/internal/config"
	"ncpa-assist/internal/crawler"
	"ncpa-assist/internal/logger"
	"ncpa-assist/internal/telemetry"
	"ncpa-assist/internal/vectorstore"
	"ncpa-assist/internal/vectorstore/memory"
	"ncpa-assist/internal/vectorstore/mongovec"
	"ncpa-assist/middleware"
	"ncpa-assist/routes"
	"ncpa-assist/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("ncpa-assist", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
	}

	ctx := context.Background()

	// Vector store backend
	var store vectorstore.Store
	switch cfg.VectorBackend {
	case "mongo":
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		}()
		store = mongovec.NewStore(mongovec.Config{
			Client:     mongoClient,
			Database:   cfg.DBName,
			Collection: cfg.VectorCollection,
			IndexName:  cfg.VectorIndexName,
			Timeout:    time.Duration(cfg.StoreTimeout) * time.Second,
			BatchSize:  cfg.UpsertBatchSize,
		})
	case "memory":
		store = memory.NewStore()
	}
	if err := store.EnsureReady(ctx, cfg.VectorDimensions); err != nil {
		logger.Warn("vector store readiness check failed", "error", err)
	}

	// Gemini clients
	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create embedding client:", err)
	}
	defer embedder.Close()

	generator, err := ai.NewGenerationClient(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create generation client:", err)
	}
	defer generator.Close()

	// Optional Redis answer cache and rate limiting
	var cache *services.AnswerCache
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = config.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("redis unavailable, answer cache and rate limiting disabled", "error", err)
			rdb = nil
		} else {
			cache = services.NewAnswerCache(rdb, time.Duration(cfg.AnswerCacheTTL)*time.Second)
			defer rdb.Close()
		}
	}

	retriever := services.NewRetriever(embedder, store, services.NewKeywordClassifier(), cfg.RetrieveUnique, cfg.RetrieveFetch)
	composer := services.NewComposer(generator)
	answers := services.NewAnswerService(retriever, composer, cache)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("ncpa-assist"))
	}
	router.Use(middleware.RequestIDMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Setup routes
	routes.SetupRoutes(router, answers)

	// Scheduled re-ingestion
	if cfg.IngestCron != "" {
		scheduler := crawler.NewScheduler()
		err := scheduler.ScheduleCron("reingest", cfg.IngestCron, func() error {
			_, err := services.RunIngestion(context.Background(), cfg, store, embedder)
			return err
		})
		if err != nil {
			logger.Warn("failed to schedule re-ingestion", "error", err)
		} else {
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
