package main

import (
	"context"
	"log"
	"time"

	"ncpa-assist/internal/ai"
	"ncpa-assist/internal/config"
	"ncpa-assist/internal/logger"
	"ncpa-assist/internal/vectorstore"
	"ncpa-assist/internal/vectorstore/memory"
	"ncpa-assist/internal/vectorstore/mongovec"
	"ncpa-assist/services"
)

// One-shot ingestion: crawl the configured site, extract and segment its
// content, embed every chunk and upsert into the vector store. Safe to
// re-run; chunk IDs are content-addressed so re-ingestion overwrites in
// place.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	ctx := context.Background()

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
		logger.Warn("memory vector store selected, indexed data will not persist")
	}
	if err := store.EnsureReady(ctx, cfg.VectorDimensions); err != nil {
		logger.Warn("vector store readiness check failed", "error", err)
	}

	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create embedding client:", err)
	}
	defer embedder.Close()

	report, err := services.RunIngestion(ctx, cfg, store, embedder)
	if err != nil {
		log.Fatal("Ingestion failed:", err)
	}

	for _, page := range report.Pages {
		if page.Status == "skipped" {
			logger.Debug("skipped during ingest", "url", page.URL, "reason", page.Reason)
		}
	}
	logger.Info("done ingest", "run_id", report.RunID, "indexed", report.Indexed, "chunks", report.Chunks)
}
