package services

import (
	"context"
	"net/url"
	"time"

	"ncpa-assist/internal/config"
	"ncpa-assist/internal/crawler"
	"ncpa-assist/internal/logger"
	"ncpa-assist/internal/vectorstore"
)

// RunIngestion executes one full crawl-and-index pass over the configured
// site. Each run builds a fresh fetch layer so cookies and politeness
// state never leak between runs.
func RunIngestion(ctx context.Context, cfg *config.Config, store vectorstore.Store, embedder Embedder) (*crawler.Report, error) {
	root, err := url.Parse(cfg.SiteRoot)
	if err != nil {
		return nil, err
	}

	fetcher, err := crawler.NewFetcher(crawler.FetchConfig{
		AllowedHost: root.Hostname(),
		Timeout:     time.Duration(cfg.FetchTimeout) * time.Second,
		Delay:       time.Duration(cfg.CrawlDelayMS) * time.Millisecond,
		UserAgent:   cfg.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	archive, err := crawler.NewArchive(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	indexer := NewIndexer(store, embedder, cfg.ChunkSize, cfg.ChunkOverlap, cfg.UpsertBatchSize)
	frontier := crawler.NewFrontier(crawler.Config{
		SiteRoot: cfg.SiteRoot,
		MaxPages: cfg.CrawlMaxPages,
	}, fetcher, archive, indexer)

	report, err := frontier.Run(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("ingestion run complete",
		"run_id", report.RunID,
		"fetched", report.Fetched,
		"indexed", report.Indexed,
		"skipped", report.Skipped,
		"chunks", report.Chunks,
		"duration", report.Finished.Sub(report.Started).String())
	return report, nil
}
