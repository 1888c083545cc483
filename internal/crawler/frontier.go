package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ncpa-assist/internal/logger"
	"ncpa-assist/internal/urlnorm"
	"ncpa-assist/models"
)

// DocumentSink receives extracted document text for segmentation,
// embedding and storage. It returns the number of chunks indexed.
type DocumentSink interface {
	IndexDocument(ctx context.Context, sourceURL string, sourceType models.SourceType, text, pdfPath string) (int, error)
}

// Page outcome statuses in a crawl report.
const (
	StatusIndexed = "indexed"
	StatusSkipped = "skipped"
)

// PageResult is the per-document outcome of a crawl run. Failures are
// recorded here and the crawl continues; nothing is silently dropped.
type PageResult struct {
	URL    string            `json:"url"`
	Kind   models.SourceType `json:"kind"`
	Status string            `json:"status"`
	Reason string            `json:"reason,omitempty"`
	Chunks int               `json:"chunks,omitempty"`
}

// Report summarizes one ingestion run.
type Report struct {
	RunID    string       `json:"run_id"`
	SiteRoot string       `json:"site_root"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Fetched  int          `json:"fetched"`
	Indexed  int          `json:"indexed"`
	Skipped  int          `json:"skipped"`
	Chunks   int          `json:"chunks"`
	Pages    []PageResult `json:"pages"`
}

func (r *Report) indexed(u string, kind models.SourceType, chunks int) {
	r.Indexed++
	r.Chunks += chunks
	r.Pages = append(r.Pages, PageResult{URL: u, Kind: kind, Status: StatusIndexed, Chunks: chunks})
}

func (r *Report) skipped(u string, kind models.SourceType, reason string) {
	r.Skipped++
	r.Pages = append(r.Pages, PageResult{URL: u, Kind: kind, Status: StatusSkipped, Reason: reason})
}

// Config bounds a crawl run. MaxPages of 0 means the crawl is limited only
// by the visited set.
type Config struct {
	SiteRoot   string
	MaxPages   int
	MinTextLen int
}

// Frontier drives a breadth-first traversal of the site graph. It is
// single-threaded by design: one fetch, extraction and indexing step
// completes before the next URL is dequeued.
type Frontier struct {
	siteRoot   string
	maxPages   int
	minTextLen int
	fetcher    *Fetcher
	archive    *Archive
	sink       DocumentSink
}

func NewFrontier(cfg Config, fetcher *Fetcher, archive *Archive, sink DocumentSink) *Frontier {
	minText := cfg.MinTextLen
	if minText <= 0 {
		minText = 50
	}
	return &Frontier{
		siteRoot:   cfg.SiteRoot,
		maxPages:   cfg.MaxPages,
		minTextLen: minText,
		fetcher:    fetcher,
		archive:    archive,
		sink:       sink,
	}
}

// Run crawls from the site root until the frontier queue is empty or the
// page budget is exhausted. Each URL is visited at most once; per-document
// failures are recorded in the report and never abort the run.
func (f *Frontier) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:    uuid.NewString(),
		SiteRoot: f.siteRoot,
		Started:  time.Now(),
	}

	root := urlnorm.Normalize(f.siteRoot)
	queue := []string{root}
	seen := map[string]bool{root: true} // queued or visited
	visited := map[string]bool{}        // actually dequeued and fetched

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, err
		}

		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		if f.maxPages > 0 && report.Fetched >= f.maxPages {
			logger.Warn("crawl page budget reached", "max_pages", f.maxPages, "pending", len(queue)+1)
			break
		}
		visited[current] = true
		report.Fetched++

		body, contentType, err := f.fetcher.Fetch(current)
		if err != nil {
			logger.Warn("skipping page", "url", current, "error", err)
			report.skipped(current, models.SourceHTML, "fetch failed: "+err.Error())
			continue
		}
		logger.Info("crawling", "url", current)

		if contentType != "" && !strings.Contains(contentType, "html") {
			report.skipped(current, models.SourceHTML, "not an HTML page: "+contentType)
			continue
		}

		if _, err := f.archive.SaveHTML(current, body); err != nil {
			logger.Warn("failed to archive page", "url", current, "error", err)
		}

		base, err := url.Parse(current)
		if err != nil {
			report.skipped(current, models.SourceHTML, "unparseable URL")
			continue
		}

		mainText, links, pdfLinks := ExtractHTML(body, base, f.siteRoot)

		for _, pdfLink := range pdfLinks {
			canonical := urlnorm.Normalize(pdfLink)
			if seen[canonical] {
				continue
			}
			seen[canonical] = true
			visited[canonical] = true
			if f.maxPages > 0 && report.Fetched >= f.maxPages {
				report.skipped(canonical, models.SourcePDF, "page budget reached")
				continue
			}
			report.Fetched++
			f.ingestPDF(ctx, canonical, report)
		}

		for _, link := range links {
			canonical := urlnorm.Normalize(link)
			if !seen[canonical] {
				seen[canonical] = true
				queue = append(queue, canonical)
			}
		}

		if len(mainText) > f.minTextLen {
			chunks, err := f.sink.IndexDocument(ctx, current, models.SourceHTML, mainText, "")
			if err != nil {
				logger.Error("failed to index page", "url", current, "error", err)
				report.skipped(current, models.SourceHTML, "indexing failed: "+err.Error())
				continue
			}
			report.indexed(current, models.SourceHTML, chunks)
		} else {
			report.skipped(current, models.SourceHTML, "content below minimum length")
		}
	}

	report.Finished = time.Now()
	logger.Info("crawl finished",
		"run_id", report.RunID,
		"fetched", report.Fetched,
		"indexed", report.Indexed,
		"skipped", report.Skipped,
		"chunks", report.Chunks,
	)
	return report, nil
}

// ingestPDF fetches, archives, extracts and indexes one linked PDF.
func (f *Frontier) ingestPDF(ctx context.Context, pdfURL string, report *Report) {
	body, _, err := f.fetcher.Fetch(pdfURL)
	if err != nil {
		logger.Warn("skipping PDF", "url", pdfURL, "error", err)
		report.skipped(pdfURL, models.SourcePDF, "fetch failed: "+err.Error())
		return
	}
	logger.Info("downloaded PDF", "url", pdfURL)

	pdfPath, err := f.archive.SavePDF(pdfURL, body)
	if err != nil {
		logger.Warn("failed to archive PDF", "url", pdfURL, "error", err)
		pdfPath = ""
	}

	text, err := ExtractPDF(body)
	if err != nil {
		report.skipped(pdfURL, models.SourcePDF, "extraction failed: "+err.Error())
		return
	}

	chunks, err := f.sink.IndexDocument(ctx, pdfURL, models.SourcePDF, text, pdfPath)
	if err != nil {
		logger.Error("failed to index PDF", "url", pdfURL, "error", err)
		report.skipped(pdfURL, models.SourcePDF, "indexing failed: "+err.Error())
		return
	}
	report.indexed(pdfURL, models.SourcePDF, chunks)
}
