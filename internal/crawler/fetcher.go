package crawler

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	colly "github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"
)

// FetchConfig configures the HTTP fetch layer shared by the crawl.
type FetchConfig struct {
	AllowedHost string
	Timeout     time.Duration
	Delay       time.Duration
	UserAgent   string
}

// Fetcher wraps a colly collector as a synchronous fetch function. The
// collector provides per-domain politeness delay and robots.txt handling;
// visit bookkeeping stays with the Frontier, so URL revisits are allowed
// at this layer.
type Fetcher struct {
	c *colly.Collector

	mu          sync.Mutex
	body        []byte
	contentType string
	fetchErr    error
}

func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(cfg.AllowedHost),
		colly.AllowURLRevisit(),
		colly.UserAgent(cfg.UserAgent),
	)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c.SetRequestTimeout(timeout)

	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: cfg.Delay}); err != nil {
		return nil, fmt.Errorf("failed to configure crawl rate limit: %w", err)
	}

	f := &Fetcher{c: c}

	c.OnResponse(func(r *colly.Response) {
		contentType := r.Headers.Get("Content-Type")
		body := r.Body

		// Go's transport decompresses gzip itself; brotli needs handling.
		if strings.Contains(r.Headers.Get("Content-Encoding"), "br") {
			if decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body))); err == nil {
				body = decompressed
			}
		}

		// Decode HTML responses to UTF-8; binary bodies pass through.
		if len(body) > 0 && (strings.Contains(contentType, "html") || strings.Contains(contentType, "text/")) {
			if utf8Reader, err := charset.NewReader(bytes.NewReader(body), contentType); err == nil {
				if decoded, readErr := io.ReadAll(utf8Reader); readErr == nil && len(decoded) > 0 {
					body = decoded
				}
			}
		}

		f.mu.Lock()
		f.body = body
		f.contentType = contentType
		f.mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		f.mu.Lock()
		if r != nil && r.StatusCode != 0 {
			f.fetchErr = fmt.Errorf("HTTP %d: %w", r.StatusCode, err)
		} else {
			f.fetchErr = err
		}
		f.mu.Unlock()
	})

	return f, nil
}

// Fetch retrieves one URL and returns the (decoded) body and content type.
// The collector is synchronous, so one fetch completes before the next
// begins.
func (f *Fetcher) Fetch(rawURL string) ([]byte, string, error) {
	f.mu.Lock()
	f.body = nil
	f.contentType = ""
	f.fetchErr = nil
	f.mu.Unlock()

	if err := f.c.Visit(rawURL); err != nil {
		return nil, "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, "", f.fetchErr
	}
	return f.body, f.contentType, nil
}
