package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ncpa-assist/models"
)

// recordingSink captures every indexed document.
type recordingSink struct {
	mu   sync.Mutex
	docs []indexedDoc
}

type indexedDoc struct {
	url  string
	kind models.SourceType
	text string
}

func (s *recordingSink) IndexDocument(_ context.Context, sourceURL string, sourceType models.SourceType, text, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, indexedDoc{url: sourceURL, kind: sourceType, text: text})
	return 2, nil
}

func longText(s string) string {
	return s + " " + strings.Repeat("filler words for length ", 5)
}

// testSite serves a tiny cyclic site: / links to /a, /b and back to
// itself, /a links back to /, /b links to a PDF. /a is too short to index.
func testSite(t *testing.T) (*httptest.Server, map[string]*int) {
	t.Helper()
	hits := map[string]*int{
		"/": new(int), "/a": new(int), "/b": new(int), "/doc.pdf": new(int),
	}
	mux := http.NewServeMux()
	page := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			*hits[path]++
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		})
	}
	page("/", `<p>`+longText("home page")+`</p><a href="/a">a</a> <a href="/b">b</a> <a href="/">self</a>`)
	page("/a", `<p>too short</p><a href="/">home</a>`)
	page("/b", `<p>`+longText("page b")+`</p><a href="/doc.pdf">report</a> <a href="/doc.pdf">again</a>`)
	mux.HandleFunc("/doc.pdf", func(w http.ResponseWriter, r *http.Request) {
		*hits["/doc.pdf"]++
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(buildPDF("Report abuse to 1929"))
	})
	return httptest.NewServer(mux), hits
}

func newTestFrontier(t *testing.T, root string, sink DocumentSink, maxPages int) *Frontier {
	t.Helper()
	fetcher, err := NewFetcher(FetchConfig{AllowedHost: "127.0.0.1", UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	archive, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	return NewFrontier(Config{SiteRoot: root, MaxPages: maxPages}, fetcher, archive, sink)
}

func TestFrontierCrawlsSiteOnce(t *testing.T) {
	srv, hits := testSite(t)
	defer srv.Close()

	sink := &recordingSink{}
	f := newTestFrontier(t, srv.URL+"/", sink, 0)

	report, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The cycle back to / and the duplicate PDF link must not cause
	// refetches.
	for path, count := range hits {
		if *count != 1 {
			t.Errorf("%s fetched %d times, want 1", path, *count)
		}
	}

	if report.Fetched != 4 {
		t.Errorf("Fetched = %d, want 4", report.Fetched)
	}
	if report.Indexed != 3 {
		t.Errorf("Indexed = %d, want 3 (two pages and one PDF)", report.Indexed)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if report.Chunks != 6 {
		t.Errorf("Chunks = %d, want 6", report.Chunks)
	}

	var skippedURL, skippedReason string
	for _, p := range report.Pages {
		if p.Status == StatusSkipped {
			skippedURL, skippedReason = p.URL, p.Reason
		}
	}
	if !strings.HasSuffix(skippedURL, "/a") || skippedReason != "content below minimum length" {
		t.Errorf("wrong skip record: %s (%s)", skippedURL, skippedReason)
	}

	var pdfDoc *indexedDoc
	for i := range sink.docs {
		if sink.docs[i].kind == models.SourcePDF {
			pdfDoc = &sink.docs[i]
		}
	}
	if pdfDoc == nil {
		t.Fatal("PDF never reached the sink")
	}
	if !strings.Contains(pdfDoc.text, "Report abuse to 1929") {
		t.Errorf("PDF text not extracted: %q", pdfDoc.text)
	}
}

func TestFrontierHonorsPageBudget(t *testing.T) {
	srv, _ := testSite(t)
	defer srv.Close()

	sink := &recordingSink{}
	f := newTestFrontier(t, srv.URL+"/", sink, 1)

	report, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Fetched != 1 {
		t.Errorf("Fetched = %d, want 1 under a one-page budget", report.Fetched)
	}
}

func TestFrontierReportsPDFDroppedByBudget(t *testing.T) {
	srv, hits := testSite(t)
	defer srv.Close()

	sink := &recordingSink{}
	// Three pages exhaust the budget exactly when /b's PDF link is found.
	f := newTestFrontier(t, srv.URL+"/", sink, 3)

	report, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if *hits["/doc.pdf"] != 0 {
		t.Errorf("PDF fetched despite exhausted budget")
	}

	var reason string
	for _, p := range report.Pages {
		if p.Kind == models.SourcePDF {
			if p.Status != StatusSkipped {
				t.Fatalf("budget-dropped PDF has status %q", p.Status)
			}
			reason = p.Reason
		}
	}
	if reason != "page budget reached" {
		t.Errorf("dropped PDF missing from report, reason %q", reason)
	}
}

func TestFrontierStopsOnCancelledContext(t *testing.T) {
	srv, _ := testSite(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFrontier(t, srv.URL+"/", &recordingSink{}, 0)
	report, err := f.Run(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if report == nil || report.Fetched != 0 {
		t.Errorf("no pages should be fetched after cancellation")
	}
}

func TestFrontierRecordsFetchFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<p>`+longText("root")+`</p><a href="/missing">gone</a>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sink := &recordingSink{}
	f := newTestFrontier(t, srv.URL+"/", sink, 0)

	report, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Indexed != 1 || report.Skipped != 1 {
		t.Errorf("Indexed=%d Skipped=%d, want 1 and 1", report.Indexed, report.Skipped)
	}
	for _, p := range report.Pages {
		if p.Status == StatusSkipped && !strings.Contains(p.Reason, "fetch failed") {
			t.Errorf("404 should be recorded as fetch failure, got %q", p.Reason)
		}
	}
}
