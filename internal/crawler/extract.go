package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// ExtractHTML pulls the main text and outgoing links from a fetched page.
// Main text is the space-joined content of p/h1/h2/h3 elements. Links are
// resolved against base; only links inside siteRoot are returned, with
// .pdf targets routed separately.
func ExtractHTML(body []byte, base *url.URL, siteRoot string) (mainText string, links, pdfLinks []string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, nil
	}

	var blocks []string
	doc.Find("p, h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	mainText = strings.Join(blocks, " ")

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		hrefLower := strings.ToLower(href)
		if strings.HasPrefix(href, "#") ||
			strings.HasPrefix(hrefLower, "javascript:") ||
			strings.HasPrefix(hrefLower, "mailto:") ||
			strings.HasPrefix(hrefLower, "tel:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		abs := resolved.String()
		if !strings.HasPrefix(abs, siteRoot) {
			return
		}

		if strings.HasSuffix(strings.ToLower(resolved.Path), ".pdf") {
			pdfLinks = append(pdfLinks, abs)
		} else {
			links = append(links, abs)
		}
	})

	return mainText, links, pdfLinks
}

// ExtractPDF concatenates per-page text with newline separators. A page
// that yields no extractable text contributes an empty string rather than
// failing the whole document.
func ExtractPDF(b []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}
