package crawler

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^\w\-.]`)

// Archive keeps raw copies of every fetched document on disk for audit and
// debugging: HTML snapshots under raw/, downloaded PDFs under pdfs/.
type Archive struct {
	rawDir string
	pdfDir string
}

func NewArchive(dataDir string) (*Archive, error) {
	a := &Archive{
		rawDir: filepath.Join(dataDir, "raw"),
		pdfDir: filepath.Join(dataDir, "pdfs"),
	}
	for _, dir := range []string{a.rawDir, a.pdfDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive dir %s: %w", dir, err)
		}
	}
	return a, nil
}

// SaveHTML stores a page snapshot under a filename derived from its URL.
func (a *Archive) SaveHTML(pageURL string, body []byte) (string, error) {
	name := unsafeNameChars.ReplaceAllString(pageURL, "_") + ".html"
	dest := filepath.Join(a.rawDir, name)
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to archive page %s: %w", pageURL, err)
	}
	return dest, nil
}

// SavePDF stores a downloaded PDF under its URL basename.
func (a *Archive) SavePDF(pdfURL string, body []byte) (string, error) {
	name := ""
	if u, err := url.Parse(pdfURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = fmt.Sprintf("doc_%d.pdf", time.Now().Unix())
	}
	dest := filepath.Join(a.pdfDir, unsafeNameChars.ReplaceAllString(name, "_"))
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to archive PDF %s: %w", pdfURL, err)
	}
	return dest, nil
}
