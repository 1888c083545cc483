package textseg

import (
	"fmt"
	"strings"
	"testing"
)

func tokens(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("t%d", i)
	}
	return strings.Join(parts, " ")
}

func TestSegmentEmpty(t *testing.T) {
	if got := Segment("", 800, 100); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if got := Segment("   \n\t ", 800, 100); got != nil {
		t.Errorf("expected nil for whitespace-only text, got %v", got)
	}
}

func TestSegmentShortText(t *testing.T) {
	got := Segment("one two three", 800, 100)
	if len(got) != 1 || got[0] != "one two three" {
		t.Errorf("short text should be a single chunk, got %v", got)
	}
}

func TestSegmentCoverageAndOverlap(t *testing.T) {
	const n, size, overlap = 25, 10, 3
	chunks := Segment(tokens(n), size, overlap)

	// Every token must appear, in order, across the chunks.
	seen := 0
	for i, c := range chunks {
		words := strings.Fields(c)
		start := i * (size - overlap)
		for j, w := range words {
			want := fmt.Sprintf("t%d", start+j)
			if w != want {
				t.Fatalf("chunk %d token %d = %q, want %q", i, j, w, want)
			}
		}
		if end := start + len(words); end > seen {
			seen = end
		}
	}
	if seen != n {
		t.Errorf("chunks cover %d tokens, want %d", seen, n)
	}

	// Consecutive chunks overlap by exactly overlap tokens, except the tail.
	for i := 0; i < len(chunks)-1; i++ {
		a := strings.Fields(chunks[i])
		b := strings.Fields(chunks[i+1])
		if len(a) < size {
			t.Fatalf("non-final chunk %d has %d tokens, want %d", i, len(a), size)
		}
		wantHead := strings.Join(a[size-overlap:], " ")
		gotHead := strings.Join(b[:min(overlap, len(b))], " ")
		if gotHead != wantHead {
			t.Errorf("chunk %d/%d overlap mismatch: %q vs %q", i, i+1, gotHead, wantHead)
		}
	}
}

func TestSegmentExactWindow(t *testing.T) {
	chunks := Segment(tokens(10), 10, 3)
	if len(chunks) != 2 {
		// Stride 7 leaves a short 3-token tail window.
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := len(strings.Fields(chunks[1])); got != 3 {
		t.Errorf("tail chunk has %d tokens, want 3", got)
	}
}

func TestSegmentZeroOverlap(t *testing.T) {
	chunks := Segment(tokens(20), 5, 0)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if got := len(strings.Fields(c)); got != 5 {
			t.Errorf("chunk %d has %d tokens, want 5", i, got)
		}
	}
}
