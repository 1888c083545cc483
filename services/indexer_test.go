package services

import (
	"context"
	"strings"
	"testing"

	"ncpa-assist/internal/vectorstore/memory"
	"ncpa-assist/models"
	"ncpa-assist/utils"
)

// countingEmbedder tracks batch sizes and returns unit vectors.
type countingEmbedder struct {
	batches []int
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batches = append(e.batches, len(texts))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestIndexDocumentStoresAllChunks(t *testing.T) {
	store := memory.NewStore()
	embedder := &countingEmbedder{}
	ix := NewIndexer(store, embedder, 100, 20, 2)

	// 260 words with size 100 and overlap 20 gives windows starting at
	// 0, 80, 160 and 240: four chunks.
	n, err := ix.IndexDocument(context.Background(), "https://site.lk/long page", models.SourceHTML, words(260), "")
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 chunks, got %d", n)
	}
	if store.Len() != 4 {
		t.Fatalf("expected 4 records in store, got %d", store.Len())
	}
	// Batch size 2 means two embedding batches of two.
	if len(embedder.batches) != 2 || embedder.batches[0] != 2 || embedder.batches[1] != 2 {
		t.Errorf("unexpected batching: %v", embedder.batches)
	}
}

func TestIndexDocumentIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	ix := NewIndexer(store, &countingEmbedder{}, 100, 20, 100)
	ctx := context.Background()

	text := words(260)
	if _, err := ix.IndexDocument(ctx, "https://site.lk/page", models.SourceHTML, text, ""); err != nil {
		t.Fatalf("first IndexDocument: %v", err)
	}
	first := store.Len()
	// Same document under a different URL spelling overwrites in place.
	if _, err := ix.IndexDocument(ctx, "https://site.lk/page", models.SourceHTML, text, ""); err != nil {
		t.Fatalf("second IndexDocument: %v", err)
	}
	if store.Len() != first {
		t.Errorf("re-ingestion grew the store: %d -> %d", first, store.Len())
	}
}

func TestIndexDocumentUsesCanonicalURL(t *testing.T) {
	store := memory.NewStore()
	ix := NewIndexer(store, &countingEmbedder{}, 100, 20, 100)
	ctx := context.Background()

	text := words(120)
	if _, err := ix.IndexDocument(ctx, "https://site.lk/a b", models.SourceHTML, text, ""); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if _, err := ix.IndexDocument(ctx, "https://site.lk/a%20b", models.SourceHTML, text, ""); err != nil {
		t.Fatalf("IndexDocument variant: %v", err)
	}
	// Both spellings canonicalize to the same URL, so ids collide on
	// purpose and the store holds one document's worth of chunks.
	hits, err := store.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.Record.Payload.SourceURL != "https://site.lk/a%20b" {
			t.Errorf("stored source not canonical: %s", h.Record.Payload.SourceURL)
		}
	}
	wantID := utils.ChunkID("https://site.lk/a%20b", 0)
	found := false
	for _, h := range hits {
		if h.Record.ID == wantID {
			found = true
		}
	}
	if !found {
		t.Error("expected content-derived chunk id for ordinal 0")
	}
}

func TestIndexDocumentEmptyText(t *testing.T) {
	store := memory.NewStore()
	ix := NewIndexer(store, &countingEmbedder{}, 100, 20, 100)

	n, err := ix.IndexDocument(context.Background(), "https://site.lk/empty", models.SourceHTML, "   ", "")
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if n != 0 || store.Len() != 0 {
		t.Errorf("empty text should index nothing, got n=%d len=%d", n, store.Len())
	}
}
