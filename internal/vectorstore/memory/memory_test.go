package memory

import (
	"context"
	"testing"

	"ncpa-assist/internal/vectorstore"
	"ncpa-assist/models"
)

func record(id string, vec []float32) vectorstore.Record {
	return vectorstore.Record{
		ID:     id,
		Vector: vec,
		Payload: models.Chunk{
			Text:       "text for " + id,
			SourceURL:  "https://example.org/" + id,
			SourceType: models.SourceHTML,
		},
	}
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureReady(ctx, 3); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}

	err := s.Upsert(ctx, []vectorstore.Record{
		record("aligned", []float32{1, 0, 0}),
		record("orthogonal", []float32{0, 1, 0}),
		record("close", []float32{0.9, 0.1, 0}),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Record.ID != "aligned" || hits[1].Record.ID != "close" {
		t.Errorf("wrong ranking: %s, %s", hits[0].Record.ID, hits[1].Record.ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %f < %f", hits[0].Score, hits[1].Score)
	}
}

func TestUpsertOverwritesByID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, []vectorstore.Record{record("a", []float32{1, 0, 0})}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, []vectorstore.Record{record("a", []float32{0, 1, 0})}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record after overwrite, got %d", s.Len())
	}

	hits, err := s.Search(ctx, []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits[0].Score < 0.99 {
		t.Errorf("overwritten vector not in effect, score %f", hits[0].Score)
	}
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.EnsureReady(ctx, 3); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if err := s.Upsert(ctx, []vectorstore.Record{record("bad", []float32{1, 0})}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}
