// Package vectorstore defines the persistence contract for embedded
// chunks: upsert by id and nearest-neighbour search by cosine similarity.
package vectorstore

import (
	"context"

	"ncpa-assist/models"
)

// Record is one stored chunk: a globally unique id, its embedding, and the
// chunk payload carried alongside for retrieval.
type Record struct {
	ID      string
	Vector  []float32
	Payload models.Chunk
}

// Hit is a search result ranked by cosine similarity, descending.
type Hit struct {
	Record Record
	Score  float64
}

// Store persists vectors and supports similarity search.
type Store interface {
	// EnsureReady prepares the backing collection/index for the given
	// embedding dimensionality.
	EnsureReady(ctx context.Context, dims int) error
	// Upsert inserts or overwrites records by id.
	Upsert(ctx context.Context, records []Record) error
	// Search returns the k nearest records, best first.
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
}
