// Package memory is an exact-scan, in-process vector store used by tests
// and local runs without an Atlas deployment.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ncpa-assist/internal/vectorstore"
)

type Store struct {
	mu      sync.RWMutex
	records map[string]vectorstore.Record
	dims    int
}

func NewStore() *Store {
	return &Store{records: make(map[string]vectorstore.Record)}
}

func (s *Store) EnsureReady(_ context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", dims)
	}
	s.mu.Lock()
	s.dims = dims
	s.mu.Unlock()
	return nil
}

func (s *Store) Upsert(_ context.Context, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if s.dims > 0 && len(r.Vector) != s.dims {
			return fmt.Errorf("record %s has dimension %d, store expects %d", r.ID, len(r.Vector), s.dims)
		}
		s.records[r.ID] = r
	}
	return nil
}

func (s *Store) Search(_ context.Context, vector []float32, k int) ([]vectorstore.Hit, error) {
	if k <= 0 {
		k = 4
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]vectorstore.Hit, 0, len(s.records))
	for _, r := range s.records {
		hits = append(hits, vectorstore.Hit{Record: r, Score: cosine(vector, r.Vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
