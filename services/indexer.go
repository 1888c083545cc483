package services

import (
	"context"
	"fmt"

	"ncpa-assist/internal/textseg"
	"ncpa-assist/internal/urlnorm"
	"ncpa-assist/internal/vectorstore"
	"ncpa-assist/models"
	"ncpa-assist/utils"
)

// Embedder is the embedding capability: text in, fixed-length vector out.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer is the crawl's storage sink: it segments extracted document
// text, embeds the chunks and upserts them into the vector store.
type Indexer struct {
	store        vectorstore.Store
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
	batchSize    int
}

func NewIndexer(store vectorstore.Store, embedder Embedder, chunkSize, chunkOverlap, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Indexer{
		store:        store,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchSize:    batchSize,
	}
}

// IndexDocument stores one document's text and returns the chunk count.
// Record ids are derived from the canonical source URL and chunk ordinal,
// so re-ingesting the same document overwrites its previous records.
// Batches are bounded to respect store payload limits, not for
// concurrency: calls run strictly in sequence.
func (ix *Indexer) IndexDocument(ctx context.Context, sourceURL string, sourceType models.SourceType, text, pdfPath string) (int, error) {
	canonical := urlnorm.Normalize(sourceURL)
	chunks := textseg.Segment(text, ix.chunkSize, ix.chunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vectors, err := ix.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("embedding failed for %s: %w", canonical, err)
		}

		records := make([]vectorstore.Record, len(batch))
		for i, chunkText := range batch {
			records[i] = vectorstore.Record{
				ID:     utils.ChunkID(canonical, start+i),
				Vector: vectors[i],
				Payload: models.Chunk{
					Text:       chunkText,
					SourceURL:  canonical,
					SourceType: sourceType,
					PDFPath:    pdfPath,
				},
			}
		}

		if err := ix.store.Upsert(ctx, records); err != nil {
			return 0, fmt.Errorf("store upsert failed for %s: %w", canonical, err)
		}
	}

	return len(chunks), nil
}
