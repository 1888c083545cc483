package services

import (
	"context"
	"fmt"
	"strings"

	"ncpa-assist/internal/urlnorm"
	"ncpa-assist/internal/vectorstore"
	"ncpa-assist/models"
)

// UrgencyClassifier decides whether a question asks for contact or
// emergency information. Substring matching is a placeholder policy, so
// the classifier is pluggable rather than baked into the retriever.
type UrgencyClassifier interface {
	Urgent(question string) bool
}

// KeywordClassifier flags questions containing any of a fixed keyword set,
// case-insensitively.
type KeywordClassifier struct {
	keywords []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: []string{"contact", "phone", "address", "helpline"},
	}
}

func (k *KeywordClassifier) Urgent(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range k.keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Retriever embeds a question, searches the vector store and assembles a
// bounded context that is unique by canonical source URL.
type Retriever struct {
	embedder   Embedder
	store      vectorstore.Store
	classifier UrgencyClassifier
	kUnique    int
	kFetch     int
}

// NewRetriever builds a retriever. kFetch over-fetches so that dedup
// losses still leave kUnique distinct sources.
func NewRetriever(embedder Embedder, store vectorstore.Store, classifier UrgencyClassifier, kUnique, kFetch int) *Retriever {
	if kUnique <= 0 {
		kUnique = 4
	}
	if kFetch < kUnique {
		kFetch = kUnique * 2
	}
	return &Retriever{
		embedder:   embedder,
		store:      store,
		classifier: classifier,
		kUnique:    kUnique,
		kFetch:     kFetch,
	}
}

// Retrieve returns the grounding context for a question and whether the
// question was classified urgent. When urgent, the official contact entry
// is prepended; it bypasses embedding and dedup and always comes first.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.ContextEntry, bool, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, false, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := r.store.Search(ctx, vector, r.kFetch)
	if err != nil {
		return nil, false, fmt.Errorf("vector search failed: %w", err)
	}

	var entries []models.ContextEntry
	seen := make(map[string]bool)
	for _, hit := range hits {
		if len(entries) >= r.kUnique {
			break
		}
		canonical := urlnorm.Normalize(hit.Record.Payload.SourceURL)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		entries = append(entries, models.ContextEntry{
			SourceURL:  canonical,
			SourceType: hit.Record.Payload.SourceType,
			Text:       hit.Record.Payload.Text,
		})
	}

	urgent := r.classifier != nil && r.classifier.Urgent(question)
	if urgent {
		entries = append([]models.ContextEntry{models.NCPAContact.ContextEntry()}, entries...)
	}

	return entries, urgent, nil
}
