package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ncpa-assist/internal/logger"
)

// Answer is the query entry point's result.
type Answer struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
	Urgent  bool     `json:"urgent"`
	Cached  bool     `json:"cached"`
}

// AnswerService orchestrates the query pipeline: cache lookup, retrieval,
// prompt composition and generation. The cache is optional.
type AnswerService struct {
	retriever *Retriever
	composer  *Composer
	cache     *AnswerCache
}

func NewAnswerService(retriever *Retriever, composer *Composer, cache *AnswerCache) *AnswerService {
	return &AnswerService{retriever: retriever, composer: composer, cache: cache}
}

// Answer answers one user question in the given language code. Generation
// failures surface to the caller; there is no automatic retry.
func (s *AnswerService) Answer(ctx context.Context, question, language string) (*Answer, error) {
	// Validation precedes the cache: an invalid question must never be
	// served from a stale entry.
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if language == "" {
		language = "en"
	}

	tracer := otel.Tracer("answer-service")
	ctx, span := tracer.Start(ctx, "answer.question")
	defer span.End()
	span.SetAttributes(
		attribute.String("answer.language", language),
		attribute.Int("answer.question_chars", len(question)),
	)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, question, language); ok {
			span.SetAttributes(attribute.Bool("answer.cache_hit", true))
			cached.Cached = true
			return cached, nil
		}
	}

	entries, urgent, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("answer.context_entries", len(entries)),
		attribute.Bool("answer.urgent", urgent),
	)

	text, err := s.composer.ComposeAndGenerate(ctx, question, language, entries)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Text:    text,
		Sources: Sources(entries),
		Urgent:  urgent,
	}

	if s.cache != nil {
		s.cache.Set(ctx, question, language, answer)
	}

	logger.Info("answered question", "language", language, "sources", len(answer.Sources), "urgent", urgent)
	return answer, nil
}
