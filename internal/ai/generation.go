package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ncpa-assist/internal/config"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GenerationClient wraps the Gemini generation endpoint with a circuit
// breaker and a client-side rate limiter. A single non-streaming call per
// answer, bounded output length.
type GenerationClient struct {
	client          *genai.Client
	breaker         *gobreaker.CircuitBreaker
	rateLimiter     *rate.Limiter
	model           string
	maxOutputTokens int32
}

func NewGenerationClient(ctx context.Context, cfg *config.Config) (*GenerationClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	// Free-tier limits with some headroom.
	limiter := rate.NewLimiter(rate.Limit(10*0.9/60.0), 2)

	return &GenerationClient{
		client:          client,
		breaker:         breaker,
		rateLimiter:     limiter,
		model:           cfg.GenerationModel,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

// Complete sends one system+user prompt pair and returns the generated
// text. Errors surface to the caller; there is no automatic retry.
func (gc *GenerationClient) Complete(ctx context.Context, system, user string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.prompt_chars", len(system)+len(user)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
		model.SetMaxOutputTokens(gc.maxOutputTokens)

		resp, err := model.GenerateContent(ctx, genai.Text(user))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "", fmt.Errorf("generation temporarily unavailable: %w", err)
		}
		return "", err
	}

	text := extractText(result.(*genai.GenerateContentResponse))
	if text == "" {
		return "", fmt.Errorf("no text in generation response")
	}

	span.SetAttributes(attribute.Int("gemini.response_chars", len(text)))
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var out string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
	}
	return out
}

func (gc *GenerationClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
