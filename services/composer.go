package services

import (
	"context"
	"fmt"
	"strings"

	"ncpa-assist/internal/urlnorm"
	"ncpa-assist/models"
)

// Generator is the language-model capability: one non-streaming completion
// per call.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Composer builds the grounding prompt, invokes generation and enforces
// citation fidelity on the output.
type Composer struct {
	generator Generator
}

func NewComposer(generator Generator) *Composer {
	return &Composer{generator: generator}
}

// ComposeAndGenerate produces a sourced answer for the question from the
// retrieved context. The model output is URL-normalized (models sometimes
// cosmetically alter URLs despite instruction), and if any retrieved
// source is missing from the text, a Verified sources block listing every
// source once, in retrieval order, is appended.
func (c *Composer) ComposeAndGenerate(ctx context.Context, question, language string, entries []models.ContextEntry) (string, error) {
	system := buildSystemPrompt(language)
	user := buildUserPrompt(question, entries)

	raw, err := c.generator.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	answer := urlnorm.NormalizeInText(raw)
	return appendVerifiedSources(answer, entries), nil
}

func buildSystemPrompt(language string) string {
	return fmt.Sprintf(
		"You are a helpful assistant for the National Child Protection Authority Sri Lanka. "+
			"Answer in %s. Use only the provided sources. "+
			"If the question concerns emergency or abuse, display the 1929 emergency helpline and do not give diagnostic advice. "+
			"Never alter source URLs; always list each source URL used at the end, exactly as given, one per line, unadorned.",
		language)
}

func buildUserPrompt(question string, entries []models.ContextEntry) string {
	var b strings.Builder
	b.WriteString("CONTEXT:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "---\nSource: %s\nType: %s\nText: %s\n", e.SourceURL, e.SourceType, e.Text)
	}
	fmt.Fprintf(&b, "\nUser question: %s\nGive a concise answer and then list sources.", question)
	return b.String()
}

// appendVerifiedSources guarantees every retrieved source is cited even if
// the model omitted or mangled one. A source counts as cited only when it
// appears as a whole URL, not as a prefix of a longer one.
func appendVerifiedSources(answer string, entries []models.ContextEntry) string {
	sources := Sources(entries)

	cited := make(map[string]bool)
	for _, u := range urlnorm.Extract(answer) {
		cited[u] = true
	}
	complete := true
	for _, u := range sources {
		if !cited[u] {
			complete = false
			break
		}
	}
	if complete || len(sources) == 0 {
		return answer
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(answer, "\n"))
	b.WriteString("\n\nVerified sources:\n")
	for _, u := range sources {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// Sources lists the unique canonical source URLs of a context, in order.
func Sources(entries []models.ContextEntry) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, e := range entries {
		u := urlnorm.Normalize(e.SourceURL)
		if !seen[u] {
			seen[u] = true
			sources = append(sources, u)
		}
	}
	return sources
}
