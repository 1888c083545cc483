package services

import (
	"context"
	"strings"
	"testing"

	"ncpa-assist/models"
)

// scriptedGenerator returns a canned completion and records its inputs.
type scriptedGenerator struct {
	reply  string
	system string
	user   string
}

func (g *scriptedGenerator) Complete(_ context.Context, system, user string) (string, error) {
	g.system = system
	g.user = user
	return g.reply, nil
}

func testEntries() []models.ContextEntry {
	return []models.ContextEntry{
		{SourceURL: "https://site.lk/a", SourceType: models.SourceHTML, Text: "Text about A."},
		{SourceURL: "https://site.lk/b", SourceType: models.SourcePDF, Text: "Text about B."},
	}
}

func TestComposeBuildsContextBlocks(t *testing.T) {
	gen := &scriptedGenerator{reply: "Answer.\nhttps://site.lk/a\nhttps://site.lk/b"}
	c := NewComposer(gen)

	_, err := c.ComposeAndGenerate(context.Background(), "what is A?", "en", testEntries())
	if err != nil {
		t.Fatalf("ComposeAndGenerate: %v", err)
	}

	if !strings.Contains(gen.user, "CONTEXT:\n") {
		t.Error("user prompt missing context header")
	}
	if !strings.Contains(gen.user, "---\nSource: https://site.lk/a\nType: html\nText: Text about A.\n") {
		t.Errorf("user prompt missing first context block:\n%s", gen.user)
	}
	if !strings.Contains(gen.user, "User question: what is A?") {
		t.Error("user prompt missing question")
	}
	if !strings.Contains(gen.system, "Answer in en.") {
		t.Errorf("system prompt missing language directive:\n%s", gen.system)
	}
}

func TestComposeLeavesCompleteCitationsAlone(t *testing.T) {
	reply := "Both pages cover this.\nhttps://site.lk/a\nhttps://site.lk/b"
	c := NewComposer(&scriptedGenerator{reply: reply})

	got, err := c.ComposeAndGenerate(context.Background(), "q", "en", testEntries())
	if err != nil {
		t.Fatalf("ComposeAndGenerate: %v", err)
	}
	if strings.Contains(got, "Verified sources:") {
		t.Errorf("no append expected when all sources cited:\n%s", got)
	}
}

func TestComposeAppendsMissingSources(t *testing.T) {
	c := NewComposer(&scriptedGenerator{reply: "An answer citing only https://site.lk/a here."})

	got, err := c.ComposeAndGenerate(context.Background(), "q", "en", testEntries())
	if err != nil {
		t.Fatalf("ComposeAndGenerate: %v", err)
	}
	if !strings.Contains(got, "Verified sources:\nhttps://site.lk/a\nhttps://site.lk/b") {
		t.Errorf("expected verified sources block:\n%s", got)
	}
}

func TestComposePrefixURLIsNotACitation(t *testing.T) {
	entries := []models.ContextEntry{
		{SourceURL: "https://site.lk/a", SourceType: models.SourceHTML, Text: "A"},
		{SourceURL: "https://site.lk/ab", SourceType: models.SourceHTML, Text: "AB"},
	}
	// /a appears only as a prefix of /ab, so it is uncited and the
	// verified block must be appended.
	c := NewComposer(&scriptedGenerator{reply: "Details at https://site.lk/ab only."})

	got, err := c.ComposeAndGenerate(context.Background(), "q", "en", entries)
	if err != nil {
		t.Fatalf("ComposeAndGenerate: %v", err)
	}
	if !strings.Contains(got, "Verified sources:\nhttps://site.lk/a\nhttps://site.lk/ab") {
		t.Errorf("expected verified sources block for the uncited prefix URL:\n%s", got)
	}
}

func TestComposeNormalizesURLsInOutput(t *testing.T) {
	entries := []models.ContextEntry{
		{SourceURL: "https://site.lk/annual%20report", SourceType: models.SourceHTML, Text: "T"},
	}
	// Model re-spells the URL with a literal NBSP; normalization must
	// restore the canonical form so the citation check passes.
	c := NewComposer(&scriptedGenerator{reply: "See https://site.lk/annual\u00a0report for details."})

	got, err := c.ComposeAndGenerate(context.Background(), "q", "en", entries)
	if err != nil {
		t.Fatalf("ComposeAndGenerate: %v", err)
	}
	if !strings.Contains(got, "https://site.lk/annual%20report") {
		t.Errorf("URL not normalized in output:\n%s", got)
	}
	if strings.Contains(got, "Verified sources:") {
		t.Errorf("normalized citation should count as complete:\n%s", got)
	}
}
