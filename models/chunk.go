package models

// SourceType identifies where a piece of indexed content came from.
type SourceType string

const (
	SourceHTML SourceType = "html"
	SourcePDF  SourceType = "pdf"
	// SourceOfficial marks the static contact record that is injected into
	// the context without going through the embedding pipeline.
	SourceOfficial SourceType = "official"
)

// Chunk is the unit of embedding and storage: a bounded, overlapping
// segment of a document's extracted text plus its provenance.
type Chunk struct {
	Text       string     `json:"text" bson:"text"`
	SourceURL  string     `json:"source_url" bson:"source_url"`
	SourceType SourceType `json:"source_type" bson:"source_type"`
	PDFPath    string     `json:"pdf_path,omitempty" bson:"pdf_path,omitempty"`
}

// ContextEntry is one grounding source handed to the generation step.
// Entries in a retrieved context are unique by normalized source URL.
type ContextEntry struct {
	SourceURL  string     `json:"source_url"`
	SourceType SourceType `json:"source_type"`
	Text       string     `json:"text"`
}
