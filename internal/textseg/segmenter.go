// Package textseg splits extracted document text into overlapping,
// token-count-bounded chunks for embedding.
package textseg

import "strings"

// Segment splits text into windows of size whitespace-separated tokens,
// each window starting size-overlap tokens after the previous one. The last
// window may be shorter. Empty text yields no chunks.
//
// Callers must ensure size > overlap >= 0; the stride would otherwise stop
// advancing. This is validated once at configuration load, not per call.
func Segment(text string, size, overlap int) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	stride := size - overlap
	chunks := make([]string, 0, (len(tokens)+stride-1)/stride)
	for start := 0; start < len(tokens); start += stride {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
	}
	return chunks
}
