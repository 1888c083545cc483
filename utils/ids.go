package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ChunkID derives a stable record id from the canonical source URL and the
// chunk's ordinal within the document. Deterministic ids make re-ingestion
// idempotent: an unchanged document overwrites its own records instead of
// accumulating duplicates, and distinct documents can never collide.
func ChunkID(canonicalURL string, ordinal int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s#%d", canonicalURL, ordinal))
	return hex.EncodeToString(sum[:])
}

// CacheKey derives a cache key for an answered question in a given
// language.
func CacheKey(question, language string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s", language, question))
	return "answer:" + hex.EncodeToString(sum[:])
}
