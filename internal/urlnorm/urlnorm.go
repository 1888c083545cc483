// Package urlnorm canonicalizes URLs so that cosmetic variants of the same
// source compare equal. Citation dedup and the verified-source check both
// depend on this normalization being idempotent.
package urlnorm

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// urlPattern finds URL-looking substrings in free text: an http(s) scheme
// followed by the longest run of non-whitespace, non-bracket, non-quote
// characters.
var urlPattern = regexp.MustCompile(`https?://[^\s<>\[\]{}()"']+`)

// Normalize returns the canonical form of a URL. Malformed input is
// returned unchanged rather than reported: a broken link in crawled text
// must never abort the pipeline. Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string) string {
	// HTML entities first, then NFKC so full-width and compatibility
	// variants collapse before the URL is split apart.
	decoded := norm.NFKC.String(html.UnescapeString(raw))

	u, err := url.Parse(decoded)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	path := foldPath(u.Path)

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(escape(path, "/%"))
	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(escape(decodeSoft(u.RawQuery), "=&?/"))
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(escape(u.Fragment, ""))
	}
	return b.String()
}

// NormalizeInText replaces every URL-looking substring with its canonical
// form, leaving anything Normalize cannot handle untouched.
func NormalizeInText(text string) string {
	return urlPattern.ReplaceAllStringFunc(text, Normalize)
}

// Extract returns the canonical form of every URL found in text, in order
// of appearance. Substring containment is not citation: a text mentioning
// only https://x/ab does not cite https://x/a, so callers compare against
// these whole matches.
func Extract(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	urls := make([]string, len(matches))
	for i, m := range matches {
		urls[i] = Normalize(m)
	}
	return urls
}

// foldPath collapses dash punctuation to ASCII hyphens and any whitespace
// (including non-breaking and zero-width characters) to ordinary spaces,
// then strips leading and trailing spaces. The input is the percent-decoded
// path.
func foldPath(path string) string {
	folded := strings.Map(func(r rune) rune {
		switch {
		case unicode.Is(unicode.Pd, r):
			return '-'
		case unicode.IsSpace(r) || isZeroWidth(r):
			return ' '
		}
		return r
	}, path)
	return strings.TrimSpace(folded)
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return true
	}
	return false
}

// decodeSoft percent-decodes s, falling back to the input when it contains
// invalid escapes, so re-encoding never double-encodes a valid sequence.
func decodeSoft(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

const upperhex = "0123456789ABCDEF"

// escape percent-encodes every byte except RFC 3986 unreserved characters
// and those listed in keep.
func escape(s, keep string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(keep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}
