// Package textmatch normalizes menu text into token sequences and matches
// keyword phrases against them with token-boundary correctness, so "ham"
// never matches "shampoo".
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokens converts raw text to its canonical token sequence: accents stripped
// (e.g. "jalapeño" -> "jalapeno"), lowercased, every run of characters outside
// [a-z0-9] folded to a single separator, then split. Empty input yields an
// empty sequence. The operation is deterministic and idempotent.
func Tokens(text string) []string {
	ascii, _, _ := transform.String(stripAccents, text)
	lower := strings.ToLower(ascii)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	fields := strings.Fields(b.String())
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ContainsPhrase reports whether phrase occurs as a contiguous subsequence of
// tokens. Both sides must already be normalized via Tokens. An empty phrase
// never matches; order matters, so ["poppers","jalapeno"] does not match a
// tokenized "jalapeno poppers".
func ContainsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for j, p := range phrase {
			if tokens[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}

// SplitKeywords parses a user-entered magic-word string into a deduplicated,
// order-preserving list of non-empty keyword phrases. Phrases are separated
// by commas and may contain spaces ("jalapeno poppers, shrimp").
func SplitKeywords(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		kw := strings.TrimSpace(part)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// DedupKeywords drops blank entries and duplicates from a keyword list,
// preserving first-occurrence order.
func DedupKeywords(keywords []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
