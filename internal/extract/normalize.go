// ABOUTME: Heading normalization before embedding.
// ABOUTME: Strips numbering, punctuation, and configured stopwords, then lowercases.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	leadingNumbering = regexp.MustCompile(`^[0-9.\s\-:()]+`)
	nonAlnum         = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Normalizer rewrites headings into a canonical lowercase form.
type Normalizer struct {
	stopwords map[string]struct{}
}

// NewNormalizer builds a normalizer that also drops the given whole-word tokens.
func NewNormalizer(stopwords []string) *Normalizer {
	sw := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(w)), "")
		if w != "" {
			sw[w] = struct{}{}
		}
	}
	return &Normalizer{stopwords: sw}
}

// Normalize returns the canonical form of text, which may be empty.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = leadingNumbering.ReplaceAllString(text, "")
	text = nonAlnum.ReplaceAllString(strings.ToLower(text), "")

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if _, drop := n.stopwords[f]; !drop {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeAll normalizes every heading, dropping any that become empty.
func (n *Normalizer) NormalizeAll(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := n.Normalize(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Normalize is a convenience wrapper for one-off calls.
func Normalize(text string, stopwords []string) string {
	return NewNormalizer(stopwords).Normalize(text)
}
