package termfreq

import (
	"regexp"
	"strings"

	"pdfqa/internal/domain"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// Embedder turns text into raw term-frequency counts. It needs no corpus
// preparation, so query and chunk vectors can be built independently.
type Embedder struct{}

// NewEmbedder creates a term-frequency embedder.
func NewEmbedder() *Embedder { return &Embedder{} }

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "termfreq" }

// Embed tokenizes text and counts each token.
func (e *Embedder) Embed(text string) domain.TermVector {
	return Vectorize(Tokenize(text))
}

// Tokenize returns the lowercase ASCII word tokens of text in order of appearance.
// Anything outside [A-Za-z0-9_] separates tokens.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	for i, t := range raw {
		out[i] = strings.ToLower(t)
	}
	return out
}

// Vectorize counts occurrences of each distinct token.
func Vectorize(tokens []string) domain.TermVector {
	vec := make(domain.TermVector, len(tokens))
	for _, tok := range tokens {
		vec[tok]++
	}
	return vec
}
