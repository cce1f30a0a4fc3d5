package service

import (
	"strings"
	"unicode/utf8"

	"pdfqa/internal/domain"
)

const (
	// NoContext is returned by AssembleContext when nothing was retrieved.
	NoContext = "(no matching context found)"

	DefaultMaxContextChars = 8000
)

const separator = "\n\n"

// AssembleContext joins chunk texts in rank order with a blank line between
// them. The result never exceeds maxChars characters, separators included;
// the last chunk is cut to fit.
func AssembleContext(results []domain.SearchResult, maxChars int) string {
	var parts []string
	total := 0
	for _, r := range results {
		chunk := r.Chunk.Text
		if chunk == "" {
			continue
		}
		remaining := maxChars - total
		if len(parts) > 0 {
			remaining -= len(separator)
		}
		if remaining <= 0 {
			break
		}
		n := utf8.RuneCountInString(chunk)
		if n > remaining {
			chunk = truncateRunes(chunk, remaining)
			n = remaining
		}
		if len(parts) > 0 {
			total += len(separator)
		}
		parts = append(parts, chunk)
		total += n
	}
	assembled := strings.Join(parts, separator)
	if assembled == "" {
		return NoContext
	}
	return assembled
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
