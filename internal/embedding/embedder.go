package embedding

import "pdfqa/internal/domain"

// Embedder converts free text into a sparse term vector.
type Embedder interface {
	Name() string
	Embed(text string) domain.TermVector
}
