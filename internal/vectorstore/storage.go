package vectorstore

import "pdfqa/internal/domain"

// Storage is a read-only index of chunk term vectors that supports similarity search.
type Storage interface {
	Search(vector domain.TermVector, topK int) ([]domain.SearchResult, error)
	Len() int
}
