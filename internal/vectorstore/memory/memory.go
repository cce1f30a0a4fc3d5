package memory

import (
	"errors"
	"math"
	"sort"

	"pdfqa/internal/domain"
)

// DefaultTopK is used when Search is called with a non-positive topK.
const DefaultTopK = 4

// Store is an immutable in-memory index scored with brute-force cosine similarity.
// It is built once per document and is safe for concurrent searches.
type Store struct {
	vectors []domain.TermVector
	chunks  []domain.Chunk
}

// NewStore pairs each chunk with its vector. The slices are copied.
func NewStore(chunks []domain.Chunk, vectors []domain.TermVector) (*Store, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.New("chunks and vectors length mismatch")
	}
	s := &Store{
		chunks:  make([]domain.Chunk, len(chunks)),
		vectors: make([]domain.TermVector, len(vectors)),
	}
	copy(s.chunks, chunks)
	copy(s.vectors, vectors)
	return s, nil
}

// Len returns the number of indexed chunks.
func (s *Store) Len() int { return len(s.chunks) }

// Chunks returns a copy of the indexed chunks in insertion order.
func (s *Store) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Search ranks every chunk against vector and returns at most topK results
// with a score above zero. Equal scores keep insertion order.
func (s *Store) Search(vector domain.TermVector, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = Cosine(vector, s.vectors[i])
	}
	idxs := argsortDesc(scores)
	results := make([]domain.SearchResult, 0, min(topK, len(idxs)))
	for _, j := range idxs {
		if len(results) == topK || scores[j] <= 0 {
			break
		}
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

// Cosine returns dot(a, b) / (|a| * |b|), or 0 when either vector is empty
// or has zero magnitude.
func Cosine(a, b domain.TermVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	dot := 0.0
	for tok, v := range small {
		dot += float64(v) * float64(large[tok])
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func norm(v domain.TermVector) float64 {
	sum := 0.0
	for _, c := range v {
		sum += float64(c) * float64(c)
	}
	return math.Sqrt(sum)
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return vals[idxs[i]] > vals[idxs[j]] })
	return idxs
}
