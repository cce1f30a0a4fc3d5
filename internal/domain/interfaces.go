package domain

import (
	"context"
	"errors"
)

// Document represents a single extracted PDF text loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a contiguous window of a document used as the unit of retrieval.
// Start and End are byte offsets into the document content.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
	Start      int
	End        int
}

// TermVector maps a token to its occurrence count. Absent tokens count as zero.
type TermVector map[string]int

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role/content pair sent to a completion API.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is one chat-completion call against a single model.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// Completer calls a hosted chat-completion API.
// Implementations classify failures with the sentinel errors below so callers
// can decide whether another model is worth trying.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

var (
	// ErrMissingAPIKey means no credential was configured for the completion API.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrModelUnavailable means the requested model is unknown or decommissioned.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInvalidRequest means the API rejected the request as malformed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAllModelsFailed wraps the last error once every candidate model was tried.
	ErrAllModelsFailed = errors.New("all candidate models failed")
)

// Recoverable reports whether err belongs to the classes that allow moving on
// to the next candidate model.
func Recoverable(err error) bool {
	return errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrInvalidRequest)
}
