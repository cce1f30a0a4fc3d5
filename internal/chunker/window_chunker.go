package chunker

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"pdfqa/internal/domain"
)

const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
)

// WindowChunker splits text into fixed-size character windows that overlap by
// a configurable amount.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a chunker. A size <= 0 disables splitting and a
// negative overlap is treated as zero.
func NewWindowChunker(size, overlap int) *WindowChunker {
	if overlap < 0 {
		overlap = 0
	}
	return &WindowChunker{size: size, overlap: overlap}
}

// Step is the distance between the starts of consecutive windows.
func (c *WindowChunker) Step() int {
	return max(1, c.size-c.overlap)
}

func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	text := document.Content
	if c.size <= 0 {
		return []domain.Chunk{newChunk(document.ID, 0, text, 0, len(text))}, nil
	}

	runes := utf8.RuneCountInString(text)
	step := c.Step()
	var chunks []domain.Chunk
	start := 0
	for r := 0; r < runes; r += step {
		stop := advance(text, start, c.size)
		window := text[start:stop]
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, newChunk(document.ID, len(chunks), window, start, stop))
		}
		start = advance(text, start, step)
	}
	return chunks, nil
}

// advance returns the byte offset n runes after from, capped at len(text).
func advance(text string, from, n int) int {
	for ; n > 0 && from < len(text); n-- {
		_, w := utf8.DecodeRuneInString(text[from:])
		from += w
	}
	return from
}

func newChunk(docID string, idx int, text string, start, end int) domain.Chunk {
	return domain.Chunk{
		DocumentID: docID,
		ChunkID:    docID + ":" + strconv.Itoa(idx),
		Text:       text,
		Index:      idx,
		Start:      start,
		End:        end,
	}
}
