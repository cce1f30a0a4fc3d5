package service

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"

	"pdfqa/internal/domain"
	"pdfqa/internal/embedding"
	"pdfqa/internal/vectorstore/memory"
)

// maxCachedDocuments bounds the number of indexed documents kept in memory.
const maxCachedDocuments = 32

// IndexedDocument is a document whose chunks have been vectorized.
// The store is never modified after construction.
type IndexedDocument struct {
	ID      string
	Store   *memory.Store
	Summary string
}

// Indexer builds stores from extracted text and caches them by document identity.
type Indexer struct {
	chunker             domain.Chunker
	embedder            embedding.Embedder
	summarizer          domain.Summarizer
	summaryMaxSentences int

	mu    sync.RWMutex
	docs  map[string]*IndexedDocument
	order []string
}

// NewIndexer creates an indexer. summarizer may be nil.
func NewIndexer(chunker domain.Chunker, embedder embedding.Embedder, summarizer domain.Summarizer, summaryMaxSentences int) *Indexer {
	return &Indexer{
		chunker:             chunker,
		embedder:            embedder,
		summarizer:          summarizer,
		summaryMaxSentences: summaryMaxSentences,
		docs:                make(map[string]*IndexedDocument),
	}
}

// Index builds a fresh store from one or more document texts. Nothing is cached.
func (s *Indexer) Index(texts []string) (*memory.Store, error) {
	return Index(texts, s.chunker, s.embedder)
}

// IndexDocument builds the store for id and replaces any cached entry for it.
func (s *Indexer) IndexDocument(id, text string) (*IndexedDocument, error) {
	store, err := Index([]string{text}, s.chunker, s.embedder)
	if err != nil {
		return nil, err
	}
	doc := &IndexedDocument{ID: id, Store: store}
	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(text, s.summaryMaxSentences)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", id, err)
		}
		doc.Summary = summary
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.docs[id] = doc
	for len(s.order) > maxCachedDocuments {
		delete(s.docs, s.order[0])
		s.order = s.order[1:]
	}
	return doc, nil
}

// Lookup returns the cached document for id.
func (s *Indexer) Lookup(id string) (*IndexedDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Forget drops the cached document for id.
func (s *Indexer) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return
	}
	delete(s.docs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Index chunks every text, vectorizes each chunk and returns the resulting store.
func Index(texts []string, chunker domain.Chunker, embedder embedding.Embedder) (*memory.Store, error) {
	var allChunks []domain.Chunk
	for _, text := range texts {
		d := domain.Document{ID: hashString(text), Content: text}
		chunks, err := chunker.Chunk(d)
		if err != nil {
			return nil, err
		}
		allChunks = append(allChunks, chunks...)
	}
	vectors := make([]domain.TermVector, len(allChunks))
	for i := range allChunks {
		vectors[i] = embedder.Embed(allChunks[i].Text)
	}
	return memory.NewStore(allChunks, vectors)
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
