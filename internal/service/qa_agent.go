package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"pdfqa/internal/domain"
	"pdfqa/internal/embedding"
	"pdfqa/internal/vectorstore"
)

const (
	// NoAnswer is returned without calling the model when retrieval finds nothing.
	NoAnswer = "I couldn't find relevant content in the uploaded document for that question."

	DefaultTopK        = 4
	DefaultTemperature = 0.2

	instructionPrompt = "Answer the user's question using only the provided context."
)

// FallbackModels are tried in order after the configured model.
var FallbackModels = []string{
	"llama-3.1-8b-instant",
	"llama-3.1-70b-versatile",
	"mixtral-8x7b-32768",
}

// AgentConfig configures retrieval and the model calls of a QAAgent.
type AgentConfig struct {
	Model           string
	FallbackModels  []string
	TopK            int
	MaxContextChars int
	Temperature     *float64
	Logger          *log.Logger
}

// QAAgent answers questions about an indexed document.
type QAAgent struct {
	completer   domain.Completer
	embedder    embedding.Embedder
	models      []string
	topK        int
	maxChars    int
	temperature float64
	logger      *log.Logger
}

// NewQAAgent creates an agent. Zero values in cfg fall back to the defaults;
// a nil Temperature uses DefaultTemperature and a nil FallbackModels uses FallbackModels.
func NewQAAgent(completer domain.Completer, embedder embedding.Embedder, cfg AgentConfig) *QAAgent {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = DefaultMaxContextChars
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.FallbackModels == nil {
		cfg.FallbackModels = FallbackModels
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &QAAgent{
		completer:   completer,
		embedder:    embedder,
		models:      CandidateModels(cfg.Model, cfg.FallbackModels),
		topK:        cfg.TopK,
		maxChars:    cfg.MaxContextChars,
		temperature: temperature,
		logger:      logger,
	}
}

// Models returns the candidate models in the order they are tried.
func (a *QAAgent) Models() []string {
	return append([]string(nil), a.models...)
}

// Retrieve returns the assembled context for question.
func (a *QAAgent) Retrieve(question string, store vectorstore.Storage) (string, error) {
	results, err := store.Search(a.embedder.Embed(question), a.topK)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}
	return AssembleContext(results, a.maxChars), nil
}

// Answer retrieves context for question from store and asks the model.
func (a *QAAgent) Answer(ctx context.Context, question string, store vectorstore.Storage) (string, error) {
	ctxText, err := a.Retrieve(question, store)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(ctxText) == NoContext {
		return NoAnswer, nil
	}
	return a.complete(ctx, BuildMessages(ctxText, question))
}

func (a *QAAgent) complete(ctx context.Context, messages []domain.Message) (string, error) {
	var lastErr error
	for _, model := range a.models {
		answer, err := a.completer.Complete(ctx, domain.CompletionRequest{
			Model:       model,
			Messages:    messages,
			Temperature: a.temperature,
		})
		if err == nil {
			return answer, nil
		}
		if !domain.Recoverable(err) {
			return "", err
		}
		a.logger.Printf("model %s unavailable, trying next candidate: %v", model, err)
		lastErr = err
	}
	if lastErr == nil {
		return "", errors.New("no candidate models configured")
	}
	return "", fmt.Errorf("%w: %w", domain.ErrAllModelsFailed, lastErr)
}

// BuildMessages returns the instruction, context and question messages.
func BuildMessages(contextText, question string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: instructionPrompt},
		{Role: domain.RoleSystem, Content: "Context:\n" + contextText},
		{Role: domain.RoleUser, Content: question},
	}
}

// CandidateModels puts primary first, then fallbacks, dropping blanks and duplicates.
func CandidateModels(primary string, fallbacks []string) []string {
	seen := make(map[string]struct{}, len(fallbacks)+1)
	var out []string
	for _, m := range append([]string{primary}, fallbacks...) {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
