// Package app assembles the components named in the configuration.
package app

import (
	"fmt"
	"log"
	"time"

	"pdfqa/internal/chunker"
	"pdfqa/internal/config"
	"pdfqa/internal/domain"
	"pdfqa/internal/embedding/termfreq"
	"pdfqa/internal/llm/groq"
	"pdfqa/internal/service"
	"pdfqa/internal/summarizer"
)

// NewIndexer builds the indexer selected by cfg.
func NewIndexer(cfg *config.AppConfig) (*service.Indexer, error) {
	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "window", "":
		ch = chunker.NewWindowChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	return service.NewIndexer(ch, termfreq.NewEmbedder(), sum, cfg.Summarizer.MaxSentences), nil
}

// NewAgent builds the Groq completion client and the QA agent on top of it.
// The error wraps domain.ErrMissingAPIKey when no key is configured.
func NewAgent(cfg *config.AppConfig, logger *log.Logger) (*service.QAAgent, error) {
	client, err := groq.NewClient(groq.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return service.NewQAAgent(client, termfreq.NewEmbedder(), service.AgentConfig{
		Model:           cfg.LLM.Model,
		FallbackModels:  cfg.LLM.FallbackModels,
		TopK:            cfg.Retrieval.K,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
		Temperature:     cfg.LLM.Temperature,
		Logger:          logger,
	}), nil
}
