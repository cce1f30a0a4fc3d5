package groq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"pdfqa/internal/domain"
)

const (
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultAPIKeyEnv = "GROQ_API_KEY"
)

// Client is a chat-completion client for Groq's OpenAI-compatible API.
type Client struct {
	api *openai.Client
}

// Config configures the completion client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewClient creates a client. It fails with domain.ErrMissingAPIKey when the
// key environment variable is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: set %s in the environment or .env", domain.ErrMissingAPIKey, cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	oc := openai.DefaultConfig(key)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{Timeout: t}
	return &Client{api: openai.NewClientWithConfig(oc)}, nil
}

// Complete sends one chat-completion request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: wireTemperature(req.Temperature),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// wireTemperature keeps an explicit 0 in the request body; go-openai omits a
// zero temperature and the API would then apply its own default.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// classify tags API errors with the domain error classes the agent falls back on.
func classify(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	code, _ := apiErr.Code.(string)
	switch {
	case code == "model_decommissioned", code == "model_not_found",
		strings.Contains(apiErr.Message, "decommissioned"):
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	case apiErr.Type == "invalid_request_error", code == "invalid_request_error":
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return err
}
