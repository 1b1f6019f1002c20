package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrExtractionService marks transport or service failures of the
// completion endpoint.
var ErrExtractionService = errors.New("extraction service failure")

const systemPrompt = "You are a helpful assistant that extracts structured product information from e-commerce websites. Always respond with valid JSON only."

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Client issues structured-extraction requests against an
// OpenAI-compatible completion endpoint. No retry happens here; that
// is the caller's decision.
type Client struct {
	api         openai.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required (set GROQ_API_KEY)")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "llm"),
	}, nil
}

// Extract sends one non-streaming completion request and returns the
// raw response text. Low temperature keeps the extraction
// deterministic; the system message constrains output to JSON.
func (c *Client) Extract(ctx context.Context, prompt, window string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt + "\n\nPage content:\n\n" + window),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionService, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrExtractionService)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
