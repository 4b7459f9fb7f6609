package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// anthropicClient implements Client on top of the Anthropic SDK.
type anthropicClient struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", common.ErrCategorizerUnavailable)
	}

	// Retries are handled by the caller so the rate limiter sees every attempt.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &anthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       cfg.model(defaultAnthropicModel),
		temperature: cfg.temperature(),
		maxTokens:   cfg.maxTokens(),
	}, nil
}

// Complete sends the prompt as a single user message.
func (c *anthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(c.temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}

	return text.String(), nil
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("anthropic request failed: %w", err)
	}

	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("anthropic: %w", common.ErrRateLimit)
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: anthropic rejected credentials (status %d)", common.ErrCategorizerUnavailable, apiErr.StatusCode),
			Retryable: false,
		}
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return &common.RetryableError{
			Err:       fmt.Errorf("anthropic API error (status %d): %w", apiErr.StatusCode, err),
			Retryable: false,
		}
	default:
		return fmt.Errorf("anthropic API error (status %d): %w", apiErr.StatusCode, err)
	}
}
