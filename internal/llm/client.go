package llm

import (
	"context"
	"strings"
)

// Client sends a prompt to a language model and returns its text reply.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds provider settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	RateLimit   int // Requests per minute; 0 disables limiting
}

// DefaultMaxTokens is the per-call output ceiling. A 40 row batch needs far
// less, but a truncated reply degrades the whole batch.
const DefaultMaxTokens = 8192

const systemPrompt = "You are an expense categorization assistant. You MUST respond with ONLY a valid JSON array. " +
	"Do not include any explanatory text, markdown formatting, or commentary before or after the JSON."

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) temperature() float64 {
	if c.Temperature <= 0 {
		return 0.2
	}
	return c.Temperature
}

func (c Config) model(fallback string) string {
	if c.Model == "" {
		return fallback
	}
	return c.Model
}

// CleanMarkdownWrapper strips a surrounding ``` or ```json fence from a reply.
func CleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.Index(content, "\n"); idx >= 0 {
		// Drop the language tag line.
		content = content[idx+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")

	return strings.TrimSpace(content)
}
