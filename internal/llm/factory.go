package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/expense-flow/internal/common"
)

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

var apiKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// NewClient creates a client for the configured provider. When cfg.RateLimit
// is positive the client is wrapped in a rate limiter; callers should Close it
// via CloseClient when done.
//
// A missing API key is reported as common.ErrCategorizerUnavailable so callers
// can fall back to manual review.
func NewClient(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderAnthropic
	}

	if cfg.APIKey == "" {
		if env, ok := apiKeyEnv[provider]; ok {
			cfg.APIKey = os.Getenv(env)
		}
	}

	var (
		client Client
		err    error
	)
	switch provider {
	case ProviderAnthropic:
		client, err = newAnthropicClient(cfg)
	case ProviderOpenAI:
		client, err = newOpenAIClient(cfg)
	case ProviderGemini:
		client, err = newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit > 0 {
		return NewRateLimitedClient(client, cfg.RateLimit), nil
	}
	return client, nil
}

// CloseClient releases resources held by a client returned from NewClient.
func CloseClient(client Client) {
	if closer, ok := client.(interface{ Close() }); ok {
		closer.Close()
	}
}
