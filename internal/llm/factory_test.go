package llm

import (
	"testing"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	tests := []struct {
		wantErr error
		name    string
		cfg     Config
	}{
		{name: "anthropic missing key", cfg: Config{Provider: "anthropic"}, wantErr: common.ErrCategorizerUnavailable},
		{name: "openai missing key", cfg: Config{Provider: "openai"}, wantErr: common.ErrCategorizerUnavailable},
		{name: "gemini missing key", cfg: Config{Provider: "gemini"}, wantErr: common.ErrCategorizerUnavailable},
		{name: "default provider missing key", cfg: Config{}, wantErr: common.ErrCategorizerUnavailable},
		{name: "unknown provider", cfg: Config{Provider: "mystery", APIKey: "k"}, wantErr: common.ErrInvalidConfig},
		{name: "anthropic", cfg: Config{Provider: "Anthropic", APIKey: "k"}},
		{name: "openai", cfg: Config{Provider: "openai", APIKey: "k"}},
		{name: "gemini", cfg: Config{Provider: "gemini", APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestNewClient_KeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	client, err := NewClient(Config{Provider: "openai"})
	require.NoError(t, err)

	oc, ok := client.(*openAIClient)
	require.True(t, ok)
	assert.Equal(t, "env-key", oc.apiKey)
}

func TestNewClient_RateLimited(t *testing.T) {
	client, err := NewClient(Config{Provider: "openai", APIKey: "k", RateLimit: 30})
	require.NoError(t, err)
	defer CloseClient(client)

	_, ok := client.(*RateLimitedClient)
	assert.True(t, ok)
}
