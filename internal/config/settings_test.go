package config

import (
	"testing"
	"time"

	"github.com/Veraticus/expense-flow/internal/categorize"
	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", s.LLM.Provider)
	assert.Equal(t, 8192, s.LLM.MaxTokens)
	assert.Equal(t, categorize.DefaultBatchSize, s.Categorize.BatchSize)
	assert.Equal(t, 1, s.Categorize.Workers)
	assert.Equal(t, 3, s.Categorize.Retry.MaxAttempts)
	assert.Equal(t, time.Second, s.Categorize.Retry.InitialDelay)
	assert.Equal(t, DefaultServerAddr, s.ServerAddr)
	assert.Contains(t, s.DatabasePath, "expense.db")
	assert.NotContains(t, s.DatabasePath, "~")
}

func TestLoad_Overrides(t *testing.T) {
	s, err := Load(newViper(map[string]any{
		"database.path":         "/tmp/expenses.db",
		"llm.provider":          "Gemini",
		"llm.model":             "gemini-2.5-pro",
		"llm.rate_limit":        30,
		"llm.retry_delay":       "250ms",
		"categorize.batch_size": 10,
		"categorize.workers":    4,
		"categorize.remote_url": "http://localhost:8787",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/expenses.db", s.DatabasePath)
	assert.Equal(t, "gemini", s.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", s.LLM.Model)
	assert.Equal(t, 30, s.LLM.RateLimit)
	assert.Equal(t, 250*time.Millisecond, s.Categorize.Retry.InitialDelay)
	assert.Equal(t, 10, s.Categorize.BatchSize)
	assert.Equal(t, 4, s.Categorize.Workers)
	assert.Equal(t, "http://localhost:8787", s.RemoteURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		values  map[string]any
		wantErr error
		name    string
	}{
		{name: "unknown provider", values: map[string]any{"llm.provider": "llama"}, wantErr: common.ErrInvalidConfig},
		{name: "zero batch size", values: map[string]any{"categorize.batch_size": 0}, wantErr: common.ErrInvalidConfig},
		{name: "zero workers", values: map[string]any{"categorize.workers": 0}, wantErr: common.ErrInvalidConfig},
		{name: "negative rate limit", values: map[string]any{"llm.rate_limit": -1}, wantErr: common.ErrInvalidConfig},
		{name: "relative remote url", values: map[string]any{"categorize.remote_url": "localhost"}, wantErr: common.ErrInvalidConfig},
		{name: "empty database path", values: map[string]any{"database.path": ""}, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(tt.values))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
