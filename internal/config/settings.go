package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/expense-flow/internal/categorize"
	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/llm"
	"github.com/spf13/viper"
)

// DefaultServerAddr is where `expense serve` listens by default.
const DefaultServerAddr = "127.0.0.1:8787"

// Settings is the resolved configuration for one command.
type Settings struct {
	DatabasePath string
	RemoteURL    string
	ServerAddr   string
	LLM          llm.Config
	Categorize   categorize.Options
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(Dir(), "expense.db"))
	v.SetDefault("llm.provider", llm.ProviderAnthropic)
	v.SetDefault("llm.max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("categorize.batch_size", categorize.DefaultBatchSize)
	v.SetDefault("categorize.workers", 1)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads settings from v. Provider API keys left empty here are picked up
// from the provider's environment variable by llm.NewClient.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		RemoteURL:    strings.TrimSpace(v.GetString("categorize.remote_url")),
		ServerAddr:   v.GetString("server.addr"),
		LLM: llm.Config{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			RateLimit:   v.GetInt("llm.rate_limit"),
		},
		Categorize: categorize.DefaultOptions(),
	}

	s.Categorize.BatchSize = v.GetInt("categorize.batch_size")
	s.Categorize.Workers = v.GetInt("categorize.workers")
	s.Categorize.Retry.MaxAttempts = v.GetInt("llm.max_retries")
	s.Categorize.Retry.InitialDelay = v.GetDuration("llm.retry_delay")

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects settings no command could run with.
func (s *Settings) Validate() error {
	if s.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	switch s.LLM.Provider {
	case "", llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, s.LLM.Provider)
	}
	if s.LLM.MaxTokens < 0 {
		return fmt.Errorf("%w: llm.max_tokens must not be negative", common.ErrInvalidConfig)
	}
	if s.LLM.RateLimit < 0 {
		return fmt.Errorf("%w: llm.rate_limit must not be negative", common.ErrInvalidConfig)
	}
	if s.Categorize.BatchSize < 1 {
		return fmt.Errorf("%w: categorize.batch_size must be at least 1", common.ErrInvalidConfig)
	}
	if s.Categorize.Workers < 1 {
		return fmt.Errorf("%w: categorize.workers must be at least 1", common.ErrInvalidConfig)
	}
	if s.Categorize.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: llm.max_retries must be at least 1", common.ErrInvalidConfig)
	}
	if s.RemoteURL != "" {
		u, err := url.Parse(s.RemoteURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: categorize.remote_url %q is not an absolute URL", common.ErrInvalidConfig, s.RemoteURL)
		}
	}
	return nil
}
