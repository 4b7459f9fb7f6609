package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/expense-flow/internal/categorize"
	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/config"
	"github.com/Veraticus/expense-flow/internal/llm"
	"github.com/Veraticus/expense-flow/internal/storage"
	"github.com/spf13/viper"
)

// envKeyReplacer maps config keys like llm.api_key to EXPENSE_LLM_API_KEY.
var envKeyReplacer = strings.NewReplacer(".", "_")

func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, settings *config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// buildCategorizer picks the categorization oracle for this run: none, a
// remote endpoint or a local LLM client. A nil service with a nil error means
// categorization is unavailable and every uncategorized row goes to review.
// The returned cleanup func is never nil.
func buildCategorizer(settings *config.Settings, disabled bool, logger *slog.Logger) (categorize.Service, func(), error) {
	noop := func() {}

	if disabled {
		logger.Info("automatic categorization disabled")
		return nil, noop, nil
	}

	if settings.RemoteURL != "" {
		retry := settings.Categorize.Retry
		remote := categorize.NewRemoteClient(settings.RemoteURL, logger,
			categorize.WithRetries(uint(retry.MaxAttempts), retry.InitialDelay))
		logger.Info("using remote categorizer", "url", settings.RemoteURL)
		return remote, noop, nil
	}

	client, err := llm.NewClient(settings.LLM)
	if errors.Is(err, common.ErrCategorizerUnavailable) {
		logger.Warn("no LLM credentials configured, uncategorized rows will need review",
			"provider", settings.LLM.Provider,
			"error", err)
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := settings.Categorize
	opts.Logger = logger
	return categorize.NewBatchCategorizer(client, opts), func() { llm.CloseClient(client) }, nil
}
