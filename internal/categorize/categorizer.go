// Package categorize assigns categories to uncategorized expenses by asking a
// language model in fixed-size batches. Whatever the model returns, the output
// has one entry per input, in input order.
package categorize

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/llm"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/Veraticus/expense-flow/internal/registry"
)

// DefaultBatchSize keeps each oracle reply well inside the output limit.
const DefaultBatchSize = 40

// Service categorizes candidates against a set of categories.
type Service interface {
	Categorize(ctx context.Context, candidates []model.CandidateExpense, categories []model.Category) ([]model.CategorizedCandidate, error)
}

// Options configures a BatchCategorizer.
type Options struct {
	Logger    *slog.Logger
	Retry     common.RetryOptions
	BatchSize int
	Workers   int
}

// DefaultOptions returns sequential batches of DefaultBatchSize.
func DefaultOptions() Options {
	return Options{
		BatchSize: DefaultBatchSize,
		Workers:   1,
		Retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2,
		},
	}
}

// Stats describes how a categorization run went.
type Stats struct {
	Batches         int
	DegradedBatches int
	Padded          int
	Truncated       int
}

// BatchCategorizer implements Service on top of an llm.Client.
type BatchCategorizer struct {
	client    llm.Client
	logger    *slog.Logger
	retry     common.RetryOptions
	batchSize int
	workers   int
}

// NewBatchCategorizer creates a categorizer. A nil client is allowed; every
// call then fails with common.ErrCategorizerUnavailable.
func NewBatchCategorizer(client llm.Client, opts Options) *BatchCategorizer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &BatchCategorizer{
		client:    client,
		logger:    common.OrDefault(opts.Logger),
		retry:     opts.Retry,
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
	}
}

// Categorize implements Service.
func (b *BatchCategorizer) Categorize(ctx context.Context, candidates []model.CandidateExpense, categories []model.Category) ([]model.CategorizedCandidate, error) {
	results, _, err := b.CategorizeWithStats(ctx, candidates, categories)
	return results, err
}

type batchOutcome struct {
	err       error
	received  int
	padded    int
	truncated int
	degraded  bool
}

// CategorizeWithStats categorizes candidates and reports per-batch outcomes.
// Oracle failures never surface as errors; the affected rows come back with an
// empty category and low confidence.
func (b *BatchCategorizer) CategorizeWithStats(ctx context.Context, candidates []model.CandidateExpense, categories []model.Category) ([]model.CategorizedCandidate, Stats, error) {
	if b == nil || b.client == nil {
		return nil, Stats{}, common.ErrCategorizerUnavailable
	}
	if len(candidates) == 0 {
		return []model.CategorizedCandidate{}, Stats{}, nil
	}

	active := registry.Active(categories)
	vocab := NewVocabulary(active)
	merchants := MerchantContext(candidates)
	spans := Batches(len(candidates), b.batchSize)

	results := make([]model.CategorizedCandidate, len(candidates))
	outcomes := make([]batchOutcome, len(spans))

	work := make(chan int, len(spans))
	for i := range spans {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	workers := min(b.workers, len(spans))
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				span := spans[i]
				batch := candidates[span[0]:span[1]]
				outcomes[i] = b.runBatch(ctx, PromptInput{
					Categories:      active,
					MerchantContext: merchants,
					Batch:           batch,
					Offset:          span[0],
				}, vocab, results[span[0]:span[1]])
			}
		}()
	}
	wg.Wait()

	stats := Stats{Batches: len(spans)}
	for i, outcome := range outcomes {
		if outcome.degraded {
			stats.DegradedBatches++
			b.logger.Warn("batch categorization degraded",
				"batch", i+1,
				"batches", len(spans),
				"size", spans[i][1]-spans[i][0],
				"error", outcome.err)
		}
		stats.Padded += outcome.padded
		stats.Truncated += outcome.truncated
	}

	b.logger.Info("categorization complete",
		"candidates", len(candidates),
		"batches", stats.Batches,
		"degraded_batches", stats.DegradedBatches,
		"padded", stats.Padded)

	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("categorization interrupted: %w", err)
	}

	return results, stats, nil
}

// runBatch fills out, which has the same length as in.Batch.
func (b *BatchCategorizer) runBatch(ctx context.Context, in PromptInput, vocab Vocabulary, out []model.CategorizedCandidate) batchOutcome {
	prompt := BuildPrompt(in)

	var reply string
	err := common.WithRetry(ctx, func() error {
		text, err := b.client.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		reply = text
		return nil
	}, b.retry)

	var resp Response
	if err != nil {
		resp = ParseResponse("", len(in.Batch), vocab)
	} else {
		resp = ParseResponse(reply, len(in.Batch), vocab)
	}

	for i, candidate := range in.Batch {
		out[i] = model.CategorizedCandidate{
			CandidateExpense: candidate,
			Confidence:       resp.Results[i].Confidence,
		}
		out[i].Category = resp.Results[i].Category
		if out[i].Category == "" {
			out[i].Confidence = model.ConfidenceLow
		}
	}

	b.logger.Debug("batch categorized",
		"offset", in.Offset,
		"size", len(in.Batch),
		"received", resp.Received,
		"degraded", resp.Degraded)

	return batchOutcome{
		err:       err,
		degraded:  err != nil || resp.Degraded,
		received:  resp.Received,
		padded:    resp.Padded(),
		truncated: max(0, resp.Received-len(in.Batch)),
	}
}
