package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/Veraticus/expense-flow/internal/registry"
	"github.com/avast/retry-go"
)

// errServerStatus marks a retryable HTTP status from the remote categorizer.
var errServerStatus = errors.New("remote categorizer returned server error")

// RemoteClient implements Service by calling another instance's
// POST /api/categorize endpoint.
type RemoteClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	attempts   uint
	delay      time.Duration
}

// RemoteOption configures a RemoteClient.
type RemoteOption func(*RemoteClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *RemoteClient) {
		r.httpClient = client
	}
}

// WithRetries sets the attempt count and base delay between attempts.
func WithRetries(attempts uint, delay time.Duration) RemoteOption {
	return func(r *RemoteClient) {
		r.attempts = attempts
		r.delay = delay
	}
}

// NewRemoteClient creates a client for the categorizer at baseURL.
func NewRemoteClient(baseURL string, logger *slog.Logger, opts ...RemoteOption) *RemoteClient {
	r := &RemoteClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/categorize",
		logger:     common.OrDefault(logger),
		httpClient: &http.Client{},
		attempts:   3,
		delay:      time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Categorize implements Service.
func (r *RemoteClient) Categorize(ctx context.Context, candidates []model.CandidateExpense, categories []model.Category) ([]model.CategorizedCandidate, error) {
	results, _, err := r.CategorizeWithStats(ctx, candidates, categories)
	return results, err
}

// CategorizeWithStats sends all candidates in one request. An unreachable or
// unconfigured endpoint yields common.ErrCategorizerUnavailable; any other
// failure degrades every row to an empty low-confidence result.
func (r *RemoteClient) CategorizeWithStats(ctx context.Context, candidates []model.CandidateExpense, categories []model.Category) ([]model.CategorizedCandidate, Stats, error) {
	if len(candidates) == 0 {
		return []model.CategorizedCandidate{}, Stats{}, nil
	}

	active := registry.Active(categories)
	body, err := json.Marshal(NewRequest(candidates, active))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	var reply Reply
	err = retry.Do(
		func() error {
			return r.post(ctx, body, &reply)
		},
		retry.RetryIf(isRetryableRemote),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("remote categorizer call failed, retrying",
				"attempt", n+1,
				"error", err)
		}),
	)

	stats := Stats{Batches: 1}
	switch {
	case errors.Is(err, common.ErrCategorizerUnavailable):
		return nil, stats, err
	case ctx.Err() != nil:
		return nil, stats, fmt.Errorf("categorization interrupted: %w", ctx.Err())
	case err != nil:
		r.logger.Warn("remote categorization degraded", "error", err)
		reply = Reply{}
		stats.DegradedBatches = 1
	}

	vocab := NewVocabulary(active)
	results := make([]model.CategorizedCandidate, len(candidates))
	for i, c := range candidates {
		results[i] = model.CategorizedCandidate{CandidateExpense: c, Confidence: model.ConfidenceLow}
		if i >= len(reply.CategorizedExpenses) {
			continue
		}
		entry := reply.CategorizedExpenses[i]
		if name, ok := vocab.Resolve(entry.Category); ok {
			results[i].Category = name
			results[i].Confidence = model.ParseConfidence(entry.Confidence)
		}
	}

	if stats.DegradedBatches == 0 {
		stats.Padded = max(0, len(candidates)-len(reply.CategorizedExpenses))
		stats.Truncated = max(0, len(reply.CategorizedExpenses)-len(candidates))
	} else {
		stats.Padded = len(candidates)
	}

	return results, stats, nil
}

func (r *RemoteClient) post(ctx context.Context, body []byte, reply *Reply) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return retry.Unrecoverable(ctx.Err())
		}
		return fmt.Errorf("%w: %w", common.ErrCategorizerUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return retry.Unrecoverable(fmt.Errorf("%w: remote categorizer is not configured", common.ErrCategorizerUnavailable))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w (status %d)", errServerStatus, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return retry.Unrecoverable(fmt.Errorf("remote categorizer rejected request (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	*reply = Reply{}
	if err := json.Unmarshal(data, reply); err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

// isRetryableRemote retries transport failures and 429/5xx statuses.
func isRetryableRemote(err error) bool {
	if !retry.IsRecoverable(err) {
		return false
	}
	return errors.Is(err, errServerStatus) || errors.Is(err, common.ErrCategorizerUnavailable)
}
