package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Veraticus/expense-flow/internal/categorize"
	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService labels every candidate with the first category it receives.
type stubService struct {
	err        error
	categories []model.Category
	calls      int
}

func (s *stubService) Categorize(_ context.Context, candidates []model.CandidateExpense, categories []model.Category) ([]model.CategorizedCandidate, error) {
	s.calls++
	s.categories = categories
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.CategorizedCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = model.CategorizedCandidate{CandidateExpense: c, Confidence: model.ConfidenceHigh}
		if len(categories) > 0 {
			out[i].Category = categories[0].Name
		}
	}
	return out, nil
}

const categorizeBody = `{
	"expenses": [{"description": "Whole Foods", "amount": 45.5, "date": "2025-10-01"}],
	"categories": [
		{"name": "Old", "description": "", "order": 0, "isArchived": true},
		{"name": "Food", "description": "Groceries", "order": 1, "isArchived": false}
	]
}`

func TestCategorizeHandler(t *testing.T) {
	tests := []struct {
		svc        categorize.Service
		name       string
		method     string
		body       string
		wantError  string
		wantStatus int
	}{
		{name: "wrong method", method: http.MethodGet, svc: &stubService{}, wantStatus: http.StatusMethodNotAllowed},
		{name: "bad json", method: http.MethodPost, body: "{", svc: &stubService{}, wantStatus: http.StatusBadRequest},
		{name: "nil service", method: http.MethodPost, body: categorizeBody, wantStatus: http.StatusServiceUnavailable, wantError: common.ErrCategorizerUnavailable.Error()},
		{
			name:       "service unavailable",
			method:     http.MethodPost,
			body:       categorizeBody,
			svc:        &stubService{err: fmt.Errorf("no key: %w", common.ErrCategorizerUnavailable)},
			wantStatus: http.StatusServiceUnavailable,
			wantError:  common.ErrCategorizerUnavailable.Error(),
		},
		{
			name:       "service failure",
			method:     http.MethodPost,
			body:       categorizeBody,
			svc:        &stubService{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "categorization failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.svc, nil)
			req := httptest.NewRequest(tt.method, "/api/categorize", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			if tt.wantError != "" {
				var body errorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
			}
		})
	}
}

func TestCategorizeHandler_Success(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(categorizeBody))
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	require.Len(t, svc.categories, 1)
	assert.Equal(t, "Food", svc.categories[0].Name)

	var reply categorize.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	require.Len(t, reply.CategorizedExpenses, 1)
	got := reply.CategorizedExpenses[0]
	assert.Equal(t, "Whole Foods", got.Description)
	assert.Equal(t, "2025-10-01", got.Date)
	assert.InDelta(t, 45.5, got.Amount, 0.0001)
	assert.Equal(t, "Food", got.Category)
	assert.Equal(t, "high", got.Confidence)
}

func TestCategorizeHandler_EmptyExpenses(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader(`{"expenses": [], "categories": []}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categorizedExpenses": []}`, rec.Body.String())
	assert.Zero(t, svc.calls)
}

func TestHealth(t *testing.T) {
	h := NewHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
