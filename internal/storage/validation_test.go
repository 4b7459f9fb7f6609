package storage

import (
	"context"
	"math"
	"testing"

	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateContext(t *testing.T) {
	assert.NoError(t, validateContext(context.Background()))
	//nolint:staticcheck // testing nil context handling
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
}

func TestValidateExpense_Amount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{name: "positive", amount: 0.01},
		{name: "zero", amount: 0, wantErr: true},
		{name: "NaN", amount: math.NaN(), wantErr: true},
		{name: "infinite", amount: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateExpense(model.CommittedExpense{
				ID: "1", Date: "2025-10-01", Description: "x", Category: "Food", Amount: tt.amount,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidExpense)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, validateFilter(RecordFilter{From: "2025-10-01", To: "2025-10-01"}))
	assert.NoError(t, validateFilter(RecordFilter{From: "2025-10-01"}))
	assert.ErrorIs(t, validateFilter(RecordFilter{From: "2025-10-02", To: "2025-10-01"}), ErrInvalidDateRange)
	assert.Error(t, validateFilter(RecordFilter{Limit: -1}))
}
