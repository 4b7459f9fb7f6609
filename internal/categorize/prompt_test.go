package categorize

import (
	"strings"
	"testing"

	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBatches(t *testing.T) {
	tests := []struct {
		name string
		want [][2]int
		n    int
		size int
	}{
		{name: "none", n: 0, size: 40, want: nil},
		{name: "single partial", n: 5, size: 40, want: [][2]int{{0, 5}}},
		{name: "exact multiple", n: 80, size: 40, want: [][2]int{{0, 40}, {40, 80}}},
		{name: "remainder", n: 85, size: 40, want: [][2]int{{0, 40}, {40, 80}, {80, 85}}},
		{name: "default size", n: 41, size: 0, want: [][2]int{{0, 40}, {40, 41}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Batches(tt.n, tt.size))
		})
	}
}

func TestMerchantContext(t *testing.T) {
	candidates := makeCandidates("Starbucks", "  starbucks ", "Amazon", "STARBUCKS", "Amazon", "Zoo")

	counts := MerchantCounts(candidates)
	assert.Equal(t, []MerchantCount{
		{Merchant: "STARBUCKS", Count: 3},
		{Merchant: "AMAZON", Count: 2},
		{Merchant: "ZOO", Count: 1},
	}, counts)

	assert.Equal(t,
		"- STARBUCKS: 3 transactions\n- AMAZON: 2 transactions\n- ZOO: 1 transaction\n",
		MerchantContext(candidates))
	assert.Empty(t, MerchantContext(nil))
}

func TestBuildPrompt(t *testing.T) {
	batch := []model.CandidateExpense{
		{Date: "2025-10-01", Amount: 45.5, Description: "Whole Foods grocery shopping"},
		{Date: "2025-10-02", Amount: 12.99, Description: "Netflix subscription"},
	}
	prompt := BuildPrompt(PromptInput{
		Categories:      append([]model.Category{{Name: "Retired", IsArchived: true}}, testCategories...),
		MerchantContext: "- WHOLE FOODS GROCERY SHOPPING: 1 transaction\n",
		Batch:           batch,
		Offset:          40,
	})

	for _, want := range []string{
		"- Food: Groceries and restaurants",
		"- Entertainment: Streaming and events",
		"- WHOLE FOODS GROCERY SHOPPING: 1 transaction",
		"41. 2025-10-01 | 45.50 | Whole Foods grocery shopping",
		"42. 2025-10-02 | 12.99 | Netflix subscription",
		"high:",
		"medium:",
		"low:",
		"exactly 2 objects",
		`"category"`,
		`"confidence"`,
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "Retired")
	assert.False(t, strings.Contains(prompt, "\n1. "), "numbering must be global")
}

func TestBuildPrompt_NoCategories(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Batch: makeCandidates("x")})
	assert.Contains(t, prompt, "no categories are defined")
	assert.Contains(t, prompt, "(none)")
}
