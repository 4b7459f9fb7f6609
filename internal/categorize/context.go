package categorize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/expense-flow/internal/model"
)

// MerchantCount is one row of the merchant frequency table.
type MerchantCount struct {
	Merchant string
	Count    int
}

// MerchantCounts groups candidates by upper-cased, trimmed description and
// orders the groups by count descending, then name.
func MerchantCounts(candidates []model.CandidateExpense) []MerchantCount {
	counts := make(map[string]int)
	for _, c := range candidates {
		key := strings.ToUpper(strings.TrimSpace(c.Description))
		if key == "" {
			continue
		}
		counts[key]++
	}

	merchants := make([]MerchantCount, 0, len(counts))
	for merchant, count := range counts {
		merchants = append(merchants, MerchantCount{Merchant: merchant, Count: count})
	}

	sort.Slice(merchants, func(i, j int) bool {
		if merchants[i].Count != merchants[j].Count {
			return merchants[i].Count > merchants[j].Count
		}
		return merchants[i].Merchant < merchants[j].Merchant
	})

	return merchants
}

// MerchantContext renders the merchant frequency table for the prompt. It is
// computed once per import and shared by every batch.
func MerchantContext(candidates []model.CandidateExpense) string {
	merchants := MerchantCounts(candidates)
	if len(merchants) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, m := range merchants {
		unit := "transactions"
		if m.Count == 1 {
			unit = "transaction"
		}
		fmt.Fprintf(&sb, "- %s: %d %s\n", m.Merchant, m.Count, unit)
	}
	return sb.String()
}

// Batches splits n items into consecutive [start, end) spans of at most size.
func Batches(n, size int) [][2]int {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}

	spans := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		spans = append(spans, [2]int{start, min(start+size, n)})
	}
	return spans
}
