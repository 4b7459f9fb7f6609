package csvimport

import (
	"strconv"
	"strings"

	"github.com/Veraticus/expense-flow/internal/model"
)

// SplitFields splits one CSV line into trimmed fields.
// A double quote toggles quoted mode; inside quotes a doubled quote is a
// literal quote. Commas only separate fields outside quotes.
func SplitFields(line string) []string {
	fields := make([]string, 0, 4)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}

// QuoteField quotes a value when it would not survive SplitFields verbatim.
func QuoteField(value string) string {
	if value == "" {
		return value
	}
	if !strings.ContainsAny(value, ",\"\r\n") && strings.TrimSpace(value) == value {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Serialize writes candidates back out as CSV. The categorized layout is used
// when any candidate carries a category.
func Serialize(candidates []model.CandidateExpense) string {
	categorized := false
	for _, c := range candidates {
		if c.HasCategory() {
			categorized = true
			break
		}
	}

	var b strings.Builder
	if categorized {
		b.WriteString("Date,Category,Amount,Description\n")
	} else {
		b.WriteString("Date,Amount,Description\n")
	}

	for _, c := range candidates {
		row := []string{QuoteField(c.Date)}
		if categorized {
			row = append(row, QuoteField(c.Category))
		}
		row = append(row,
			strconv.FormatFloat(c.Amount, 'f', -1, 64),
			QuoteField(c.Description),
		)
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}

	return b.String()
}
