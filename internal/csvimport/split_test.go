package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-flow/internal/model"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain fields",
			line: "2025-10-01,45.50,Whole Foods",
			want: []string{"2025-10-01", "45.50", "Whole Foods"},
		},
		{
			name: "fields are trimmed",
			line: " 2025-10-01 ,  45.50,Whole Foods  ",
			want: []string{"2025-10-01", "45.50", "Whole Foods"},
		},
		{
			name: "quoted comma",
			line: `2025-10-01,12.00,"Dinner, downtown"`,
			want: []string{"2025-10-01", "12.00", "Dinner, downtown"},
		},
		{
			name: "escaped quote collapses",
			line: `2025-10-01,12.00,"Dinner, ""fancy"" place"`,
			want: []string{"2025-10-01", "12.00", `Dinner, "fancy" place`},
		},
		{
			name: "empty quoted field",
			line: `a,"",b`,
			want: []string{"a", "", "b"},
		},
		{
			name: "trailing comma yields empty field",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
		{
			name: "single field",
			line: "hello",
			want: []string{"hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitFields(tt.line))
		})
	}
}

func TestQuoteField(t *testing.T) {
	assert.Equal(t, "plain", QuoteField("plain"))
	assert.Equal(t, "", QuoteField(""))
	assert.Equal(t, `"a, b"`, QuoteField("a, b"))
	assert.Equal(t, `"say ""hi"""`, QuoteField(`say "hi"`))
	assert.Equal(t, `" padded"`, QuoteField(" padded"))
}

func TestSerialize_RoundTrip(t *testing.T) {
	parser := NewParser([]model.Category{{Name: "Food"}}, nil)

	original := []model.CandidateExpense{
		{Date: "2025-10-01", Amount: 12.5, Description: `Dinner, "fancy" place`, Category: "Food"},
		{Date: "10/02/2025", Amount: 3, Description: "Coffee"},
	}

	first, err := parser.Parse(Serialize(original))
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, `Dinner, "fancy" place`, first[0].Description)
	assert.Equal(t, "Food", first[0].Category)
	assert.Equal(t, "10/02/2025", first[1].Date)
	assert.InDelta(t, 3.0, first[1].Amount, 0.0001)

	second, err := parser.Parse(Serialize(first))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSerialize_BasicLayoutWithoutCategories(t *testing.T) {
	out := Serialize([]model.CandidateExpense{
		{Date: "2025-10-01", Amount: 45.5, Description: "Whole Foods"},
	})
	assert.Equal(t, "Date,Amount,Description\n2025-10-01,45.5,Whole Foods\n", out)
}
