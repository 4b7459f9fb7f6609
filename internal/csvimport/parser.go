// Package csvimport turns uploaded CSV text into validated candidate expenses.
//
// Two layouts are understood:
//
//	Date,Amount,Description
//	Date,Category,Amount,Description
//
// The categorized layout is selected when the header mentions "category"
// (case-insensitive). Invalid rows are skipped with a warning; only an empty
// file or a file without a single valid row is fatal.
package csvimport

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
)

// Layout identifies the column order of an import file.
type Layout int

// Supported layouts.
const (
	LayoutBasic Layout = iota
	LayoutCategorized
)

func (l Layout) String() string {
	if l == LayoutCategorized {
		return "date,category,amount,description"
	}
	return "date,amount,description"
}

// DetectLayout picks the layout from the header line.
func DetectLayout(header string) Layout {
	if strings.Contains(strings.ToLower(header), "category") {
		return LayoutCategorized
	}
	return LayoutBasic
}

// RowIssue describes a row that was skipped.
type RowIssue struct {
	Raw    string
	Reason string
	Line   int
}

// Result is the detailed outcome of a parse.
type Result struct {
	Candidates []model.CandidateExpense
	Skipped    []RowIssue
	Layout     Layout
}

// Parser validates CSV rows against a snapshot of active categories.
type Parser struct {
	valid  map[string]struct{}
	logger *slog.Logger
}

// NewParser creates a parser that accepts the names of the given non-archived
// categories as pre-assigned categories.
func NewParser(categories []model.Category, logger *slog.Logger) *Parser {
	valid := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		if cat.IsArchived {
			continue
		}
		valid[cat.Name] = struct{}{}
	}

	return &Parser{
		valid:  valid,
		logger: common.OrDefault(logger),
	}
}

// Parse returns the candidates in file order.
func (p *Parser) Parse(raw string) ([]model.CandidateExpense, error) {
	result, err := p.ParseDetailed(raw)
	if err != nil {
		return nil, err
	}
	return result.Candidates, nil
}

type sourceLine struct {
	text   string
	number int
}

// ParseDetailed parses raw CSV text and reports skipped rows alongside the
// candidates.
func (p *Parser) ParseDetailed(raw string) (*Result, error) {
	lines := nonBlankLines(raw)
	if len(lines) < 2 {
		return nil, &common.ParseError{Err: common.ErrEmptyFile}
	}

	result := &Result{
		Layout:     DetectLayout(lines[0].text),
		Candidates: make([]model.CandidateExpense, 0, len(lines)-1),
	}

	for _, line := range lines[1:] {
		candidate, reason := p.parseRow(line, result.Layout)
		if reason != "" {
			p.logger.Warn("skipping invalid row",
				"line", line.number,
				"reason", reason)
			result.Skipped = append(result.Skipped, RowIssue{
				Line:   line.number,
				Reason: reason,
				Raw:    line.text,
			})
			continue
		}

		candidate.Index = len(result.Candidates)
		result.Candidates = append(result.Candidates, candidate)
	}

	if len(result.Candidates) == 0 {
		return nil, &common.ParseError{
			Err:    common.ErrNoValidRows,
			Reason: fmt.Sprintf("%d rows rejected", len(result.Skipped)),
		}
	}

	p.logger.Debug("parsed import file",
		"layout", result.Layout.String(),
		"rows", len(result.Candidates),
		"skipped", len(result.Skipped))

	return result, nil
}

// parseRow returns a non-empty reason when the row must be skipped.
func (p *Parser) parseRow(line sourceLine, layout Layout) (model.CandidateExpense, string) {
	fields := SplitFields(line.text)
	if len(fields) < 3 {
		return model.CandidateExpense{}, fmt.Sprintf("expected at least 3 fields, got %d", len(fields))
	}

	var dateStr, amountStr, description, category string
	switch layout {
	case LayoutCategorized:
		dateStr, category, amountStr = fields[0], fields[1], fields[2]
		description = joinRemaining(fields, 3)
	default:
		dateStr, amountStr = fields[0], fields[1]
		description = joinRemaining(fields, 2)
	}

	amount, err := ParseAmount(amountStr)
	if err != nil {
		return model.CandidateExpense{}, err.Error()
	}

	if _, err := ParseDate(dateStr); err != nil {
		return model.CandidateExpense{}, fmt.Sprintf("invalid date: %v", err)
	}

	if description == "" {
		return model.CandidateExpense{}, "missing description"
	}

	candidate := model.CandidateExpense{
		Date:        dateStr,
		Amount:      amount,
		Description: description,
		Line:        line.number,
	}

	if category != "" {
		if _, ok := p.valid[category]; ok {
			candidate.Category = category
		} else {
			candidate.SourceCategory = category
			p.logger.Warn("unknown category, row will be categorized",
				"line", line.number,
				"category", category)
		}
	}

	return candidate, ""
}

// ParseAmount parses a strictly positive base-10 amount.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing amount")
	}
	if strings.ContainsAny(s, "xX_") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %q", s)
	}

	return amount, nil
}

func joinRemaining(fields []string, from int) string {
	if from >= len(fields) {
		return ""
	}
	parts := make([]string, 0, len(fields)-from)
	for _, f := range fields[from:] {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, ", ")
}

func nonBlankLines(raw string) []sourceLine {
	split := strings.Split(raw, "\n")
	lines := make([]sourceLine, 0, len(split))
	for i, text := range split {
		text = strings.TrimRight(text, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, sourceLine{text: text, number: i + 1})
	}
	return lines
}
