package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/expense-flow/internal/csvimport"
	"github.com/Veraticus/expense-flow/internal/importer"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// RenderPreview describes a parsed and categorized import before commit.
func RenderPreview(s *importer.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Rows parsed:     %d\n", len(s.Candidates))
	fmt.Fprintf(&b, "Rows skipped:    %d\n", len(s.Skipped))
	fmt.Fprintf(&b, "Ready to import: %d\n", len(s.Result.AutoCommit))
	fmt.Fprintf(&b, "Need review:     %d", len(s.Result.NeedsReview))
	if s.Stats.Batches > 0 {
		fmt.Fprintf(&b, "\n%s Categorizer batches: %d", RobotIcon, s.Stats.Batches)
		if s.Stats.DegradedBatches > 0 {
			fmt.Fprintf(&b, " (%d degraded)", s.Stats.DegradedBatches)
		}
	}
	if s.Degraded {
		b.WriteString("\n" + FormatWarning("No categorizer available; uncategorized rows need review"))
	}

	return RenderBox("Import preview", b.String())
}

// RenderSkipped lists the rows the parser dropped.
func RenderSkipped(issues []csvimport.RowIssue) string {
	if len(issues) == 0 {
		return ""
	}
	lines := make([]string, 0, len(issues)+1)
	lines = append(lines, FormatWarning(fmt.Sprintf("Skipped %d row(s):", len(issues))))
	for _, issue := range issues {
		lines = append(lines, SubtleStyle.Render(fmt.Sprintf("  line %d: %s", issue.Line, issue.Reason)))
	}
	return strings.Join(lines, "\n")
}

// RenderSummary is the final result of a committed import.
func RenderSummary(summary *importer.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automatically categorized: %d\n", summary.AutoCommitted)
	fmt.Fprintf(&b, "Reviewed:                  %d\n", summary.Reviewed)
	fmt.Fprintf(&b, "Skipped rows:              %d", summary.Skipped)

	headline := FormatSuccess(summary.Message())
	if summary.Partial() {
		headline = FormatWarning(summary.Message())
	}
	return lipgloss.JoinVertical(lipgloss.Left, headline, RenderBox("Import complete", b.String()))
}

// RenderCategories is a table of categories in display order.
func RenderCategories(categories []model.Category) string {
	rows := make([][]string, len(categories))
	for i, c := range categories {
		status := "active"
		if c.IsArchived {
			status = "archived"
		}
		rows[i] = []string{fmt.Sprint(c.Order + 1), c.Name, status, c.Description}
	}
	return renderTable([]string{"#", "Name", "Status", "Description"}, rows)
}

// RenderExpenses is a table of stored expenses.
func RenderExpenses(expenses []model.CommittedExpense) string {
	rows := make([][]string, len(expenses))
	for i, e := range expenses {
		rows[i] = []string{e.Date, fmt.Sprintf("%.2f", e.Amount), e.Category, e.Description, e.ID}
	}
	return renderTable([]string{"Date", "Amount", "Category", "Description", "ID"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(headers, TableHeaderStyle))
	for _, row := range rows {
		lines = append(lines, renderRow(row, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}
