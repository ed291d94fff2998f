package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"expensedash/internal/analytics"
	"expensedash/internal/core"
	"expensedash/internal/filter"
)

// maxCellWidth bounds a rendered column; longer cells are truncated.
const maxCellWidth = 36

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cba6f7")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

// FormatCell renders one table cell. Null cells are shown as a dash and
// monetary floats with two decimals.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', 2, 64)
	default:
		return fmt.Sprint(val)
	}
}

// RenderTable writes t as an aligned text table.
func RenderTable(w io.Writer, t analytics.Table) {
	if len(t.Columns) == 0 {
		return
	}

	cells := make([][]string, 0, t.Len()+1)
	cells = append(cells, t.Columns)
	for r := 0; r < t.Len(); r++ {
		line := make([]string, len(t.Columns))
		for i, column := range t.Columns {
			line[i] = ansi.Truncate(FormatCell(t.Value(r, column)), maxCellWidth, "…")
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(t.Columns))
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	for n, line := range cells {
		parts := make([]string, len(line))
		for i, c := range line {
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
			if n == 0 {
				parts[i] = headerStyle.Render(parts[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	if t.Len() == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(no rows)"))
	}
}

// RenderResult writes a query heading followed by its table.
func RenderResult(w io.Writer, r analytics.Result) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s%d. %s", r.Catalog, r.ID, r.Label)))
	RenderTable(w, r.Table)
	fmt.Fprintln(w)
}

// RenderKPIs writes the dashboard header metrics.
func RenderKPIs(w io.Writer, k core.KPIs) {
	RenderTable(w, analytics.Table{
		Columns: []string{"total", "count", "total_cashback", "mean"},
		Rows:    []analytics.Row{{k.Total, int64(k.Count), k.TotalCashback, k.Mean}},
	})
}

// RenderExpenses writes records as a table.
func RenderExpenses(w io.Writer, records []core.Expense) {
	t := analytics.Table{Columns: []string{"id", "date", "category", "payment_mode", "description", "amount", "cashback"}}
	for _, e := range records {
		t.Rows = append(t.Rows, analytics.Row{e.ID, e.Date, e.Category, e.PaymentMode, e.Description, e.Amount, e.Cashback})
	}
	RenderTable(w, t)
}

// RenderDomain writes the selectable filter values.
func RenderDomain(w io.Writer, d filter.Domain) {
	for _, section := range []struct {
		title  string
		values []string
	}{
		{"Categories", d.Categories},
		{"Payment modes", d.PaymentModes},
		{"Months", d.Months},
	} {
		fmt.Fprintln(w, titleStyle.Render(section.title))
		if len(section.values) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("  (none)"))
			continue
		}
		fmt.Fprintln(w, "  "+strings.Join(append([]string{filter.AllValue}, section.values...), ", "))
	}
}

// RenderError writes an error line.
func RenderError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error: "+err.Error()))
}
