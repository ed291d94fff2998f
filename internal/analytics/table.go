package analytics

import (
	"encoding/json"

	"expensedash/internal/core"
)

// Row is one result row. Cells are string, int64, float64 or nil (null).
type Row []any

// Table is the tabular result of a query.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// MarshalJSON always emits arrays, never null, for columns and rows.
func (t Table) MarshalJSON() ([]byte, error) {
	type plain Table
	if t.Columns == nil {
		t.Columns = []string{}
	}
	if t.Rows == nil {
		t.Rows = []Row{}
	}
	return json.Marshal(plain(t))
}

func newTable(columns ...string) Table {
	return Table{Columns: columns, Rows: make([]Row, 0)}
}

func (t *Table) add(cells ...any) {
	t.Rows = append(t.Rows, Row(cells))
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Value returns the cell at row for the named column, or nil when either is out of range.
func (t Table) Value(row int, column string) any {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	for i, c := range t.Columns {
		if c == column && i < len(t.Rows[row]) {
			return t.Rows[row][i]
		}
	}
	return nil
}



// money rounds a monetary value for output.
func money(v float64) any {
	return core.Round2(v)
}

// percent returns num*100/den rounded, or nil when den is zero.
func percent(num, den float64) any {
	if den == 0 {
		return nil
	}
	return core.Round2(num * 100 / den)
}
