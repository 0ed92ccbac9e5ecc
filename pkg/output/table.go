package output

import (
	"fmt"
	"io"
	"strings"
)

// Column is a single table column with its header and current width.
//
// Fields:
//   - Header: The display text for this column's header
//   - Width: The current display width for this column in cells
//   - hidden: Whether this column is excluded from output
type Column struct {
	Header string
	Width  int
	hidden bool
}

// Table formats rows into aligned columns. Widths are measured in display
// cells so status icons and wide characters line up.
//
// Rows added with AddRow are buffered and widen the columns as they arrive;
// Render prints the header, a dashed separator and every buffered row.
type Table struct {
	columns   []Column
	rows      [][]string
	separator string
}

// NewTable creates an empty table with a two-space column separator.
//
// Returns:
//   - *Table: A new table ready for column configuration
func NewTable() *Table {
	return &Table{
		columns:   make([]Column, 0),
		separator: "  ",
	}
}

// WithSeparator sets a custom column separator and returns the table.
func (t *Table) WithSeparator(sep string) *Table {
	t.separator = sep
	return t
}

// AddColumn adds a column as wide as its header and returns the table.
func (t *Table) AddColumn(header string) *Table {
	return t.AddColumnWithMinWidth(header, 0)
}

// AddColumnWithMinWidth adds a column with a minimum width guarantee and returns the table.
//
// Parameters:
//   - header: The text to display in the column header
//   - minWidth: Minimum width in cells for this column
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) AddColumnWithMinWidth(header string, minWidth int) *Table {
	width := DisplayWidth(header)
	if minWidth > width {
		width = minWidth
	}
	t.columns = append(t.columns, Column{Header: header, Width: width})
	return t
}

// AddConditionalColumn adds a column with configurable visibility and returns the table.
//
// This suits columns that only matter when some row has data for them,
// such as PACKAGE when package names are echoed.
//
// Parameters:
//   - header: The text to display in the column header
//   - visible: Whether the column is shown
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) AddConditionalColumn(header string, visible bool) *Table {
	t.AddColumn(header)
	t.columns[len(t.columns)-1].hidden = !visible
	return t
}

// SetColumnVisibleByHeader sets the visibility of the first column with the
// given header and returns the table.
func (t *Table) SetColumnVisibleByHeader(header string, visible bool) *Table {
	for i := range t.columns {
		if t.columns[i].Header == header {
			t.columns[i].hidden = !visible
			break
		}
	}
	return t
}

// UpdateWidths widens columns to fit a row of values and returns the table.
//
// Parameters:
//   - values: One string per column; extra values are ignored
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) UpdateWidths(values ...string) *Table {
	for i, val := range values {
		if i < len(t.columns) {
			if width := DisplayWidth(val); width > t.columns[i].Width {
				t.columns[i].Width = width
			}
		}
	}
	return t
}

// AddRow buffers a data row for Render and widens the columns to fit it.
//
// Parameters:
//   - values: One string per column, hidden columns included
//
// Returns:
//   - *Table: The table instance for method chaining
func (t *Table) AddRow(values ...string) *Table {
	t.rows = append(t.rows, values)
	return t.UpdateWidths(values...)
}

// RowCount returns the number of buffered rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// HeaderRow returns the formatted header row, hidden columns excluded.
func (t *Table) HeaderRow() string {
	var parts []string
	for _, col := range t.columns {
		if !col.hidden {
			parts = append(parts, ToWidth(col.Header, col.Width))
		}
	}
	return strings.TrimRight(strings.Join(parts, t.separator), " ")
}

// SeparatorRow returns a row of dashes matching the visible column widths.
func (t *Table) SeparatorRow() string {
	var parts []string
	for _, col := range t.columns {
		if !col.hidden {
			parts = append(parts, strings.Repeat("-", col.Width))
		}
	}
	return strings.Join(parts, t.separator)
}

// FormatRow formats a data row with padding for each visible column.
//
// Values for hidden columns must still be passed and are skipped. Missing
// values are treated as empty strings. Trailing padding is trimmed.
//
// Parameters:
//   - values: One string per column
//
// Returns:
//   - string: Formatted row with values separated by the separator
func (t *Table) FormatRow(values ...string) string {
	var parts []string
	for i, col := range t.columns {
		if col.hidden {
			continue
		}
		val := ""
		if i < len(values) {
			val = values[i]
		}
		parts = append(parts, ToWidth(val, col.Width))
	}
	return strings.TrimRight(strings.Join(parts, t.separator), " ")
}

// ColumnCount returns the total number of columns including hidden ones.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// GetColumnWidth returns the width of a column by index, or 0 when the
// index is out of bounds.
func (t *Table) GetColumnWidth(index int) int {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].Width
	}
	return 0
}

// IsColumnHidden returns whether a column is hidden. Out of bounds indexes
// report true.
func (t *Table) IsColumnHidden(index int) bool {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].hidden
	}
	return true
}

// Render writes the header, the separator and all buffered rows.
//
// Parameters:
//   - w: The writer to output to
//
// Returns:
//   - error: The first write error, or nil
func (t *Table) Render(w io.Writer) error {
	if _, err := fmt.Fprintln(w, t.HeaderRow()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.SeparatorRow()); err != nil {
		return err
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintln(w, t.FormatRow(row...)); err != nil {
			return err
		}
	}
	return nil
}

// String returns a representation of the column layout for debugging, in
// the form "Table{columns: [NAME:4, GROUP:5 (hidden)]}".
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString("Table{columns: [")
	for i, col := range t.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		hidden := ""
		if col.hidden {
			hidden = " (hidden)"
		}
		sb.WriteString(fmt.Sprintf("%s:%d%s", col.Header, col.Width, hidden))
	}
	sb.WriteString("]}")
	return sb.String()
}
