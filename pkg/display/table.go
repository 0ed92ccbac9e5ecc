package display

import "github.com/ajxudir/updatecheck/pkg/output"

// ColumnDef defines a single table column's properties.
//
// Fields:
//   - Name: Column header text (displayed in uppercase)
//   - MinWidth: Minimum column width in cells
//   - Optional: If true, column can be hidden via TableOptions
type ColumnDef struct {
	// Name is the column header text.
	Name string

	// MinWidth is the minimum width in cells.
	// Column will expand to fit content if content is wider.
	MinWidth int

	// Optional indicates this column can be hidden.
	Optional bool
}

// Schema defines a complete table structure.
type Schema struct {
	// Columns defines the table columns in display order.
	Columns []ColumnDef
}

// Predefined table schemas. Each command builds its table from one of
// these so column order stays consistent.
var (
	// ResultSchema defines columns for the 'resolve' command output.
	// Columns: COMPONENT, STATUS, TARGET, LATEST, RELEASES, PACKAGE*, NOTE
	// * PACKAGE is optional
	ResultSchema = Schema{
		Columns: []ColumnDef{
			{Name: "COMPONENT", MinWidth: 9},
			{Name: "STATUS", MinWidth: 6},
			{Name: "TARGET", MinWidth: 6},
			{Name: "LATEST", MinWidth: 6},
			{Name: "RELEASES", MinWidth: 8},
			{Name: "PACKAGE", MinWidth: 7, Optional: true},
			{Name: "NOTE", MinWidth: 4},
		},
	}

	// ReleasesSchema defines columns for the 'releases' command output.
	// Columns: VERSION, DATE, CRITICAL, NOTES
	ReleasesSchema = Schema{
		Columns: []ColumnDef{
			{Name: "VERSION", MinWidth: 7},
			{Name: "DATE", MinWidth: 10},
			{Name: "CRITICAL", MinWidth: 8},
			{Name: "NOTES", MinWidth: 5},
		},
	}

	// BreakpointSchema defines columns for the 'classify' command output.
	// Columns: PACKAGE, VERSION, NORMALIZED, STABILITY, BREAKPOINT, TARGET
	BreakpointSchema = Schema{
		Columns: []ColumnDef{
			{Name: "PACKAGE", MinWidth: 7},
			{Name: "VERSION", MinWidth: 7},
			{Name: "NORMALIZED", MinWidth: 10},
			{Name: "STABILITY", MinWidth: 9},
			{Name: "BREAKPOINT", MinWidth: 10},
			{Name: "TARGET", MinWidth: 6},
		},
	}
)

// TableOptions configures table creation from a schema.
type TableOptions struct {
	// ShowOptional controls which optional columns are displayed.
	// Key is column name (e.g., "PACKAGE"), value is whether to show.
	ShowOptional map[string]bool
}

// NewTableFromSchema creates an output.Table from a schema and options.
//
// Parameters:
//   - schema: Table schema defining columns
//   - options: Configuration options
//
// Returns:
//   - *output.Table: New table ready for adding rows
//
// Example:
//
//	opts := TableOptions{ShowOptional: map[string]bool{"PACKAGE": true}}
//	table := display.NewTableFromSchema(display.ResultSchema, opts)
func NewTableFromSchema(schema Schema, options TableOptions) *output.Table {
	table := output.NewTable()
	for _, col := range schema.Columns {
		if col.Optional {
			table.AddConditionalColumn(col.Name, options.ShowOptional[col.Name])
		} else {
			table.AddColumnWithMinWidth(col.Name, col.MinWidth)
		}
	}
	return table
}

// NewResultTable creates a table for 'resolve' command output.
//
// Parameters:
//   - showPackage: If true, includes the PACKAGE column
func NewResultTable(showPackage bool) *output.Table {
	return NewTableFromSchema(ResultSchema, TableOptions{
		ShowOptional: map[string]bool{"PACKAGE": showPackage},
	})
}

// NewReleasesTable creates a table for 'releases' command output.
func NewReleasesTable() *output.Table {
	return NewTableFromSchema(ReleasesSchema, TableOptions{})
}

// NewBreakpointTable creates a table for 'classify' command output.
func NewBreakpointTable() *output.Table {
	return NewTableFromSchema(BreakpointSchema, TableOptions{})
}
