package core

import (
	"sort"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
)

// IdentifierColumn names the column that identifies a row.
const IdentifierColumn = "instrument"

// Row is one instrument's flattened fields. A column absent from Fields is
// missing, which is distinct from a field that is present with a null value.
type Row struct {
	Instrument string
	Fields     *flatten.Record
}

// Value returns the value of column. The identifier column is always present.
func (r Row) Value(column string) (flatten.Value, bool) {
	if column == IdentifierColumn {
		return flatten.String(r.Instrument), true
	}
	return r.Fields.Get(column)
}

// Columns returns the row's field paths in insertion order, without the identifier.
func (r Row) Columns() []string {
	return r.Fields.Keys()
}

// Table is an ordered set of rows sharing a column superset.
// A Table is not modified after construction.
type Table struct {
	rows    []Row
	columns []string       // sorted, identifier excluded
	index   map[string]int // instrument → first row position
}

// NewTable builds a table whose columns are the union of the rows' fields.
func NewTable(rows []Row) *Table {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for _, c := range r.Columns() {
			seen[c] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	return NewTableWithColumns(rows, cols)
}

// NewTableWithColumns builds a table with an explicit column set, used when a
// persisted header names columns no row has a value for. The identifier
// column is dropped from cols if present.
func NewTableWithColumns(rows []Row, cols []string) *Table {
	columns := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != IdentifierColumn {
			columns = append(columns, c)
		}
	}
	sort.Strings(columns)

	index := make(map[string]int, len(rows))
	for i, r := range rows {
		if _, dup := index[r.Instrument]; !dup {
			index[r.Instrument] = i
		}
	}

	return &Table{rows: rows, columns: columns, index: index}
}

// Columns returns the header: the identifier first, then the sorted field columns.
func (t *Table) Columns() []string {
	return append([]string{IdentifierColumn}, t.columns...)
}

// FieldColumns returns the sorted field columns without the identifier.
func (t *Table) FieldColumns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Rows returns the rows in build order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Instruments returns the row identifiers in row order.
func (t *Table) Instruments() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Instrument
	}
	return out
}

// RowByInstrument returns the first row identified by instrument.
// The error wraps ErrRowNotFound when there is none.
func (t *Table) RowByInstrument(instrument string) (Row, error) {
	i, ok := t.index[instrument]
	if !ok {
		return Row{}, rowNotFound(instrument)
	}
	return t.rows[i], nil
}

// RowAt returns the row at 0-based position i.
// The error wraps ErrIndexOutOfRange when i is invalid.
func (t *Table) RowAt(i int) (Row, error) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, indexOutOfRange(i, len(t.rows))
	}
	return t.rows[i], nil
}
