package core

import (
	"encoding/json"
	"sort"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
)

// BothMissing is the value reported for a column missing from both rows.
const BothMissing = "Both missing"

// FieldValue is one column of a comparison bucket. When Missing is set the
// column was absent or null in both rows and Value is unset.
type FieldValue struct {
	Column  string
	Value   flatten.Value
	Missing bool
}

// Display returns the value's text, or BothMissing.
func (f FieldValue) Display() string {
	if f.Missing {
		return BothMissing
	}
	return f.Value.Text()
}

// Difference is a column present in both rows with unequal values.
type Difference struct {
	Column string
	First  flatten.Value
	Second flatten.Value
}

// Summary counts the columns in each bucket.
type Summary struct {
	TotalFields        int `json:"total_fields"`
	DifferentFields    int `json:"different_fields"`
	FieldsOnlyInFirst  int `json:"fields_only_in_first"`
	FieldsOnlyInSecond int `json:"fields_only_in_second"`
	SameFields         int `json:"same_fields"`
}

// Comparison is the field-by-field diff of two rows. Every bucket is sorted
// by column name.
type Comparison struct {
	First        string
	Second       string
	Differences  []Difference
	OnlyInFirst  []FieldValue
	OnlyInSecond []FieldValue
	Same         []FieldValue
	Summary      Summary
}

// CompareRows classifies every column of first ∪ second, except the
// identifier. A value that is absent, null or NaN counts as missing:
//
//   - missing on both sides → Same, reported as BothMissing
//   - missing on one side   → OnlyInFirst / OnlyInSecond with the present value
//   - equal                 → Same
//   - otherwise             → Differences
func CompareRows(first, second Row) *Comparison {
	return compareColumns(first, second, unionColumns(nil, first, second))
}

func compareColumns(first, second Row, columns []string) *Comparison {
	c := &Comparison{First: first.Instrument, Second: second.Instrument}
	for _, col := range columns {
		v1, ok1 := first.Fields.Get(col)
		v2, ok2 := second.Fields.Get(col)
		missing1 := !ok1 || v1.IsMissing()
		missing2 := !ok2 || v2.IsMissing()

		switch {
		case missing1 && missing2:
			c.Same = append(c.Same, FieldValue{Column: col, Missing: true})
		case missing1:
			c.OnlyInSecond = append(c.OnlyInSecond, FieldValue{Column: col, Value: v2})
		case missing2:
			c.OnlyInFirst = append(c.OnlyInFirst, FieldValue{Column: col, Value: v1})
		case !v1.Equal(v2):
			c.Differences = append(c.Differences, Difference{Column: col, First: v1, Second: v2})
		default:
			c.Same = append(c.Same, FieldValue{Column: col, Value: v1})
		}
	}

	c.Summary = Summary{
		TotalFields:        len(columns),
		DifferentFields:    len(c.Differences),
		FieldsOnlyInFirst:  len(c.OnlyInFirst),
		FieldsOnlyInSecond: len(c.OnlyInSecond),
		SameFields:         len(c.Same),
	}
	return c
}

// unionColumns returns the sorted union of base and the rows' field columns.
func unionColumns(base []string, rows ...Row) []string {
	seen := make(map[string]struct{}, len(base))
	var cols []string
	for _, col := range base {
		if _, ok := seen[col]; !ok && col != IdentifierColumn {
			seen[col] = struct{}{}
			cols = append(cols, col)
		}
	}
	for _, r := range rows {
		for _, col := range r.Columns() {
			if col == IdentifierColumn {
				continue
			}
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}

// comparisonJSON is the wire shape of a Comparison. Bucket maps are keyed
// by column; differences are keyed by instrument inside each column.
type comparisonJSON struct {
	InstrumentsCompared [2]string                           `json:"instruments_compared"`
	Differences         map[string]map[string]flatten.Value `json:"differences"`
	OnlyInFirst         map[string]any                      `json:"only_in_first"`
	OnlyInSecond        map[string]any                      `json:"only_in_second"`
	SameValues          map[string]any                      `json:"same_values"`
	Summary             Summary                             `json:"summary"`
}

// MarshalJSON encodes c in the report shape used by the CLI and HTTP API.
func (c *Comparison) MarshalJSON() ([]byte, error) {
	out := comparisonJSON{
		InstrumentsCompared: [2]string{c.First, c.Second},
		Differences:         make(map[string]map[string]flatten.Value, len(c.Differences)),
		OnlyInFirst:         bucketJSON(c.OnlyInFirst),
		OnlyInSecond:        bucketJSON(c.OnlyInSecond),
		SameValues:          bucketJSON(c.Same),
		Summary:             c.Summary,
	}
	for _, d := range c.Differences {
		out.Differences[d.Column] = map[string]flatten.Value{
			c.First:  d.First,
			c.Second: d.Second,
		}
	}
	return json.Marshal(out)
}

func bucketJSON(fields []FieldValue) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Missing {
			m[f.Column] = BothMissing
			continue
		}
		m[f.Column] = f.Value
	}
	return m
}

// Comparator answers comparison requests against one loaded table.
// It holds no mutable state and may be shared between goroutines.
//
// Rows are compared over every table column, so a column neither row has a
// value for counts as both missing. This keeps results stable when the table
// is written with WriteCSV and read back.
type Comparator struct {
	table *Table
}

// NewComparator returns a comparator over t.
func NewComparator(t *Table) *Comparator {
	return &Comparator{table: t}
}

// Table returns the table being compared.
func (c *Comparator) Table() *Table { return c.table }

// Instruments lists the available row identifiers.
func (c *Comparator) Instruments() []string { return c.table.Instruments() }

// CompareByInstrument compares the rows identified by first and second.
// The error wraps ErrRowNotFound if either is unknown.
func (c *Comparator) CompareByInstrument(first, second string) (*Comparison, error) {
	r1, err := c.table.RowByInstrument(first)
	if err != nil {
		return nil, err
	}
	r2, err := c.table.RowByInstrument(second)
	if err != nil {
		return nil, err
	}
	return c.compare(r1, r2), nil
}

func (c *Comparator) compare(r1, r2 Row) *Comparison {
	return compareColumns(r1, r2, unionColumns(c.table.columns, r1, r2))
}

// CompareByIndex compares the rows at 0-based positions i and j.
// The error wraps ErrIndexOutOfRange if either is invalid.
func (c *Comparator) CompareByIndex(i, j int) (*Comparison, error) {
	r1, err := c.table.RowAt(i)
	if err != nil {
		return nil, err
	}
	r2, err := c.table.RowAt(j)
	if err != nil {
		return nil, err
	}
	return c.compare(r1, r2), nil
}
