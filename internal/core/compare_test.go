package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
	"github.com/google/go-cmp/cmp"
)

type kv struct {
	k string
	v flatten.Value
}

func row(instrument string, fields ...kv) Row {
	rec := flatten.NewRecord()
	for _, f := range fields {
		rec.Set(f.k, f.v)
	}
	return Row{Instrument: instrument, Fields: rec}
}

func num(f float64) flatten.Value { return flatten.Number(f) }

// bucket flattens a bucket to column → display text for diffing.
func bucket(fields []FieldValue) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Column] = f.Display()
	}
	return out
}

func TestCompareRows_BucketsAndSummary(t *testing.T) {
	a := row("A", kv{"x", num(1)}, kv{"y", flatten.Null()})
	b := row("B", kv{"x", num(1)}, kv{"z", num(2)})

	c := CompareRows(a, b)

	if len(c.Differences) != 0 {
		t.Errorf("Differences = %v, want none", c.Differences)
	}
	if len(c.OnlyInFirst) != 0 {
		t.Errorf("OnlyInFirst = %v, want none", c.OnlyInFirst)
	}
	if diff := cmp.Diff(map[string]string{"z": "2"}, bucket(c.OnlyInSecond)); diff != "" {
		t.Errorf("OnlyInSecond mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"x": "1", "y": BothMissing}, bucket(c.Same)); diff != "" {
		t.Errorf("Same mismatch (-want +got):\n%s", diff)
	}

	want := Summary{TotalFields: 3, DifferentFields: 0, FieldsOnlyInFirst: 0, FieldsOnlyInSecond: 1, SameFields: 2}
	if diff := cmp.Diff(want, c.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareRows_Difference(t *testing.T) {
	c := CompareRows(row("A", kv{"x", num(1)}), row("B", kv{"x", num(2)}))

	if len(c.Differences) != 1 {
		t.Fatalf("Differences = %d, want 1", len(c.Differences))
	}
	d := c.Differences[0]
	if d.Column != "x" || d.First.Text() != "1" || d.Second.Text() != "2" {
		t.Errorf("Difference = %+v, want x: 1 vs 2", d)
	}

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	wantDiffs := map[string]any{"x": map[string]any{"A": 1.0, "B": 2.0}}
	if diff := cmp.Diff(wantDiffs, got["differences"]); diff != "" {
		t.Errorf("differences mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"A", "B"}, got["instruments_compared"]); diff != "" {
		t.Errorf("instruments_compared mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareRows_MissingVariants(t *testing.T) {
	nan := flatten.Number(math.NaN())
	a := row("A",
		kv{"nan_both", nan},
		kv{"nan_first", nan},
		kv{"null_first", flatten.Null()},
		kv{"only_first", flatten.String("v")},
	)
	b := row("B",
		kv{"nan_both", flatten.Null()},
		kv{"nan_first", num(4)},
		kv{"null_first", flatten.Bool(true)},
	)

	c := CompareRows(a, b)

	if diff := cmp.Diff(map[string]string{"nan_both": BothMissing}, bucket(c.Same)); diff != "" {
		t.Errorf("Same mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"only_first": "v"}, bucket(c.OnlyInFirst)); diff != "" {
		t.Errorf("OnlyInFirst mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"nan_first": "4", "null_first": "true"}, bucket(c.OnlyInSecond)); diff != "" {
		t.Errorf("OnlyInSecond mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareRows_NumbersCompareByValue(t *testing.T) {
	one, err := flatten.NumberLiteral("1.0")
	if err != nil {
		t.Fatal(err)
	}
	c := CompareRows(row("A", kv{"x", num(1)}), row("B", kv{"x", one}))
	if len(c.Same) != 1 || len(c.Differences) != 0 {
		t.Errorf("1 vs 1.0 should be same, got %+v", c.Summary)
	}

	c = CompareRows(row("A", kv{"x", num(1)}), row("B", kv{"x", flatten.String("1")}))
	if len(c.Differences) != 1 {
		t.Errorf("number vs string should differ, got %+v", c.Summary)
	}
}

func TestCompareRows_LargeIntegersCompareExactly(t *testing.T) {
	parse := func(doc string) Row {
		v, err := flatten.ParseJSON([]byte(doc))
		if err != nil {
			t.Fatalf("ParseJSON(%q) error = %v", doc, err)
		}
		return Row{Fields: flatten.Flatten(v, "", flatten.DefaultSeparator)}
	}

	a := parse(`{"id": 9007199254740993, "gain": 1}`)
	a.Instrument = "A"
	b := parse(`{"id": 9007199254740992, "gain": 1.0}`)
	b.Instrument = "B"

	got := CompareRows(a, b)
	want := Summary{TotalFields: 2, DifferentFields: 1, SameFields: 1}
	if diff := cmp.Diff(want, got.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
	if len(got.Differences) != 1 || got.Differences[0].Column != "id" {
		t.Fatalf("Differences = %+v, want id only", got.Differences)
	}
	if got.Differences[0].First.Text() != "9007199254740993" {
		t.Errorf("First = %s, want the exact literal", got.Differences[0].First.Text())
	}
}

func TestCompareRows_Properties(t *testing.T) {
	a := row("A", kv{"p", num(1)}, kv{"q", flatten.String("s")}, kv{"r", flatten.Null()}, kv{"s", num(5)})
	b := row("B", kv{"p", num(2)}, kv{"q", flatten.String("s")}, kv{"t", flatten.Bool(false)}, kv{"s", flatten.Null()})

	c := CompareRows(a, b)

	// Buckets partition the union of columns.
	total := len(c.Differences) + len(c.OnlyInFirst) + len(c.OnlyInSecond) + len(c.Same)
	if total != c.Summary.TotalFields || total != 5 {
		t.Errorf("bucket total = %d, summary total = %d, want 5", total, c.Summary.TotalFields)
	}

	// Swapping the rows swaps the one-sided buckets and nothing else.
	s := CompareRows(b, a)
	if diff := cmp.Diff(bucket(c.OnlyInFirst), bucket(s.OnlyInSecond)); diff != "" {
		t.Errorf("swap OnlyInFirst mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(bucket(c.Same), bucket(s.Same)); diff != "" {
		t.Errorf("swap Same mismatch (-want +got):\n%s", diff)
	}
	if len(c.Differences) != len(s.Differences) {
		t.Errorf("swap Differences = %d, want %d", len(s.Differences), len(c.Differences))
	}

	// A row compared with itself has only same values.
	self := CompareRows(a, a)
	if len(self.Differences)+len(self.OnlyInFirst)+len(self.OnlyInSecond) != 0 {
		t.Errorf("self comparison has non-same buckets: %+v", self.Summary)
	}
}

func TestCompareRows_SortedColumns(t *testing.T) {
	a := row("A", kv{"zeta", num(1)}, kv{"alpha", num(1)}, kv{"mid", num(1)})
	c := CompareRows(a, row("B"))

	var cols []string
	for _, f := range c.OnlyInFirst {
		cols = append(cols, f.Column)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, cols); diff != "" {
		t.Errorf("column order mismatch (-want +got):\n%s", diff)
	}
}

func newTestComparator() *Comparator {
	return NewComparator(NewTable([]Row{
		row("A", kv{"x", num(1)}),
		row("B", kv{"x", num(2)}),
		row("C", kv{"x", num(1)}),
	}))
}

func TestComparator_ByInstrument(t *testing.T) {
	c := newTestComparator()

	got, err := c.CompareByInstrument("A", "C")
	if err != nil {
		t.Fatalf("CompareByInstrument() error = %v", err)
	}
	if got.First != "A" || got.Second != "C" || got.Summary.SameFields != 1 {
		t.Errorf("CompareByInstrument() = %+v", got)
	}

	_, err = c.CompareByInstrument("A", "ZZZ")
	if !errors.Is(err, ErrRowNotFound) {
		t.Errorf("unknown instrument error = %v, want ErrRowNotFound", err)
	}
}

func TestComparator_ByIndex(t *testing.T) {
	c := newTestComparator()

	got, err := c.CompareByIndex(0, 1)
	if err != nil {
		t.Fatalf("CompareByIndex() error = %v", err)
	}
	if got.First != "A" || got.Second != "B" || got.Summary.DifferentFields != 1 {
		t.Errorf("CompareByIndex() = %+v", got)
	}

	for _, idx := range [][2]int{{0, 3}, {-1, 0}, {5, 5}} {
		if _, err := c.CompareByIndex(idx[0], idx[1]); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("CompareByIndex(%d, %d) error = %v, want ErrIndexOutOfRange", idx[0], idx[1], err)
		}
	}
}

func TestComparator_UsesTableColumns(t *testing.T) {
	c := NewComparator(NewTable([]Row{
		row("A", kv{"x", num(1)}),
		row("B", kv{"x", num(1)}),
		row("C", kv{"w", num(2)}),
	}))

	got, err := c.CompareByInstrument("A", "B")
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{TotalFields: 2, SameFields: 2}
	if diff := cmp.Diff(want, got.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"w": BothMissing, "x": "1"}, bucket(got.Same)); diff != "" {
		t.Errorf("Same mismatch (-want +got):\n%s", diff)
	}
}

func TestComparator_Instruments(t *testing.T) {
	if diff := cmp.Diff([]string{"A", "B", "C"}, newTestComparator().Instruments()); diff != "" {
		t.Errorf("Instruments() mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_DuplicateInstrumentResolvesToFirst(t *testing.T) {
	tbl := NewTable([]Row{
		row("A", kv{"x", num(1)}),
		row("A", kv{"x", num(2)}),
	})
	r, err := tbl.RowByInstrument("A")
	if err != nil {
		t.Fatalf("RowByInstrument() error = %v", err)
	}
	v, _ := r.Fields.Get("x")
	if v.Text() != "1" {
		t.Errorf("x = %s, want 1", v.Text())
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}
