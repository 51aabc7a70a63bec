package flatten

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fields renders a record as path → text for easy comparison.
func fields(r *Record) map[string]string {
	out := make(map[string]string, r.Len())
	for _, f := range r.Fields() {
		out[f.Path] = f.Value.String()
	}
	return out
}

func mustJSON(t *testing.T, doc string) Value {
	t.Helper()
	v, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ParseJSON(%q) error = %v", doc, err)
	}
	return v
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		prefix string
		want   map[string]string
	}{
		{
			name: "nested object",
			doc:  `{"a": {"b": 1}}`,
			want: map[string]string{"a.b": "1"},
		},
		{
			name:   "named objects",
			doc:    `[{"name":"x","v":1},{"name":"y","v":2}]`,
			prefix: "p",
			want:   map[string]string{"p.x.v": "1", "p.y.v": "2"},
		},
		{
			name:   "name echo",
			doc:    `[{"name":"solo"}]`,
			prefix: "p",
			want:   map[string]string{"p.solo": "solo"},
		},
		{
			name:   "scalar list",
			doc:    `[1,2,3]`,
			prefix: "p",
			want:   map[string]string{"p.0": "1", "p.1": "2", "p.2": "3"},
		},
		{
			name: "scalar list without prefix",
			doc:  `["a","b"]`,
			want: map[string]string{"0": "a", "1": "b"},
		},
		{
			name: "empty structures drop out",
			doc:  `{"a": {}, "b": [], "c": {"d": {}}, "e": 1}`,
			want: map[string]string{"e": "1"},
		},
		{
			name: "scalars of every kind",
			doc:  `{"s": "x", "n": 1.50, "t": true, "f": false, "z": null}`,
			want: map[string]string{"s": "x", "n": "1.50", "t": "true", "f": "false", "z": "null"},
		},
		{
			name: "named list inside object",
			doc:  `{"cfg": {"channels": [{"name": "ch1", "gain": 2, "opts": {"on": true}}]}}`,
			want: map[string]string{"cfg.channels.ch1.gain": "2", "cfg.channels.ch1.opts.on": "true"},
		},
		{
			name:   "unnamed object then raw positional rest",
			doc:    `[{"name":"a","v":1},{"w":2},{"name":"b","v":3},4]`,
			prefix: "p",
			want: map[string]string{
				"p.a.v": "1",
				"p.1.w": "2",
				"p.2":   `{"name":"b","v":3}`,
				"p.3":   "4",
			},
		},
		{
			name:   "scalar element switches whole list to raw values",
			doc:    `[{"name":"a","v":1},5]`,
			prefix: "p",
			want: map[string]string{
				"p.a.v": "1",
				"p.0":   `{"name":"a","v":1}`,
				"p.1":   "5",
			},
		},
		{
			name:   "nested list element is raw",
			doc:    `[[1,2],3]`,
			prefix: "p",
			want:   map[string]string{"p.0": "[1,2]", "p.1": "3"},
		},
		{
			name:   "numeric name used as segment",
			doc:    `[{"name": 7, "v": "x"}]`,
			prefix: "p",
			want:   map[string]string{"p.7.v": "x"},
		},
		{
			name:   "null name used as segment",
			doc:    `[{"name": null, "v": 1}]`,
			prefix: "p",
			want:   map[string]string{"p.null.v": "1"},
		},
		{
			name:   "scalar with prefix",
			doc:    `42`,
			prefix: "p",
			want:   map[string]string{"p": "42"},
		},
		{
			name: "scalar without prefix",
			doc:  `42`,
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(Flatten(mustJSON(t, tt.doc), tt.prefix, DefaultSeparator))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlatten_CustomSeparator(t *testing.T) {
	got := fields(Flatten(mustJSON(t, `{"a": {"b": [{"name": "c", "d": 1}]}}`), "", "/"))
	want := map[string]string{"a/b/c/d": "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_OrderAndOverwrite(t *testing.T) {
	// "x.y" is produced twice; the later write wins but keeps its first position.
	v := Object(
		Member{Key: "x", Value: Object(Member{Key: "y", Value: Number(1)})},
		Member{Key: "k", Value: String("mid")},
		Member{Key: "x.y", Value: Number(2)},
	)

	r := Flatten(v, "", DefaultSeparator)

	if diff := cmp.Diff([]string{"x.y", "k"}, r.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	got, _ := r.Get("x.y")
	if !got.Equal(Number(2)) {
		t.Errorf("x.y = %v, want 2", got)
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	doc := `{"b": [{"name": "n1", "v": [1, 2]}, {"name": "n2"}], "a": {"c": null, "d": "s"}}`
	first := Flatten(mustJSON(t, doc), "", DefaultSeparator)

	for i := 0; i < 20; i++ {
		again := Flatten(mustJSON(t, doc), "", DefaultSeparator)
		if diff := cmp.Diff(first.Keys(), again.Keys()); diff != "" {
			t.Fatalf("run %d: key order changed (-first +again):\n%s", i, diff)
		}
		if diff := cmp.Diff(fields(first), fields(again)); diff != "" {
			t.Fatalf("run %d: values changed (-first +again):\n%s", i, diff)
		}
	}

	want := []string{"b.n1.v.0", "b.n1.v.1", "b.n2", "a.c", "a.d"}
	if diff := cmp.Diff(want, first.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_LeavesAreScalars(t *testing.T) {
	doc := `{"l": [{"q": 1}, [1, {"z": 2}], {"name": {"nested": true}}]}`
	for _, f := range Flatten(mustJSON(t, doc), "", DefaultSeparator).Fields() {
		if !f.Value.IsScalar() {
			t.Errorf("field %q holds %s, want scalar", f.Path, f.Value.Kind())
		}
	}
}
