package flatten

// Field is one path → scalar entry of a Record.
type Field struct {
	Path  string
	Value Value
}

// Record is an ordered mapping of field path to scalar value.
// Keys keep the position of their first insertion; setting an existing key
// replaces its value in place.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores value under path, overwriting any previous value.
func (r *Record) Set(path string, value Value) {
	if _, ok := r.values[path]; !ok {
		r.keys = append(r.keys, path)
	}
	r.values[path] = value
}

// Get returns the value stored under path.
func (r *Record) Get(path string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[path]
	return v, ok
}

// Has reports whether path is present (even if its value is null).
func (r *Record) Has(path string) bool {
	_, ok := r.Get(path)
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field paths in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Fields returns the entries in insertion order.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.keys))
	for i, k := range r.keys {
		out[i] = Field{Path: k, Value: r.values[k]}
	}
	return out
}

// Merge copies every field of other into r, in other's order.
func (r *Record) Merge(other *Record) {
	for _, f := range other.Fields() {
		r.Set(f.Path, f.Value)
	}
}

// MergePrefixed copies every field of other into r with prefix+sep prepended.
func (r *Record) MergePrefixed(other *Record, prefix, sep string) {
	for _, f := range other.Fields() {
		r.Set(JoinPath(prefix, f.Path, sep), f.Value)
	}
}
