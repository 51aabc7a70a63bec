package flatten

import "strconv"

// DefaultSeparator joins path segments.
const DefaultSeparator = "."

// NameKey is the member that names an element of a list of objects.
const NameKey = "name"

// JoinPath appends key to prefix with sep, or returns key when prefix is empty.
func JoinPath(prefix, key, sep string) string {
	if prefix == "" {
		return key
	}
	return prefix + sep + key
}

// Flatten converts v into a flat record of path → scalar.
//
// Object members extend the path with their key. In a list, an object with a
// "name" member is keyed by that name instead of its position and the rest of
// its members are flattened below it; if nothing else remains, the name
// itself is stored as the value. A null name becomes the segment "null".
// Any other list content is keyed by index:
//
//   - an object without "name" is flattened below its index, after which
//     every later element is stored by index as a raw value;
//   - a scalar or nested list switches the whole list to raw values by index.
//
// Raw structured values are stored as their compact JSON text. A scalar is
// stored under prefix; with an empty prefix it produces nothing.
func Flatten(v Value, prefix, sep string) *Record {
	out := NewRecord()
	flattenInto(out, v, prefix, sep)
	return out
}

func flattenInto(out *Record, v Value, prefix, sep string) {
	switch v.Kind() {
	case KindObject:
		for _, m := range v.Members() {
			key := JoinPath(prefix, m.Key, sep)
			if m.Value.IsStructured() {
				flattenInto(out, m.Value, key, sep)
				continue
			}
			out.Set(key, m.Value)
		}
	case KindList:
		flattenList(out, v.Items(), prefix, sep)
	default:
		if prefix != "" {
			out.Set(prefix, v)
		}
	}
}

func flattenList(out *Record, items []Value, prefix, sep string) {
	for i, item := range items {
		if item.Kind() != KindObject {
			// A non-object element turns the whole list positional.
			emitRaw(out, items, 0, prefix, sep)
			return
		}

		name, ok := item.Get(NameKey)
		if !ok {
			flattenInto(out, item, JoinPath(prefix, strconv.Itoa(i), sep), sep)
			emitRaw(out, items, i+1, prefix, sep)
			return
		}

		key := JoinPath(prefix, name.String(), sep)
		rest := item.Without(NameKey)
		if rest.Len() == 0 {
			out.Set(key, rawLeaf(name))
			continue
		}
		flattenInto(out, rest, key, sep)
	}
}

// emitRaw stores items[from:] by index without recursing.
func emitRaw(out *Record, items []Value, from int, prefix, sep string) {
	for i := from; i < len(items); i++ {
		out.Set(JoinPath(prefix, strconv.Itoa(i), sep), rawLeaf(items[i]))
	}
}

func rawLeaf(v Value) Value {
	if v.IsScalar() {
		return v
	}
	return String(v.Text())
}
