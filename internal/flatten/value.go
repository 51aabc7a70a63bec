// Package flatten converts nested JSON-like documents into flat, ordered
// path → scalar records.
//
// Documents are decoded into [Value], a tagged variant over null, boolean,
// number, string, list and object. Objects keep their members in document
// order so that flattening is deterministic for a given input file.
package flatten

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON-like value. The zero Value is null.
type Value struct {
	kind    Kind
	b       bool
	num     float64
	str     string // string contents, or the source literal of a number
	list    []Value
	members []Member
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value. Its text form is the shortest
// representation that round-trips the float.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f, str: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberLiteral returns a numeric value that keeps lit as its text form.
// It fails if lit is not a valid number.
func NumberLiteral(lit string) (Value, error) {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindNumber, num: f, str: lit}, nil
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// List returns a list value.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Object returns an object value with members in the given order.
func Object(members ...Member) Value {
	return Value{kind: KindObject, members: members}
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar reports whether v is null, a boolean, a number or a string.
func (v Value) IsScalar() bool { return v.kind < KindList }

// IsStructured reports whether v is a list or an object.
func (v Value) IsStructured() bool { return v.kind == KindList || v.kind == KindObject }

// IsMissing reports whether v counts as an absent value for comparison:
// null, or a number that is NaN.
func (v Value) IsMissing() bool {
	return v.kind == KindNull || (v.kind == KindNumber && math.IsNaN(v.num))
}

// BoolValue returns the boolean held by v.
func (v Value) BoolValue() bool { return v.b }

// Float returns the number held by v.
func (v Value) Float() float64 { return v.num }

// Items returns the elements of a list.
func (v Value) Items() []Value { return v.list }

// Members returns the members of an object in document order.
func (v Value) Members() []Member { return v.members }

// Len returns the number of elements of a list or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return len(v.members)
	}
	return 0
}

// Get returns the value of the first member named key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Without returns a copy of an object with every member named key removed.
func (v Value) Without(key string) Value {
	out := make([]Member, 0, len(v.members))
	for _, m := range v.members {
		if m.Key != key {
			out = append(out, m)
		}
	}
	return Object(out...)
}

// Text returns the display form of a scalar: the string itself, the number
// literal, true/false, or "" for null. Structured values render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber, KindString:
		return v.str
	default:
		b, _ := v.MarshalJSON() // never fails for values built by this package
		return string(b)
	}
}

// String implements fmt.Stringer. Null prints as "null".
func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// Equal reports exact equality: same kind and same value. Numbers compare
// by exact decimal value, so 1 and 1.0 are equal, 2^53 and 2^53+1 are not,
// and the number 1 and the string "1" are not.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return numbersEqual(v, o)
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(v, o Value) bool {
	if v.str == o.str && !math.IsNaN(v.num) {
		return true
	}
	x, okX := new(big.Rat).SetString(v.str)
	y, okY := new(big.Rat).SetString(o.str)
	if !okX || !okY {
		return v.num == o.num
	}
	return x.Cmp(y) == 0
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)

// jsonLiteral returns the number literal of v if it is valid JSON, else the
// shortest float form.
func (v Value) jsonLiteral() string {
	if jsonNumber.MatchString(v.str) {
		return v.str
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// MarshalJSON encodes v, keeping object member order and number literals.
func (v Value) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	if err := v.writeJSON(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (v Value) writeJSON(b *strings.Builder) error {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			b.WriteString("null")
			return nil
		}
		b.WriteString(v.jsonLiteral())
	case KindString:
		enc, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		b.Write(enc)
	case KindList:
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := item.writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			b.Write(key)
			b.WriteByte(':')
			if err := m.Value.writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	}
	return nil
}
