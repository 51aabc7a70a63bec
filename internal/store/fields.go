package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
	"github.com/tidwall/gjson"
)

// EncodeFields renders rec as a JSON array of {"k": path, "v": value}
// pairs in record order.
func EncodeFields(rec *flatten.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range rec.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Path)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Path, err)
		}
		buf.WriteString(`{"k":`)
		buf.Write(key)
		buf.WriteString(`,"v":`)
		buf.Write(val)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// DecodeFields parses the output of EncodeFields.
func DecodeFields(data []byte) (*flatten.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: fields", flatten.ErrInvalidJSON)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: fields must be an array", flatten.ErrInvalidJSON)
	}

	rec := flatten.NewRecord()
	var decodeErr error
	doc.ForEach(func(_, pair gjson.Result) bool {
		k := pair.Get("k")
		if k.Type != gjson.String {
			decodeErr = fmt.Errorf("%w: field pair without string key", flatten.ErrInvalidJSON)
			return false
		}
		raw := pair.Get("v").Raw
		if raw == "" {
			raw = "null"
		}
		v, err := flatten.ParseJSON([]byte(raw))
		if err != nil {
			decodeErr = fmt.Errorf("field %s: %w", k.String(), err)
			return false
		}
		rec.Set(k.String(), v)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return rec, nil
}
