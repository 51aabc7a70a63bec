package flatten

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidJSON is returned when a document is not well-formed JSON.
var ErrInvalidJSON = errors.New("invalid json")

// ErrUnsupportedFormat is returned by Decode for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Decode parses data according to the extension of name (.json, .yaml, .yml).
func Decode(name string, data []byte) (Value, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseJSON decodes a JSON document, keeping object members in document order.
func ParseJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return fromGJSON(gjson.ParseBytes(data))
}

func fromGJSON(r gjson.Result) (Value, error) {
	switch r.Type {
	case gjson.Null:
		return Null(), nil
	case gjson.True:
		return Bool(true), nil
	case gjson.False:
		return Bool(false), nil
	case gjson.Number:
		v, err := NumberLiteral(r.Raw)
		if err != nil {
			// gjson accepts literals ParseFloat rejects only on overflow.
			return Number(r.Num), nil
		}
		return v, nil
	case gjson.String:
		return String(r.Str), nil
	}

	var err error
	if r.IsArray() {
		var items []Value
		r.ForEach(func(_, item gjson.Result) bool {
			var v Value
			v, err = fromGJSON(item)
			items = append(items, v)
			return err == nil
		})
		if err != nil {
			return Value{}, err
		}
		return List(items...), nil
	}

	var members []Member
	r.ForEach(func(key, item gjson.Result) bool {
		var v Value
		v, err = fromGJSON(item)
		members = append(members, Member{Key: key.Str, Value: v})
		return err == nil
	})
	if err != nil {
		return Value{}, err
	}
	return Object(members...), nil
}

// ParseYAML decodes a YAML document, keeping mapping keys in document order.
// Only the first document of a stream is read.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return fromYAML(&doc)
}

func fromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case 0:
		return Null(), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case yaml.MappingNode:
		members := make([]Member, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: n.Content[i].Value, Value: v})
		}
		return Object(members...), nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return Value{}, fmt.Errorf("invalid yaml: unexpected node kind %d at line %d", n.Kind, n.Line)
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("invalid yaml bool at line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, fmt.Errorf("invalid yaml int at line %d: %w", n.Line, err)
		}
		return NumberLiteral(strconv.FormatInt(i, 10))
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("invalid yaml float at line %d: %w", n.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Number(f), nil
		}
		if v, err := NumberLiteral(n.Value); err == nil {
			return v, nil
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}
