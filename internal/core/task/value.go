// Package task provides the tagged value model for task outputs
package task

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind discriminates the payload of a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindMap
)

// Value is a tagged scalar-or-map value. It replaces an untyped dictionary
// while keeping JSON round-trip fidelity for outputs and checkpoint data.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Map  Values
}

// Values is a string-keyed collection of tagged values.
type Values map[string]Value

// String constructs a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number constructs a numeric value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Nested constructs a map value.
func Nested(m Values) Value { return Value{Kind: KindMap, Map: m} }

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	if v.Kind == KindMap {
		return Value{Kind: KindMap, Map: v.Map.Clone()}
	}
	return v
}

// Equal reports deep equality between two values.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindMap:
		return v.Map.Equal(o.Map)
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindMap:
		return json.Marshal(v.Map)
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidValue, v.Kind)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// FromInterface converts a decoded JSON value into a tagged Value.
func FromInterface(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case bool:
		return Bool(x), nil
	case map[string]interface{}:
		m := make(Values, len(x))
		for k, item := range x {
			val, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			m[k] = val
		}
		return Nested(m), nil
	}
	return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, raw)
}

// Interface converts the value back to its plain representation.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindMap:
		out := make(map[string]interface{}, len(v.Map))
		for k, item := range v.Map {
			out[k] = item.Interface()
		}
		return out
	}
	return nil
}

// Clone returns a deep copy of the collection. A nil receiver yields nil.
func (vs Values) Clone() Values {
	if vs == nil {
		return nil
	}
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports deep equality between two collections.
func (vs Values) Equal(o Values) bool {
	if len(vs) != len(o) {
		return false
	}
	for k, v := range vs {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Keys returns the sorted key set.
func (vs Values) Keys() []string {
	keys := make([]string, 0, len(vs))
	for k := range vs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
