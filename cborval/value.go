// Package cborval implements the CBOR Value Adapter: a small sum type over
// the handful of CBOR major types custom claim validators need to inspect,
// decoded from the raw interface{} graph github.com/fxamacker/cbor/v2
// produces.
package cborval

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Kind identifies which alternative of Value is populated.
type Kind int

const (
	KindInteger Kind = iota
	KindText
	KindBytes
	KindArray
	KindMap
	KindNull
)

// Value is a decoded CBOR item projected into the shapes the gateway's
// claim validators care about. Only one of the underlying fields is valid,
// selected by Kind.
type Value struct {
	kind Kind
	i    int64
	s    string
	b    []byte
	arr  []Value
	m    map[int64]Value
}

func Int64(v int64) Value         { return Value{kind: KindInteger, i: v} }
func Text(v string) Value         { return Value{kind: KindText, s: v} }
func Bytes(v []byte) Value        { return Value{kind: KindBytes, b: v} }
func Array(v []Value) Value       { return Value{kind: KindArray, arr: v} }
func Map(v map[int64]Value) Value { return Value{kind: KindMap, m: v} }
func Null() Value                 { return Value{kind: KindNull} }

// IsNull reports whether v is the CBOR null/absent sentinel, the CATH
// shorthand for "require the header's presence only".
func IsNull(v Value) bool { return v.kind == KindNull }

func (v Value) Kind() Kind { return v.kind }

// Decode unmarshals raw CBOR bytes into a Value using the default decode
// mode (maps decode with int64 keys when possible; byte strings stay
// []byte; everything else maps onto the Go types cbor.Unmarshal would
// produce for an interface{} target).
func Decode(data []byte) (Value, error) {
	var raw interface{}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("cborval: decode: %w", err)
	}
	return fromRaw(raw)
}

// Encode marshals a Value back to CBOR bytes.
func Encode(v Value) ([]byte, error) {
	return cbor.Marshal(toRaw(v))
}

func fromRaw(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case int64:
		return Int64(t), nil
	case uint64:
		return Int64(int64(t)), nil
	case string:
		return Text(t), nil
	case []byte:
		return Bytes(t), nil
	case []interface{}:
		items := make([]Value, 0, len(t))
		for _, elem := range t {
			v, err := fromRaw(elem)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Array(items), nil
	case map[interface{}]interface{}:
		m := make(map[int64]Value, len(t))
		for k, elem := range t {
			key, err := toInt64Key(k)
			if err != nil {
				return Value{}, err
			}
			v, err := fromRaw(elem)
			if err != nil {
				return Value{}, err
			}
			m[key] = v
		}
		return Map(m), nil
	default:
		return Value{}, fmt.Errorf("cborval: unsupported CBOR item of type %T", raw)
	}
}

func toInt64Key(k interface{}) (int64, error) {
	switch t := k.(type) {
	case int64:
		return t, nil
	case uint64:
		return int64(t), nil
	case string:
		return 0, fmt.Errorf("cborval: map key %q is not an integer claim key", t)
	default:
		return 0, fmt.Errorf("cborval: unsupported map key type %T", k)
	}
}

func toRaw(v Value) interface{} {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindText:
		return v.s
	case KindBytes:
		return v.b
	case KindArray:
		items := make([]interface{}, len(v.arr))
		for i, elem := range v.arr {
			items[i] = toRaw(elem)
		}
		return items
	case KindMap:
		m := make(map[interface{}]interface{}, len(v.m))
		for k, elem := range v.m {
			m[k] = toRaw(elem)
		}
		return m
	default:
		return nil
	}
}
