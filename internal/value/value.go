// Package value implements the canonical dynamic value used to move data
// between JSON text, host values and the property-set model.
//
// A Value is a closed tagged union over null, bool, integer, float, string,
// array and object. Objects keep insertion order. Values are immutable once
// built: accessors hand out copies, never the backing storage.
package value

import (
	"fmt"
	"math"
	"slices"

	"github.com/mcncl/psetkit/internal/errors"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a dynamic JSON-like value. The zero Value is null.
type Value struct {
	kind Kind

	b bool
	// integers: i is authoritative unless unsigned is set, in which case u
	// holds a magnitude above math.MaxInt64.
	i        int64
	u        uint64
	unsigned bool
	f        float64
	s        string

	arr []Value
	obj []Member
}

// Member is a single key/value entry of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a signed integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Uint returns an integer value from an unsigned magnitude. Magnitudes that fit
// int64 are stored as signed integers.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Value{kind: KindInt, i: int64(u)}
	}
	return Value{kind: KindInt, u: u, unsigned: true}
}

// Float returns a floating point value. Non-finite floats can be held but
// have no JSON form: encoding or converting them fails, and String panics.
// Use FiniteFloat for floats that are not known to be finite.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// FiniteFloat returns a floating point value, or ErrUnrepresentablePrimitive
// for NaN and the infinities.
func FiniteFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, errors.Unrepresentable(fmt.Sprintf("non-finite float %v", f))
	}
	return Float(f), nil
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array value holding copies of items.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(items)}
}

// Object returns an object value. A key given more than once keeps its first
// position and its last value.
func Object(members ...Member) Value {
	b := NewObjectBuilder(len(members))
	for _, m := range members {
		b.Set(m.Key, m.Value)
	}
	return b.Build()
}

// ObjectBuilder accumulates object members in insertion order.
type ObjectBuilder struct {
	members []Member
	index   map[string]int
}

// NewObjectBuilder returns a builder sized for n members.
func NewObjectBuilder(n int) *ObjectBuilder {
	return &ObjectBuilder{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
}

// Set adds or replaces a member.
func (b *ObjectBuilder) Set(key string, v Value) {
	if i, ok := b.index[key]; ok {
		b.members[i].Value = v
		return
	}
	b.index[key] = len(b.members)
	b.members = append(b.members, Member{Key: key, Value: v})
}

// Len reports the number of distinct keys set so far.
func (b *ObjectBuilder) Len() int { return len(b.members) }

// Build returns the object. The builder must not be used afterwards.
func (b *ObjectBuilder) Build() Value {
	members := b.members
	b.members = nil
	b.index = nil
	return Value{kind: KindObject, obj: members}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsInt returns the integer held by v when it fits int64.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt || v.unsigned {
		return 0, false
	}
	return v.i, true
}

// AsUint returns the integer held by v when it is non-negative.
func (v Value) AsUint() (uint64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	if v.unsigned {
		return v.u, true
	}
	if v.i < 0 {
		return 0, false
	}
	return uint64(v.i), true
}

// AsFloat returns v as a float64 for any numeric kind.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		if v.unsigned {
			return float64(v.u), true
		}
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// Items returns a copy of the elements of an array value.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return slices.Clone(v.arr)
}

// Members returns a copy of the members of an object value in insertion order.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return slices.Clone(v.obj)
}

// Len returns the number of elements of an array or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Get returns the member value stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether v and o hold the same value. Object member order is
// ignored; an integer never equals a float.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.unsigned == o.unsigned && v.i == o.i && v.u == o.u
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for _, m := range v.obj {
			ov, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v as canonical JSON text. It panics if v holds a non-finite
// float, which cannot be produced by any decoder in this module.
func (v Value) String() string {
	text, err := v.JSON()
	if err != nil {
		panic(err)
	}
	return text
}
