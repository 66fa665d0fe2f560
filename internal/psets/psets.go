// Package psets models property sets: a recursive tree whose nodes are either
// a concrete Pset, a PsetID reference, or a mapping of named children. Trees
// are built by parsing a value.Value and are read-only afterwards; flatten,
// tree and iteration views produce new structures.
package psets

import (
	"fmt"

	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/value"
)

const psetsClassName = "Psets"

// Kind identifies the variant held by a Psets node or a FlattenedValue.
type Kind uint8

const (
	// KindNested is a mapping of named children. It is the zero Kind, so the
	// zero Psets is an empty mapping.
	KindNested Kind = iota
	KindPset
	KindPsetID
	// KindValue marks an opaque leaf value in a flattened projection.
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindNested:
		return "nested"
	case KindPset:
		return "pset"
	case KindPsetID:
		return "pset_id"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Psets is a property set tree node. Trees decoded from JSON or host values
// always render; a tree assembled by hand from a non-finite value.Float does
// not, and String panics on it.
type Psets struct {
	kind    Kind
	pset    Pset
	psetID  PsetID
	entries []Entry
}

// Entry is a named child of a nested node.
type Entry struct {
	Key   string
	Value NestedValue
}

// NestedValue is a child of a nested node: either another Psets tree or an
// opaque value. The zero NestedValue is an opaque null.
type NestedValue struct {
	psets *Psets
	any   value.Value
}

// NestedPsets wraps a subtree.
func NestedPsets(p Psets) NestedValue { return NestedValue{psets: &p} }

// NestedAny wraps an opaque value.
func NestedAny(v value.Value) NestedValue { return NestedValue{any: v} }

// IsPsets reports whether n holds a subtree.
func (n NestedValue) IsPsets() bool { return n.psets != nil }

// Psets returns the subtree held by n.
func (n NestedValue) Psets() (Psets, bool) {
	if n.psets == nil {
		return Psets{}, false
	}
	return *n.psets, true
}

// Any returns the opaque value held by n.
func (n NestedValue) Any() (value.Value, bool) {
	if n.psets != nil {
		return value.Value{}, false
	}
	return n.any, true
}

// NestedValueFromJSON parses v as a subtree, falling back to an opaque value
// when it matches none of the tree shapes.
func NestedValueFromJSON(v value.Value) NestedValue {
	if p, err := FromJSON(v); err == nil {
		return NestedPsets(p)
	}
	return NestedAny(v)
}

// ToJSON returns the wire form of n.
func (n NestedValue) ToJSON() value.Value {
	if n.psets != nil {
		return n.psets.ToJSON()
	}
	return n.any
}

// ToHost returns the wire form of n as native Go values.
func (n NestedValue) ToHost() (any, error) {
	return value.ToHost(n.ToJSON())
}

// ClassName returns "PsetNestedValue".
func (NestedValue) ClassName() string { return "PsetNestedValue" }

// String renders a subtree with Psets.String and an opaque value as JSON.
func (n NestedValue) String() string {
	if n.psets != nil {
		return n.psets.String()
	}
	return n.any.String()
}

// Equal reports whether n and o hold equal children.
func (n NestedValue) Equal(o NestedValue) bool {
	if n.IsPsets() != o.IsPsets() {
		return false
	}
	if n.psets != nil {
		return n.psets.Equal(*o.psets)
	}
	return n.any.Equal(o.any)
}

// FromPset returns a leaf node holding p.
func FromPset(p Pset) Psets { return Psets{kind: KindPset, pset: p} }

// FromPsetID returns a leaf node holding id.
func FromPsetID(id PsetID) Psets { return Psets{kind: KindPsetID, psetID: id} }

// Nested returns a nested node. A key given more than once keeps its first
// position and its last value.
func Nested(entries ...Entry) Psets {
	b := newNestedBuilder(len(entries))
	for _, e := range entries {
		b.set(e.Key, e.Value)
	}
	return b.build()
}

// Kind returns the variant held by p.
func (p Psets) Kind() Kind { return p.kind }

// Pset returns the record held by a Pset leaf.
func (p Psets) Pset() (Pset, bool) { return p.pset, p.kind == KindPset }

// PsetID returns the reference held by a PsetID leaf.
func (p Psets) PsetID() (PsetID, bool) { return p.psetID, p.kind == KindPsetID }

// Entries returns a copy of the children of a nested node in insertion order.
func (p Psets) Entries() []Entry {
	if p.kind != KindNested {
		return nil
	}
	return append([]Entry(nil), p.entries...)
}

// Len returns the number of children of a nested node.
func (p Psets) Len() int {
	if p.kind != KindNested {
		return 0
	}
	return len(p.entries)
}

// Get returns the child stored under key.
func (p Psets) Get(key string) (NestedValue, bool) {
	if p.kind != KindNested {
		return NestedValue{}, false
	}
	for _, e := range p.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return NestedValue{}, false
}

// ClassName returns "Psets".
func (Psets) ClassName() string { return psetsClassName }

// decoder is one attempt of the ordered parse. The first decoder that succeeds
// decides the variant.
type decoder struct {
	name   string
	decode func(value.Value) (Psets, error)
}

var decoders []decoder

func init() {
	decoders = []decoder{
		{name: psetClassName, decode: decodePset},
		{name: psetIDClassName, decode: decodePsetID},
		{name: "Nested", decode: decodeNested},
	}
}

// FromJSON parses v as a Pset, then as a PsetID, then as a nested mapping.
// Leaf schemas reject unknown fields, so an object carrying anything beyond a
// leaf's fields falls through to the mapping. A non-object that is not a leaf
// fails with ErrInvalidType.
func FromJSON(v value.Value) (Psets, error) {
	for _, d := range decoders {
		if p, err := d.decode(v); err == nil {
			return p, nil
		}
	}
	return Psets{}, errors.InvalidType(fmt.Sprintf("%s: expected a Pset, a PsetId or an object, got %s", psetsClassName, v.Kind()))
}

// Parse decodes JSON text into a tree.
func Parse(data []byte) (Psets, error) {
	v, err := value.ParseJSON(data)
	if err != nil {
		return Psets{}, err
	}
	return FromJSON(v)
}

// FromHost builds a tree from a native Go value.
func FromHost(x any) (Psets, error) {
	v, err := value.FromHost(x)
	if err != nil {
		return Psets{}, err
	}
	return FromJSON(v)
}

func decodePset(v value.Value) (Psets, error) {
	p, err := PsetFromJSON(v)
	if err != nil {
		return Psets{}, err
	}
	return FromPset(p), nil
}

func decodePsetID(v value.Value) (Psets, error) {
	id, err := PsetIDFromJSON(v)
	if err != nil {
		return Psets{}, err
	}
	return FromPsetID(id), nil
}

func decodeNested(v value.Value) (Psets, error) {
	if v.Kind() != value.KindObject {
		return Psets{}, errors.InvalidType(fmt.Sprintf("%s: nested node must be an object, got %s", psetsClassName, v.Kind()))
	}
	members := v.Members()
	entries := make([]Entry, len(members))
	for i, m := range members {
		entries[i] = Entry{Key: m.Key, Value: NestedValueFromJSON(m.Value)}
	}
	return Psets{kind: KindNested, entries: entries}, nil
}

// ToJSON returns the wire form of p.
func (p Psets) ToJSON() value.Value {
	switch p.kind {
	case KindPset:
		return p.pset.ToJSON()
	case KindPsetID:
		return p.psetID.ToJSON()
	}
	b := value.NewObjectBuilder(len(p.entries))
	for _, e := range p.entries {
		b.Set(e.Key, e.Value.ToJSON())
	}
	return b.Build()
}

// ToHost returns the wire form of p as native Go values.
func (p Psets) ToHost() (any, error) {
	return value.ToHost(p.ToJSON())
}

// MarshalJSON implements json.Marshaler.
func (p Psets) MarshalJSON() ([]byte, error) {
	return p.ToJSON().MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Psets) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// String renders the tree view of p.
func (p Psets) String() string {
	return p.AsTree(nil).String()
}

// Equal reports whether p and o are the same tree. The order of nested
// children is ignored.
func (p Psets) Equal(o Psets) bool {
	if p.kind != o.kind {
		return false
	}
	switch p.kind {
	case KindPset:
		return p.pset.Equal(o.pset)
	case KindPsetID:
		return p.psetID == o.psetID
	}
	if len(p.entries) != len(o.entries) {
		return false
	}
	for _, e := range p.entries {
		other, ok := o.Get(e.Key)
		if !ok || !e.Value.Equal(other) {
			return false
		}
	}
	return true
}

type nestedBuilder struct {
	entries []Entry
	index   map[string]int
}

func newNestedBuilder(n int) *nestedBuilder {
	return &nestedBuilder{
		entries: make([]Entry, 0, n),
		index:   make(map[string]int, n),
	}
}

func (b *nestedBuilder) set(key string, v NestedValue) {
	if i, ok := b.index[key]; ok {
		b.entries[i].Value = v
		return
	}
	b.index[key] = len(b.entries)
	b.entries = append(b.entries, Entry{Key: key, Value: v})
}

func (b *nestedBuilder) build() Psets {
	return Psets{kind: KindNested, entries: b.entries}
}
