package psets

import (
	"strings"

	"github.com/mcncl/psetkit/internal/value"
)

// DefaultDelimiter separates key path segments in flattened addresses.
const DefaultDelimiter = ":"

// FlattenedValue is one cell of a flattened projection: a Pset, a PsetID or an
// opaque value.
type FlattenedValue struct {
	kind   Kind
	pset   Pset
	psetID PsetID
	value  value.Value
}

// FlatPset returns a cell holding p.
func FlatPset(p Pset) FlattenedValue { return FlattenedValue{kind: KindPset, pset: p} }

// FlatPsetID returns a cell holding id.
func FlatPsetID(id PsetID) FlattenedValue { return FlattenedValue{kind: KindPsetID, psetID: id} }

// FlatValue returns a cell holding an opaque value.
func FlatValue(v value.Value) FlattenedValue { return FlattenedValue{kind: KindValue, value: v} }

// Kind returns KindPset, KindPsetID or KindValue.
func (f FlattenedValue) Kind() Kind {
	if f.kind == KindNested {
		return KindValue
	}
	return f.kind
}

// Pset returns the record held by f.
func (f FlattenedValue) Pset() (Pset, bool) { return f.pset, f.kind == KindPset }

// PsetID returns the reference held by f.
func (f FlattenedValue) PsetID() (PsetID, bool) { return f.psetID, f.kind == KindPsetID }

// Value returns the opaque value held by f.
func (f FlattenedValue) Value() (value.Value, bool) { return f.value, f.Kind() == KindValue }

// ToJSON returns the wire form of the held entity.
func (f FlattenedValue) ToJSON() value.Value {
	switch f.kind {
	case KindPset:
		return f.pset.ToJSON()
	case KindPsetID:
		return f.psetID.ToJSON()
	}
	return f.value
}

// ToHost returns the wire form of the held entity as native Go values.
func (f FlattenedValue) ToHost() (any, error) {
	return value.ToHost(f.ToJSON())
}

// ClassName returns "PsetFlattenedValue".
func (FlattenedValue) ClassName() string { return "PsetFlattenedValue" }

// String renders a Pset or PsetID with its class name and a value as JSON.
func (f FlattenedValue) String() string {
	switch f.kind {
	case KindPset:
		return f.pset.String()
	case KindPsetID:
		return f.psetID.String()
	}
	return f.value.String()
}

// Equal reports whether f and o hold the same entity.
func (f FlattenedValue) Equal(o FlattenedValue) bool {
	if f.Kind() != o.Kind() {
		return false
	}
	switch f.Kind() {
	case KindPset:
		return f.pset.Equal(o.pset)
	case KindPsetID:
		return f.psetID == o.psetID
	}
	return f.value.Equal(o.value)
}

// FlattenOption configures Flatten.
type FlattenOption func(*flattenOptions)

type flattenOptions struct {
	delimiter string
}

// WithDelimiter sets the separator placed between key path segments.
func WithDelimiter(delimiter string) FlattenOption {
	return func(o *flattenOptions) {
		o.delimiter = delimiter
	}
}

// Walk calls fn for every leaf of p in depth-first order, children in
// insertion order. path holds the keys leading to the leaf and is empty for a
// root leaf. fn owns path.
func (p Psets) Walk(fn func(path []string, v FlattenedValue)) {
	type frame struct {
		path []string
		node *Psets
		leaf value.Value
	}
	stack := []frame{{node: &p}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node == nil {
			fn(f.path, FlatValue(f.leaf))
			continue
		}
		switch f.node.kind {
		case KindPset:
			fn(f.path, FlatPset(f.node.pset))
		case KindPsetID:
			fn(f.path, FlatPsetID(f.node.psetID))
		case KindNested:
			for i := len(f.node.entries) - 1; i >= 0; i-- {
				e := f.node.entries[i]
				path := make([]string, len(f.path)+1)
				copy(path, f.path)
				path[len(f.path)] = e.Key
				if sub, ok := e.Value.Psets(); ok {
					stack = append(stack, frame{path: path, node: &sub})
				} else {
					stack = append(stack, frame{path: path, leaf: e.Value.any})
				}
			}
		}
	}
}

// JoinAddress joins a key path into a flattened address.
func JoinAddress(path []string, delimiter string) string {
	return strings.Join(path, delimiter)
}

// Flatten projects p into a single level mapping from address to leaf. A root
// leaf is stored under the empty address. Two distinct key paths can join to
// the same address when a key contains the delimiter; the path visited later
// wins.
func (p Psets) Flatten(opts ...FlattenOption) map[string]FlattenedValue {
	o := flattenOptions{delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(&o)
	}
	out := make(map[string]FlattenedValue)
	p.Walk(func(path []string, v FlattenedValue) {
		out[JoinAddress(path, o.delimiter)] = v
	})
	return out
}

// FlattenHost is Flatten with every cell converted to native Go values.
func (p Psets) FlattenHost(opts ...FlattenOption) (map[string]any, error) {
	flat := p.Flatten(opts...)
	out := make(map[string]any, len(flat))
	for addr, v := range flat {
		x, err := v.ToHost()
		if err != nil {
			return nil, err
		}
		out[addr] = x
	}
	return out, nil
}
