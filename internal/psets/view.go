package psets

import "github.com/mcncl/psetkit/internal/tree"

// FlattenedValueWithAddress is the payload of a tree view node.
type FlattenedValueWithAddress struct {
	Addr   *string
	Entity *FlattenedValue
}

// String labels the node: "Psets" stands in for a missing address and the
// entity follows a colon when present.
func (n FlattenedValueWithAddress) String() string {
	switch {
	case n.Addr == nil && n.Entity == nil:
		return psetsClassName
	case n.Entity == nil:
		return *n.Addr
	case n.Addr == nil:
		return psetsClassName + ": " + n.Entity.String()
	default:
		return *n.Addr + ": " + n.Entity.String()
	}
}

// AsTree builds the display tree of p with addr as the root address. A child
// is addressed by its own key, not by the full path.
func (p Psets) AsTree(addr *string) *tree.Tree[FlattenedValueWithAddress] {
	switch p.kind {
	case KindPset:
		entity := FlatPset(p.pset)
		return tree.New(FlattenedValueWithAddress{Addr: addr, Entity: &entity})
	case KindPsetID:
		entity := FlatPsetID(p.psetID)
		return tree.New(FlattenedValueWithAddress{Addr: addr, Entity: &entity})
	}

	t := tree.New(FlattenedValueWithAddress{Addr: addr})
	for _, e := range p.entries {
		key := e.Key
		if sub, ok := e.Value.Psets(); ok {
			t.Add(sub.AsTree(&key))
			continue
		}
		entity := FlatValue(e.Value.any)
		t.Add(tree.New(FlattenedValueWithAddress{Addr: &key, Entity: &entity}))
	}
	return t
}
