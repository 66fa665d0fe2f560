package psets

// RenameKeys returns a copy of p with every nested key, at any depth, mapped
// through fn. When two keys of one node map to the same name the later child
// replaces the earlier one in the earlier position. Opaque values are left
// untouched.
func (p Psets) RenameKeys(fn func(string) string) Psets {
	if p.kind != KindNested {
		return p
	}
	b := newNestedBuilder(len(p.entries))
	for _, e := range p.entries {
		child := e.Value
		if sub, ok := child.Psets(); ok {
			child = NestedPsets(sub.RenameKeys(fn))
		}
		b.set(fn(e.Key), child)
	}
	return b.build()
}
