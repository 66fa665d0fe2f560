package psets

// Iterator walks the immediate shape of a node: one keyless pair for a leaf,
// one pair per child for a nested node. It cannot be rewound.
type Iterator struct {
	node   Psets
	pos    int
	key    string
	hasKey bool
	value  NestedValue
}

// Iter returns a fresh iterator over p.
func (p Psets) Iter() *Iterator {
	return &Iterator{node: p}
}

// Next advances to the next pair and reports whether there is one.
func (it *Iterator) Next() bool {
	switch it.node.kind {
	case KindPset, KindPsetID:
		if it.pos > 0 {
			return false
		}
		it.pos++
		it.key, it.hasKey = "", false
		it.value = NestedPsets(it.node)
		return true
	}
	if it.pos >= len(it.node.entries) {
		return false
	}
	e := it.node.entries[it.pos]
	it.pos++
	it.key, it.hasKey = e.Key, true
	it.value = e.Value
	return true
}

// Key returns the key of the current pair. ok is false for a leaf node.
func (it *Iterator) Key() (key string, ok bool) { return it.key, it.hasKey }

// Value returns the value of the current pair.
func (it *Iterator) Value() NestedValue { return it.value }

// Item is a single pair produced by iteration. Key is nil for a leaf node.
type Item struct {
	Key   *string
	Value NestedValue
}

// Items collects the pairs of a fresh iterator over p.
func (p Psets) Items() []Item {
	var items []Item
	it := p.Iter()
	for it.Next() {
		item := Item{Value: it.Value()}
		if key, ok := it.Key(); ok {
			item.Key = &key
		}
		items = append(items, item)
	}
	return items
}

// ItemsHost is Items with keys and values converted to native Go values. A
// leaf node yields a single pair with a nil key.
func (p Psets) ItemsHost() ([][2]any, error) {
	items := p.Items()
	out := make([][2]any, 0, len(items))
	for _, item := range items {
		var key any
		if item.Key != nil {
			key = *item.Key
		}
		v, err := item.Value.ToHost()
		if err != nil {
			return nil, err
		}
		out = append(out, [2]any{key, v})
	}
	return out, nil
}
