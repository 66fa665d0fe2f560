package psets

import (
	"testing"

	"github.com/mcncl/psetkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_Tree(t *testing.T) {
	p := mustParse(t, `{"a": {"id": 1}, "b": {"c": 2, "d": {"id": 3, "class": "k", "value": "v"}}}`)

	want := "Psets\n" +
		"├── a: PsetId({\"id\":1})\n" +
		"└── b\n" +
		"    ├── c: 2\n" +
		"    └── d: Pset({\"id\":3,\"class\":\"k\",\"value\":\"v\",\"value-type\":null})"
	assert.Equal(t, want, p.String())
}

func TestString_RootLeaf(t *testing.T) {
	assert.Equal(t, `Psets: PsetId({"id":3})`, mustParse(t, `{"id": 3}`).String())
	assert.Equal(t, "Psets", Psets{}.String())
}

func TestAsTree(t *testing.T) {
	p := mustParse(t, `{"a": {"b": {"id": 1}}, "c": [1]}`)
	root := "root"
	tr := p.AsTree(&root)

	require.NotNil(t, tr.Value.Addr)
	assert.Equal(t, "root", *tr.Value.Addr)
	assert.Nil(t, tr.Value.Entity)
	require.Len(t, tr.Children, 2)

	a := tr.Children[0]
	assert.Equal(t, "a", *a.Value.Addr)
	assert.Nil(t, a.Value.Entity)
	require.Len(t, a.Children, 1)
	assert.Equal(t, "b", *a.Children[0].Value.Addr, "child addresses are keys, not paths")
	assert.Equal(t, KindPsetID, a.Children[0].Value.Entity.Kind())

	c := tr.Children[1]
	assert.True(t, c.IsLeaf())
	assert.Equal(t, KindValue, c.Value.Entity.Kind())
	assert.Equal(t, 4, tr.Len(), "root, a, b and c")
}

func TestFlattenedValueWithAddress_Labels(t *testing.T) {
	addr := "wall"
	entity := FlatValue(value.Int(4))

	assert.Equal(t, "Psets", FlattenedValueWithAddress{}.String())
	assert.Equal(t, "wall", FlattenedValueWithAddress{Addr: &addr}.String())
	assert.Equal(t, "Psets: 4", FlattenedValueWithAddress{Entity: &entity}.String())
	assert.Equal(t, "wall: 4", FlattenedValueWithAddress{Addr: &addr, Entity: &entity}.String())
}
