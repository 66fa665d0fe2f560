package psets

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mcncl/psetkit/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		delim string
		want  map[string]FlattenedValue
	}{
		{
			name: "nested reference and value",
			in:   `{"a": {"id": 1}, "b": {"c": 2}}`,
			want: map[string]FlattenedValue{
				"a":   FlatPsetID(PsetID{ID: 1}),
				"b:c": FlatValue(value.Int(2)),
			},
		},
		{
			name:  "custom delimiter",
			in:    `{"a": {"id": 1}, "b": {"c": 2}}`,
			delim: ".",
			want: map[string]FlattenedValue{
				"a":   FlatPsetID(PsetID{ID: 1}),
				"b.c": FlatValue(value.Int(2)),
			},
		},
		{
			name:  "multi character delimiter",
			in:    `{"x": {"y": {"z": "deep"}}}`,
			delim: "::",
			want: map[string]FlattenedValue{
				"x::y::z": FlatValue(value.String("deep")),
			},
		},
		{
			name: "root pset id",
			in:   `{"id": 7}`,
			want: map[string]FlattenedValue{"": FlatPsetID(PsetID{ID: 7})},
		},
		{
			name: "root pset",
			in:   `{"id": 7, "class": "c", "value": 1.5}`,
			want: map[string]FlattenedValue{"": FlatPset(Pset{ID: 7, Class: "c", Value: value.Float(1.5)})},
		},
		{
			name: "empty nested",
			in:   `{}`,
			want: map[string]FlattenedValue{},
		},
		{
			name: "empty child contributes nothing",
			in:   `{"a": {}, "b": null}`,
			want: map[string]FlattenedValue{"b": FlatValue(value.Null())},
		},
		{
			name: "arrays stay opaque",
			in:   `{"list": [{"id": 1}, 2]}`,
			want: map[string]FlattenedValue{
				"list": FlatValue(value.Array(value.Object(value.Member{Key: "id", Value: value.Int(1)}), value.Int(2))),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.in)
			var opts []FlattenOption
			if tt.delim != "" {
				opts = append(opts, WithDelimiter(tt.delim))
			}
			got := p.Flatten(opts...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlatten_CollisionLaterPathWins(t *testing.T) {
	p := mustParse(t, `{"a:b": 1, "a": {"b": 2}}`)
	got := p.Flatten()
	require.Len(t, got, 1)

	v, ok := got["a:b"].Value()
	require.True(t, ok)
	assert.True(t, value.Int(2).Equal(v))

	// a different delimiter keeps both paths apart
	assert.Len(t, p.Flatten(WithDelimiter("/")), 2)
}

func TestWalk_Order(t *testing.T) {
	p := mustParse(t, `{"z": 1, "a": {"y": {"id": 2}, "b": 3}, "m": 4}`)

	var paths []string
	p.Walk(func(path []string, _ FlattenedValue) {
		paths = append(paths, strings.Join(path, "/"))
	})
	assert.Equal(t, []string{"z", "a/y", "a/b", "m"}, paths)
}

func TestWalk_RootLeafHasEmptyPath(t *testing.T) {
	calls := 0
	mustParse(t, `{"id": 1}`).Walk(func(path []string, v FlattenedValue) {
		calls++
		assert.Empty(t, path)
		assert.Equal(t, KindPsetID, v.Kind())
	})
	assert.Equal(t, 1, calls)
}

func TestFlatten_DeepTree(t *testing.T) {
	const depth = 10000
	p := Nested(Entry{Key: "leaf", Value: NestedAny(value.Int(1))})
	for i := 0; i < depth; i++ {
		p = Nested(Entry{Key: "k", Value: NestedPsets(p)})
	}

	flat := p.Flatten(WithDelimiter("."))
	require.Len(t, flat, 1)
	for addr := range flat {
		assert.Equal(t, depth+1, len(strings.Split(addr, ".")))
		assert.True(t, strings.HasSuffix(addr, ".leaf"))
	}
}

func TestFlattenHost(t *testing.T) {
	p := mustParse(t, `{"ref": {"id": 1}, "set": {"id": 2, "class": "c", "value": [1]}, "n": {"v": 7.0}}`)

	got, err := p.FlattenHost()
	require.NoError(t, err)
	want := map[string]any{
		"ref": map[string]any{"id": int64(1)},
		"set": map[string]any{"id": int64(2), "class": "c", "value": []any{int64(1)}, "value-type": nil},
		"n:v": 7.0,
	}
	assert.Equal(t, want, got)
}

func TestFlattenedValue(t *testing.T) {
	tests := []struct {
		name string
		in   FlattenedValue
		kind Kind
		text string
	}{
		{name: "pset", in: FlatPset(Pset{ID: 1, Class: "c"}), kind: KindPset, text: `Pset({"id":1,"class":"c","value":null,"value-type":null})`},
		{name: "pset id", in: FlatPsetID(PsetID{ID: 2}), kind: KindPsetID, text: `PsetId({"id":2})`},
		{name: "value", in: FlatValue(value.String("s")), kind: KindValue, text: `"s"`},
		{name: "zero", in: FlattenedValue{}, kind: KindValue, text: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.in.Kind())
			assert.Equal(t, tt.text, tt.in.String())
			assert.True(t, tt.in.Equal(tt.in))
		})
	}

	assert.False(t, FlatValue(value.Int(1)).Equal(FlatPsetID(PsetID{ID: 1})))
}
