package query

import (
	"sort"
	"testing"

	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/psets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"wall": {
		"fire": {"id": 1, "class": "Pset_WallCommon", "value": {"rating": "REI60"}, "value-type": "IfcLabel"},
		"height": {"id": 2, "class": "Pset_Dimensions", "value": 2.5}
	},
	"door": {"id": 3},
	"note": "check on site",
	"count": 4
}`

func parseSample(t *testing.T) psets.Psets {
	t.Helper()
	p, err := psets.Parse([]byte(sample))
	require.NoError(t, err)
	return p
}

func selectedAddrs(t *testing.T, source string) []string {
	t.Helper()
	f, err := Compile(source)
	require.NoError(t, err)
	got, err := f.Select(parseSample(t), ":")
	require.NoError(t, err)
	addrs := make([]string, 0, len(got))
	for addr := range got {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

func TestFilter_Select(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"all", "true", []string{"count", "door", "note", "wall:fire", "wall:height"}},
		{"kind pset", `kind == "pset"`, []string{"wall:fire", "wall:height"}},
		{"kind pset id", `kind == "pset_id"`, []string{"door"}},
		{"opaque values", `kind == "value"`, []string{"count", "note"}},
		{"by id", `id == 2`, []string{"wall:height"}},
		{"class prefix", `class != nil && class startsWith "Pset_Wall"`, []string{"wall:fire"}},
		{"value type", `value_type == "IfcLabel"`, []string{"wall:fire"}},
		{"nested value field", `kind == "pset" && class == "Pset_WallCommon" && value.rating == "REI60"`, []string{"wall:fire"}},
		{"numeric value", `kind != "pset_id" && value == 4`, []string{"count"}},
		{"address", `addr matches "^wall:"`, []string{"wall:fire", "wall:height"}},
		{"depth", `depth == 1`, []string{"count", "door", "note"}},
		{"segment function", `segment(segments, -1) == "fire"`, []string{"wall:fire"}},
		{"segment out of range", `segment(segments, 5) == ""`, []string{"count", "door", "note", "wall:fire", "wall:height"}},
		{"none", "false", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectedAddrs(t, tt.source))
		})
	}
}

func TestFilter_SelectAfterCollisions(t *testing.T) {
	p, err := psets.Parse([]byte(`{"a:b": 1, "a": {"b": 2}}`))
	require.NoError(t, err)

	earlier, err := Compile(`value == 1`)
	require.NoError(t, err)
	got, err := earlier.Select(p, ":")
	require.NoError(t, err)
	assert.Empty(t, got, "the leaf Flatten replaces is not selectable")

	later, err := Compile(`value == 2 && segments[0] == "a"`)
	require.NoError(t, err)
	got, err = later.Select(p, ":")
	require.NoError(t, err)
	require.Contains(t, got, "a:b")
	assert.True(t, p.Flatten()["a:b"].Equal(got["a:b"]))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", "   "},
		{"syntax", `kind ==`},
		{"unknown variable", `colour == "red"`},
		{"not boolean", `addr`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidFilter)
			assert.Contains(t, errors.UserFriendlyError(err), "Query error:")
		})
	}
}

func TestFilter_NonBooleanResult(t *testing.T) {
	// value is untyped, so the result is only known at run time
	f, err := Compile("value")
	require.NoError(t, err)

	_, err = f.Select(parseSample(t), ":")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidFilter)
	assert.Contains(t, err.Error(), "want bool")
}

func TestNewEnv(t *testing.T) {
	p := parseSample(t)
	flat := p.Flatten()

	env, err := NewEnv([]string{"wall", "fire"}, "wall:fire", flat["wall:fire"])
	require.NoError(t, err)
	assert.Equal(t, "pset", env.Kind)
	assert.Equal(t, int64(1), env.ID)
	assert.Equal(t, "Pset_WallCommon", env.Class)
	assert.Equal(t, "IfcLabel", env.ValueType)
	assert.Equal(t, map[string]any{"rating": "REI60"}, env.Value)
	assert.Equal(t, 2, env.Depth)

	env, err = NewEnv([]string{"door"}, "door", flat["door"])
	require.NoError(t, err)
	assert.Equal(t, "pset_id", env.Kind)
	assert.Equal(t, int64(3), env.ID)
	assert.Nil(t, env.Class)
	assert.Nil(t, env.Value)

	env, err = NewEnv(nil, "", psets.FlatValue(flat["note"].ToJSON()))
	require.NoError(t, err)
	assert.Equal(t, "value", env.Kind)
	assert.Equal(t, "check on site", env.Value)
	assert.Equal(t, []string{}, env.Segments)
	assert.Nil(t, env.ID)
}
