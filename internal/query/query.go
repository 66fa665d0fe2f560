// Package query filters flattened property sets with boolean expressions.
//
// An expression sees one leaf at a time through these variables:
//
//	addr        flattened address
//	segments    key path of the leaf
//	depth       number of keys in the path
//	kind        "pset", "pset_id" or "value"
//	id          set id, nil for opaque values
//	class       set class, nil unless kind is "pset"
//	value       set value or opaque value as native Go data
//	value_type  value-type tag, nil when absent
//
// For example `kind == "pset" && class startsWith "Pset_Wall"`.
package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/psets"
	"github.com/mcncl/psetkit/internal/value"
)

// Env is the evaluation environment of a filter
type Env struct {
	Addr      string   `expr:"addr"`
	Segments  []string `expr:"segments"`
	Depth     int      `expr:"depth"`
	Kind      string   `expr:"kind"`
	ID        any      `expr:"id"`
	Class     any      `expr:"class"`
	Value     any      `expr:"value"`
	ValueType any      `expr:"value_type"`
}

// Filter is a compiled filter expression
type Filter struct {
	source  string
	program *vm.Program
}

// Compile checks and compiles a filter expression.
func Compile(source string) (*Filter, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.NewQueryError("filter expression is empty", errors.ErrInvalidFilter)
	}
	program, err := expr.Compile(source, exprOpts()...)
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("cannot compile %q: %v", source, err), errors.ErrInvalidFilter)
	}
	return &Filter{source: source, program: program}, nil
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Env(Env{}),
		expr.AsBool(),
		expr.Function("segment", func(params ...any) (any, error) {
			segments := params[0].([]string)
			i := params[1].(int)
			if i < 0 {
				i += len(segments)
			}
			if i < 0 || i >= len(segments) {
				return "", nil
			}
			return segments[i], nil
		},
			new(func([]string, int) string)),
	}
}

// String returns the source of the expression
func (f *Filter) String() string { return f.source }

// Match evaluates the filter against the leaf at path.
func (f *Filter) Match(path []string, addr string, v psets.FlattenedValue) (bool, error) {
	env, err := NewEnv(path, addr, v)
	if err != nil {
		return false, err
	}
	res, err := expr.Run(f.program, env)
	if err != nil {
		return false, errors.NewQueryError(fmt.Sprintf("evaluating %q at %q: %v", f.source, addr, err), errors.ErrInvalidFilter)
	}
	ok, isBool := res.(bool)
	if !isBool {
		return false, errors.NewQueryError(fmt.Sprintf("%q returned %T, want bool", f.source, res), errors.ErrInvalidFilter)
	}
	return ok, nil
}

// Select flattens p with delimiter and keeps the leaves the filter matches.
// Colliding addresses are resolved first, later path winning as in
// psets.Flatten, so the filter never sees a replaced leaf. The first
// evaluation error stops the selection.
func (f *Filter) Select(p psets.Psets, delimiter string) (map[string]psets.FlattenedValue, error) {
	type leaf struct {
		path []string
		v    psets.FlattenedValue
	}
	leaves := make(map[string]leaf)
	p.Walk(func(path []string, v psets.FlattenedValue) {
		leaves[psets.JoinAddress(path, delimiter)] = leaf{path: path, v: v}
	})

	out := make(map[string]psets.FlattenedValue)
	for addr, l := range leaves {
		ok, err := f.Match(l.path, addr, l.v)
		if err != nil {
			return nil, err
		}
		if ok {
			out[addr] = l.v
		}
	}
	return out, nil
}

// NewEnv builds the environment a filter sees for one leaf.
func NewEnv(path []string, addr string, v psets.FlattenedValue) (Env, error) {
	env := Env{
		Addr:     addr,
		Segments: path,
		Depth:    len(path),
		Kind:     v.Kind().String(),
	}
	if env.Segments == nil {
		env.Segments = []string{}
	}

	var inner value.Value
	switch v.Kind() {
	case psets.KindPset:
		set, _ := v.Pset()
		env.ID = set.ID
		env.Class = set.Class
		if set.ValueType != nil {
			env.ValueType = *set.ValueType
		}
		inner = set.Value
	case psets.KindPsetID:
		id, _ := v.PsetID()
		env.ID = id.ID
		return env, nil
	default:
		inner, _ = v.Value()
	}

	host, err := value.ToHost(inner)
	if err != nil {
		return Env{}, errors.NewQueryError(fmt.Sprintf("value at %q: %v", addr, err), errors.ErrInvalidFilter)
	}
	env.Value = host
	return env, nil
}
