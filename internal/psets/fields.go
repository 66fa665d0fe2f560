package psets

import (
	"fmt"

	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/value"
)

// field describes one member of a strict leaf schema. Values read under an
// alias are stored under name.
type field struct {
	name     string
	aliases  []string
	required bool
}

// readFields matches the members of an object against a closed schema.
func readFields(className string, v value.Value, schema []field) (map[string]value.Value, error) {
	if v.Kind() != value.KindObject {
		return nil, errors.InvalidType(fmt.Sprintf("%s: expected an object, got %s", className, v.Kind()))
	}

	names := make(map[string]string, len(schema))
	for _, f := range schema {
		names[f.name] = f.name
		for _, alias := range f.aliases {
			names[alias] = f.name
		}
	}

	out := make(map[string]value.Value, len(schema))
	for _, m := range v.Members() {
		name, ok := names[m.Key]
		if !ok {
			return nil, errors.UnknownField(className, m.Key)
		}
		if _, seen := out[name]; seen {
			return nil, errors.DuplicateField(className, name)
		}
		out[name] = m.Value
	}

	for _, f := range schema {
		if _, ok := out[f.name]; f.required && !ok {
			return nil, errors.MissingField(className, f.name)
		}
	}
	return out, nil
}
