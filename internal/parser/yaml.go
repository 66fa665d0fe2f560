package parser

import (
	"fmt"
	"math"
	"slices"

	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/value"
	"gopkg.in/yaml.v3"
)

// convertNode maps a YAML node onto a value. Mapping order is kept. aliases
// holds the alias targets being expanded, so a self-referencing alias fails
// instead of recursing forever.
func convertNode(node *yaml.Node, aliases []*yaml.Node) (value.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return value.Null(), nil
		}
		return convertNode(node.Content[0], aliases)
	case yaml.AliasNode:
		if slices.Contains(aliases, node.Alias) {
			return value.Value{}, yamlError(node, "recursive alias *%s", node.Value)
		}
		return convertNode(node.Alias, append(aliases, node.Alias))
	case yaml.ScalarNode:
		return convertScalar(node)
	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := convertNode(child, aliases)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, item)
		}
		return value.Array(items...), nil
	case yaml.MappingNode:
		return convertMapping(node, aliases)
	}
	return value.Value{}, yamlError(node, "unsupported YAML node kind %d", node.Kind)
}

func convertMapping(node *yaml.Node, aliases []*yaml.Node) (value.Value, error) {
	b := value.NewObjectBuilder(len(node.Content) / 2)
	var merged []value.Member
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return value.Value{}, yamlError(key, "mapping keys must be scalars")
		}
		v, err := convertNode(val, aliases)
		if err != nil {
			return value.Value{}, err
		}
		if key.ShortTag() == "!!merge" {
			members, err := mergeMembers(val, v)
			if err != nil {
				return value.Value{}, err
			}
			merged = append(merged, members...)
			continue
		}
		b.Set(key.Value, v)
	}

	// explicit keys win over merged ones, earlier merges over later ones
	out := b.Build()
	if len(merged) == 0 {
		return out, nil
	}
	result := value.NewObjectBuilder(out.Len() + len(merged))
	seen := make(map[string]bool, out.Len()+len(merged))
	for _, m := range out.Members() {
		seen[m.Key] = true
		result.Set(m.Key, m.Value)
	}
	for _, m := range merged {
		if !seen[m.Key] {
			seen[m.Key] = true
			result.Set(m.Key, m.Value)
		}
	}
	return result.Build(), nil
}

// mergeMembers returns the members contributed by a << key: a mapping or a
// sequence of mappings, earlier mappings taking precedence.
func mergeMembers(node *yaml.Node, v value.Value) ([]value.Member, error) {
	switch v.Kind() {
	case value.KindObject:
		return v.Members(), nil
	case value.KindArray:
		var members []value.Member
		for _, item := range v.Items() {
			if item.Kind() != value.KindObject {
				return nil, yamlError(node, "merge sequence must contain only mappings")
			}
			members = append(members, item.Members()...)
		}
		return members, nil
	}
	return nil, yamlError(node, "merge value must be a mapping or a sequence of mappings")
}

func convertScalar(node *yaml.Node) (value.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return value.Value{}, yamlError(node, "invalid boolean %q", node.Value)
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return value.Int(i), nil
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return value.Uint(u), nil
		}
		return value.Value{}, errors.NewParsingError(
			fmt.Sprintf("line %d: integer %s is outside the 64-bit range", node.Line, node.Value),
			errors.ErrUnrepresentablePrimitive,
		)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return value.Value{}, yamlError(node, "invalid float %q", node.Value)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return value.Value{}, errors.NewParsingError(
				fmt.Sprintf("line %d: non-finite float %s", node.Line, node.Value),
				errors.ErrUnrepresentablePrimitive,
			)
		}
		return value.Float(f), nil
	}
	// strings, timestamps and binary data keep their source text
	return value.String(node.Value), nil
}

func yamlError(node *yaml.Node, format string, args ...any) error {
	return errors.NewParsingError(
		fmt.Sprintf("line %d: %s", node.Line, fmt.Sprintf(format, args...)),
		errors.ErrInvalidYAML,
	)
}
