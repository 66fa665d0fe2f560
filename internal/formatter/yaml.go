package formatter

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/value"
	"gopkg.in/yaml.v3"
)

// valueNode builds a YAML node for v. Mapping order follows v.
func valueNode(v value.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case value.KindNull:
		return scalar("!!null", "null"), nil
	case value.KindBool:
		b, _ := v.AsBool()
		return scalar("!!bool", strconv.FormatBool(b)), nil
	case value.KindInt:
		if i, ok := v.AsInt(); ok {
			return scalar("!!int", strconv.FormatInt(i, 10)), nil
		}
		u, _ := v.AsUint()
		return scalar("!!int", strconv.FormatUint(u, 10)), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Unrepresentable("non-finite float has no YAML form here")
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return scalar("!!float", s), nil
	case value.KindString:
		s, _ := v.AsString()
		return scalar("!!str", s), nil
	case value.KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			child, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case value.KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Members() {
			child, err := valueNode(m.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalar("!!str", m.Key), child)
		}
		return node, nil
	}
	return nil, errors.Unrepresentable("unknown value kind " + v.Kind().String())
}

func scalar(tag, text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
}

// encodeYAML renders v as a YAML document with two space indentation.
func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.NewFormatError("failed to encode YAML", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.NewFormatError("failed to encode YAML", err)
	}
	return buf.Bytes(), nil
}

func valueYAML(v value.Value) ([]byte, error) {
	node, err := valueNode(v)
	if err != nil {
		return nil, err
	}
	return encodeYAML(node)
}
