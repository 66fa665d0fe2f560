package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/mcncl/psetkit/internal/errors"
)

// hostExtractor tries to read a host value as one variant. matched reports
// whether the extractor claims the value; a claimed value may still fail.
type hostExtractor func(rv reflect.Value) (v Value, matched bool, err error)

// hostExtractors is the fixed priority order for reading host values. A bool
// must never reach the numeric extractors and integers are tried before
// floats so that integral values keep full precision.
var hostExtractors []hostExtractor

func init() {
	hostExtractors = []hostExtractor{
		extractNull,
		extractBool,
		extractInt,
		extractFloat,
		extractString,
		extractSequence,
		extractMapping,
	}
}

var (
	valueType  = reflect.TypeOf(Value{})
	numberType = reflect.TypeOf(json.Number(""))
)

// FromHost converts a native Go value into a Value. Supported inputs are nil,
// booleans, integers, finite floats, json.Number, strings, slices and arrays,
// maps with string keys, pointers to any of those, and Value itself. Go maps
// have no order, so their keys are inserted sorted.
func FromHost(x any) (Value, error) {
	return fromHost(reflect.ValueOf(x))
}

func fromHost(rv reflect.Value) (Value, error) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return Null(), nil
		}
		rv = rv.Elem()
	}
	if rv.IsValid() && rv.Type() == valueType {
		return rv.Interface().(Value), nil
	}
	for _, extract := range hostExtractors {
		v, matched, err := extract(rv)
		if !matched {
			continue
		}
		if err != nil {
			return Value{}, err
		}
		return v, nil
	}
	return Value{}, errors.Unrepresentable(fmt.Sprintf("host type %s has no dynamic value mapping", rv.Type()))
}

func extractNull(rv reflect.Value) (Value, bool, error) {
	if !rv.IsValid() {
		return Null(), true, nil
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return Null(), true, nil
		}
	}
	return Value{}, false, nil
}

func extractBool(rv reflect.Value) (Value, bool, error) {
	if rv.Kind() != reflect.Bool {
		return Value{}, false, nil
	}
	return Bool(rv.Bool()), true, nil
}

func extractInt(rv reflect.Value) (Value, bool, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), true, nil
	case reflect.String:
		if rv.Type() != numberType {
			return Value{}, false, nil
		}
		text := rv.String()
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i), true, nil
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return Uint(u), true, nil
		}
	}
	return Value{}, false, nil
}

func extractFloat(rv reflect.Value) (Value, bool, error) {
	var f float64
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	case reflect.String:
		if rv.Type() != numberType {
			return Value{}, false, nil
		}
		parsed, err := strconv.ParseFloat(rv.String(), 64)
		if err != nil {
			return Value{}, true, errors.InvalidType(fmt.Sprintf("json.Number %q is not a number", rv.String()))
		}
		f = parsed
	default:
		return Value{}, false, nil
	}
	v, err := FiniteFloat(f)
	return v, true, err
}

func extractString(rv reflect.Value) (Value, bool, error) {
	if rv.Kind() != reflect.String {
		return Value{}, false, nil
	}
	return String(rv.String()), true, nil
}

func extractSequence(rv reflect.Value) (Value, bool, error) {
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Value{}, false, nil
	}
	items := make([]Value, rv.Len())
	for i := range items {
		item, err := fromHost(rv.Index(i))
		if err != nil {
			return Value{}, true, err
		}
		items[i] = item
	}
	return Value{kind: KindArray, arr: items}, true, nil
}

func extractMapping(rv reflect.Value) (Value, bool, error) {
	if rv.Kind() != reflect.Map {
		return Value{}, false, nil
	}
	if rv.Type().Key().Kind() != reflect.String {
		return Value{}, true, errors.Unrepresentable(fmt.Sprintf("mapping key type %s is not a string", rv.Type().Key()))
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	b := NewObjectBuilder(len(keys))
	for _, k := range keys {
		item, err := fromHost(rv.MapIndex(k))
		if err != nil {
			return Value{}, true, err
		}
		b.Set(k.String(), item)
	}
	return b.Build(), true, nil
}

// ToHost converts v into native Go values: nil, bool, string, []any and
// map[string]any. Integers above math.MaxInt64 become uint64, other integers
// int64 and floats float64. Non-finite floats fail.
func ToHost(v Value) (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInt:
		if v.unsigned {
			return v.u, nil
		}
		return v.i, nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, errors.Unrepresentable(fmt.Sprintf("non-finite float %v", v.f))
		}
		return v.f, nil
	case KindString:
		return v.s, nil
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			x, err := ToHost(item)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for _, m := range v.obj {
			x, err := ToHost(m.Value)
			if err != nil {
				return nil, err
			}
			out[m.Key] = x
		}
		return out, nil
	}
	return nil, errors.Unrepresentable(fmt.Sprintf("unknown value kind %d", v.kind))
}
