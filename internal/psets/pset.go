package psets

import (
	"fmt"

	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/value"
)

const (
	psetClassName   = "Pset"
	psetIDClassName = "PsetId"
)

// JSONConvertible is implemented by every entity that has a canonical JSON
// form.
type JSONConvertible interface {
	ToJSON() value.Value
	ClassName() string
}

var (
	_ JSONConvertible = PsetID{}
	_ JSONConvertible = Pset{}
	_ JSONConvertible = Psets{}
	_ JSONConvertible = NestedValue{}
	_ JSONConvertible = FlattenedValue{}
)

// PsetID references a property set by identifier only.
type PsetID struct {
	ID int64
}

var psetIDFields = []field{
	{name: "id", aliases: []string{"id_"}, required: true},
}

// PsetIDFromJSON reads a PsetID from its wire form. Unknown fields are
// rejected.
func PsetIDFromJSON(v value.Value) (PsetID, error) {
	fields, err := readFields(psetIDClassName, v, psetIDFields)
	if err != nil {
		return PsetID{}, err
	}
	id, err := readID(psetIDClassName, fields["id"])
	if err != nil {
		return PsetID{}, err
	}
	return PsetID{ID: id}, nil
}

// PsetIDFromHost reads a PsetID from a native Go value.
func PsetIDFromHost(x any) (PsetID, error) {
	v, err := value.FromHost(x)
	if err != nil {
		return PsetID{}, err
	}
	return PsetIDFromJSON(v)
}

// ToJSON returns the wire form of id.
func (id PsetID) ToJSON() value.Value {
	return value.Object(value.Member{Key: "id", Value: value.Int(id.ID)})
}

// ToHost returns the wire form of id as native Go values.
func (id PsetID) ToHost() (any, error) {
	return value.ToHost(id.ToJSON())
}

// ClassName returns "PsetId".
func (PsetID) ClassName() string { return psetIDClassName }

// String renders id as PsetId(<json>).
func (id PsetID) String() string {
	return render(id)
}

// MarshalJSON implements json.Marshaler.
func (id PsetID) MarshalJSON() ([]byte, error) {
	return id.ToJSON().MarshalJSON()
}

// Pset is a full property set record. Value must not hold a non-finite float:
// such a Pset has no wire form and String panics on it.
type Pset struct {
	ID        int64
	Class     string
	Value     value.Value
	ValueType *string
}

var psetFields = []field{
	{name: "id", aliases: []string{"id_"}, required: true},
	{name: "class", aliases: []string{"class_"}, required: true},
	{name: "value", required: true},
	{name: "value-type", aliases: []string{"value_type"}},
}

// PsetFromJSON reads a Pset from its wire form. id, class and value are
// required; value may be null. Unknown fields are rejected.
func PsetFromJSON(v value.Value) (Pset, error) {
	fields, err := readFields(psetClassName, v, psetFields)
	if err != nil {
		return Pset{}, err
	}
	id, err := readID(psetClassName, fields["id"])
	if err != nil {
		return Pset{}, err
	}
	class, ok := fields["class"].AsString()
	if !ok {
		return Pset{}, errors.InvalidType(fmt.Sprintf("%s: field %q must be a string, got %s", psetClassName, "class", fields["class"].Kind()))
	}
	p := Pset{ID: id, Class: class, Value: fields["value"]}
	if vt, present := fields["value-type"]; present && !vt.IsNull() {
		s, ok := vt.AsString()
		if !ok {
			return Pset{}, errors.InvalidType(fmt.Sprintf("%s: field %q must be a string or null, got %s", psetClassName, "value-type", vt.Kind()))
		}
		p.ValueType = &s
	}
	return p, nil
}

// PsetFromHost reads a Pset from a native Go value.
func PsetFromHost(x any) (Pset, error) {
	v, err := value.FromHost(x)
	if err != nil {
		return Pset{}, err
	}
	return PsetFromJSON(v)
}

// ToJSON returns the wire form of p. value-type is always present and is
// null when p has no value type.
func (p Pset) ToJSON() value.Value {
	valueType := value.Null()
	if p.ValueType != nil {
		valueType = value.String(*p.ValueType)
	}
	return value.Object(
		value.Member{Key: "id", Value: value.Int(p.ID)},
		value.Member{Key: "class", Value: value.String(p.Class)},
		value.Member{Key: "value", Value: p.Value},
		value.Member{Key: "value-type", Value: valueType},
	)
}

// ToHost returns the wire form of p as native Go values.
func (p Pset) ToHost() (any, error) {
	return value.ToHost(p.ToJSON())
}

// ClassName returns "Pset".
func (Pset) ClassName() string { return psetClassName }

// String renders p as Pset(<json>).
func (p Pset) String() string {
	return render(p)
}

// MarshalJSON implements json.Marshaler.
func (p Pset) MarshalJSON() ([]byte, error) {
	return p.ToJSON().MarshalJSON()
}

// Equal reports whether p and o hold the same record.
func (p Pset) Equal(o Pset) bool {
	if p.ID != o.ID || p.Class != o.Class || !p.Value.Equal(o.Value) {
		return false
	}
	if p.ValueType == nil || o.ValueType == nil {
		return p.ValueType == nil && o.ValueType == nil
	}
	return *p.ValueType == *o.ValueType
}

func render(e JSONConvertible) string {
	return e.ClassName() + "(" + e.ToJSON().String() + ")"
}

func readID(className string, v value.Value) (int64, error) {
	id, ok := v.AsInt()
	if !ok {
		return 0, errors.InvalidType(fmt.Sprintf("%s: field %q must be an integer in the int64 range, got %s", className, "id", v.Kind()))
	}
	return id, nil
}
