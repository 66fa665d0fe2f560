package value

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/psetkit/internal/errors"
)

// ParseJSON decodes exactly one JSON document into a Value. Object members
// keep the order they appear in the text. Numbers without a fraction or
// exponent become integers (signed, then unsigned); everything else becomes a
// float. Numbers outside the float64 range are rejected.
func ParseJSON(data []byte) (Value, error) {
	if err := validateJSON(data); err != nil {
		return Value{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return Value{}, errors.NewParsingError("failed to read JSON token", err)
	}
	return decodeToken(dec, tok)
}

// validateJSON checks that data holds exactly one well-formed document. The
// go-json token stream does not check separators, so the walk in ParseJSON
// relies on this pass.
func validateJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var probe any
	if err := dec.Decode(&probe); err != nil {
		var syntaxErr *json.SyntaxError
		if stderrors.As(err, &syntaxErr) {
			// go-json range checks numbers while decoding.
			if strings.Contains(syntaxErr.Error(), strconv.ErrRange.Error()) {
				return errors.NewParsingError(
					fmt.Sprintf("number at offset %d is outside the float64 range", syntaxErr.Offset),
					errors.ErrUnrepresentablePrimitive,
				)
			}
			return errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()),
				errors.ErrInvalidJSON,
			)
		}
		return errors.NewParsingError(fmt.Sprintf("malformed JSON: %v", err), errors.ErrInvalidJSON)
	}
	if dec.More() && dec.InputOffset() < int64(len(data)) {
		return errors.NewParsingError("unexpected data after top-level value", errors.ErrMultipleJSON)
	}
	return nil
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return parseNumber(string(t))
	case float64:
		return Float(t), nil
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return Value{}, errors.InvalidType(fmt.Sprintf("unexpected delimiter %q", rune(t)))
	}
	return Value{}, errors.InvalidType(fmt.Sprintf("unexpected JSON token %T", tok))
}

func decodeObject(dec *json.Decoder) (Value, error) {
	b := NewObjectBuilder(0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, errors.NewParsingError("failed to read object key", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return b.Build(), nil
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, errors.InvalidType(fmt.Sprintf("object key must be a string, got %T", tok))
		}
		tok, err = dec.Token()
		if err != nil {
			return Value{}, errors.NewParsingError(fmt.Sprintf("failed to read value for key %q", key), err)
		}
		v, err := decodeToken(dec, tok)
		if err != nil {
			return Value{}, err
		}
		b.Set(key, v)
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := make([]Value, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, errors.NewParsingError("failed to read array element", err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return Value{kind: KindArray, arr: items}, nil
		}
		v, err := decodeToken(dec, tok)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

// parseNumber maps JSON number text onto the narrowest exact representation.
func parseNumber(text string) (Value, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i), nil
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return Uint(u), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return Value{}, errors.NewParsingError(
			fmt.Sprintf("number %s is outside the float64 range", text),
			errors.ErrUnrepresentablePrimitive,
		)
	}
	return Float(f), nil
}

// MarshalJSON implements json.Marshaler with the canonical encoding.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// JSON returns the canonical JSON text of v.
func (v Value) JSON() (string, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		if v.unsigned {
			buf.WriteString(strconv.FormatUint(v.u, 10))
		} else {
			buf.WriteString(strconv.FormatInt(v.i, 10))
		}
	case KindFloat:
		text, err := formatFloat(v.f)
		if err != nil {
			return err
		}
		buf.WriteString(text)
	case KindString:
		return encodeString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	data, err := json.MarshalWithOption(s, json.DisableHTMLEscape())
	if err != nil {
		return errors.NewFormatError("failed to encode string", err)
	}
	buf.Write(data)
	return nil
}

// formatFloat renders f the way encoding/json does, keeping a fractional part
// on integral values so the text decodes back to a float.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", errors.Unrepresentable(fmt.Sprintf("non-finite float %v has no JSON form", f))
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	text := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(text)
		if n >= 4 && text[n-4] == 'e' && text[n-3] == '-' && text[n-2] == '0' {
			text = text[:n-2] + text[n-1:]
		}
		return text, nil
	}
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text, nil
}
