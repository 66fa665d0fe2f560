package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "wraps a cause",
			err:      NewInputError("failed to read tree.json", errors.New("permission denied")),
			expected: "input: failed to read tree.json: permission denied",
		},
		{
			name:     "no cause",
			err:      NewPatchError("patch must be an array of operations", nil),
			expected: "patch: patch must be an array of operations",
		},
		{
			name:     "wraps a sentinel",
			err:      NewAnalysisError(`1 flattened addresses are ambiguous: "a:b" (2 paths)`, ErrAddressCollision),
			expected: `analysis: 1 flattened addresses are ambiguous: "a:b" (2 paths): flatten address collision`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_ChainMatching(t *testing.T) {
	cause := InvalidType(`Psets: expected a Pset, a PsetId or an object, got array`)
	err := NewPatchError("patched document is not a tree", cause)
	wrapped := fmt.Errorf("patch ops.json: %w", err)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, wrapped, ErrInvalidType, "sentinels match through every layer")
	assert.ErrorIs(t, wrapped, &AppError{Type: ErrorTypePatch})
	assert.ErrorIs(t, wrapped, &AppError{Type: ErrorTypeParsing}, "the inner category matches too")
	assert.NotErrorIs(t, wrapped, &AppError{Type: ErrorTypeQuery})
	assert.False(t, err.Is(errors.New("patch")), "plain errors never match a category")

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, ErrorTypePatch, appErr.Type)
	assert.Equal(t, "Patch error: patched document is not a tree", UserFriendlyError(wrapped))
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error",
			err:      NewInputError("failed to read file", nil),
			expected: "Input error: failed to read file",
		},
		{
			name:     "parsing error",
			err:      NewParsingError("invalid JSON syntax", nil),
			expected: "Parsing error: invalid JSON syntax",
		},
		{
			name:     "conversion error",
			err:      Unrepresentable("NaN has no JSON form"),
			expected: "Conversion error: NaN has no JSON form",
		},
		{
			name:     "analysis error",
			err:      NewAnalysisError("failed to analyze tree", nil),
			expected: "Analysis error: failed to analyze tree",
		},
		{
			name:     "query error",
			err:      NewQueryError("expression must be boolean", nil),
			expected: "Query error: expression must be boolean",
		},
		{
			name:     "patch error",
			err:      NewPatchError("bad patch", nil),
			expected: "Patch error: bad patch",
		},
		{
			name:     "config error",
			err:      NewConfigError("bad delimiter", nil),
			expected: "Configuration error: bad delimiter",
		},
		{
			name:     "format error",
			err:      NewFormatError("failed to render tree", nil),
			expected: "Formatting error: failed to render tree",
		},
		{
			name:     "output error",
			err:      NewOutputError("failed to write output", nil),
			expected: "Output error: failed to write output",
		},
		{
			name:     "standard error - empty input",
			err:      ErrEmptyInput,
			expected: "Error: The input is empty. Please provide valid JSON data.",
		},
		{
			name:     "standard error - invalid JSON",
			err:      ErrInvalidJSON,
			expected: "Error: The input contains invalid JSON. Please check your JSON syntax.",
		},
		{
			name:     "standard error - invalid YAML",
			err:      ErrInvalidYAML,
			expected: "Error: The input contains invalid YAML. Please check your YAML syntax.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFieldErrors_WrapKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{
			name:    "unknown field",
			err:     UnknownField("PsetId", "extra"),
			kind:    ErrUnknownField,
			message: "parsing: PsetId: unknown field \"extra\": unknown field",
		},
		{
			name:    "missing field",
			err:     MissingField("Pset", "class"),
			kind:    ErrMissingField,
			message: "parsing: Pset: missing field \"class\": missing field",
		},
		{
			name:    "duplicate field",
			err:     DuplicateField("Pset", "id"),
			kind:    ErrDuplicateField,
			message: "parsing: Pset: duplicate field \"id\": duplicate field",
		},
		{
			name:    "invalid type",
			err:     InvalidType("expected object"),
			kind:    ErrInvalidType,
			message: "parsing: expected object: invalid type",
		},
		{
			name:    "unrepresentable",
			err:     Unrepresentable("NaN"),
			kind:    ErrUnrepresentablePrimitive,
			message: "conversion: NaN: unrepresentable primitive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}

	assert.ErrorIs(t, UnknownField("Pset", "x"), &AppError{Type: ErrorTypeParsing})
	assert.NotErrorIs(t, Unrepresentable("x"), &AppError{Type: ErrorTypeParsing})
}
