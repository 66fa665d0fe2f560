package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrInvalidYAML      = errors.New("invalid YAML format")
	ErrMultipleJSON     = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoInput          = errors.New("no input provided: please specify a file or pipe JSON data to stdin")
	ErrInvalidFilePath  = errors.New("invalid file path")
	ErrAddressCollision = errors.New("flatten address collision")
	ErrInvalidFilter    = errors.New("invalid filter expression")
	ErrInvalidPatch     = errors.New("invalid patch document")
)

// Parse and conversion error kinds. They are always wrapped in an *AppError,
// so callers match them with errors.Is.
var (
	ErrUnknownField             = errors.New("unknown field")
	ErrMissingField             = errors.New("missing field")
	ErrDuplicateField           = errors.New("duplicate field")
	ErrInvalidType              = errors.New("invalid type")
	ErrUnrepresentablePrimitive = errors.New("unrepresentable primitive")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeAnalysis   ErrorType = "analysis"
	ErrorTypeQuery      ErrorType = "query"
	ErrorTypePatch      ErrorType = "patch"
	ErrorTypeFormat     ErrorType = "format"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to decoding text or building
// entities from a dynamic value
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewConversionError creates a new error for values that cannot cross the
// host-value boundary
func NewConversionError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConversion,
		Message: message,
		Err:     err,
	}
}

// NewAnalysisError creates a new error related to tree analysis
func NewAnalysisError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAnalysis,
		Message: message,
		Err:     err,
	}
}

// NewQueryError creates a new error related to filter expressions
func NewQueryError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeQuery,
		Message: message,
		Err:     err,
	}
}

// NewPatchError creates a new error related to applying document patches
func NewPatchError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypePatch,
		Message: message,
		Err:     err,
	}
}

// NewFormatError creates a new error related to rendering output
func NewFormatError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFormat,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// UnknownField reports a field outside a leaf schema.
func UnknownField(className, field string) *AppError {
	return NewParsingError(fmt.Sprintf("%s: unknown field %q", className, field), ErrUnknownField)
}

// MissingField reports an absent required field.
func MissingField(className, field string) *AppError {
	return NewParsingError(fmt.Sprintf("%s: missing field %q", className, field), ErrMissingField)
}

// DuplicateField reports a field supplied under more than one alias.
func DuplicateField(className, field string) *AppError {
	return NewParsingError(fmt.Sprintf("%s: duplicate field %q", className, field), ErrDuplicateField)
}

// InvalidType reports a value whose shape does not match what was expected.
func InvalidType(message string) *AppError {
	return NewParsingError(message, ErrInvalidType)
}

// Unrepresentable reports a primitive that has no mapping on the other side
// of the host-value boundary.
func Unrepresentable(message string) *AppError {
	return NewConversionError(message, ErrUnrepresentablePrimitive)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Parsing error: %s", appErr.Message)
		case ErrorTypeConversion:
			return fmt.Sprintf("Conversion error: %s", appErr.Message)
		case ErrorTypeAnalysis:
			return fmt.Sprintf("Analysis error: %s", appErr.Message)
		case ErrorTypeQuery:
			return fmt.Sprintf("Query error: %s", appErr.Message)
		case ErrorTypePatch:
			return fmt.Sprintf("Patch error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrInvalidYAML) {
		return "Error: The input contains invalid YAML. Please check your YAML syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
