package parser

import (
	"bytes"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/psetkit/internal/errors" // Custom errors package
	"github.com/mcncl/psetkit/internal/value"
	"gopkg.in/yaml.v3"
)

// Format names an input encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string means auto.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", errors.NewInputError(fmt.Sprintf("unknown input format %q (expected auto, json or yaml)", name), nil)
}

// DetectFormat guesses the format of a file from its extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yml", ".yaml":
		return FormatYAML
	}
	return FormatAuto
}

// Document is a decoded input document.
type Document struct {
	Root   value.Value
	Format Format // format the document was decoded as, never FormatAuto
}

// Parse decodes a single document from reader. With FormatAuto the input is
// read as JSON first and as YAML when it is not valid JSON.
func Parse(reader io.Reader, format Format) (Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return Document{}, errors.NewInputError("failed to read input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	}

	doc, jsonErr := parseJSON(data)
	if jsonErr == nil {
		return doc, nil
	}
	// Only plain syntax errors are worth a second attempt; a valid JSON
	// document with an unrepresentable number would fail as YAML too.
	if !stderrors.Is(jsonErr, errors.ErrInvalidJSON) {
		return Document{}, jsonErr
	}
	if doc, err := parseYAML(data); err == nil {
		return doc, nil
	}
	return Document{}, jsonErr
}

// ParseString parses a document from a string.
func ParseString(input string, format Format) (Document, error) {
	if strings.TrimSpace(input) == "" {
		return Document{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(input), format)
}

// ParseFile parses a document from a file path. With FormatAuto the format is
// taken from the file extension when it is known.
func ParseFile(filePath string, format Format) (Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	if format == FormatAuto {
		format = DetectFormat(filePath)
	}
	return Parse(file, format)
}

func parseJSON(data []byte) (Document, error) {
	root, err := value.ParseJSON(data)
	if err != nil {
		return Document{}, err
	}
	return Document{Root: root, Format: FormatJSON}, nil
}

func parseYAML(data []byte) (Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node yaml.Node
	if err := dec.Decode(&node); err != nil {
		if stderrors.Is(err, io.EOF) {
			return Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return Document{}, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidYAML)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !stderrors.Is(err, io.EOF) {
		return Document{}, errors.NewParsingError("multiple YAML documents found, only one is allowed", errors.ErrInvalidYAML)
	}

	root, err := convertNode(&node, nil)
	if err != nil {
		return Document{}, err
	}
	return Document{Root: root, Format: FormatYAML}, nil
}
