package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/value"
)

func TestParse_SimpleObject(t *testing.T) {
	jsonStr := `{"name": "Wall", "id": 30, "external": false, "finish": null}`
	doc, err := Parse(strings.NewReader(jsonStr), FormatAuto)
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	if doc.Format != FormatJSON {
		t.Errorf("Parse() format = %q, want %q", doc.Format, FormatJSON)
	}

	want := `{"name":"Wall","id":30,"external":false,"finish":null}`
	if got := doc.Root.String(); got != want {
		t.Errorf("Parse() root = %s, want %s", got, want)
	}
}

func TestParse_KeepsKeyOrder(t *testing.T) {
	doc, err := Parse(strings.NewReader(`{"z": 1, "a": 2, "m": 3}`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var keys []string
	for _, m := range doc.Root.Members() {
		keys = append(keys, m.Key)
	}
	if strings.Join(keys, ",") != "z,a,m" {
		t.Errorf("Parse() keys = %v, want [z a m]", keys)
	}
}

func TestParse_YAML(t *testing.T) {
	input := `
wall:
  id: 4
  class: Pset_WallCommon
  value:
    height: 2.5
    external: true
    label: "north"
    count: 18446744073709551615
  value-type: null
door: {id: 7}
`
	doc, err := Parse(strings.NewReader(input), FormatAuto)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Format != FormatYAML {
		t.Errorf("Parse() format = %q, want %q", doc.Format, FormatYAML)
	}

	want := `{"wall":{"id":4,"class":"Pset_WallCommon","value":{"height":2.5,"external":true,"label":"north","count":18446744073709551615},"value-type":null},"door":{"id":7}}`
	if got := doc.Root.String(); got != want {
		t.Errorf("Parse() root =\n%s\nwant\n%s", got, want)
	}
}

func TestParse_YAMLAliasesAndMerge(t *testing.T) {
	input := `
base: &base
  class: Pset_Base
  value: 1
first:
  <<: *base
  id: 1
second:
  <<: *base
  id: 2
  value: 5
copy: *base
`
	doc, err := Parse(strings.NewReader(input), FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	second, _ := doc.Root.Get("second")
	if got, want := second.String(), `{"id":2,"value":5,"class":"Pset_Base"}`; got != want {
		t.Errorf("merged mapping = %s, want %s", got, want)
	}
	first, _ := doc.Root.Get("first")
	if got, want := first.String(), `{"id":1,"class":"Pset_Base","value":1}`; got != want {
		t.Errorf("merged mapping = %s, want %s", got, want)
	}
	copied, _ := doc.Root.Get("copy")
	if got, want := copied.String(), `{"class":"Pset_Base","value":1}`; got != want {
		t.Errorf("alias = %s, want %s", got, want)
	}
}

func TestParse_YAMLScalars(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  value.Value
	}{
		{"Int", "42", value.Int(42)},
		{"Hex", "0x1F", value.Int(31)},
		{"Float", "4.5", value.Float(4.5)},
		{"Bool", "true", value.Bool(true)},
		{"Null", "~", value.Null()},
		{"String", "plain text", value.String("plain text")},
		{"Timestamp", "2024-01-02", value.String("2024-01-02")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tc.input), FormatYAML)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !tc.want.Equal(doc.Root) || tc.want.Kind() != doc.Root.Kind() {
				t.Errorf("Parse() root = %s (%s), want %s (%s)", doc.Root, doc.Root.Kind(), tc.want, tc.want.Kind())
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		format Format
		want   error
	}{
		{"EmptyReader", "", FormatAuto, errors.ErrEmptyInput},
		{"WhitespaceReader", " \n\t", FormatJSON, errors.ErrEmptyInput},
		{"MissingBrace", `{"name": "Wall", "id": 30`, FormatJSON, errors.ErrInvalidJSON},
		{"MissingBracketAuto", `["item1", "item2",`, FormatAuto, errors.ErrInvalidJSON},
		{"MultipleJSON", `{"a": 1} {"b": 2}`, FormatJSON, errors.ErrMultipleJSON},
		{"YAMLSyntax", "a: [1, 2", FormatYAML, errors.ErrInvalidYAML},
		{"MultipleYAML", "a: 1\n---\nb: 2\n", FormatYAML, errors.ErrInvalidYAML},
		{"YAMLInfinity", "x: .inf", FormatYAML, errors.ErrUnrepresentablePrimitive},
		{"YAMLRecursiveAlias", "a: &a [*a]", FormatYAML, errors.ErrInvalidYAML},
		{"JSONHugeNumber", `[1e400]`, FormatAuto, errors.ErrUnrepresentablePrimitive},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input), tc.format)
			if err == nil {
				t.Fatalf("Parse() err = nil, want %v", tc.want)
			}
			if !stderrors.Is(err, tc.want) {
				t.Errorf("Parse() err = %v, want wrapping %v", err, tc.want)
			}
		})
	}
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   "} {
		_, err := ParseString(input, FormatAuto)
		if err == nil {
			t.Errorf("ParseString(%q) err = nil, want error", input)
		} else if !strings.Contains(err.Error(), "input string is empty or consists only of whitespace") {
			t.Errorf("ParseString(%q) err = %v, want error containing 'input string is empty or consists only of whitespace'", input, err)
		}
	}
}

func TestParseFile_SimpleObject(t *testing.T) {
	content := `{"product": "Door", "width": 0.9}`
	tmpfile, err := os.CreateTemp("", "test_simple_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	doc, err := ParseFile(tmpfile.Name(), FormatAuto)
	if err != nil {
		t.Fatalf("ParseFile() error = %v, wantErr nil", err)
	}
	if got, want := doc.Root.String(), `{"product":"Door","width":0.9}`; got != want {
		t.Errorf("ParseFile() root = %s, want %s", got, want)
	}
}

func TestParseFile_YAMLExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "psets.yaml")
	// valid as YAML only, so the extension must select the decoder
	if err := os.WriteFile(path, []byte("ref:\n  id: 3\n"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	doc, err := ParseFile(path, FormatAuto)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if doc.Format != FormatYAML {
		t.Errorf("ParseFile() format = %q, want yaml", doc.Format)
	}

	if _, err := ParseFile(path, FormatJSON); !stderrors.Is(err, errors.ErrInvalidJSON) {
		t.Errorf("ParseFile() with forced JSON err = %v, want invalid JSON", err)
	}
}

func TestParseFile_NonExistentFile(t *testing.T) {
	_, err := ParseFile("nonexistentfile.json", FormatAuto)
	if err == nil {
		t.Fatalf("ParseFile() with non-existent file, err = nil, want error")
	}
	if !stderrors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("ParseFile() with non-existent file, err = %v, want file not found", err)
	}
}

func TestParseFile_EmptyPath(t *testing.T) {
	_, err := ParseFile("", FormatAuto)
	if err == nil {
		t.Errorf("ParseFile() with empty path, err = nil, want error")
	} else if !strings.Contains(err.Error(), "file path is empty") {
		t.Errorf("ParseFile() with empty path, err = %v, want error containing 'file path is empty'", err)
	}
}

func TestParseFile_EmptyFileContent(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_empty_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	_, err = ParseFile(tmpfile.Name(), FormatAuto)
	if !stderrors.Is(err, errors.ErrFileEmpty) {
		t.Errorf("ParseFile() with empty file content, err = %v, want file empty", err)
	}
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"toml", "", true},
	}

	for _, tc := range testCases {
		got, err := ParseFormat(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	testCases := map[string]Format{
		"a.json":      FormatJSON,
		"a.YML":       FormatYAML,
		"dir/b.yaml":  FormatYAML,
		"noextension": FormatAuto,
		"c.txt":       FormatAuto,
	}
	for path, want := range testCases {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}
