package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/psetkit/internal/analyzer"
	"github.com/mcncl/psetkit/internal/config"
	"github.com/mcncl/psetkit/internal/diff"
	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/psets"
	"github.com/mcncl/psetkit/internal/value"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter renders property set views as text, JSON or YAML
type Formatter struct {
	format   string
	sortKeys bool
	colors   *Colors
}

// NewFormatter creates a Formatter writing uncolored, key sorted text
func NewFormatter() *Formatter {
	return &Formatter{
		format:   FormatText,
		sortKeys: true,
		colors:   NoColors(),
	}
}

// NewFormatterWithConfig creates a Formatter from the output settings. Color
// is resolved by the caller, since "auto" depends on the terminal.
func NewFormatterWithConfig(cfg *config.Config, useColor bool) *Formatter {
	f := &Formatter{
		format:   cfg.Output.Format,
		sortKeys: cfg.Output.SortKeys,
		colors:   NoColors(),
	}
	// Colors only apply to text output
	if useColor && f.format == FormatText {
		f.colors = NewColors()
	}
	return f
}

// Document writes the wire form of p.
func (f *Formatter) Document(w io.Writer, p psets.Psets) error {
	return f.writeValue(w, p.ToJSON())
}

// Value writes a dynamic value as is, for documents that are not trees such
// as merge patches.
func (f *Formatter) Value(w io.Writer, v value.Value) error {
	return f.writeValue(w, v)
}

// Tree writes the tree view of p. Structured formats get the wire form.
func (f *Formatter) Tree(w io.Writer, p psets.Psets) error {
	if f.format != FormatText {
		return f.Document(w, p)
	}
	return writeString(w, p.String()+"\n")
}

// Flatten writes flattened cells as "addr = value" lines or as a single
// level object.
func (f *Formatter) Flatten(w io.Writer, cells []Cell) error {
	cells = f.order(cells)
	if f.format != FormatText {
		b := value.NewObjectBuilder(len(cells))
		for _, c := range cells {
			b.Set(c.Address, c.Value.ToJSON())
		}
		return f.writeValue(w, b.Build())
	}

	var sb strings.Builder
	for _, c := range cells {
		sb.WriteString(f.colors.Attr(AddressColor, c.Address))
		sb.WriteString(f.colors.Attr(SepColor, " = "))
		sb.WriteString(f.colors.Kind(c.Value.Kind(), c.Value.String()))
		sb.WriteString("\n")
	}
	return writeString(w, sb.String())
}

// Items writes the key/value pairs yielded by the node iterator. A leaf
// yields one pair without a key.
func (f *Formatter) Items(w io.Writer, items []psets.Item) error {
	if f.format != FormatText {
		pairs := make([]value.Value, 0, len(items))
		for _, it := range items {
			key := value.Null()
			if it.Key != nil {
				key = value.String(*it.Key)
			}
			pairs = append(pairs, value.Array(key, it.Value.ToJSON()))
		}
		return f.writeValue(w, value.Array(pairs...))
	}

	var sb strings.Builder
	for _, it := range items {
		if it.Key != nil {
			sb.WriteString(f.colors.Attr(AddressColor, *it.Key))
			sb.WriteString(f.colors.Attr(SepColor, ": "))
		}
		sb.WriteString(it.Value.ToJSON().String())
		sb.WriteString("\n")
	}
	return writeString(w, sb.String())
}

// reportDoc is the structured form of an analyzer.Report
type reportDoc struct {
	Root       string         `json:"root" yaml:"root"`
	Nested     int            `json:"nested" yaml:"nested"`
	Psets      int            `json:"psets" yaml:"psets"`
	PsetIDs    int            `json:"pset_ids" yaml:"pset_ids"`
	Values     int            `json:"values" yaml:"values"`
	MaxDepth   int            `json:"max_depth" yaml:"max_depth"`
	Addresses  int            `json:"addresses" yaml:"addresses"`
	Classes    map[string]int `json:"classes" yaml:"classes"`
	ValueTypes map[string]int `json:"value_types" yaml:"value_types"`
	ValueKinds map[string]int `json:"value_kinds" yaml:"value_kinds"`
	Collisions []collisionDoc `json:"collisions" yaml:"collisions"`
}

type collisionDoc struct {
	Address string     `json:"address" yaml:"address"`
	Paths   [][]string `json:"paths" yaml:"paths"`
}

// Report writes an analyzer report.
func (f *Formatter) Report(w io.Writer, r analyzer.Report) error {
	doc := reportDoc{
		Root:       r.Root.String(),
		Nested:     r.Nested,
		Psets:      r.Psets,
		PsetIDs:    r.PsetIDs,
		Values:     r.Values,
		MaxDepth:   r.MaxDepth,
		Addresses:  r.Addresses,
		Classes:    r.Classes,
		ValueTypes: r.ValueTypes,
		ValueKinds: r.ValueKinds,
		Collisions: []collisionDoc{},
	}
	for _, c := range r.Collisions {
		doc.Collisions = append(doc.Collisions, collisionDoc{Address: c.Address, Paths: c.Paths})
	}

	switch f.format {
	case FormatJSON:
		return f.writeJSON(w, doc)
	case FormatYAML:
		out, err := encodeYAML(doc)
		if err != nil {
			return err
		}
		return writeBytes(w, out)
	}

	var sb strings.Builder
	line := func(name string, v any) {
		fmt.Fprintf(&sb, "%s %v\n", f.colors.Attr(HeadingColor, name+":"), v)
	}
	line("root", doc.Root)
	line("nested", doc.Nested)
	line("psets", doc.Psets)
	line("pset ids", doc.PsetIDs)
	line("values", doc.Values)
	line("max depth", doc.MaxDepth)
	line("addresses", doc.Addresses)
	f.writeCounts(&sb, "classes", doc.Classes)
	f.writeCounts(&sb, "value types", doc.ValueTypes)
	f.writeCounts(&sb, "value kinds", doc.ValueKinds)
	if len(doc.Collisions) > 0 {
		sb.WriteString(f.colors.Attr(HeadingColor, "collisions:") + "\n")
		for _, c := range doc.Collisions {
			paths := make([]string, len(c.Paths))
			for i, p := range c.Paths {
				paths[i] = fmt.Sprintf("%q", p)
			}
			fmt.Fprintf(&sb, "  %s <- %s\n", f.colors.Attr(ChangedColor, c.Address), strings.Join(paths, " "))
		}
	}
	return writeString(w, sb.String())
}

func (f *Formatter) writeCounts(sb *strings.Builder, name string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	sb.WriteString(f.colors.Attr(HeadingColor, name+":") + "\n")
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(sb, "  %s: %d\n", label, counts[k])
	}
}

type changeDoc struct {
	Address string `json:"address" yaml:"address"`
	Op      string `json:"op" yaml:"op"`
	Old     any    `json:"old,omitempty" yaml:"old,omitempty"`
	New     any    `json:"new,omitempty" yaml:"new,omitempty"`
}

// Changes writes the result of diff.Compare.
func (f *Formatter) Changes(w io.Writer, changes []diff.Change) error {
	if f.format == FormatText {
		var sb strings.Builder
		for _, c := range changes {
			sb.WriteString(f.colors.Attr(changeColor(c.Op), c.String()))
			sb.WriteString("\n")
		}
		return writeString(w, sb.String())
	}

	docs := make([]changeDoc, 0, len(changes))
	for _, c := range changes {
		doc := changeDoc{Address: c.Address, Op: string(c.Op)}
		var err error
		if c.Old != nil {
			if doc.Old, err = c.Old.ToHost(); err != nil {
				return err
			}
		}
		if c.New != nil {
			if doc.New, err = c.New.ToHost(); err != nil {
				return err
			}
		}
		docs = append(docs, doc)
	}
	if f.format == FormatYAML {
		out, err := encodeYAML(docs)
		if err != nil {
			return err
		}
		return writeBytes(w, out)
	}
	return f.writeJSON(w, docs)
}

func changeColor(op diff.Op) ColorAttr {
	switch op {
	case diff.OpAdded:
		return AddedColor
	case diff.OpRemoved:
		return RemovedColor
	}
	return ChangedColor
}

// Unified writes a line diff. It is always text.
func (f *Formatter) Unified(w io.Writer, lines []diff.Line) error {
	var sb strings.Builder
	for _, l := range lines {
		switch l.Kind {
		case diff.LineAdded:
			sb.WriteString(f.colors.Attr(AddedColor, l.String()))
		case diff.LineRemoved:
			sb.WriteString(f.colors.Attr(RemovedColor, l.String()))
		default:
			sb.WriteString(l.String())
		}
		sb.WriteString("\n")
	}
	return writeString(w, sb.String())
}

func (f *Formatter) writeValue(w io.Writer, v value.Value) error {
	switch f.format {
	case FormatYAML:
		out, err := valueYAML(v)
		if err != nil {
			return err
		}
		return writeBytes(w, out)
	case FormatJSON:
		return f.writeJSON(w, v)
	}
	// Text output of a whole document is compact JSON
	s, err := v.JSON()
	if err != nil {
		return err
	}
	return writeString(w, s+"\n")
}

func (f *Formatter) writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewFormatError("failed to encode JSON", err)
	}
	return writeBytes(w, append(out, '\n'))
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return errors.NewOutputError("failed to write output", err)
	}
	return nil
}

func writeBytes(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return errors.NewOutputError("failed to write output", err)
	}
	return nil
}
