// Package diff compares two property set trees leaf by leaf.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/psetkit/internal/psets"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of change at one address
type Op string

const (
	OpAdded   Op = "added"
	OpRemoved Op = "removed"
	OpChanged Op = "changed"
)

// Change describes one differing address. Old is nil for added leaves and New
// is nil for removed ones.
type Change struct {
	Address string
	Op      Op
	Old     *psets.FlattenedValue
	New     *psets.FlattenedValue
}

func (c Change) String() string {
	switch c.Op {
	case OpAdded:
		return fmt.Sprintf("+ %s = %s", c.Address, c.New)
	case OpRemoved:
		return fmt.Sprintf("- %s = %s", c.Address, c.Old)
	}
	return fmt.Sprintf("~ %s: %s -> %s", c.Address, c.Old, c.New)
}

// Compare flattens both trees with delimiter and returns their differences
// ordered by address.
func Compare(a, b psets.Psets, delimiter string) []Change {
	left := a.Flatten(psets.WithDelimiter(delimiter))
	right := b.Flatten(psets.WithDelimiter(delimiter))

	var changes []Change
	for _, addr := range unionKeys(left, right) {
		oldV, inOld := left[addr]
		newV, inNew := right[addr]
		switch {
		case !inOld:
			changes = append(changes, Change{Address: addr, Op: OpAdded, New: &newV})
		case !inNew:
			changes = append(changes, Change{Address: addr, Op: OpRemoved, Old: &oldV})
		case !oldV.Equal(newV):
			changes = append(changes, Change{Address: addr, Op: OpChanged, Old: &oldV, New: &newV})
		}
	}
	return changes
}

func unionKeys(maps ...map[string]psets.FlattenedValue) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Lines renders the flattened form of p as sorted "addr = value" lines.
func Lines(p psets.Psets, delimiter string) []string {
	flat := p.Flatten(psets.WithDelimiter(delimiter))
	addrs := make([]string, 0, len(flat))
	for addr := range flat {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	lines := make([]string, len(addrs))
	for i, addr := range addrs {
		lines[i] = fmt.Sprintf("%s = %s", addr, flat[addr])
	}
	return lines
}

// LineKind marks a line of a unified diff
type LineKind int

const (
	LineSame LineKind = iota
	LineRemoved
	LineAdded
)

// Line is one line of a unified diff
type Line struct {
	Kind LineKind
	Text string
}

func (l Line) String() string {
	switch l.Kind {
	case LineRemoved:
		return "-" + l.Text
	case LineAdded:
		return "+" + l.Text
	}
	return " " + l.Text
}

// Unified diffs the flattened line forms of a and b.
func Unified(a, b psets.Psets, delimiter string) []Line {
	from := joinLines(Lines(a, delimiter))
	to := joinLines(Lines(b, delimiter))

	dmp := diffpatch.New()
	c1, c2, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lineArray)

	var out []Line
	for _, d := range diffs {
		kind := LineSame
		switch d.Type {
		case diffpatch.DiffDelete:
			kind = LineRemoved
		case diffpatch.DiffInsert:
			kind = LineAdded
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			out = append(out, Line{Kind: kind, Text: strings.TrimSuffix(text, "\n")})
		}
	}
	return out
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
