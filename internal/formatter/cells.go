package formatter

import (
	"sort"

	"github.com/mcncl/psetkit/internal/psets"
)

// Cell is one flattened leaf with its address
type Cell struct {
	Address string
	Path    []string
	Value   psets.FlattenedValue
}

// KeepFunc decides whether a cell is written
type KeepFunc func(c Cell) (bool, error)

// Collect flattens p in walk order. A later path that joins to an address
// already seen replaces the earlier cell in place, as in psets.Flatten. The
// keep functions then see only the surviving cells; a cell rejected by any of
// them is dropped.
func Collect(p psets.Psets, delimiter string, keep ...KeepFunc) ([]Cell, error) {
	var cells []Cell
	index := make(map[string]int)
	p.Walk(func(path []string, v psets.FlattenedValue) {
		c := Cell{Address: psets.JoinAddress(path, delimiter), Path: path, Value: v}
		if i, seen := index[c.Address]; seen {
			cells[i] = c
			return
		}
		index[c.Address] = len(cells)
		cells = append(cells, c)
	})

	kept := cells[:0]
next:
	for _, c := range cells {
		for _, k := range keep {
			ok, err := k(c)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue next
			}
		}
		kept = append(kept, c)
	}
	return kept, nil
}

// order sorts a copy of cells by address when key sorting is on
func (f *Formatter) order(cells []Cell) []Cell {
	if !f.sortKeys {
		return cells
	}
	sorted := make([]Cell, len(cells))
	copy(sorted, cells)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})
	return sorted
}
