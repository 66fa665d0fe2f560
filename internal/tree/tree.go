// Package tree provides a small labeled tree used for display views.
package tree

import (
	"fmt"
	"strings"
)

// Tree is a node holding a value and an ordered list of children.
type Tree[T fmt.Stringer] struct {
	Value    T
	Children []*Tree[T]
}

// New returns a node with the given value and children.
func New[T fmt.Stringer](v T, children ...*Tree[T]) *Tree[T] {
	return &Tree[T]{Value: v, Children: children}
}

// Add appends child and returns t.
func (t *Tree[T]) Add(child *Tree[T]) *Tree[T] {
	t.Children = append(t.Children, child)
	return t
}

// IsLeaf reports whether t has no children.
func (t *Tree[T]) IsLeaf() bool { return len(t.Children) == 0 }

// Len returns the number of nodes in t, including t itself.
func (t *Tree[T]) Len() int {
	n := 0
	t.Walk(func(int, *Tree[T]) bool {
		n++
		return true
	})
	return n
}

// Walk visits t and its descendants depth first in child order. depth is 0
// for t. Returning false from fn skips the children of that node.
func (t *Tree[T]) Walk(fn func(depth int, node *Tree[T]) bool) {
	type frame struct {
		node  *Tree[T]
		depth int
	}
	stack := []frame{{node: t}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.depth, f.node) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], depth: f.depth + 1})
		}
	}
}

// String renders t with box drawing connectors, one node per line. The result
// has no trailing newline.
func (t *Tree[T]) String() string {
	var sb strings.Builder
	sb.WriteString(t.Value.String())
	t.writeChildren(&sb, "")
	return sb.String()
}

func (t *Tree[T]) writeChildren(sb *strings.Builder, prefix string) {
	for i, child := range t.Children {
		connector, indent := "├── ", "│   "
		if i == len(t.Children)-1 {
			connector, indent = "└── ", "    "
		}
		sb.WriteByte('\n')
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(child.Value.String())
		child.writeChildren(sb, prefix+indent)
	}
}
