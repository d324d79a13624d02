// Package flatten walks an ordered document into addressable leaf entries.
//
// Traversal is pre-order and depth-first over mapping keys in stored order.
// Sequences are never expanded: a sequence is one leaf whose value is the
// whole sequence. An empty mapping is a leaf too, so it stays addressable.
package flatten

import (
	"strings"

	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// IDSeparator joins segments into a leaf id. It cannot appear in either
// canonical path separator, so ids stay unique even when keys contain ':' or
// "->".
const IDSeparator = "\x1f"

// Leaf is one addressable value.
type Leaf struct {
	ID       string   `json:"id"`
	Segments []string `json:"segments"`
	Path     string   `json:"path"`
	Value    doc.Node `json:"value"`
}

// ID derives the leaf id for segments.
func ID(segments []string) string {
	return strings.Join(segments, IDSeparator)
}

// VisitFunc receives each node below the root with its segments. leaf is true
// for nodes that Flatten would emit. The segments slice is owned by the
// callee.
type VisitFunc func(segments []string, node doc.Node, leaf bool)

type frame struct {
	segs []string
	node doc.Node
}

// Visit walks root in pre-order with an explicit stack, so nesting depth is
// bounded by memory rather than the goroutine stack. A non-mapping root is
// reported as a single leaf with no segments; an empty root mapping reports
// nothing.
func Visit(root doc.Node, fn VisitFunc) {
	if root == nil {
		return
	}
	m, ok := root.(*doc.Mapping)
	if !ok {
		fn(nil, root, true)
		return
	}

	stack := make([]frame, 0, 64)
	stack = pushChildren(stack, nil, m)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		child, isMap := f.node.(*doc.Mapping)
		if !isMap || child.Len() == 0 {
			fn(f.segs, f.node, true)
			continue
		}
		fn(f.segs, f.node, false)
		stack = pushChildren(stack, f.segs, child)
	}
}

// pushChildren pushes m's entries in reverse so they pop in stored order.
func pushChildren(stack []frame, parent []string, m *doc.Mapping) []frame {
	for i := m.Len() - 1; i >= 0; i-- {
		e := m.At(i)
		segs := make([]string, len(parent)+1)
		copy(segs, parent)
		segs[len(parent)] = e.Key
		stack = append(stack, frame{segs: segs, node: e.Value})
	}
	return stack
}

// Flatten returns the leaves of root in pre-order.
func Flatten(root doc.Node) []Leaf {
	var leaves []Leaf
	Visit(root, func(segs []string, node doc.Node, leaf bool) {
		if !leaf {
			return
		}
		leaves = append(leaves, Leaf{
			ID:       ID(segs),
			Segments: segs,
			Path:     pathfmt.Canonical(segs),
			Value:    node,
		})
	})
	return leaves
}
