// Package doc provides the ordered document model shared by every other package.
//
// A document is a tree of Node values. Node is a sealed interface: only Null,
// Bool, Number, String, Sequence and *Mapping implement it, so callers can switch
// over a closed set of cases.
//
// Key design constraints:
//   - Mapping preserves insertion order and never holds two entries with the same key
//   - Nodes are never mutated after construction; edits build new nodes and share
//     untouched subtrees (see internal/mutate)
//   - Sequences are atomic values for addressing and diffing
//   - doc imports nothing internal
package doc
