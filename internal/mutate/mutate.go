// Package mutate performs copy-on-write point edits on ordered documents.
//
// An edit never modifies the tree it is given. Mappings along the edited path
// are copied; every other node is shared with the input, so the previous
// snapshot stays valid as a diff baseline.
package mutate

import (
	"github.com/roach88/nestedjson/internal/doc"
)

// AddOrUpdate returns a new root with value stored at segments.
//
// Missing intermediate mappings are created. An intermediate segment that
// resolves to a non-mapping fails with CONFLICT. An existing final key fails
// with DUPLICATE_KEY unless allowOverwrite is set, in which case its value is
// replaced in place. An empty path fails with INVALID_PATH.
//
// A nil root is treated as an empty mapping.
func AddOrUpdate(root doc.Node, segments []string, value doc.Node, allowOverwrite bool) (doc.Node, error) {
	if len(segments) == 0 {
		return nil, doc.NewInvalidPathError("path has no segments")
	}
	if value == nil {
		return nil, doc.NewSerializationError("cannot store a nil value")
	}

	var top *doc.Mapping
	switch r := root.(type) {
	case nil:
		top = doc.EmptyMapping()
	case *doc.Mapping:
		top = r
	default:
		return nil, doc.NewConflictError(nil, "<root>")
	}

	// chain[i] is the mapping that holds segments[i]; nil means it does not
	// exist yet and will be created empty.
	chain := make([]*doc.Mapping, len(segments))
	chain[0] = top
	last := len(segments) - 1
	for i := 0; i < last; i++ {
		if chain[i] == nil {
			continue
		}
		child, ok := chain[i].Get(segments[i])
		if !ok {
			continue
		}
		m, isMap := child.(*doc.Mapping)
		if !isMap {
			return nil, doc.NewConflictError(clone(segments[:i+1]), segments[i])
		}
		chain[i+1] = m
	}

	if chain[last] != nil && chain[last].Has(segments[last]) && !allowOverwrite {
		return nil, doc.NewDuplicateKeyError(clone(segments))
	}

	var node doc.Node = value
	for i := last; i >= 0; i-- {
		node = chain[i].With(segments[i], node)
	}
	return node, nil
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
