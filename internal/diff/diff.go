// Package diff compares two document snapshots leaf by leaf.
//
// Both snapshots are flattened once and indexed by leaf id, so a comparison is
// linear in the total number of leaves. Values are equal when their canonical
// serializations are equal.
package diff

import (
	"fmt"

	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// Kind classifies a change.
type Kind string

const (
	Added    Kind = "added"
	Modified Kind = "modified"
	Removed  Kind = "removed"
)

// Stats summarises a comparison. Changed lists the canonical path of every
// change: additions and modifications in current order, then removals in
// baseline order. Baseline is the number of leaves in the baseline snapshot.
type Stats struct {
	Added    int      `json:"added"`
	Modified int      `json:"modified"`
	Removed  int      `json:"removed"`
	Changed  []string `json:"changed"`
	Baseline int      `json:"baseline"`
}

// Total is the number of changes.
func (s Stats) Total() int {
	return s.Added + s.Modified + s.Removed
}

// Zero reports whether the snapshots are leaf-equivalent.
func (s Stats) Zero() bool {
	return s.Total() == 0
}

// Change is one differing leaf. Before is nil for additions, After for removals.
type Change struct {
	Kind     Kind     `json:"kind"`
	ID       string   `json:"id"`
	Segments []string `json:"segments"`
	Path     string   `json:"path"`
	Before   doc.Node `json:"before,omitempty"`
	After    doc.Node `json:"after,omitempty"`
}

type entry struct {
	segs  []string
	value doc.Node
	canon string
}

type snapshot struct {
	order    []string
	leaves   map[string]entry
	interior map[string]struct{}
}

func index(root doc.Node) (*snapshot, error) {
	s := &snapshot{
		leaves:   make(map[string]entry),
		interior: make(map[string]struct{}),
	}
	var firstErr error
	flatten.Visit(root, func(segs []string, node doc.Node, leaf bool) {
		id := flatten.ID(segs)
		if !leaf {
			s.interior[id] = struct{}{}
			return
		}
		canon, err := doc.Canonical(node)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("leaf %s: %w", pathfmt.Canonical(segs), err)
			}
			return
		}
		s.order = append(s.order, id)
		s.leaves[id] = entry{segs: segs, value: node, canon: canon}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return s, nil
}

// Changes lists every leaf that differs between baseline and current.
//
// An empty-mapping leaf on one side whose path is an interior mapping on the
// other side was filled or emptied; it is not itself reported, only the leaves
// that appeared or disappeared beneath it.
func Changes(baseline, current doc.Node) ([]Change, error) {
	changes, _, err := Compare(baseline, current)
	return changes, err
}

// Compare returns both the changes and their Stats.
func Compare(baseline, current doc.Node) ([]Change, Stats, error) {
	base, err := index(baseline)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("index baseline: %w", err)
	}
	cur, err := index(current)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("index current: %w", err)
	}

	var changes []Change
	for _, id := range cur.order {
		c := cur.leaves[id]
		b, ok := base.leaves[id]
		switch {
		case !ok:
			if _, filled := base.interior[id]; filled && doc.IsEmptyMapping(c.value) {
				continue
			}
			changes = append(changes, change(Added, id, c.segs, nil, c.value))
		case b.canon != c.canon:
			changes = append(changes, change(Modified, id, c.segs, b.value, c.value))
		}
	}
	for _, id := range base.order {
		if _, ok := cur.leaves[id]; ok {
			continue
		}
		b := base.leaves[id]
		if _, filled := cur.interior[id]; filled && doc.IsEmptyMapping(b.value) {
			continue
		}
		changes = append(changes, change(Removed, id, b.segs, b.value, nil))
	}

	stats := Summarize(changes)
	stats.Baseline = len(base.order)
	return changes, stats, nil
}

func change(kind Kind, id string, segs []string, before, after doc.Node) Change {
	return Change{
		Kind:     kind,
		ID:       id,
		Segments: segs,
		Path:     pathfmt.Canonical(segs),
		Before:   before,
		After:    after,
	}
}

// Compute returns the change counts and changed paths between baseline and
// current.
func Compute(baseline, current doc.Node) (Stats, error) {
	_, stats, err := Compare(baseline, current)
	return stats, err
}

// Summarize folds changes into Stats. Baseline is left zero; Compare fills it.
func Summarize(changes []Change) Stats {
	s := Stats{Changed: make([]string, 0, len(changes))}
	for _, c := range changes {
		switch c.Kind {
		case Added:
			s.Added++
		case Modified:
			s.Modified++
		case Removed:
			s.Removed++
		}
		s.Changed = append(s.Changed, c.Path)
	}
	return s
}

// MassRemovalThreshold is the fraction of baseline leaves that may be removed
// before a save needs confirmation.
const MassRemovalThreshold = 0.5

// MassRemoval reports whether more than half of the baseline leaves are gone.
func MassRemoval(s Stats) bool {
	return s.Baseline > 0 && float64(s.Removed) > float64(s.Baseline)*MassRemovalThreshold
}
