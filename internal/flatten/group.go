package flatten

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/nestedjson/internal/pathfmt"
)

// RootGroupName is the display name of the group holding top-level leaves.
const RootGroupName = "Root"

// Group collects leaves that share a parent path.
type Group struct {
	ParentPath  string `json:"parent_path"`
	DisplayName string `json:"display_name"`
	Leaves      []Leaf `json:"leaves"`
}

// GroupByParent groups leaves by their parent path rendered in notation n.
// Top-level leaves share the "" group. Groups are ordered by parent path using
// locale-aware collation; leaves keep their flatten order within a group.
func GroupByParent(leaves []Leaf, n pathfmt.Notation) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, l := range leaves {
		parent := ""
		if len(l.Segments) > 1 {
			parent = pathfmt.Format(l.Segments[:len(l.Segments)-1], n)
		}
		i, ok := index[parent]
		if !ok {
			i = len(groups)
			index[parent] = i
			name := parent
			if name == "" {
				name = RootGroupName
			}
			groups = append(groups, Group{ParentPath: parent, DisplayName: name})
		}
		groups[i].Leaves = append(groups[i].Leaves, l)
	}

	c := collate.New(language.Und)
	sort.SliceStable(groups, func(a, b int) bool {
		return c.CompareString(groups[a].ParentPath, groups[b].ParentPath) < 0
	})
	return groups
}
