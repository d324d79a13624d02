package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// FlattenOptions holds flags for the flatten command.
type FlattenOptions struct {
	*RootOptions
	Group  bool   // group leaves by parent path
	Search string // keep only leaves matching the query
}

// LeafRow is one leaf as the CLI reports it.
type LeafRow struct {
	Path     string   `json:"path"`
	Segments []string `json:"segments"`
	Value    doc.Node `json:"value"`
}

// GroupRow is a parent path and the leaves under it.
type GroupRow struct {
	Parent string    `json:"parent"`
	Name   string    `json:"name"`
	Leaves []LeafRow `json:"leaves"`
}

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlattenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "flatten <file>",
		Short: "List every leaf of a document",
		Long: `List every leaf of a document with its path and value, in document order.

Paths are printed in the configured notation (--notation). With --search only
leaves whose path or value contains the query are listed; with --group leaves
are grouped by their parent path.

Examples:
  nestedjson flatten config.json
  nestedjson flatten config.json --notation jsonpath
  nestedjson flatten config.json --search timeout --group`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Group, "group", false, "group leaves by parent path")
	cmd.Flags().StringVar(&opts.Search, "search", "", "case-insensitive filter on path or value")

	return cmd
}

func runFlatten(opts *FlattenOptions, file string, cmd *cobra.Command) error {
	settings := opts.Settings()
	formatter := opts.Formatter(cmd)

	rt := startRuntime(cmd.Context(), settings)
	defer rt.Stop()

	root, err := rt.parseFile(cmd.Context(), file)
	if err != nil {
		return err
	}
	leaves, err := rt.caller.Flatten(cmd.Context(), root)
	if err != nil {
		return err
	}
	total := len(leaves)
	leaves = flatten.Search(leaves, opts.Search)
	formatter.VerboseLog("%d of %d leaves match", len(leaves), total)

	if opts.Group {
		groups := flatten.GroupByParent(leaves, settings.Notation)
		rows := make([]GroupRow, len(groups))
		var b strings.Builder
		for i, g := range groups {
			rows[i] = GroupRow{Parent: g.ParentPath, Name: g.DisplayName, Leaves: leafRows(g.Leaves, settings.Notation)}
			fmt.Fprintf(&b, "%s\n", g.DisplayName)
			for _, l := range g.Leaves {
				fmt.Fprintf(&b, "  %s = %s\n", lastSegment(l.Segments), flatten.DisplayValue(l.Value))
			}
		}
		return formatter.Success(rows, strings.TrimSuffix(b.String(), "\n"))
	}

	rows := leafRows(leaves, settings.Notation)
	if len(rows) == 0 {
		return formatter.Success(rows, "No leaves found.")
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s = %s\n", r.Path, flatten.DisplayValue(r.Value))
	}
	return formatter.Success(rows, strings.TrimSuffix(b.String(), "\n"))
}

func leafRows(leaves []flatten.Leaf, n pathfmt.Notation) []LeafRow {
	rows := make([]LeafRow, len(leaves))
	for i, l := range leaves {
		rows[i] = LeafRow{Path: pathfmt.Format(l.Segments, n), Segments: l.Segments, Value: l.Value}
	}
	return rows
}

func lastSegment(segs []string) string {
	if len(segs) == 0 {
		return "$"
	}
	return segs[len(segs)-1]
}
