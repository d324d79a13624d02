package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Stat bool // print only the counts
}

// ChangeRow is one changed leaf as the CLI reports it.
type ChangeRow struct {
	Kind   diff.Kind `json:"kind"`
	Path   string    `json:"path"`
	Before doc.Node  `json:"before,omitempty"`
	After  doc.Node  `json:"after,omitempty"`
}

// DiffResult holds the comparison of two documents.
type DiffResult struct {
	Stats   diff.Stats  `json:"stats"`
	Changes []ChangeRow `json:"changes"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <baseline> <current>",
		Short: "Compare two documents leaf by leaf",
		Long: `Compare two documents leaf by leaf and list what was added, modified
and removed. Key order inside values does not count as a change.

Exit codes:
  0 - Documents are equivalent
  1 - Documents differ
  2 - Command error (unreadable file, invalid document, etc.)

Examples:
  nestedjson diff config.orig.json config.json
  nestedjson diff a.json b.json --stat --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Stat, "stat", false, "print only the change counts")

	return cmd
}

func runDiff(opts *DiffOptions, baselineFile, currentFile string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	settings := opts.Settings()
	formatter := opts.Formatter(cmd)

	rt := startRuntime(ctx, settings)
	defer rt.Stop()

	baseline, err := rt.parseFile(ctx, baselineFile)
	if err != nil {
		return err
	}
	current, err := rt.parseFile(ctx, currentFile)
	if err != nil {
		return err
	}

	compared, err := rt.caller.Compare(ctx, baseline, current)
	if err != nil {
		return err
	}
	result := DiffResult{Stats: compared.Stats, Changes: make([]ChangeRow, len(compared.Changes))}
	for i, c := range compared.Changes {
		result.Changes[i] = ChangeRow{
			Kind:   c.Kind,
			Path:   pathfmt.Format(c.Segments, settings.Notation),
			Before: c.Before,
			After:  c.After,
		}
	}

	var b strings.Builder
	if !opts.Stat {
		for _, c := range result.Changes {
			switch c.Kind {
			case diff.Added:
				fmt.Fprintf(&b, "+ %s = %s\n", c.Path, flatten.DisplayValue(c.After))
			case diff.Removed:
				fmt.Fprintf(&b, "- %s = %s\n", c.Path, flatten.DisplayValue(c.Before))
			default:
				fmt.Fprintf(&b, "~ %s: %s -> %s\n", c.Path, flatten.DisplayValue(c.Before), flatten.DisplayValue(c.After))
			}
		}
	}
	fmt.Fprintf(&b, "%d added, %d modified, %d removed", result.Stats.Added, result.Stats.Modified, result.Stats.Removed)

	if err := formatter.Success(result, b.String()); err != nil {
		return err
	}
	if !result.Stats.Zero() {
		e := NewExitError(ExitFailure, "documents differ")
		e.Reported = true
		return e
	}
	return nil
}
