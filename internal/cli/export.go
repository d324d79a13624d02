package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/patch"
)

// Export formats.
const (
	ExportYAML  = "yaml"
	ExportPatch = "patch"
	ExportMerge = "merge"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	As      string // yaml | patch | merge
	Against string // baseline document for patch and merge
}

// ExportResult holds exported text.
type ExportResult struct {
	As   string `json:"as"`
	Text string `json:"text"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a document as YAML or as a patch",
		Long: `Export a document in another form.

  yaml   the document as YAML, keeping key order
  patch  an RFC 6902 JSON Patch turning --against into <file>
  merge  an RFC 7396 merge patch turning --against into <file>

Examples:
  nestedjson export config.json --as yaml
  nestedjson export config.json --as patch --against config.orig.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", ExportYAML, "output form (yaml|patch|merge)")
	cmd.Flags().StringVar(&opts.Against, "against", "", "baseline document for patch and merge")

	return cmd
}

func runExport(opts *ExportOptions, file string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	settings := opts.Settings()
	formatter := opts.Formatter(cmd)

	switch opts.As {
	case ExportYAML:
	case ExportPatch, ExportMerge:
		if opts.Against == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("--as %s requires --against", opts.As))
		}
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --as %q: must be one of yaml, patch, merge", opts.As))
	}

	rt := startRuntime(ctx, settings)
	defer rt.Stop()

	current, err := rt.parseFile(ctx, file)
	if err != nil {
		return err
	}

	var out []byte
	switch opts.As {
	case ExportYAML:
		out, err = codec.ToYAML(current, settings.Indent)
	default:
		baseline, perr := rt.parseFile(ctx, opts.Against)
		if perr != nil {
			return perr
		}
		if opts.As == ExportMerge {
			out, err = patch.Merge(baseline, current)
			break
		}
		ops, berr := patch.Build(baseline, current)
		if berr != nil {
			return berr
		}
		formatter.VerboseLog("%d patch operation(s)", len(ops))
		out, err = patch.Encode(ops, settings.Indent)
	}
	if err != nil {
		return err
	}

	text := strings.TrimSuffix(string(out), "\n")
	return formatter.Success(ExportResult{As: opts.As, Text: text}, text)
}
