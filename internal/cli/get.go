package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// GetResult is the value found at a path.
type GetResult struct {
	Path  string   `json:"path"`
	Value doc.Node `json:"value"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the value at a path",
		Long: `Print the value at a path without loading the whole document.

The path may be written in any notation. Strings print bare in text mode;
other values print as JSON.

Exit codes:
  0 - Value found
  1 - Nothing at that path
  2 - Command error (unreadable file, invalid document or path)

Examples:
  nestedjson get config.json 'server:http->port'
  nestedjson get config.json '$.server.http.port'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, file, pathText string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	settings := opts.Settings()
	formatter := opts.Formatter(cmd)

	segs, err := pathfmt.ParseAuto(pathText)
	if err != nil {
		return err
	}

	rt := startRuntime(ctx, settings)
	defer rt.Stop()

	text, err := readText(file)
	if err != nil {
		return err
	}
	value, ok, err := rt.caller.Peek(ctx, text, segs)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	display := pathfmt.Format(segs, settings.Notation)
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("no value at %s", display))
	}

	out := ""
	if s, isString := value.(doc.String); isString {
		out = string(s)
	} else if out, err = rt.caller.Serialize(ctx, value, settings.Indent); err != nil {
		return err
	}
	return formatter.Success(GetResult{Path: display, Value: value}, out)
}
