package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/store"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Write bool // rewrite the file in place
	Check bool // only report whether the file is formatted
}

// FmtResult reports a formatting run.
type FmtResult struct {
	File      string `json:"file"`
	Formatted bool   `json:"formatted"` // the file already matched
	Written   bool   `json:"written"`
	Text      string `json:"text,omitempty"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Reformat a document",
		Long: `Reformat a document with the configured indent (--indent, 0 for compact
output), keeping key order. Duplicate keys collapse to their last value.

Exit codes:
  0 - Formatted (or already formatted with --check)
  1 - Not formatted (--check)
  2 - Command error (unreadable file, invalid document, etc.)

Examples:
  nestedjson fmt config.json
  nestedjson fmt config.json --indent 4 --write
  nestedjson fmt config.json --check`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "write the result back to the file")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "exit 1 if the file is not formatted")

	return cmd
}

func runFmt(opts *FmtOptions, file string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	settings := opts.Settings()
	formatter := opts.Formatter(cmd)

	rt := startRuntime(ctx, settings)
	defer rt.Stop()

	f := store.NewFile(file)
	original, err := f.Read(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read document", err)
	}
	parsed, err := rt.caller.Parse(ctx, original)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	text, err := rt.caller.Serialize(ctx, parsed.Root, settings.Indent)
	if err != nil {
		return err
	}

	result := FmtResult{File: file, Formatted: original == text || original == text+"\n"}
	switch {
	case opts.Check:
		msg := file + " is formatted"
		if !result.Formatted {
			msg = file + " is not formatted"
		}
		if err := formatter.Success(result, msg); err != nil {
			return err
		}
		if !result.Formatted {
			e := NewExitError(ExitFailure, msg)
			e.Reported = true
			return e
		}
		return nil

	case opts.Write:
		if !result.Formatted {
			if err := f.Write(ctx, text); err != nil {
				return WrapExitError(ExitCommandError, "failed to write document", err)
			}
			result.Written = true
		}
		formatter.VerboseLog("formatted %s (written=%t)", file, result.Written)
		return formatter.Success(result, "Formatted "+file)
	}

	result.Text = text
	return formatter.Success(result, text)
}
