package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/config"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string // settings file; defaults to .nestedjson.yaml when present
	Indent   int
	Notation string

	settings *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// Settings returns the resolved configuration. Before the root command has
// resolved it, the defaults are returned with Format taken from the options.
func (o *RootOptions) Settings() config.Config {
	if o.settings != nil {
		return *o.settings
	}
	cfg := config.Default()
	if o.Format != "" {
		cfg.Format = o.Format
	}
	return cfg
}

// Formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Settings().Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Diagnostics go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// resolve loads the settings file and applies the flags that were set
// explicitly on the command line.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	var (
		cfg config.Config
		err error
	)
	if o.Config != "" {
		cfg, err = config.Load(o.Config, false)
	} else {
		cfg, err = config.Load(config.DefaultFile, true)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		if !isValidFormat(o.Format) {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
		}
		cfg.Format = o.Format
	}
	if flags.Changed("indent") {
		cfg.Indent = o.Indent
	}
	if flags.Changed("notation") {
		n, err := pathfmt.ParseNotation(o.Notation)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid notation", err)
		}
		cfg.Notation = n
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid settings", err)
	}

	o.Format = cfg.Format
	o.settings = &cfg
	return nil
}

// NewRootCommand creates the root command for the nestedjson CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nestedjson",
		Short: "nestedjson - point edits for nested JSON",
		Long: `Inspect and edit deeply nested JSON documents one leaf at a time.

Documents keep their key order through every edit. Paths can be written in
any of six notations (colon, bracket, dot, arrow, jsonpath, lodash) and are
detected automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "settings file (default "+config.DefaultFile+" if present)")
	cmd.PersistentFlags().IntVar(&opts.Indent, "indent", config.Default().Indent, "spaces per indent level when writing documents")
	cmd.PersistentFlags().StringVar(&opts.Notation, "notation", config.Default().Notation.String(), "path notation for output")

	// Add subcommands
	cmd.AddCommand(NewFlattenCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewPathCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code. Errors
// that a command did not report itself are written through the formatter.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	if exitErr, ok := err.(*ExitError); !ok || !exitErr.Reported {
		formatter := &OutputFormatter{
			Format:    opts.Settings().Format,
			Writer:    stdout,
			ErrWriter: stderr,
			Verbose:   opts.Verbose,
		}
		_ = formatter.Report(err)
	}
	return GetExitCode(err)
}

// setupLogging installs the default slog logger. Warnings and errors are
// shown; --verbose adds debug output from the dispatcher and session.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
