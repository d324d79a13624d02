package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/store"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Overwrite bool   // replace an existing value
	Force     bool   // save even when most keys were removed
	DryRun    bool   // print the result instead of saving
	Store     string // SQLite revision database recording each save
}

// SetResult reports an applied edit.
type SetResult struct {
	Path     string          `json:"path"`
	Stats    diff.Stats      `json:"stats"`
	Saved    bool            `json:"saved"`
	Revision *store.Revision `json:"revision,omitempty"`
	Text     string          `json:"text,omitempty"`
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <file> <path> <value>",
		Short: "Add or update one value and save",
		Long: `Add a value at a path, creating intermediate objects as needed, and save
the document in place. Key order is preserved; new keys are appended.

The path may be written in any notation. The value is typed from its text:
true/false become booleans, numeric literals become numbers, text starting
with { or [ is parsed as JSON, anything else is a string.

Without --overwrite an existing value is a DUPLICATE_KEY error. Writing below
a value that is not an object is a CONFLICT.

With --store each save is also recorded as a revision in a SQLite database
(default: the "store" setting).

Exit codes:
  0 - Value set
  1 - Edit rejected (duplicate key, conflict, invalid path)
  2 - Command error (unreadable file, invalid document, etc.)

Examples:
  nestedjson set config.json 'server:http->port' 8080
  nestedjson set config.json server.tls.enabled true --overwrite
  nestedjson set config.json 'features->flags' '["a","b"]' --dry-run`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace an existing value")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "save even if more than half of the keys were removed")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the edited document instead of saving")
	cmd.Flags().StringVar(&opts.Store, "store", "", "record each save in this SQLite revision database")

	return cmd
}

func runSet(opts *SetOptions, file, pathText, valueText string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	settings := opts.Settings()
	formatter := opts.Formatter(cmd)

	rt := startRuntime(ctx, settings)
	defer rt.Stop()

	dbPath := opts.Store
	if dbPath == "" {
		dbPath = settings.Store
	}
	var recorder *revisionRecorder
	if dbPath != "" && !opts.DryRun {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open revision store", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing revision store", "error", closeErr)
			}
		}()
		recorder = &revisionRecorder{File: store.NewFile(file), store: st, name: filepath.Clean(file)}
	}

	sess := rt.newSession()
	if recorder != nil {
		if err := sess.Open(ctx, file, recorder); err != nil {
			return err
		}
		// Records the text as loaded unless it matches the latest revision.
		if err := recorder.recordBaseline(ctx); err != nil {
			return err
		}
	} else {
		var err error
		if sess, err = rt.openFile(ctx, file); err != nil {
			return err
		}
	}

	path, err := sess.Add(ctx, pathText, valueText, opts.Overwrite)
	if err != nil {
		return err
	}
	view, err := sess.View(ctx)
	if err != nil {
		return err
	}
	result := SetResult{Path: path, Stats: view.Stats}
	summary := fmt.Sprintf("Set %s (added %d, modified %d, removed %d)",
		path, view.Stats.Added, view.Stats.Modified, view.Stats.Removed)

	if opts.DryRun {
		if result.Text, err = sess.Text(ctx); err != nil {
			return err
		}
		formatter.VerboseLog("%s", summary)
		return formatter.Success(result, result.Text)
	}

	if err := sess.Save(ctx, opts.Force); err != nil {
		return err
	}
	result.Saved = true
	summary += "\nSaved " + file
	if recorder != nil && recorder.last != nil {
		result.Revision = recorder.last
		summary += fmt.Sprintf(" (revision %d)", recorder.last.Seq)
	}
	return formatter.Success(result, summary)
}

// revisionRecorder saves to a file and records every saved text as a
// revision of name.
type revisionRecorder struct {
	*store.File
	store *store.Store
	name  string
	last  *store.Revision
}

func (r *revisionRecorder) recordBaseline(ctx context.Context) error {
	text, err := r.File.Read(ctx)
	if err != nil {
		return err
	}
	_, _, err = r.store.WriteRevision(ctx, r.name, text)
	return err
}

func (r *revisionRecorder) Write(ctx context.Context, text string) error {
	if err := r.File.Write(ctx, text); err != nil {
		return err
	}
	rev, written, err := r.store.WriteRevision(ctx, r.name, text)
	if err != nil {
		return fmt.Errorf("record revision: %w", err)
	}
	slog.Debug("revision recorded", "name", r.name, "seq", rev.Seq, "written", written)
	r.last = &rev
	return nil
}
