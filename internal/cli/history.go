package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/store"
)

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved revisions",
		Long: `Inspect the revisions recorded by "set --store".

Every save records the document text as the next revision of its name,
unless the text is unchanged since the latest revision.

Examples:
  nestedjson history names revs.db
  nestedjson history list revs.db config.json
  nestedjson history show revs.db config.json 2
  nestedjson history diff revs.db config.json 1 3
  nestedjson history set revs.db config.json 'server:port' 8080`,
	}

	cmd.AddCommand(newHistoryNamesCommand(rootOpts))
	cmd.AddCommand(newHistoryListCommand(rootOpts))
	cmd.AddCommand(newHistoryShowCommand(rootOpts))
	cmd.AddCommand(newHistoryDiffCommand(rootOpts))
	cmd.AddCommand(newHistorySetCommand(rootOpts))

	return cmd
}

func newHistoryNamesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "names <db>",
		Short:         "List document names",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(args[0], func(st *store.Store) error {
				names, err := st.Names(cmd.Context())
				if err != nil {
					return err
				}
				text := strings.Join(names, "\n")
				if len(names) == 0 {
					text = "No documents recorded."
				}
				return opts.Formatter(cmd).Success(names, text)
			})
		},
	}
}

func newHistoryListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <db> <name>",
		Short:         "List the revisions of a document",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(args[0], func(st *store.Store) error {
				revs, err := st.ListRevisions(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if len(revs) == 0 {
					return notFound(args[1])
				}
				var b strings.Builder
				for _, r := range revs {
					fmt.Fprintf(&b, "%d\t%s\t%d bytes\n", r.Seq, r.Digest, r.Size)
				}
				return opts.Formatter(cmd).Success(revs, strings.TrimSuffix(b.String(), "\n"))
			})
		},
	}
}

func newHistoryShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <db> <name> [seq]",
		Short:         "Print one revision (default: the latest)",
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(args[0], func(st *store.Store) error {
				seq := int64(0)
				if len(args) == 3 {
					var err error
					if seq, err = parseSeq(args[2]); err != nil {
						return err
					}
				}
				rev, err := loadRevision(cmd.Context(), st, args[1], seq)
				if err != nil {
					return err
				}
				data := struct {
					store.Revision
					Content string `json:"content"`
				}{rev, rev.Content}
				return opts.Formatter(cmd).Success(data, rev.Content)
			})
		},
	}
}

func newHistoryDiffCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "diff <db> <name> <from-seq> <to-seq>",
		Short:         "Compare two revisions",
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStore(args[0], func(st *store.Store) error {
				from, err := parseSeq(args[2])
				if err != nil {
					return err
				}
				to, err := parseSeq(args[3])
				if err != nil {
					return err
				}
				before, err := loadRevision(ctx, st, args[1], from)
				if err != nil {
					return err
				}
				after, err := loadRevision(ctx, st, args[1], to)
				if err != nil {
					return err
				}

				rt := startRuntime(ctx, opts.Settings())
				defer rt.Stop()
				baseline, err := rt.caller.Parse(ctx, before.Content)
				if err != nil {
					return fmt.Errorf("revision %d: %w", from, err)
				}
				current, err := rt.caller.Parse(ctx, after.Content)
				if err != nil {
					return fmt.Errorf("revision %d: %w", to, err)
				}
				stats, err := rt.caller.Diff(ctx, baseline.Root, current.Root)
				if err != nil {
					return err
				}

				var b strings.Builder
				for _, p := range stats.Changed {
					fmt.Fprintf(&b, "%s\n", p)
				}
				fmt.Fprintf(&b, "%d added, %d modified, %d removed", stats.Added, stats.Modified, stats.Removed)
				return opts.Formatter(cmd).Success(struct {
					From  int64      `json:"from"`
					To    int64      `json:"to"`
					Stats diff.Stats `json:"stats"`
				}{from, to, stats}, b.String())
			})
		},
	}
}

func newHistorySetCommand(opts *RootOptions) *cobra.Command {
	var overwrite, force bool
	cmd := &cobra.Command{
		Use:   "set <db> <name> <path> <value>",
		Short: "Edit the latest revision, saving a new one",
		Long: `Load the latest revision of a document, add or update one value and save
the result as the next revision. Path and value are read as by "set".`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStore(args[0], func(st *store.Store) error {
				rt := startRuntime(ctx, opts.Settings())
				defer rt.Stop()

				sess := rt.newSession()
				if err := sess.Open(ctx, args[1], st.Document(args[1])); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return notFound(args[1])
					}
					return err
				}
				path, err := sess.Add(ctx, args[2], args[3], overwrite)
				if err != nil {
					return err
				}
				if err := sess.Save(ctx, force); err != nil {
					return err
				}
				rev, err := st.LatestRevision(ctx, args[1])
				if err != nil {
					return err
				}
				return opts.Formatter(cmd).Success(rev,
					fmt.Sprintf("Set %s\nSaved %s (revision %d)", path, args[1], rev.Seq))
			})
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing value")
	cmd.Flags().BoolVar(&force, "force", false, "save even if more than half of the keys were removed")

	return cmd
}

// withStore opens an existing revision database for the duration of fn.
func withStore(path string, fn func(*store.Store) error) error {
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "revision store not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open revision store", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing revision store", "error", closeErr)
		}
	}()
	return fn(st)
}

// loadRevision returns revision seq of name, or the latest when seq is 0.
func loadRevision(ctx context.Context, st *store.Store, name string, seq int64) (store.Revision, error) {
	var (
		rev store.Revision
		err error
	)
	if seq == 0 {
		rev, err = st.LatestRevision(ctx, name)
	} else {
		rev, err = st.Revision(ctx, name, seq)
	}
	if errors.Is(err, store.ErrNotFound) {
		if seq == 0 {
			return rev, notFound(name)
		}
		return rev, NewExitError(ExitFailure, fmt.Sprintf("%s has no revision %d", name, seq))
	}
	return rev, err
}

func parseSeq(s string) (int64, error) {
	seq, err := strconv.ParseInt(s, 10, 64)
	if err != nil || seq < 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid revision %q: must be a positive integer", s))
	}
	return seq, nil
}

func notFound(name string) error {
	return NewExitError(ExitFailure, fmt.Sprintf("no revisions recorded for %s", name))
}
