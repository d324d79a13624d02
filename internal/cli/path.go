package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/pathfmt"
)

// PathOptions holds flags for the path command.
type PathOptions struct {
	*RootOptions
	To   string // target notation; defaults to the configured one
	All  bool   // render in every notation
	List bool   // describe the notations instead of parsing a path
}

// NotationInfo describes one notation for --list.
type NotationInfo struct {
	Notation pathfmt.Notation `json:"notation"`
	Label    string           `json:"label"`
}

// Rendering is a path written in one notation.
type Rendering struct {
	Notation pathfmt.Notation `json:"notation"`
	Path     string           `json:"path"`
}

// PathResult describes a parsed path.
type PathResult struct {
	Input      string      `json:"input"`
	Detected   string      `json:"detected"`
	Segments   []string    `json:"segments"`
	Canonical  string      `json:"canonical"`
	Renderings []Rendering `json:"renderings"`
}

// NewPathCommand creates the path command.
func NewPathCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PathOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "path [path]",
		Short: "Detect and convert path notations",
		Long: `Parse a path written in any notation and print it in another.

Supported notations:
  colon     server:http->port
  bracket   server["http"]["port"]
  dot       server.http.port
  arrow     server->http->port
  jsonpath  $.server.http.port
  lodash    server.http.port (brackets for indices: items[0])

Examples:
  nestedjson path 'server:http->port' --to jsonpath
  nestedjson path '$.a["b.c"]' --all
  nestedjson path --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.List {
				return runPathList(opts, cmd)
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "path requires a <path> argument (or --list)")
			}
			return runPath(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "target notation (default: the --notation setting)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "print the path in every notation")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list the supported notations")

	return cmd
}

func runPath(opts *PathOptions, text string, cmd *cobra.Command) error {
	formatter := opts.Formatter(cmd)

	target := opts.Settings().Notation
	if opts.To != "" {
		n, err := pathfmt.ParseNotation(opts.To)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --to", err)
		}
		target = n
	}

	segs, err := pathfmt.ParseAuto(text)
	if err != nil {
		return err
	}
	result := PathResult{
		Input:     text,
		Detected:  "plain",
		Segments:  segs,
		Canonical: pathfmt.Canonical(segs),
	}
	if n, ok := pathfmt.Detect(text); ok {
		result.Detected = n.String()
	}

	notations := []pathfmt.Notation{target}
	if opts.All {
		notations = pathfmt.Notations()
	}
	var b strings.Builder
	for _, n := range notations {
		r := Rendering{Notation: n, Path: pathfmt.Format(segs, n)}
		result.Renderings = append(result.Renderings, r)
		if opts.All {
			fmt.Fprintf(&b, "%-9s %s\n", n, r.Path)
		} else {
			b.WriteString(r.Path)
		}
	}
	formatter.VerboseLog("detected %s notation, %d segment(s)", result.Detected, len(segs))
	return formatter.Success(result, strings.TrimSuffix(b.String(), "\n"))
}

func runPathList(opts *PathOptions, cmd *cobra.Command) error {
	formatter := opts.Formatter(cmd)

	infos := make([]NotationInfo, 0, len(pathfmt.Notations()))
	var b strings.Builder
	for _, n := range pathfmt.Notations() {
		infos = append(infos, NotationInfo{Notation: n, Label: n.Label()})
		fmt.Fprintf(&b, "%-9s %s\n", n, n.Label())
	}
	return formatter.Success(infos, strings.TrimSuffix(b.String(), "\n"))
}
