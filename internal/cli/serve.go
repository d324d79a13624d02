package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedjson/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string // listen address
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dispatcher over WebSocket",
		Long: `Serve the request dispatcher over WebSocket.

Each text frame is one request:
  {"correlationId": "1", "operation": "flatten", "payload": {"root": {...}}}
and is answered with one response frame carrying the same correlationId:
  {"status": "success", "correlationId": "1", "operation": "flatten", "result": {...}}

Operations: parse, flatten, diff, analyze, addOrUpdate, serialize, peek.
Requests from all connections are processed one at a time in arrival order.

Examples:
  nestedjson serve
  nestedjson serve --addr 127.0.0.1:9000 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8787", "listen address")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	settings := opts.Settings()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	rt := startRuntime(ctx, settings)
	defer rt.Stop()

	ss := server.DefaultSettings()
	ss.MaxDepth = settings.MaxDepth
	srv := server.New(rt.caller, server.WithSettings(ss), server.WithLogger(slog.Default()))

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on ws://%s\n", ln.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.Serve(ctx, ln); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
