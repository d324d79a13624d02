package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/nestedjson/internal/dispatch"
)

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SequentialIDs returns a generator producing "req-1", "req-2", ... without end.
//
// Unlike dispatch.FixedGenerator it never runs out, so it suits scenarios
// whose request count is not known up front.
func SequentialIDs() dispatch.IDGenerator {
	return &sequentialIDs{}
}

type sequentialIDs struct {
	clock dispatch.Clock
}

func (g *sequentialIDs) Generate() string {
	return fmt.Sprintf("req-%d", g.clock.Next())
}

// Runner owns a running dispatcher and its Caller.
type Runner struct {
	Dispatcher *dispatch.Dispatcher
	Caller     *dispatch.Caller

	cancel context.CancelFunc
	done   chan struct{}
}

// StartRunner runs a dispatcher with sequential correlation ids and a quiet
// logger. Call Stop when done.
func StartRunner(opts ...dispatch.Option) *Runner {
	d := dispatch.New(append([]dispatch.Option{dispatch.WithLogger(DiscardLogger())}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		Dispatcher: d,
		Caller:     dispatch.NewCaller(d, SequentialIDs()),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		_ = d.Run(ctx)
	}()
	return r
}

// Stop ends the dispatcher and waits for its worker to return.
func (r *Runner) Stop() {
	r.cancel()
	<-r.done
}

// StartCaller is StartRunner for tests: the runner stops when tb ends.
func StartCaller(tb testing.TB, opts ...dispatch.Option) *dispatch.Caller {
	tb.Helper()
	r := StartRunner(opts...)
	tb.Cleanup(r.Stop)
	return r.Caller
}
