package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/nestedjson/internal/config"
	"github.com/roach88/nestedjson/internal/dispatch"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/session"
	"github.com/roach88/nestedjson/internal/store"
)

// runtime is a dispatcher running for the life of one command. Every tree
// operation a command performs goes through its Caller.
type runtime struct {
	settings   config.Config
	dispatcher *dispatch.Dispatcher
	caller     *dispatch.Caller
	done       chan struct{}
}

func startRuntime(ctx context.Context, settings config.Config) *runtime {
	d := dispatch.New(
		dispatch.WithMaxDepth(settings.MaxDepth),
		dispatch.WithLogger(slog.Default()),
	)
	rt := &runtime{
		settings:   settings,
		dispatcher: d,
		caller:     dispatch.NewCaller(d, dispatch.UUIDv7Generator{}),
		done:       make(chan struct{}),
	}
	go func() {
		defer close(rt.done)
		if err := d.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("dispatcher stopped", "error", err)
		}
	}()
	return rt
}

// Stop drains the queue and waits for the worker.
func (rt *runtime) Stop() {
	rt.dispatcher.Stop()
	<-rt.done
}

func (rt *runtime) newSession() *session.Session {
	return session.New(rt.caller,
		session.WithIndent(rt.settings.Indent),
		session.WithLogger(slog.Default()),
	)
}

// openFile loads path into a session that saves back to it.
func (rt *runtime) openFile(ctx context.Context, path string) (*session.Session, error) {
	sess := rt.newSession()
	if err := sess.Open(ctx, path, store.NewFile(path)); err != nil {
		return nil, err
	}
	return sess, nil
}

// readText reads a document file as text.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to read document", err)
	}
	return string(data), nil
}

// parseFile reads and parses path.
func (rt *runtime) parseFile(ctx context.Context, path string) (doc.Node, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	parsed, err := rt.caller.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parsed.Root, nil
}
