package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
)

// ErrStopped is returned by Caller when the dispatcher is no longer running.
var ErrStopped = errors.New("dispatcher stopped")

// Caller submits requests and waits for their responses, matching each
// response to its request by correlation id rather than by arrival order.
type Caller struct {
	d   *Dispatcher
	ids IDGenerator

	mu      sync.Mutex
	pending map[string]chan Response
	done    chan struct{}
}

// NewCaller starts routing d's responses. It must be the only reader of
// d.Responses().
func NewCaller(d *Dispatcher, ids IDGenerator) *Caller {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	c := &Caller{
		d:       d,
		ids:     ids,
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	go c.route()
	return c
}

func (c *Caller) route() {
	for resp := range c.d.Responses() {
		c.mu.Lock()
		ch, ok := c.pending[resp.CorrelationID]
		delete(c.pending, resp.CorrelationID)
		c.mu.Unlock()

		if !ok {
			c.d.logger.Warn("dropping response with no waiting caller",
				"correlation_id", resp.CorrelationID,
				"op", resp.Operation,
			)
			continue
		}
		ch <- resp // buffered, never blocks
	}
	close(c.done)
}

// Call submits op with payload and blocks until its response arrives or ctx
// ends. Cancelling ctx abandons the wait only; the worker still runs the
// request to completion.
func (c *Caller) Call(ctx context.Context, op Operation, payload any) (Response, error) {
	id := c.ids.Generate()
	ch := make(chan Response, 1)

	c.mu.Lock()
	if _, dup := c.pending[id]; dup {
		c.mu.Unlock()
		return Response{}, fmt.Errorf("correlation id %q already in flight", id)
	}
	c.pending[id] = ch
	c.mu.Unlock()

	if !c.d.Submit(Request{Operation: op, CorrelationID: id, Payload: payload}) {
		c.forget(id)
		return Response{}, ErrStopped
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		c.forget(id)
		return Response{}, ctx.Err()
	case <-c.done:
		// The router may have delivered just before finishing.
		select {
		case resp := <-ch:
			return resp, nil
		default:
			return Response{}, ErrStopped
		}
	}
}

func (c *Caller) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Pending returns the number of calls awaiting a response.
func (c *Caller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// do runs a call and unwraps the envelope into a typed result.
func do[R any](ctx context.Context, c *Caller, op Operation, payload any) (R, error) {
	var zero R
	resp, err := c.Call(ctx, op, payload)
	if err != nil {
		return zero, err
	}
	if !resp.OK() {
		if resp.Err != nil {
			return zero, resp.Err
		}
		return zero, errors.New(resp.ErrorMessage)
	}
	r, ok := resp.Result.(R)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", op, resp.Result)
	}
	return r, nil
}

// Parse parses text on the worker.
func (c *Caller) Parse(ctx context.Context, text string) (ParseResult, error) {
	return do[ParseResult](ctx, c, OpParse, ParsePayload{Text: text})
}

// Flatten flattens root on the worker.
func (c *Caller) Flatten(ctx context.Context, root doc.Node) ([]flatten.Leaf, error) {
	r, err := do[FlattenResult](ctx, c, OpFlatten, FlattenPayload{Root: root})
	return r.Leaves, err
}

// Diff compares two snapshots on the worker.
func (c *Caller) Diff(ctx context.Context, baseline, current doc.Node) (diff.Stats, error) {
	r, err := do[DiffResult](ctx, c, OpDiff, DiffPayload{Baseline: baseline, Current: current})
	return r.Stats, err
}

// Compare diffs two snapshots on the worker and returns every changed leaf.
func (c *Caller) Compare(ctx context.Context, baseline, current doc.Node) (DiffResult, error) {
	return do[DiffResult](ctx, c, OpDiff, DiffPayload{Baseline: baseline, Current: current})
}

// Analyze flattens current and diffs it against baseline on the worker.
func (c *Caller) Analyze(ctx context.Context, baseline, current doc.Node) (AnalyzeResult, error) {
	return do[AnalyzeResult](ctx, c, OpAnalyze, AnalyzePayload{Baseline: baseline, Current: current})
}

// AddOrUpdate applies a point edit on the worker.
func (c *Caller) AddOrUpdate(ctx context.Context, root doc.Node, segments []string, value doc.Node, allowOverwrite bool) (AddOrUpdateResult, error) {
	return do[AddOrUpdateResult](ctx, c, OpAddOrUpdate, AddOrUpdatePayload{
		Root:           root,
		Segments:       segments,
		Value:          value,
		AllowOverwrite: allowOverwrite,
	})
}

// Serialize renders root on the worker.
func (c *Caller) Serialize(ctx context.Context, root doc.Node, indent int) (string, error) {
	r, err := do[SerializeResult](ctx, c, OpSerialize, SerializePayload{Root: root, Indent: indent})
	return r.Text, err
}

// Peek reads the value at segments from raw text on the worker.
func (c *Caller) Peek(ctx context.Context, text string, segments []string) (doc.Node, bool, error) {
	r, err := do[PeekResult](ctx, c, OpPeek, PeekPayload{Text: text, Segments: segments})
	return r.Value, r.Found, err
}
