package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/doc"
)

// DefaultResponseBuffer is the default capacity of the response channel.
const DefaultResponseBuffer = 64

// Dispatcher is the single background worker.
type Dispatcher struct {
	queue     *requestQueue
	clock     *Clock
	responses chan Response
	logger    *slog.Logger
	maxDepth  int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMaxDepth sets the nesting limit for parse and serialize.
func WithMaxDepth(depth int) Option {
	return func(d *Dispatcher) {
		if depth > 0 {
			d.maxDepth = depth
		}
	}
}

// WithResponseBuffer sets the response channel capacity.
func WithResponseBuffer(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.responses = make(chan Response, n)
		}
	}
}

// New creates a Dispatcher. Call Run to start the worker.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:     newRequestQueue(),
		clock:     NewClock(),
		responses: make(chan Response, DefaultResponseBuffer),
		logger:    slog.Default(),
		maxDepth:  codec.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit queues req for the worker.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the dispatcher has been stopped.
func (d *Dispatcher) Submit(req Request) bool {
	return d.queue.Enqueue(req)
}

// Responses delivers one Response per submitted request. The channel is
// closed when Run returns.
func (d *Dispatcher) Responses() <-chan Response {
	return d.responses
}

// QueueLen returns the number of requests not yet picked up.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// Run is the worker loop. It processes requests strictly one at a time in
// submission order, and blocks until ctx is cancelled or Stop is called.
// Either way the queue is closed and every request already accepted is
// still answered before Run returns, so callers must keep reading Responses
// until the channel is closed. Run returns ctx.Err() if ctx was cancelled.
//
// Must be called from exactly one goroutine.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher starting")
	defer close(d.responses)

	cancelled := ctx.Done()
	for {
		if cancelled != nil && ctx.Err() != nil {
			d.drain(&cancelled)
		}

		// Read closed before dequeuing: once closed nothing more can be
		// enqueued, so an empty dequeue afterwards means the queue is done.
		closed := d.queue.Closed()
		if req, ok := d.queue.TryDequeue(); ok {
			d.responses <- d.handle(req)
			continue
		}
		if closed {
			d.logger.Info("dispatcher stopped")
			return ctx.Err()
		}

		select {
		case <-cancelled:
			d.drain(&cancelled)
		case <-d.queue.Wait():
		}
	}
}

// drain closes the queue after ctx is cancelled; Run answers what is left.
func (d *Dispatcher) drain(cancelled *<-chan struct{}) {
	d.logger.Info("dispatcher stopping: context cancelled", "queued", d.QueueLen())
	d.queue.Close()
	*cancelled = nil
}

// Stop closes the queue. Run drains what is already queued, then returns.
func (d *Dispatcher) Stop() {
	d.queue.Close()
}

// handle runs one request and builds its envelope. Failures, including
// panics, become error responses.
func (d *Dispatcher) handle(req Request) (resp Response) {
	seq := d.clock.Next()
	d.logger.Debug("processing request",
		"op", req.Operation,
		"correlation_id", req.CorrelationID,
		"seq", seq,
	)

	resp = Response{
		CorrelationID: req.CorrelationID,
		Operation:     req.Operation,
		Seq:           seq,
	}

	defer func() {
		if r := recover(); r != nil {
			d.fail(&resp, fmt.Errorf("%s panicked: %v", req.Operation, r))
		}
	}()

	result, err := d.execute(req)
	if err != nil {
		d.fail(&resp, err)
		return resp
	}
	resp.Status = StatusSuccess
	resp.Result = result
	return resp
}

// fail fills resp from err and logs it. Processing continues with the next
// request.
func (d *Dispatcher) fail(resp *Response, err error) {
	resp.Status = StatusError
	resp.Result = nil
	resp.Err = err
	resp.ErrorMessage = err.Error()
	resp.ErrorClass = doc.Classify(err)
	resp.ErrorCode = doc.CodeOf(err)

	d.logger.Warn("request failed",
		"op", resp.Operation,
		"correlation_id", resp.CorrelationID,
		"seq", resp.Seq,
		"class", resp.ErrorClass,
		"code", resp.ErrorCode,
		"error", err,
	)
}
