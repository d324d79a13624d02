package dispatch

import (
	"errors"
	"fmt"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
	"github.com/roach88/nestedjson/internal/mutate"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

var (
	// ErrUnknownOperation is returned for a request whose operation is not
	// one of Operations().
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrBadPayload is returned when a payload does not match its operation.
	ErrBadPayload = errors.New("payload does not match operation")
)

// execute runs one request. It is a pure function of the request: nothing
// survives from one call to the next.
func (d *Dispatcher) execute(req Request) (any, error) {
	switch req.Operation {
	case OpParse:
		p, err := payloadAs[ParsePayload](req)
		if err != nil {
			return nil, err
		}
		root, err := codec.Parse(p.Text, codec.WithMaxDepth(d.maxDepth))
		if err != nil {
			return nil, err
		}
		return ParseResult{Root: root, Leaves: flatten.Flatten(root)}, nil

	case OpFlatten:
		p, err := payloadAs[FlattenPayload](req)
		if err != nil {
			return nil, err
		}
		return FlattenResult{Leaves: flatten.Flatten(p.Root)}, nil

	case OpDiff:
		p, err := payloadAs[DiffPayload](req)
		if err != nil {
			return nil, err
		}
		changes, stats, err := diff.Compare(p.Baseline, p.Current)
		if err != nil {
			return nil, err
		}
		if changes == nil {
			changes = []diff.Change{}
		}
		return DiffResult{Stats: stats, Changes: changes}, nil

	case OpAnalyze:
		p, err := payloadAs[AnalyzePayload](req)
		if err != nil {
			return nil, err
		}
		stats, err := diff.Compute(p.Baseline, p.Current)
		if err != nil {
			return nil, err
		}
		return AnalyzeResult{
			Leaves:    flatten.Flatten(p.Current),
			Stats:     stats,
			NodeCount: doc.Count(p.Current),
		}, nil

	case OpAddOrUpdate:
		p, err := payloadAs[AddOrUpdatePayload](req)
		if err != nil {
			return nil, err
		}
		root, err := mutate.AddOrUpdate(p.Root, p.Segments, p.Value, p.AllowOverwrite)
		if err != nil {
			return nil, err
		}
		return AddOrUpdateResult{Root: root, Path: pathfmt.Canonical(p.Segments)}, nil

	case OpSerialize:
		p, err := payloadAs[SerializePayload](req)
		if err != nil {
			return nil, err
		}
		text, err := codec.Serialize(p.Root, p.Indent, codec.WithMaxDepth(d.maxDepth))
		if err != nil {
			return nil, err
		}
		return SerializeResult{Text: text}, nil

	case OpPeek:
		p, err := payloadAs[PeekPayload](req)
		if err != nil {
			return nil, err
		}
		value, found, err := codec.Peek(p.Text, p.Segments)
		if err != nil {
			return nil, err
		}
		return PeekResult{Value: value, Found: found}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}
}

// payloadAs accepts both T and *T.
func payloadAs[T any](req Request) (T, error) {
	switch p := req.Payload.(type) {
	case T:
		return p, nil
	case *T:
		if p != nil {
			return *p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s got %T", ErrBadPayload, req.Operation, req.Payload)
}
