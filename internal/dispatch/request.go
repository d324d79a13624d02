package dispatch

import (
	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
)

// Operation names a unit of work the worker can run.
type Operation string

const (
	OpParse       Operation = "parse"
	OpFlatten     Operation = "flatten"
	OpDiff        Operation = "diff"
	OpAnalyze     Operation = "analyze"
	OpAddOrUpdate Operation = "addOrUpdate"
	OpSerialize   Operation = "serialize"
	OpPeek        Operation = "peek"
)

// Operations lists every supported operation.
func Operations() []Operation {
	return []Operation{OpParse, OpFlatten, OpDiff, OpAnalyze, OpAddOrUpdate, OpSerialize, OpPeek}
}

// Request is one unit of work. Payload must be the payload type matching
// Operation (ParsePayload for OpParse, and so on).
type Request struct {
	Operation     Operation `json:"operation"`
	CorrelationID string    `json:"correlationId"`
	Payload       any       `json:"payload"`
}

// Status is the outcome of a request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Response answers exactly one Request. On success Result holds the result
// type matching the operation; on error Err holds the typed error and
// ErrorMessage, ErrorClass and ErrorCode describe it for remote callers.
type Response struct {
	Status        Status        `json:"status"`
	CorrelationID string        `json:"correlationId"`
	Operation     Operation     `json:"operation"`
	Seq           int64         `json:"seq"`
	Result        any           `json:"result,omitempty"`
	Err           error         `json:"-"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
	ErrorClass    doc.Class     `json:"errorClass,omitempty"`
	ErrorCode     doc.ErrorCode `json:"errorCode,omitempty"`
}

// OK reports whether the request succeeded.
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}

// ParsePayload carries document text.
type ParsePayload struct {
	Text string `json:"text"`
}

// ParseResult holds the parsed root and its leaves.
type ParseResult struct {
	Root   doc.Node       `json:"root"`
	Leaves []flatten.Leaf `json:"leaves"`
}

// FlattenPayload carries the root to flatten.
type FlattenPayload struct {
	Root doc.Node `json:"root"`
}

// FlattenResult holds leaves in pre-order.
type FlattenResult struct {
	Leaves []flatten.Leaf `json:"leaves"`
}

// DiffPayload carries both snapshots.
type DiffPayload struct {
	Baseline doc.Node `json:"baseline"`
	Current  doc.Node `json:"current"`
}

// DiffResult holds the comparison and every changed leaf.
type DiffResult struct {
	Stats   diff.Stats    `json:"stats"`
	Changes []diff.Change `json:"changes"`
}

// AnalyzePayload carries both snapshots; the current one is also flattened.
type AnalyzePayload struct {
	Baseline doc.Node `json:"baseline"`
	Current  doc.Node `json:"current"`
}

// AnalyzeResult is flatten and diff in one pass over the queue.
type AnalyzeResult struct {
	Leaves    []flatten.Leaf `json:"leaves"`
	Stats     diff.Stats     `json:"stats"`
	NodeCount int            `json:"nodeCount"`
}

// AddOrUpdatePayload carries a point edit.
type AddOrUpdatePayload struct {
	Root           doc.Node `json:"root"`
	Segments       []string `json:"segments"`
	Value          doc.Node `json:"value"`
	AllowOverwrite bool     `json:"allowOverwrite"`
}

// AddOrUpdateResult holds the new root and the canonical path that changed.
type AddOrUpdateResult struct {
	Root doc.Node `json:"root"`
	Path string   `json:"path"`
}

// SerializePayload carries a root and the indent width.
type SerializePayload struct {
	Root   doc.Node `json:"root"`
	Indent int      `json:"indent"`
}

// SerializeResult holds document text.
type SerializeResult struct {
	Text string `json:"text"`
}

// PeekPayload carries raw document text and the segments to read.
type PeekPayload struct {
	Text     string   `json:"text"`
	Segments []string `json:"segments"`
}

// PeekResult holds the value at the path. Found is false when nothing is there.
type PeekResult struct {
	Value doc.Node `json:"value,omitempty"`
	Found bool     `json:"found"`
}
