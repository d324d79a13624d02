// Package codec converts between document text and the ordered model in
// internal/doc.
//
// Parse is a recursive-descent parser written directly against the JSON grammar
// so that mapping order is captured as each key is read. encoding/json decodes
// objects into Go maps, which lose that order. Nesting is bounded by a maximum
// depth (DefaultMaxDepth); deeper input fails with DEPTH_EXCEEDED instead of
// exhausting the stack.
//
// Serialize pretty-prints a tree with a configurable indent width, writing
// mappings in stored order. For all well-formed input:
//
//	Parse(Serialize(Parse(text))) is structurally equal to Parse(text)
//
// The package also carries the smaller text-facing helpers: InferValue for
// typed user input, Peek for single lookups on raw text, and ToYAML.
package codec
