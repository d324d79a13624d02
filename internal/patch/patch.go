// Package patch exports the difference between a baseline and a current
// document as RFC 6902 JSON Patch or RFC 7396 JSON Merge Patch.
package patch

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/doc"
)

// Op names.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
)

// Operation is one RFC 6902 operation.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Pointer renders segments as an RFC 6901 JSON Pointer.
func Pointer(segments []string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString(s)
	}
	return b.String()
}

// Build returns the operations that turn baseline into current.
//
// Mappings present on both sides are compared key by key; any other value
// that differs canonically is replaced whole, so a changed Sequence is one
// replace. Within a mapping, removals come first and additions follow in
// current order, which keeps every path valid when the patch is applied in
// sequence.
func Build(baseline, current doc.Node) ([]Operation, error) {
	if baseline == nil {
		baseline = doc.EmptyMapping()
	}
	if current == nil {
		current = doc.EmptyMapping()
	}
	var ops []Operation
	if err := walk(&ops, nil, baseline, current); err != nil {
		return nil, err
	}
	return ops, nil
}

func walk(ops *[]Operation, path []string, before, after doc.Node) error {
	bm, bok := before.(*doc.Mapping)
	am, aok := after.(*doc.Mapping)
	if !bok || !aok {
		if doc.Equal(before, after) {
			return nil
		}
		return emit(ops, OpReplace, path, after)
	}

	for _, k := range bm.Keys() {
		if !am.Has(k) {
			*ops = append(*ops, Operation{Op: OpRemove, Path: Pointer(child(path, k))})
		}
	}
	for i := 0; i < am.Len(); i++ {
		e := am.At(i)
		p := child(path, e.Key)
		prev, ok := bm.Get(e.Key)
		if !ok {
			if err := emit(ops, OpAdd, p, e.Value); err != nil {
				return err
			}
			continue
		}
		if err := walk(ops, p, prev, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func child(path []string, key string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = key
	return out
}

func emit(ops *[]Operation, op string, path []string, value doc.Node) error {
	text, err := codec.Serialize(value, 0)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, Pointer(path), err)
	}
	*ops = append(*ops, Operation{Op: op, Path: Pointer(path), Value: json.RawMessage(text)})
	return nil
}

// Encode marshals ops and checks the result decodes as a JSON Patch.
// indent > 0 pretty-prints with that many spaces.
func Encode(ops []Operation, indent int) ([]byte, error) {
	if ops == nil {
		ops = []Operation{}
	}
	compact, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}
	if _, err := jsonpatch.DecodePatch(compact); err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}
	if indent <= 0 {
		return compact, nil
	}
	out, err := json.MarshalIndent(ops, "", strings.Repeat(" ", indent))
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}
	return out, nil
}

// Merge returns the RFC 7396 merge patch from baseline to current.
//
// Merge patches cannot set a member to null (null means delete), so a leaf
// changed to null reads as a removal when the patch is applied.
func Merge(baseline, current doc.Node) ([]byte, error) {
	if baseline == nil {
		baseline = doc.EmptyMapping()
	}
	if current == nil {
		current = doc.EmptyMapping()
	}
	before, err := codec.Serialize(baseline, 0)
	if err != nil {
		return nil, fmt.Errorf("serialize baseline: %w", err)
	}
	after, err := codec.Serialize(current, 0)
	if err != nil {
		return nil, fmt.Errorf("serialize current: %w", err)
	}
	out, err := jsonpatch.CreateMergePatch([]byte(before), []byte(after))
	if err != nil {
		return nil, fmt.Errorf("create merge patch: %w", err)
	}
	return out, nil
}
