package codec

import (
	"fmt"
	"strings"

	"github.com/roach88/nestedjson/internal/doc"
)

// Serialize renders node as JSON text, indenting each level by indent spaces and
// writing mapping entries in stored order. indent <= 0 produces compact output;
// indent is capped at 10. Model invariant violations (nil nodes, invalid number
// literals) fail with SERIALIZATION_ERROR.
func Serialize(node doc.Node, indent int, opts ...Option) (string, error) {
	o := buildOptions(opts)
	w := &writer{
		indent:   strings.Repeat(" ", min(max(indent, 0), maxIndent)),
		maxDepth: o.maxDepth,
	}
	if err := w.value(node, 0); err != nil {
		return "", err
	}
	return w.buf.String(), nil
}

type writer struct {
	buf      strings.Builder
	indent   string
	maxDepth int
	scratch  []byte
}

func (w *writer) newline(level int) {
	if w.indent == "" {
		return
	}
	w.buf.WriteByte('\n')
	for i := 0; i < level; i++ {
		w.buf.WriteString(w.indent)
	}
}

func (w *writer) quoted(s string) {
	w.scratch = doc.AppendQuoted(w.scratch[:0], s)
	w.buf.Write(w.scratch)
}

func (w *writer) value(n doc.Node, level int) error {
	switch val := n.(type) {
	case doc.Null:
		w.buf.WriteString("null")
	case doc.Bool:
		if val {
			w.buf.WriteString("true")
		} else {
			w.buf.WriteString("false")
		}
	case doc.Number:
		if !doc.ValidNumber(string(val)) {
			return doc.NewSerializationError(fmt.Sprintf("invalid number literal %q", string(val)))
		}
		w.buf.WriteString(string(val))
	case doc.String:
		w.quoted(string(val))
	case doc.Sequence:
		if level >= w.maxDepth {
			return doc.NewDepthExceededError(w.maxDepth)
		}
		if len(val) == 0 {
			w.buf.WriteString("[]")
			return nil
		}
		w.buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(level + 1)
			if err := w.value(elem, level+1); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		w.newline(level)
		w.buf.WriteByte(']')
	case *doc.Mapping:
		if val == nil {
			return doc.NewSerializationError("nil mapping")
		}
		if level >= w.maxDepth {
			return doc.NewDepthExceededError(w.maxDepth)
		}
		if val.Len() == 0 {
			w.buf.WriteString("{}")
			return nil
		}
		w.buf.WriteByte('{')
		seen := make(map[string]struct{}, val.Len())
		for i := 0; i < val.Len(); i++ {
			e := val.At(i)
			if _, dup := seen[e.Key]; dup {
				return doc.NewSerializationError(fmt.Sprintf("duplicate key %q in mapping", e.Key))
			}
			seen[e.Key] = struct{}{}
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(level + 1)
			w.quoted(e.Key)
			w.buf.WriteByte(':')
			if w.indent != "" {
				w.buf.WriteByte(' ')
			}
			if err := w.value(e.Value, level+1); err != nil {
				return fmt.Errorf("value for key %q: %w", e.Key, err)
			}
		}
		w.newline(level)
		w.buf.WriteByte('}')
	case nil:
		return doc.NewSerializationError("nil node")
	default:
		return doc.NewSerializationError(fmt.Sprintf("unknown node type: %T", n))
	}
	return nil
}
