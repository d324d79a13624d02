package codec

import (
	"bytes"
	"fmt"
	"strconv"

	gyaml "github.com/goccy/go-yaml"

	"github.com/roach88/nestedjson/internal/doc"
)

// ToYAML renders node as YAML, keeping mapping order via gyaml.MapSlice.
func ToYAML(node doc.Node, indent int) ([]byte, error) {
	v, err := toYAMLValue(node)
	if err != nil {
		return nil, err
	}
	if indent <= 0 {
		indent = DefaultIndent
	}

	var buf bytes.Buffer
	enc := gyaml.NewEncoder(&buf, gyaml.Indent(indent), gyaml.IndentSequence(true))
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAMLValue(n doc.Node) (any, error) {
	switch val := n.(type) {
	case doc.Null:
		return nil, nil
	case doc.Bool:
		return bool(val), nil
	case doc.String:
		return string(val), nil
	case doc.Number:
		return yamlNumber(string(val))
	case doc.Sequence:
		out := make([]any, len(val))
		for i, elem := range val {
			v, err := toYAMLValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case *doc.Mapping:
		ms := make(gyaml.MapSlice, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			e := val.At(i)
			v, err := toYAMLValue(e.Value)
			if err != nil {
				return nil, fmt.Errorf("value for key %q: %w", e.Key, err)
			}
			ms = append(ms, gyaml.MapItem{Key: e.Key, Value: v})
		}
		return ms, nil
	default:
		return nil, doc.NewSerializationError(fmt.Sprintf("unknown node type: %T", n))
	}
}

func yamlNumber(lit string) (any, error) {
	if !doc.ValidNumber(lit) {
		return nil, doc.NewSerializationError(fmt.Sprintf("invalid number literal %q", lit))
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, doc.NewSerializationError(fmt.Sprintf("number %q out of range", lit))
	}
	return f, nil
}
