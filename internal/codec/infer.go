package codec

import (
	"strings"

	"github.com/roach88/nestedjson/internal/doc"
)

// InferValue turns free-form user input into a typed value:
//   - text starting with '{' or '[' is parsed as JSON, falling back to a string
//   - "true" and "false" become booleans
//   - a trimmed JSON number literal becomes a Number
//   - anything else is kept as a String, untrimmed
func InferValue(text string) doc.Node {
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		if v, err := Parse(text); err == nil {
			return v
		}
		return doc.String(text)
	}
	switch text {
	case "true":
		return doc.Bool(true)
	case "false":
		return doc.Bool(false)
	}
	if trimmed := strings.TrimSpace(text); trimmed != "" && doc.ValidNumber(trimmed) {
		return doc.Number(trimmed)
	}
	return doc.String(text)
}
