package codec

import (
	"github.com/tidwall/gjson"

	"github.com/roach88/nestedjson/internal/doc"
)

// Peek reads the value at segments straight from document text without
// building the whole tree. Lookup semantics match doc.Lookup: segments only
// descend through objects, never into arrays, and a repeated key resolves to
// its last occurrence.
//
// Invalid text is re-parsed with Parse so the caller gets a positioned
// PARSE_ERROR.
func Peek(text string, segments []string) (doc.Node, bool, error) {
	if !gjson.Valid(text) {
		root, err := Parse(text)
		if err != nil {
			return nil, false, err
		}
		v, ok := doc.Lookup(root, segments)
		return v, ok, nil
	}

	res := gjson.Parse(text)
	for _, seg := range segments {
		if !res.IsObject() {
			return nil, false, nil
		}
		var (
			next  gjson.Result
			found bool
		)
		res.ForEach(func(key, value gjson.Result) bool {
			if key.String() == seg {
				next, found = value, true
			}
			return true
		})
		if !found {
			return nil, false, nil
		}
		res = next
	}

	v, err := Parse(res.Raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
