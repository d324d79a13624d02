package flatten

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/doc"
)

// Search returns the leaves whose canonical path or rendered value contains
// query, ignoring case. A query typed with ':' also matches the "->" form of
// the path. An empty query matches everything.
func Search(leaves []Leaf, query string) []Leaf {
	if query == "" {
		return leaves
	}

	fold := cases.Fold()
	key := func(s string) string { return fold.String(norm.NFC.String(s)) }

	q := key(query)
	qArrow := strings.ReplaceAll(q, ":", "->")

	var out []Leaf
	for _, l := range leaves {
		p := key(l.Path)
		if strings.Contains(p, q) || strings.Contains(p, qArrow) ||
			strings.Contains(key(DisplayValue(l.Value)), q) {
			out = append(out, l)
		}
	}
	return out
}

// DisplayValue renders a leaf value as text: strings as-is, everything else as
// compact JSON in stored order.
func DisplayValue(n doc.Node) string {
	if s, ok := n.(doc.String); ok {
		return string(s)
	}
	text, err := codec.Serialize(n, 0)
	if err != nil {
		return ""
	}
	return text
}
