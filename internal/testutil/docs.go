package testutil

import (
	"fmt"
	"strings"
)

// NestedText returns a document nested depth mappings deep under key "k",
// with value at the bottom: {"k":{"k":...value...}}.
func NestedText(depth int, value string) string {
	var b strings.Builder
	b.Grow(depth*6 + len(value))
	for i := 0; i < depth; i++ {
		b.WriteString(`{"k":`)
	}
	b.WriteString(value)
	b.WriteString(strings.Repeat("}", depth))
	return b.String()
}

// WideText returns a flat document with n keys "key0".."key{n-1}" holding
// their index.
func WideText(n int) string {
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `"key%d":%d`, i, i)
	}
	b.WriteByte('}')
	return b.String()
}

// SampleConfig is a small configuration document touching every value kind.
const SampleConfig = `{
  "name": "demo",
  "version": 3,
  "server": {
    "host": "localhost",
    "port": 8080,
    "tls": {}
  },
  "features": ["a", "b"],
  "debug": false,
  "owner": null
}`
