// Package pathfmt renders and parses leaf paths in the six textual notations
// users type: colon, bracket, dot, arrow, jsonpath and lodash.
//
// Every notation maps to and from the same canonical form, an ordered list of
// string segments.
package pathfmt

import (
	"fmt"
	"strings"
)

// Notation is a textual path syntax.
type Notation int

const (
	Colon Notation = iota + 1
	Bracket
	Dot
	Arrow
	JSONPath
	Lodash
)

var notationNames = map[Notation]string{
	Colon:    "colon",
	Bracket:  "bracket",
	Dot:      "dot",
	Arrow:    "arrow",
	JSONPath: "jsonpath",
	Lodash:   "lodash",
}

var notationLabels = map[Notation]string{
	Colon:    `Colon-Arrow: root:key->sub`,
	Bracket:  `Bracket: root["key"]`,
	Dot:      `Dot: root.key`,
	Arrow:    `Arrow: root->key`,
	JSONPath: `JSONPath: $.key`,
	Lodash:   `Lodash: key`,
}

// Notations lists every notation in display order.
func Notations() []Notation {
	return []Notation{Colon, Bracket, Dot, Arrow, JSONPath, Lodash}
}

func (n Notation) String() string {
	if s, ok := notationNames[n]; ok {
		return s
	}
	return fmt.Sprintf("Notation(%d)", int(n))
}

// Label is a short human description with an example.
func (n Notation) Label() string {
	return notationLabels[n]
}

// Valid reports whether n is one of the six notations.
func (n Notation) Valid() bool {
	_, ok := notationNames[n]
	return ok
}

// ParseNotation resolves a notation name, case-insensitively.
func ParseNotation(s string) (Notation, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for n, name := range notationNames {
		if name == want {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown path notation %q (want one of colon, bracket, dot, arrow, jsonpath, lodash)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (n Notation) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("invalid notation %d", int(n))
	}
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Notation) UnmarshalText(text []byte) error {
	v, err := ParseNotation(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
