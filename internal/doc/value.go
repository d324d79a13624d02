package doc

import (
	"bytes"
	"fmt"
	"strconv"
)

// Kind identifies the variant of a Node.
type Kind uint8

const (
	KindNull Kind = iota + 1
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Node is a sealed interface over the document variants.
type Node interface {
	Kind() Kind
	docNode() // Sealed - only the types in this file implement it
}

// Null is the JSON null value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) docNode()   {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool is a JSON boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) docNode()   {}

// Number holds the literal text of a JSON number exactly as it was read.
// Keeping the literal avoids float rounding on round trips.
type Number string

func (Number) Kind() Kind { return KindNumber }
func (Number) docNode()   {}

// MarshalJSON implements json.Marshaler for Number.
func (n Number) MarshalJSON() ([]byte, error) {
	if !ValidNumber(string(n)) {
		return nil, NewSerializationError(fmt.Sprintf("invalid number literal %q", string(n)))
	}
	return []byte(n), nil
}

// NumberFromInt creates a Number from an integer.
func NumberFromInt(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// NumberFromFloat creates a Number using the shortest representation of f.
func NumberFromFloat(f float64) Number {
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// String is a JSON string.
type String string

func (String) Kind() Kind { return KindString }
func (String) docNode()   {}

// Sequence is a JSON array. It is treated as one atomic value when flattening.
type Sequence []Node

func (Sequence) Kind() Kind { return KindSequence }
func (Sequence) docNode()   {}

// MarshalJSON implements json.Marshaler for Sequence.
func (s Sequence) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCompact(&buf, s, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Node
}

// E is a shorthand for Entry for ergonomic construction.
// Example: NewMapping(E("name", String("cart")), E("count", NumberFromInt(5)))
func E(key string, value Node) Entry {
	return Entry{Key: key, Value: value}
}

// indexThreshold is the entry count above which a Mapping keeps a key index.
const indexThreshold = 8

// Mapping is an ordered JSON object. Keys are unique; order is insertion order.
// A Mapping is immutable once built; use With to derive a modified copy.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

func (*Mapping) Kind() Kind { return KindMapping }
func (*Mapping) docNode()   {}

// NewMapping builds a Mapping from entries in order.
// A repeated key keeps its first position and takes the last value.
func NewMapping(entries ...Entry) *Mapping {
	m := &Mapping{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		if i, ok := m.lookup(e.Key); ok {
			m.entries[i].Value = e.Value
			continue
		}
		m.entries = append(m.entries, e)
		if m.index != nil {
			m.index[e.Key] = len(m.entries) - 1
		} else if len(m.entries) > indexThreshold {
			m.buildIndex()
		}
	}
	return m
}

func (m *Mapping) buildIndex() {
	m.index = make(map[string]int, len(m.entries))
	for i, e := range m.entries {
		m.index[e.Key] = i
	}
}

func (m *Mapping) lookup(key string) (int, bool) {
	if m.index != nil {
		i, ok := m.index[key]
		return i, ok
	}
	for i, e := range m.entries {
		if e.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// At returns the i-th entry in stored order.
func (m *Mapping) At(i int) Entry {
	return m.entries[i]
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.lookup(key)
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in stored order.
func (m *Mapping) Keys() []string {
	keys := make([]string, m.Len())
	for i := range keys {
		keys[i] = m.entries[i].Key
	}
	return keys
}

// Entries returns a copy of the entries in stored order.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, m.Len())
	copy(out, m.entries)
	return out
}

// With returns a new Mapping with key set to value. An existing key keeps its
// position; a new key is appended. The receiver is left unchanged.
func (m *Mapping) With(key string, value Node) *Mapping {
	n := m.Len()
	out := &Mapping{}
	i, ok := -1, false
	if n > 0 {
		i, ok = m.lookup(key)
	}
	if ok {
		out.entries = make([]Entry, n)
		copy(out.entries, m.entries)
		out.entries[i].Value = value
	} else {
		out.entries = make([]Entry, n, n+1)
		if n > 0 {
			copy(out.entries, m.entries)
		}
		out.entries = append(out.entries, Entry{Key: key, Value: value})
	}
	if len(out.entries) > indexThreshold {
		out.buildIndex()
	}
	return out
}

// MarshalJSON implements json.Marshaler for Mapping, keeping stored key order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCompact(&buf, m, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmptyMapping returns a Mapping with no entries.
func EmptyMapping() *Mapping {
	return &Mapping{}
}

// IsEmptyMapping reports whether n is a Mapping without entries.
// Empty mappings are the marker value of an addressable empty object leaf.
func IsEmptyMapping(n Node) bool {
	m, ok := n.(*Mapping)
	return ok && m.Len() == 0
}

// ValidNumber reports whether s matches the JSON number grammar.
func ValidNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if i >= len(s) || !isDigit(s[i]) {
			return false
		}
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if i >= len(s) || !isDigit(s[i]) {
			return false
		}
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
