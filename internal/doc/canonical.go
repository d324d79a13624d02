package doc

import (
	"bytes"
	"fmt"
	"slices"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
)

// Canonical produces the canonical compact text of a value. Two values are
// equal for diffing purposes iff their canonical texts are equal.
//
// Differences from stored-order serialization:
//  1. Mapping keys sorted by UTF-16 code units (RFC 8785), not stored order
//  2. Numbers normalised exactly as decimals, so 1.0, 1e0 and 1 compare equal
//     while 0.1 and 0.10000000000000000001 stay distinct
//  3. No HTML escaping; U+2028 and U+2029 are written literally
func Canonical(n Node) (string, error) {
	var buf bytes.Buffer
	if err := writeCompact(&buf, n, true); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MustCanonical is like Canonical but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCanonical(n Node) string {
	s, err := Canonical(n)
	if err != nil {
		panic(err)
	}
	return s
}

// writeCompact writes n without whitespace. With canonical set, keys are sorted
// and numbers normalised; otherwise stored order and literals are kept.
func writeCompact(buf *bytes.Buffer, n Node, canonical bool) error {
	switch val := n.(type) {
	case Null:
		buf.WriteString("null")
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if !ValidNumber(string(val)) {
			return NewSerializationError(fmt.Sprintf("invalid number literal %q", string(val)))
		}
		if canonical {
			buf.WriteString(CanonicalNumber(string(val)))
		} else {
			buf.WriteString(string(val))
		}
	case String:
		buf.Write(AppendQuoted(nil, string(val)))
	case Sequence:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCompact(buf, elem, canonical); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *Mapping:
		if val == nil {
			return NewSerializationError("nil mapping")
		}
		entries := val.entries
		if canonical {
			entries = slices.Clone(entries)
			slices.SortFunc(entries, func(a, b Entry) int {
				return compareKeysRFC8785(a.Key, b.Key)
			})
		}
		buf.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(AppendQuoted(nil, e.Key))
			buf.WriteByte(':')
			if err := writeCompact(buf, e.Value, canonical); err != nil {
				return fmt.Errorf("value for key %q: %w", e.Key, err)
			}
		}
		buf.WriteByte('}')
	case nil:
		return NewSerializationError("nil node")
	default:
		return NewSerializationError(fmt.Sprintf("unknown node type: %T", n))
	}
	return nil
}

// maxPlainExponent bounds the exponents CanonicalNumber writes in positional
// form; anything further out is written in exponent form.
const maxPlainExponent = 21

// CanonicalNumber normalises a valid JSON number literal. The value is read
// as an exact decimal and reduced (sign of zero, trailing zeros, exponent),
// so the result is the same for every spelling of one value and different
// for different values.
func CanonicalNumber(lit string) string {
	d, _, err := apd.NewFromString(lit)
	if err != nil {
		// Exponent out of decimal range; the literal is the best identity we have.
		return lit
	}
	if d.IsZero() {
		return "0"
	}
	d.Reduce(d)
	adjusted := int64(d.NumDigits()) - 1 + int64(d.Exponent)
	if d.Exponent > maxPlainExponent || adjusted < -maxPlainExponent {
		return d.Text('e')
	}
	return d.Text('f')
}

const hexDigits = "0123456789abcdef"

// AppendQuoted appends s as a JSON string literal to dst.
// Only quote, backslash and control characters are escaped. Invalid UTF-8
// bytes are replaced by U+FFFD.
func AppendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++
				continue
			}
			dst = append(dst, s[start:i]...)
			switch c {
			case '"', '\\':
				dst = append(dst, '\\', c)
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			default:
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, s[start:i]...)
			dst = append(dst, "\ufffd"...)
			i += size
			start = i
			continue
		}
		i += size
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785. Go's string comparison uses UTF-8 byte order,
// which differs for characters above U+FFFF.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Equal reports whether a and b are structurally equal: same variants, same
// keys in the same order, same scalar values. Number literals compare by text.
func Equal(a, b Node) bool {
	type pair struct{ a, b Node }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.a == nil || p.b == nil {
			if p.a != nil || p.b != nil {
				return false
			}
			continue
		}
		if p.a.Kind() != p.b.Kind() {
			return false
		}
		switch x := p.a.(type) {
		case Null:
		case Bool:
			if x != p.b.(Bool) {
				return false
			}
		case Number:
			if x != p.b.(Number) {
				return false
			}
		case String:
			if x != p.b.(String) {
				return false
			}
		case Sequence:
			y := p.b.(Sequence)
			if len(x) != len(y) {
				return false
			}
			for i := range x {
				stack = append(stack, pair{x[i], y[i]})
			}
		case *Mapping:
			y := p.b.(*Mapping)
			if x.Len() != y.Len() {
				return false
			}
			for i := 0; i < x.Len(); i++ {
				ex, ey := x.At(i), y.At(i)
				if ex.Key != ey.Key {
					return false
				}
				stack = append(stack, pair{ex.Value, ey.Value})
			}
		}
	}
	return true
}

// Count returns the number of nodes in the tree rooted at n, n included.
func Count(n Node) int {
	if n == nil {
		return 0
	}
	count := 0
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		switch x := cur.(type) {
		case Sequence:
			stack = append(stack, x...)
		case *Mapping:
			for i := 0; i < x.Len(); i++ {
				stack = append(stack, x.At(i).Value)
			}
		}
	}
	return count
}
