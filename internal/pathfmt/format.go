package pathfmt

import (
	"strings"
	"unicode"
)

// Format renders segments in notation n. An empty segment list renders as "".
func Format(segments []string, n Notation) string {
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	switch n {
	case Bracket:
		for i, seg := range segments {
			switch {
			case isIndex(seg):
				writeIndex(&b, seg)
			case i == 0 && !needsEscaping(seg) && !strings.ContainsAny(seg, `"\`):
				b.WriteString(seg)
			default:
				writeQuoted(&b, seg)
			}
		}
	case Dot:
		for i, seg := range segments {
			switch {
			case isIndex(seg):
				writeIndex(&b, seg)
			default:
				if i > 0 {
					b.WriteByte('.')
				}
				if needsEscaping(seg) {
					writeQuoted(&b, seg)
				} else {
					b.WriteString(seg)
				}
			}
		}
	case Arrow:
		for i, seg := range segments {
			if isIndex(seg) {
				writeIndex(&b, seg)
				continue
			}
			if i > 0 {
				b.WriteString("->")
			}
			b.WriteString(seg)
		}
	case JSONPath:
		b.WriteByte('$')
		for _, seg := range segments {
			switch {
			case isIndex(seg):
				writeIndex(&b, seg)
			case needsEscaping(seg):
				writeQuoted(&b, seg)
			default:
				b.WriteByte('.')
				b.WriteString(seg)
			}
		}
	case Lodash:
		return strings.Join(segments, ".")
	default:
		return Canonical(segments)
	}
	return b.String()
}

// Canonical renders segments in the default colon notation: a single segment
// stands alone, otherwise the first segment is followed by ':' and the rest
// joined with "->".
func Canonical(segments []string) string {
	switch len(segments) {
	case 0:
		return ""
	case 1:
		return segments[0]
	}
	return segments[0] + ":" + strings.Join(segments[1:], "->")
}

func writeIndex(b *strings.Builder, seg string) {
	b.WriteByte('[')
	b.WriteString(seg)
	b.WriteByte(']')
}

// writeQuoted writes seg as ["seg"], escaping backslashes and quotes.
func writeQuoted(b *strings.Builder, seg string) {
	b.WriteString(`["`)
	for i := 0; i < len(seg); i++ {
		if seg[i] == '\\' || seg[i] == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(seg[i])
	}
	b.WriteString(`"]`)
}

// isIndex reports whether seg is all ASCII digits.
func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}

// needsEscaping reports whether seg cannot be written bare after a dot: it
// contains '.', '-', '[', ']' or whitespace, or starts with a digit.
func needsEscaping(seg string) bool {
	if seg == "" {
		return true
	}
	if seg[0] >= '0' && seg[0] <= '9' {
		return true
	}
	return strings.ContainsFunc(seg, func(r rune) bool {
		return r == '.' || r == '-' || r == '[' || r == ']' || unicode.IsSpace(r)
	})
}
