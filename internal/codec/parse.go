package codec

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/roach88/nestedjson/internal/doc"
)

const utf8BOM = "\xef\xbb\xbf"

// Parse reads JSON text into an ordered tree.
// Malformed input fails with a PARSE_ERROR carrying the offset, line and column.
func Parse(text string, opts ...Option) (doc.Node, error) {
	o := buildOptions(opts)
	p := &parser{s: strings.TrimPrefix(text, utf8BOM), maxDepth: o.maxDepth}

	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, p.fail("value", "unexpected end of input")
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.s) {
		return nil, p.fail("end of input", "unexpected trailing characters")
	}
	return v, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte, opts ...Option) (doc.Node, error) {
	return Parse(string(data), opts...)
}

type parser struct {
	s        string
	pos      int
	depth    int
	maxDepth int
}

// fail builds a parse error at the current position.
func (p *parser) fail(expected, message string) error {
	line, col := 1, 1
	for i := 0; i < p.pos && i < len(p.s); i++ {
		if p.s[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return doc.NewParseError(p.pos, line, col, expected, message)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value() (doc.Node, error) {
	switch c := p.s[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return doc.String(s), nil
	case c == 't':
		return p.literal("true", doc.Bool(true))
	case c == 'f':
		return p.literal("false", doc.Bool(false))
	case c == 'n':
		return p.literal("null", doc.Null{})
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return nil, p.fail("value", "unexpected character "+quoteByte(c))
	}
}

func (p *parser) literal(word string, v doc.Node) (doc.Node, error) {
	if !strings.HasPrefix(p.s[p.pos:], word) {
		return nil, p.fail(word, "invalid literal")
	}
	p.pos += len(word)
	return v, nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return doc.NewDepthExceededError(p.maxDepth)
	}
	return nil
}

func (p *parser) object() (doc.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '{'
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '}' {
		p.pos++
		return doc.EmptyMapping(), nil
	}

	var entries []doc.Entry
	for {
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != '"' {
			return nil, p.fail("string key", "expected object key")
		}
		key, err := p.str()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ':' {
			return nil, p.fail("':'", "expected ':' after object key")
		}
		p.pos++

		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.fail("value", "unexpected end of input")
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		// Order is captured here, as each key is read.
		entries = append(entries, doc.Entry{Key: key, Value: v})

		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.fail("',' or '}'", "unterminated object")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return doc.NewMapping(entries...), nil
		default:
			return nil, p.fail("',' or '}'", "unexpected character "+quoteByte(p.s[p.pos])+" in object")
		}
	}
}

func (p *parser) array() (doc.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '['
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ']' {
		p.pos++
		return doc.Sequence{}, nil
	}

	var items doc.Sequence
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.fail("value", "unexpected end of input")
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, p.fail("',' or ']'", "unterminated array")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return items, nil
		default:
			return nil, p.fail("',' or ']'", "unexpected character "+quoteByte(p.s[p.pos])+" in array")
		}
	}
}

func (p *parser) number() (doc.Node, error) {
	start := p.pos
	if p.s[p.pos] == '-' {
		p.pos++
	}
	switch {
	case p.pos < len(p.s) && p.s[p.pos] == '0':
		p.pos++
	case p.pos < len(p.s) && p.s[p.pos] >= '1' && p.s[p.pos] <= '9':
		p.digits()
	default:
		return nil, p.fail("digit", "invalid number")
	}
	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		p.pos++
		if p.pos >= len(p.s) || !isDigit(p.s[p.pos]) {
			return nil, p.fail("digit", "invalid number: missing fraction digits")
		}
		p.digits()
	}
	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.s) || !isDigit(p.s[p.pos]) {
			return nil, p.fail("digit", "invalid number: missing exponent digits")
		}
		p.digits()
	}
	return doc.Number(p.s[start:p.pos]), nil
}

func (p *parser) digits() {
	for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		p.pos++
	}
}

// str reads a string literal starting at the opening quote.
func (p *parser) str() (string, error) {
	p.pos++ // opening quote
	start := p.pos

	// Fast path: no escapes, no control characters, valid UTF-8.
	for i := start; i < len(p.s); i++ {
		c := p.s[i]
		if c == '"' {
			raw := p.s[start:i]
			if utf8.ValidString(raw) {
				p.pos = i + 1
				return raw, nil
			}
			break
		}
		if c == '\\' || c < 0x20 {
			break
		}
	}

	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '"':
			p.pos++
			return b.String(), nil
		case c < 0x20:
			return "", p.fail("character", "invalid control character in string")
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		case c < utf8.RuneSelf:
			b.WriteByte(c)
			p.pos++
		default:
			r, size := utf8.DecodeRuneInString(p.s[p.pos:])
			if r == utf8.RuneError && size == 1 {
				b.WriteRune(utf8.RuneError)
			} else {
				b.WriteString(p.s[p.pos : p.pos+size])
			}
			p.pos += size
		}
	}
	return "", p.fail("'\"'", "unterminated string")
}

func (p *parser) escape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.s) {
		return p.fail("escape character", "unterminated escape sequence")
	}
	c := p.s[p.pos]
	p.pos++
	switch c {
	case '"', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r, err := p.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			// A high surrogate must be followed by an escaped low surrogate.
			if strings.HasPrefix(p.s[p.pos:], `\u`) {
				save := p.pos
				p.pos += 2
				r2, err := p.hex4()
				if err != nil {
					return err
				}
				if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
					b.WriteRune(dec)
					return nil
				}
				p.pos = save
			}
			r = utf8.RuneError
		}
		b.WriteRune(r)
	default:
		p.pos--
		return p.fail("escape character", "invalid escape sequence \\"+string(c))
	}
	return nil
}

func (p *parser) hex4() (rune, error) {
	if p.pos+4 > len(p.s) {
		return 0, p.fail("4 hex digits", "truncated unicode escape")
	}
	var r rune
	for i := 0; i < 4; i++ {
		c := p.s[p.pos+i]
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			p.pos += i
			return 0, p.fail("hex digit", "invalid unicode escape")
		}
		r = r<<4 | rune(v)
	}
	p.pos += 4
	return r, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func quoteByte(c byte) string {
	if c < 0x20 || c >= utf8.RuneSelf {
		return "0x" + string("0123456789abcdef"[c>>4]) + string("0123456789abcdef"[c&0xf])
	}
	return "'" + string(c) + "'"
}
