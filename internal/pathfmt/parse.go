package pathfmt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/nestedjson/internal/doc"
)

var (
	indexBracket    = regexp.MustCompile(`\[\d+\]`)
	anyBracket      = regexp.MustCompile(`\[.*?\]`)
	notPathLike     = regexp.MustCompile(`\s|@|//|http|www`)
	lodashCharset   = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
	keyStartsLetter = regexp.MustCompile(`^[a-zA-Z_]`)
)

// Detect guesses the notation of text from its structural signature.
// It reports false when text does not look like a path at all, in which case
// the whole trimmed text is a single segment.
func Detect(text string) (Notation, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, false
	}

	switch {
	case strings.HasPrefix(t, "$"):
		return JSONPath, true
	case strings.Contains(t, ":") && strings.Contains(t, "->"):
		return Colon, true
	case strings.Contains(t, `["`) || indexBracket.MatchString(t):
		return Bracket, true
	case strings.Contains(t, "->"):
		return Arrow, true
	}

	bare := anyBracket.ReplaceAllString(t, "")
	if !strings.Contains(bare, ".") || notPathLike.MatchString(t) {
		return 0, false
	}
	for _, seg := range strings.Split(bare, ".") {
		if !keyStartsLetter.MatchString(seg) {
			return 0, false
		}
	}
	if lodashCharset.MatchString(t) {
		return Lodash, true
	}
	return Dot, true
}

// ParseAuto parses text in its detected notation, falling back to a single
// trimmed segment when no notation matches.
func ParseAuto(text string) ([]string, error) {
	n, ok := Detect(text)
	if !ok {
		t := strings.TrimSpace(text)
		if t == "" {
			return nil, doc.NewInvalidPathError("empty path")
		}
		return []string{t}, nil
	}
	return Parse(text, n)
}

// Parse splits text written in notation n into segments. Bare segments are
// trimmed; quoted bracket segments are taken verbatim. Empty paths, empty
// segments and malformed brackets fail with INVALID_PATH.
func Parse(text string, n Notation) ([]string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, doc.NewInvalidPathError("empty path")
	}

	var (
		segs []string
		err  error
	)
	switch n {
	case Colon:
		segs, err = parseColon(t)
	case Bracket:
		// Bare segments never hold '.' or '-' in this notation, so the dot
		// and arrow separators that other notations put after ']' are accepted.
		segs, err = tokenize(t, true, ".", "->")
	case Dot, Lodash:
		segs, err = tokenize(t, true, ".")
	case Arrow:
		segs, err = tokenize(t, true, "->")
	case JSONPath:
		rest := strings.TrimPrefix(t, "$")
		if rest == "" {
			return nil, doc.NewInvalidPathError("jsonpath has no segments after '$'")
		}
		if !strings.HasPrefix(rest, ".") && !strings.HasPrefix(rest, "[") {
			return nil, doc.NewInvalidPathError(fmt.Sprintf("expected '.' or '[' after '$' in %q", t))
		}
		segs, err = tokenize(strings.TrimPrefix(rest, "."), true, ".")
	default:
		return nil, doc.NewInvalidPathError(fmt.Sprintf("unknown notation %v", n))
	}
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, doc.NewInvalidPathError("empty path")
	}
	return segs, nil
}

// parseColon splits at the first ':' and then on "->". Without a ':' the
// whole text is read as arrow-separated segments.
func parseColon(t string) ([]string, error) {
	head, rest, found := strings.Cut(t, ":")
	if !found {
		return tokenize(t, false, "->")
	}
	head = strings.TrimSpace(head)
	if head == "" {
		return nil, doc.NewInvalidPathError(fmt.Sprintf("empty root segment in %q", t))
	}
	if strings.TrimSpace(rest) == "" {
		return nil, doc.NewInvalidPathError(fmt.Sprintf("path %q ends with a separator", t))
	}
	tail, err := tokenize(rest, false, "->")
	if err != nil {
		return nil, err
	}
	return append([]string{head}, tail...), nil
}

type tokState int

const (
	expectSegment tokState = iota
	inBare
	afterBracket
)

// tokenize splits t on any of seps. With brackets enabled, [digits], [bare]
// and ["quoted"] groups form segments of their own and may follow a bare
// segment or another bracket group without a separator.
func tokenize(t string, brackets bool, seps ...string) ([]string, error) {
	var (
		segs  []string
		bare  strings.Builder
		state = expectSegment
	)
	pushBare := func() error {
		s := strings.TrimSpace(bare.String())
		bare.Reset()
		if s == "" {
			return doc.NewInvalidPathError(fmt.Sprintf("empty segment in %q", t))
		}
		segs = append(segs, s)
		return nil
	}

	for i := 0; i < len(t); {
		if sep := matchSep(t[i:], seps); sep != "" {
			switch state {
			case inBare:
				if err := pushBare(); err != nil {
					return nil, err
				}
			case expectSegment:
				return nil, doc.NewInvalidPathError(fmt.Sprintf("empty segment at offset %d in %q", i, t))
			}
			state = expectSegment
			i += len(sep)
			continue
		}

		if brackets && t[i] == '[' {
			if state == inBare {
				if err := pushBare(); err != nil {
					return nil, err
				}
			}
			seg, next, err := readBracket(t, i)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			state = afterBracket
			i = next
			continue
		}

		if state == afterBracket {
			if t[i] == ' ' || t[i] == '\t' {
				i++
				continue
			}
			return nil, doc.NewInvalidPathError(fmt.Sprintf("unexpected %q after ']' at offset %d in %q", t[i], i, t))
		}
		bare.WriteByte(t[i])
		state = inBare
		i++
	}

	switch state {
	case inBare:
		if err := pushBare(); err != nil {
			return nil, err
		}
	case expectSegment:
		if len(segs) > 0 {
			return nil, doc.NewInvalidPathError(fmt.Sprintf("path %q ends with a separator", t))
		}
	}
	return segs, nil
}

func matchSep(s string, seps []string) string {
	for _, sep := range seps {
		if strings.HasPrefix(s, sep) {
			return sep
		}
	}
	return ""
}

// readBracket reads the group starting at t[start] == '[' and returns the
// segment and the offset just past the closing ']'.
func readBracket(t string, start int) (string, int, error) {
	i := start + 1
	if i < len(t) && (t[i] == '"' || t[i] == '\'') {
		quote := t[i]
		i++
		var b strings.Builder
		for i < len(t) && t[i] != quote {
			if t[i] == '\\' && i+1 < len(t) {
				i++
			}
			b.WriteByte(t[i])
			i++
		}
		if i >= len(t) {
			return "", 0, doc.NewInvalidPathError(fmt.Sprintf("unterminated quoted segment at offset %d in %q", start, t))
		}
		i++ // closing quote
		if i >= len(t) || t[i] != ']' {
			return "", 0, doc.NewInvalidPathError(fmt.Sprintf("expected ']' at offset %d in %q", i, t))
		}
		return b.String(), i + 1, nil
	}

	end := strings.IndexByte(t[i:], ']')
	if end < 0 {
		return "", 0, doc.NewInvalidPathError(fmt.Sprintf("unclosed '[' at offset %d in %q", start, t))
	}
	seg := strings.TrimSpace(t[i : i+end])
	if seg == "" {
		return "", 0, doc.NewInvalidPathError(fmt.Sprintf("empty brackets at offset %d in %q", start, t))
	}
	return seg, i + end + 1, nil
}

// Convert re-renders a path typed in any notation into notation to.
func Convert(text string, to Notation) (string, error) {
	segs, err := ParseAuto(text)
	if err != nil {
		return "", err
	}
	return Format(segs, to), nil
}
