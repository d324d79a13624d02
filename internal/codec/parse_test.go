package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedjson/internal/doc"
)

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  doc.Node
	}{
		{"null", "null", doc.Null{}},
		{"true", "true", doc.Bool(true)},
		{"false", " false ", doc.Bool(false)},
		{"int", "42", doc.Number("42")},
		{"negative", "-7", doc.Number("-7")},
		{"float keeps literal", "1.50", doc.Number("1.50")},
		{"exponent", "2E+10", doc.Number("2E+10")},
		{"string", `"hi"`, doc.String("hi")},
		{"empty array", "[]", doc.Sequence{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_PreservesKeyOrder(t *testing.T) {
	got, err := Parse(`{"zebra":1,"alpha":{"y":true,"b":null},"mid":[3,2,1]}`)
	require.NoError(t, err)

	m, ok := got.(*doc.Mapping)
	require.True(t, ok)
	assert.Equal(t, []string{"zebra", "alpha", "mid"}, m.Keys())

	inner, _ := m.Get("alpha")
	assert.Equal(t, []string{"y", "b"}, inner.(*doc.Mapping).Keys())
}

func TestParse_DuplicateKeyLastWinsFirstPosition(t *testing.T) {
	got, err := Parse(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)

	m := got.(*doc.Mapping)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, doc.Number("3"), v)
}

func TestParse_StringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple escapes", `"a\"b\\c\/d"`, `a"b\c/d`},
		{"control escapes", `"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{"bmp unicode", `"\u00e9"`, "\u00e9"},
		{"surrogate pair", `"\ud83d\ude00"`, "\U0001F600"},
		{"lone high surrogate", `"\ud83dx"`, "\ufffdx"},
		{"lone low surrogate", `"\ude00"`, "\ufffd"},
		{"raw utf8", "\"caf\xc3\xa9\"", "caf\u00e9"},
		{"invalid utf8 replaced", "\"a\xffb\"", "a\ufffdb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, doc.String(tt.want), got)
		})
	}
}

func TestParse_StripsBOM(t *testing.T) {
	got, err := Parse("\xef\xbb\xbf{\"a\":1}")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.(*doc.Mapping).Keys())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
		offset int
	}{
		{"empty", "", 1, 1, 0},
		{"whitespace only", "   ", 1, 4, 3},
		{"trailing comma object", `{"a":1,}`, 1, 8, 7},
		{"trailing comma array", `[1,]`, 1, 4, 3},
		{"unquoted key", `{a:1}`, 1, 2, 1},
		{"missing colon", `{"a" 1}`, 1, 6, 5},
		{"bad literal", `tru`, 1, 1, 0},
		{"leading zero", `01`, 1, 2, 1},
		{"missing fraction", `1.`, 1, 3, 2},
		{"trailing characters", `{} x`, 1, 4, 3},
		{"unterminated string", `"abc`, 1, 5, 4},
		{"raw newline in string", "\"a\nb\"", 1, 3, 2},
		{"second line", "{\n  \"a\": ?\n}", 2, 8, 9},
		{"bad escape", `"\x"`, 1, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, doc.IsParseError(err), "expected PARSE_ERROR, got %v", err)

			var de *doc.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.line, de.Line, "line")
			assert.Equal(t, tt.column, de.Column, "column")
			assert.Equal(t, tt.offset, de.Offset, "offset")
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	deep := strings.Repeat("[", 600) + strings.Repeat("]", 600)
	_, err := Parse(deep)
	require.Error(t, err)
	assert.True(t, doc.IsDepthExceeded(err))

	_, err = Parse(deep, WithMaxDepth(1000))
	require.NoError(t, err)

	atLimit := strings.Repeat(`{"a":`, 3) + "1" + strings.Repeat("}", 3)
	_, err = Parse(atLimit, WithMaxDepth(3))
	require.NoError(t, err)
	_, err = Parse(atLimit, WithMaxDepth(2))
	assert.True(t, doc.IsDepthExceeded(err))
}

func TestParseBytes(t *testing.T) {
	got, err := ParseBytes([]byte(`{"k":"v"}`))
	require.NoError(t, err)
	v, ok := got.(*doc.Mapping).Get("k")
	require.True(t, ok)
	assert.Equal(t, doc.String("v"), v)
}
