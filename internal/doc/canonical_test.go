package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Node
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Number("42"), "42"},
		{"negative int", Number("-100"), "-100"},
		{"float", Number("1.50"), "1.5"},
		{"float integral", Number("1.0"), "1"},
		{"exponent", Number("1e2"), "100"},
		{"exponent zero", Number("1e0"), "1"},
		{"trailing zeros", Number("2.500e1"), "25"},
		{"negative zero", Number("-0.0"), "0"},
		{"big int", Number("12345678901234567890"), "12345678901234567890"},
		{"long fraction", Number("0.10000000000000000001"), "0.10000000000000000001"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"null", Null{}, "null"},
		{"empty array", Sequence{}, "[]"},
		{"empty object", EmptyMapping(), "{}"},
		{"array of ints", Sequence{Number("1"), Number("2"), Number("3")}, "[1,2,3]"},
		{"simple object", NewMapping(E("a", Number("1"))), `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Canonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCanonicalSortedKeys(t *testing.T) {
	obj := NewMapping(
		E("zebra", Number("1")),
		E("alpha", Number("2")),
		E("beta", NewMapping(E("b", Number("1")), E("a", Number("2")))),
	)

	result, err := Canonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"a":2,"b":1},"zebra":1}`, result)
}

func TestCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000 - UTF-16 order differs from UTF-8
	obj := NewMapping(
		E("\uE000", Number("1")),
		E("𐀀", Number("2")),
	)

	result, err := Canonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"𐀀":2,"`+"\uE000"+`":1}`, result)
}

func TestCanonicalStringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"control", "a\x01b", `"a\u0001b"`},
		{"html not escaped", "<a>&", `"<a>&"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"invalid utf8", "a\xffb", "\"a\ufffdb\""},
		{"unicode", "héllo", `"héllo"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Canonical(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCanonicalRejectsInvalidModel(t *testing.T) {
	_, err := Canonical(Number("abc"))
	require.Error(t, err)
	assert.True(t, IsSerializationError(err))

	_, err = Canonical(NewMapping(E("a", nil)))
	require.Error(t, err)
	assert.True(t, IsSerializationError(err))
}

func TestCanonicalNumber_ExactValues(t *testing.T) {
	assert.NotEqual(t, CanonicalNumber("12345678901234567890"), CanonicalNumber("12345678901234567891"))
	assert.NotEqual(t, CanonicalNumber("0.1"), CanonicalNumber("0.10000000000000000001"))
	assert.Equal(t, CanonicalNumber("1e400"), CanonicalNumber("10e399"))
	assert.NotEqual(t, CanonicalNumber("1e400"), CanonicalNumber("1e401"))
	assert.Equal(t, CanonicalNumber("-1.5E-30"), CanonicalNumber("-15e-31"))
}

func TestEqual(t *testing.T) {
	a := NewMapping(E("a", Number("1")), E("b", Sequence{String("x")}))
	same := NewMapping(E("a", Number("1")), E("b", Sequence{String("x")}))
	reordered := NewMapping(E("b", Sequence{String("x")}), E("a", Number("1")))
	respelled := NewMapping(E("a", Number("1.0")), E("b", Sequence{String("x")}))

	assert.True(t, Equal(a, same))
	assert.False(t, Equal(a, reordered), "key order is part of structural equality")
	assert.False(t, Equal(a, respelled), "number literals compare by text")
	assert.False(t, Equal(a, String("a")))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))

	// Canonical equality ignores order and number spelling.
	assert.Equal(t, MustCanonical(a), MustCanonical(reordered))
	assert.Equal(t, MustCanonical(a), MustCanonical(respelled))
}
