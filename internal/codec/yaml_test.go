package codec

import (
	"strings"
	"testing"

	gyaml "github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedjson/internal/doc"
)

func TestToYAML_KeepsKeyOrder(t *testing.T) {
	root, err := Parse(`{"zeta":1,"alpha":{"y":"two","b":[true,null]},"mid":2.5}`)
	require.NoError(t, err)

	out, err := ToYAML(root, 2)
	require.NoError(t, err)

	var ms gyaml.MapSlice
	require.NoError(t, gyaml.UnmarshalWithOptions(out, &ms, gyaml.UseOrderedMap()))
	require.Len(t, ms, 3)
	assert.Equal(t, "zeta", ms[0].Key)
	assert.Equal(t, "alpha", ms[1].Key)
	assert.Equal(t, "mid", ms[2].Key)

	inner, ok := ms[1].Value.(gyaml.MapSlice)
	require.True(t, ok, "nested mapping decoded as %T", ms[1].Value)
	assert.Equal(t, "y", inner[0].Key)
	assert.Equal(t, "b", inner[1].Key)
}

func TestToYAML_Scalars(t *testing.T) {
	out, err := ToYAML(doc.NewMapping(
		doc.E("n", doc.Number("7")),
		doc.E("s", doc.String("hi")),
		doc.E("z", doc.Null{}),
	), 2)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.Index(text, "n: 7") < strings.Index(text, "s: hi"))
	assert.Contains(t, text, "z: null")
}

func TestToYAML_InvalidNumber(t *testing.T) {
	_, err := ToYAML(doc.Sequence{doc.Number("1.2.3")}, 2)
	require.Error(t, err)
	assert.True(t, doc.IsSerializationError(err))
}
