package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/dispatch"
	"github.com/roach88/nestedjson/internal/doc"
)

func TestDecodeRequest_Operations(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"parse","correlationId":"c1","payload":{"text":"{\"a\":1}"}}`))
		require.NoError(t, err)
		assert.Equal(t, dispatch.OpParse, req.Operation)
		assert.Equal(t, "c1", req.CorrelationID)
		assert.Equal(t, dispatch.ParsePayload{Text: `{"a":1}`}, req.Payload)
	})

	t.Run("flatten keeps key order", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"flatten","correlationId":"c2","payload":{"root":{"z":1,"a":2}}}`))
		require.NoError(t, err)
		p, ok := req.Payload.(dispatch.FlattenPayload)
		require.True(t, ok)
		m, ok := p.Root.(*doc.Mapping)
		require.True(t, ok)
		assert.Equal(t, []string{"z", "a"}, m.Keys())
	})

	t.Run("diff", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"diff","correlationId":"c3","payload":{"baseline":{},"current":{"a":1}}}`))
		require.NoError(t, err)
		p, ok := req.Payload.(dispatch.DiffPayload)
		require.True(t, ok)
		assert.True(t, doc.IsEmptyMapping(p.Baseline))
		text, err := codec.Serialize(p.Current, 0)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, text)
	})

	t.Run("analyze", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"analyze","correlationId":"c4","payload":{"baseline":{},"current":{}}}`))
		require.NoError(t, err)
		assert.IsType(t, dispatch.AnalyzePayload{}, req.Payload)
	})

	t.Run("addOrUpdate with path", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"addOrUpdate","correlationId":"c5","payload":{"root":{},"path":"config:db->host","value":"localhost","allowOverwrite":true}}`))
		require.NoError(t, err)
		p, ok := req.Payload.(dispatch.AddOrUpdatePayload)
		require.True(t, ok)
		assert.Equal(t, []string{"config", "db", "host"}, p.Segments)
		assert.Equal(t, doc.String("localhost"), p.Value)
		assert.True(t, p.AllowOverwrite)
	})

	t.Run("addOrUpdate with segments", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"addOrUpdate","correlationId":"c6","payload":{"root":{},"segments":["a.b","c"],"value":[1]}}`))
		require.NoError(t, err)
		p, ok := req.Payload.(dispatch.AddOrUpdatePayload)
		require.True(t, ok)
		assert.Equal(t, []string{"a.b", "c"}, p.Segments)
		assert.False(t, p.AllowOverwrite)
	})

	t.Run("serialize default indent", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"serialize","correlationId":"c7","payload":{"root":{}}}`))
		require.NoError(t, err)
		assert.Equal(t, codec.DefaultIndent, req.Payload.(dispatch.SerializePayload).Indent)
	})

	t.Run("peek by path", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"peek","correlationId":"c9","payload":{"text":"{\"a\":{\"b\":1}}","path":"a.b"}}`))
		require.NoError(t, err)
		p, ok := req.Payload.(dispatch.PeekPayload)
		require.True(t, ok)
		assert.Equal(t, `{"a":{"b":1}}`, p.Text)
		assert.Equal(t, []string{"a", "b"}, p.Segments)
	})

	t.Run("serialize explicit indent", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"operation":"serialize","correlationId":"c8","payload":{"root":{},"indent":4}}`))
		require.NoError(t, err)
		assert.Equal(t, 4, req.Payload.(dispatch.SerializePayload).Indent)
	})
}

func TestDecodeRequest_Errors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		id    string
		bad   bool
	}{
		{"not json", `{"operation":`, "", false},
		{"not an object", `[1,2]`, "", true},
		{"missing operation", `{"correlationId":"x"}`, "x", true},
		{"missing correlation id", `{"operation":"parse","payload":{"text":"{}"}}`, "", true},
		{"payload not object", `{"operation":"parse","correlationId":"x","payload":"text"}`, "x", true},
		{"missing text", `{"operation":"parse","correlationId":"x","payload":{}}`, "x", true},
		{"text not string", `{"operation":"parse","correlationId":"x","payload":{"text":1}}`, "x", true},
		{"segments not strings", `{"operation":"addOrUpdate","correlationId":"x","payload":{"root":{},"segments":[1],"value":1}}`, "x", true},
		{"missing value", `{"operation":"addOrUpdate","correlationId":"x","payload":{"root":{},"path":"a"}}`, "x", true},
		{"overwrite not bool", `{"operation":"addOrUpdate","correlationId":"x","payload":{"root":{},"path":"a","value":1,"allowOverwrite":"yes"}}`, "x", true},
		{"peek without text", `{"operation":"peek","correlationId":"x","payload":{"path":"a"}}`, "x", true},
		{"fractional indent", `{"operation":"serialize","correlationId":"x","payload":{"root":{},"indent":2.5}}`, "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeRequest([]byte(tt.frame))
			require.Error(t, err)
			assert.Equal(t, tt.id, req.CorrelationID)
			assert.Equal(t, tt.bad, isBadFrame(err))
		})
	}
}

func TestDecodeRequest_UnknownOperation(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"operation":"explode","correlationId":"x"}`))
	require.ErrorIs(t, err, dispatch.ErrUnknownOperation)
	assert.Equal(t, dispatch.Operation("explode"), req.Operation)
}

func TestDecodeRequest_InvalidPath(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"operation":"addOrUpdate","correlationId":"x","payload":{"root":{},"path":"  ","value":1}}`))
	require.Error(t, err)
	assert.True(t, doc.IsInvalidPath(err))
}

func TestDecodeRequest_DepthLimit(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"operation":"flatten","correlationId":"x","payload":{"root":{"a":{"b":{}}}}}`), codec.WithMaxDepth(3))
	require.Error(t, err)
	assert.True(t, doc.IsDepthExceeded(err))
}
