package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestPathCommand_Convert(t *testing.T) {
	tests := []struct {
		input string
		to    string
		want  string
	}{
		{"server:http->port", "jsonpath", "$.server.http.port"},
		{"server:http->port", "arrow", "server->http->port"},
		{"a->b->c", "bracket", `a["b"]["c"]`},
		{"$.a.b", "colon", "a:b"},
		{"server.http.port", "dot", "server.http.port"},
	}

	for _, tt := range tests {
		t.Run(tt.input+"_"+tt.to, func(t *testing.T) {
			res := execute(t, "path", tt.input, "--to", tt.to)
			require.Equal(t, ExitSuccess, res.code, res.stderr)
			assert.Equal(t, tt.want+"\n", res.stdout)
		})
	}
}

func TestPathCommand_DefaultsToConfiguredNotation(t *testing.T) {
	res := execute(t, "path", "$.a.b.c")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "a:b->c\n", res.stdout)
}

func TestPathCommand_All(t *testing.T) {
	res := execute(t, "path", "a->b->c", "--all")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "colon     a:b->c\n")
	assert.Contains(t, res.stdout, "jsonpath  $.a.b.c\n")
	assert.Contains(t, res.stdout, "lodash    a.b.c")
}

func TestPathCommand_JSON(t *testing.T) {
	res := execute(t, "--format", "json", "path", "a->b->c")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	out := gjson.Parse(res.stdout)
	assert.Equal(t, "arrow", out.Get("data.detected").String())
	assert.Equal(t, int64(3), out.Get("data.segments.#").Int())
	assert.Equal(t, "a:b->c", out.Get("data.canonical").String())
	assert.Equal(t, "colon", out.Get("data.renderings.0.notation").String())
}

func TestPathCommand_Plain(t *testing.T) {
	res := execute(t, "--format", "json", "path", "a:b")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "plain", gjson.Get(res.stdout, "data.detected").String())
	assert.Equal(t, []any{"a:b"}, gjson.Get(res.stdout, "data.segments").Value())
}

func TestPathCommand_Errors(t *testing.T) {
	res := execute(t, "path", "a.b", "--to", "xpath")
	assert.Equal(t, ExitCommandError, res.code)

	res = execute(t, "path")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "requires a <path> argument")

	res = execute(t, "path", " ")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "INVALID_PATH")
}

func TestPathCommand_List(t *testing.T) {
	res := execute(t, "path", "--list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "colon     Colon-Arrow: root:key->sub\n")
	assert.Contains(t, res.stdout, `bracket   Bracket: root["key"]`)

	res = execute(t, "--format", "json", "path", "--list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	out := gjson.Parse(res.stdout)
	assert.Equal(t, int64(6), out.Get("data.#").Int())
	assert.Equal(t, "jsonpath", out.Get("data.4.notation").String())
	assert.Equal(t, "JSONPath: $.key", out.Get("data.4.label").String())
}
