package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestFlattenCommand_Text(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "flatten", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "server:host = localhost\nserver:port = 8080\ndebug = false\n", res.stdout)
}

func TestFlattenCommand_Notation(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "--notation", "bracket", "flatten", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `server["port"] = 8080`)

	res = execute(t, "--notation", "jsonpath", "flatten", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "$.server.host = localhost")
	assert.Contains(t, res.stdout, "$.debug = false")
}

func TestFlattenCommand_Search(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "flatten", path, "--search", "PORT")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "server:port = 8080\n", res.stdout)

	res = execute(t, "flatten", path, "--search", "nothing-like-this")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "No leaves found.\n", res.stdout)
}

func TestFlattenCommand_Group(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "flatten", path, "--group")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "Root\n  debug = false\nserver\n  host = localhost\n  port = 8080\n", res.stdout)
}

func TestFlattenCommand_JSON(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "--format", "json", "flatten", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	out := gjson.Parse(res.stdout)
	assert.Equal(t, "ok", out.Get("status").String())
	assert.Equal(t, int64(3), out.Get("data.#").Int())
	assert.Equal(t, "server:port", out.Get("data.1.path").String())
	assert.Equal(t, int64(8080), out.Get("data.1.value").Int())
	assert.Equal(t, []any{"server", "port"}, out.Get("data.1.segments").Value())
}

func TestFlattenCommand_ScalarRoot(t *testing.T) {
	path := writeDoc(t, "scalar.json", `"just text"`)

	res := execute(t, "flatten", path, "--group")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "Root\n  $ = just text\n", res.stdout)
}

func TestFlattenCommand_InvalidDocument(t *testing.T) {
	path := writeDoc(t, "broken.json", `{"a": }`)

	res := execute(t, "flatten", path)
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error [PARSE_ERROR]")
}

func TestFlattenCommand_MissingArgs(t *testing.T) {
	res := execute(t, "flatten")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "accepts 1 arg")
}
