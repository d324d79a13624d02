package cli

import (
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExportCommand_YAML(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "export", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "server:\n  host: localhost\n  port: 8080\n")
	assert.Contains(t, res.stdout, "debug: false")
	assert.Less(t, strings.Index(res.stdout, "server:"), strings.Index(res.stdout, "debug:"), "key order kept")
}

func TestExportCommand_Patch(t *testing.T) {
	before := writeDoc(t, "before.json", diffBefore)
	after := writeDoc(t, "after.json", diffAfter)

	res := execute(t, "export", after, "--as", "patch", "--against", before)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	ops := gjson.Parse(res.stdout)
	assert.Equal(t, "replace", ops.Get("0.op").String())
	assert.Equal(t, "/b/c", ops.Get("0.path").String())
	assert.Equal(t, "add", ops.Get("1.op").String())
	assert.Equal(t, "/d", ops.Get("1.path").String())

	p, err := jsonpatch.DecodePatch([]byte(res.stdout))
	require.NoError(t, err)
	applied, err := p.Apply([]byte(diffBefore))
	require.NoError(t, err)
	assert.JSONEq(t, diffAfter, string(applied))
}

func TestExportCommand_Merge(t *testing.T) {
	before := writeDoc(t, "before.json", diffBefore)
	after := writeDoc(t, "after.json", diffAfter)

	res := execute(t, "export", after, "--as", "merge", "--against", before)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.JSONEq(t, `{"b":{"c":3},"d":4}`, res.stdout)

	merged, err := jsonpatch.MergePatch([]byte(diffBefore), []byte(res.stdout))
	require.NoError(t, err)
	assert.JSONEq(t, diffAfter, string(merged))
}

func TestExportCommand_JSONEnvelope(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "--format", "json", "export", path, "--as", "yaml")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "yaml", gjson.Get(res.stdout, "data.as").String())
	assert.Contains(t, gjson.Get(res.stdout, "data.text").String(), "host: localhost")
}

func TestExportCommand_Errors(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "export", path, "--as", "patch")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "requires --against")

	res = execute(t, "export", path, "--as", "toml")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "invalid --as")
}
