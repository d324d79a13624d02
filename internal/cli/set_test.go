package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const sampleWithTLS = `{
  "server": {
    "host": "localhost",
    "port": 8080,
    "tls": {
      "enabled": true
    }
  },
  "debug": false
}`

func TestSetCommand_AddsAndSaves(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "set", path, "server:tls->enabled", "true")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "Set server:tls->enabled (added 1, modified 0, removed 0)\nSaved "+path+"\n", res.stdout)
	assert.Equal(t, sampleWithTLS, readDoc(t, path))
}

func TestSetCommand_Indent(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "--indent", "0", "set", path, "server.tls.enabled", "true")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, `{"server":{"host":"localhost","port":8080,"tls":{"enabled":true}},"debug":false}`, readDoc(t, path))
}

func TestSetCommand_TypedValues(t *testing.T) {
	path := writeDoc(t, "config.json", `{}`)

	steps := [][]string{
		{"a", "42"},
		{"b", "text"},
		{"c", `["x", 1]`},
		{"d", "false"},
		{"e", "{not json"},
	}
	for _, s := range steps {
		res := execute(t, "--indent", "0", "set", path, s[0], s[1])
		require.Equal(t, ExitSuccess, res.code, res.stderr)
	}
	assert.Equal(t, `{"a":42,"b":"text","c":["x",1],"d":false,"e":"{not json"}`, readDoc(t, path))
}

func TestSetCommand_Rejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"conflict", []string{"server:host->x", "1"}, "CONFLICT"},
		{"duplicate", []string{"server.port", "1"}, "DUPLICATE_KEY"},
		{"empty_path", []string{"", "1"}, "INVALID_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, "config.json", sampleDoc)

			res := execute(t, append([]string{"set", path}, tt.args...)...)
			assert.Equal(t, ExitFailure, res.code)
			assert.Contains(t, res.stderr, "Error ["+tt.code+"]")
			assert.Equal(t, sampleDoc, readDoc(t, path), "document must be untouched")
		})
	}
}

func TestSetCommand_Overwrite(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "--format", "json", "set", path, "server.port", "9090", "--overwrite")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	out := gjson.Parse(res.stdout)
	assert.Equal(t, "server:port", out.Get("data.path").String())
	assert.Equal(t, int64(1), out.Get("data.stats.modified").Int())
	assert.Equal(t, []any{"server:port"}, out.Get("data.stats.changed").Value())
	assert.True(t, out.Get("data.saved").Bool())

	saved := readDoc(t, path)
	assert.Equal(t, int64(9090), gjson.Get(saved, "server.port").Int())
	assert.Less(t, gjson.Get(saved, "server.port").Index, gjson.Get(saved, "debug").Index, "key order kept")
}

func TestSetCommand_DryRun(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)

	res := execute(t, "set", path, "server:tls->enabled", "true", "--dry-run")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, sampleWithTLS+"\n", res.stdout)
	assert.Equal(t, sampleDoc, readDoc(t, path))
}

func TestSetCommand_RecordsRevisions(t *testing.T) {
	path := writeDoc(t, "config.json", sampleDoc)
	db := filepath.Join(t.TempDir(), "revs.db")

	res := execute(t, "set", path, "server:tls->enabled", "true", "--store", db)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "(revision 2)")

	res = execute(t, "set", path, "debug", "true", "--overwrite", "--store", db)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "(revision 3)")

	res = execute(t, "history", "list", db, path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	lines := gjson.Parse(execute(t, "--format", "json", "history", "list", db, path).stdout).Get("data.#.seq").Array()
	require.Len(t, lines, 3)
	assert.Equal(t, int64(3), lines[2].Int())

	res = execute(t, "history", "show", db, path, "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, sampleDoc+"\n", res.stdout)
}

func TestSetCommand_StoreFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, "config.json", sampleDoc)
	db := filepath.Join(dir, "revs.db")
	cfg := writeDoc(t, "settings.yaml", "store: "+db+"\n")

	res := execute(t, "--config", cfg, "set", path, "server.tls", "on")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	res = execute(t, "history", "names", db)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, path+"\n", res.stdout)
}

func TestSetCommand_MissingFile(t *testing.T) {
	res := execute(t, "set", filepath.Join(t.TempDir(), "none.json"), "a", "1")
	assert.Equal(t, ExitCommandError, res.code)
}
