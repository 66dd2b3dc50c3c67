package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regestra/regestra/internal/search"
	"github.com/regestra/regestra/pkg/version"
)

// runCommand executes the root command against an isolated home directory
// (config, database and logs all live under it) and captures stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("REGESTRA_DB_PATH", filepath.Join(home, "regestra.db"))

	// The persistent flags write these globals; reset per test.
	configPath = filepath.Join(home, "config.yaml")
	noColor = true
	debugMode = false
}

func TestVersionCmd_ShortOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version.Version, strings.TrimSpace(buf.String()))
}

func TestVersionCmd_JSONOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var info map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Equal(t, version.Version, info["version"])
}

func TestParseSort(t *testing.T) {
	sort, err := parseSort([]string{"name:asc", "createdOn:desc", "index"})
	require.NoError(t, err)
	require.Len(t, sort, 3)
	assert.Equal(t, search.SortDesc, sort[1].Direction)
	assert.Equal(t, search.SortAsc, sort[2].Direction, "missing direction defaults to asc")

	_, err = parseSort([]string{"name:sideways"})
	require.Error(t, err)
}

func TestBuildRequest_FromStdin(t *testing.T) {
	stdin := strings.NewReader(`[{"field":"title","condition":"EQ","value":"x"}]`)
	req, err := buildRequest(stdin, searchOptions{query: "-", page: 2, pageSize: 5})
	require.NoError(t, err)
	require.Len(t, req.Query, 1)
	assert.Equal(t, "title", req.Query[0].Field)
	assert.Equal(t, 2, req.Page)

	_, err = buildRequest(strings.NewReader(""), searchOptions{query: "{not a list}"})
	require.Error(t, err)
}

func TestCLI_EndToEnd(t *testing.T) {
	isolateHome(t)

	out, err := runCommand(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "database ready")

	out, err = runCommand(t, "component", "create", "Topographic", "--index-type", "roman")
	require.NoError(t, err)
	assert.Contains(t, out, "created component")

	_, err = runCommand(t, "element", "create", "Fonds", "--component", "1")
	require.NoError(t, err)
	_, err = runCommand(t, "element", "create", "Maps", "--component", "1", "--parent", "1")
	require.NoError(t, err)

	out, err = runCommand(t, "element", "list", "--component", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Fonds")
	assert.Contains(t, out, "II")

	out, err = runCommand(t, "search", "elements",
		"--query", `[{"field":"hasParents","condition":"EQ","value":false}]`,
		"--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data      []struct{ Name string }
		TotalSize int64 `json:"totalSize"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, int64(1), resp.TotalSize)
	assert.Equal(t, "Fonds", resp.Data[0].Name)

	out, err = runCommand(t, "reindex", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "reindexed 2 elements")

	// Unknown search target surfaces as an error, not a panic.
	_, err = runCommand(t, "search", "nothing")
	require.Error(t, err)
}
