package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSweep = `
levels:
  - name: number
    values: [1, 10]
  - name: name
    values: [a, b]
  - name: label
    values: ["{name}{number}"]
    template: true
    create_dir: false
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel, logFormat = "", "", ""
	buildManifest = ""
	iterPrefix, iterJSON = "", false
	aggColumns, aggManifest, aggDelim = nil, "", ","

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSweep(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSweep), 0o600))
	return path
}

func TestBuildIterAgg(t *testing.T) {
	dir := t.TempDir()
	sweep := writeSweep(t, dir)
	root := filepath.Join(dir, "out")
	db := filepath.Join(dir, "manifest.db")

	out, err := run(t, "build", sweep, root, "--manifest", db, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Built 4 combinations")

	data, err := os.ReadFile(filepath.Join(root, "10", "b", "control.json"))
	require.NoError(t, err)
	var control map[string]any
	require.NoError(t, json.Unmarshal(data, &control))
	assert.Equal(t, map[string]any{"number": float64(10), "name": "b", "label": "b10"}, control)

	t.Run("iter", func(t *testing.T) {
		out, err := run(t, "iter", sweep, "--prefix", "x")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "x/1/a\t"+`{"number":1,"name":"a","label":"a1"}`, lines[0])
	})

	t.Run("iter json", func(t *testing.T) {
		out, err := run(t, "iter", sweep, "--json")
		require.NoError(t, err)
		first := strings.SplitN(out, "\n", 2)[0]
		assert.JSONEq(t, `{"path":"1/a","control":{"number":1,"name":"a","label":"a1"}}`, first)
	})

	t.Run("agg from tree", func(t *testing.T) {
		out, err := run(t, "agg", root, "-c", "number", "-c", "tag=$.label")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "dir,number,tag", lines[0])
		assert.Equal(t, filepath.ToSlash(filepath.Join(root, "1", "a"))+",1,a1", lines[1])
	})

	t.Run("agg from manifest", func(t *testing.T) {
		out, err := run(t, "agg", "--manifest", db, "-c", "name", "--delim", "tab")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "dir\tname", lines[0])
		assert.True(t, strings.HasSuffix(lines[4], "/10/b\tb"), lines[4])
	})

	t.Run("agg needs columns", func(t *testing.T) {
		_, err := run(t, "agg", root)
		assert.Error(t, err)
	})
}

func TestBuild_ReportsIterationErrors(t *testing.T) {
	dir := t.TempDir()
	sweep := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(sweep, []byte(`
levels:
  - name: number
    values: [{description: one}]
    update: true
`), 0o600))

	_, err := run(t, "build", sweep, filepath.Join(dir, "out"), "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing key")
}

func TestBuild_FailedBuildKeepsPreviousManifest(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "manifest.db")

	_, err := run(t, "build", writeSweep(t, dir), filepath.Join(dir, "out"), "--manifest", db, "--log-level", "error")
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
levels:
  - name: number
    values: [{number: 1}, {description: two}]
    update: true
`), 0o600))
	_, err = run(t, "build", bad, filepath.Join(dir, "other"), "--manifest", db, "--log-level", "error")
	require.Error(t, err)

	out, err := run(t, "agg", "--manifest", db, "-c", "name")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasSuffix(lines[1], "/out/1/a,a"), lines[1])
}

func TestParseDelim(t *testing.T) {
	r, err := parseDelim("tab")
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	r, err = parseDelim(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)

	_, err = parseDelim(",,")
	assert.Error(t, err)
	_, err = parseDelim("")
	assert.Error(t, err)
}
