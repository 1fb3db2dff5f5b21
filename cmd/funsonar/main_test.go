package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/funsonar/internal/config"
)

func TestParseArgs(t *testing.T) {
	c, err := parseArgs([]string{"--unused", "-o", "out.json", "--debug-types", "src", "--config", "f.yaml", "-o", "out.db", "lib.ast.json"})
	require.NoError(t, err)
	assert.True(t, c.unused)
	assert.True(t, c.debugTypes)
	assert.False(t, c.summary)
	assert.Equal(t, "f.yaml", c.configPath)
	assert.Equal(t, []string{"out.json", "out.db"}, c.outputs)
	assert.Equal(t, []string{"src", "lib.ast.json"}, c.paths)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"--summary"}, "no input given"},
		{"missing value", []string{"a.ast.json", "-o"}, "-o requires an argument"},
		{"unknown flag", []string{"--fast", "a.ast.json"}, "unknown option --fast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadOptionsFindsConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "funsonar.yaml"), []byte("max_call_depth: 3\n"), 0o644))
	input := filepath.Join(dir, "main.ast.yaml")
	require.NoError(t, os.WriteFile(input, []byte("type: module\n"), 0o644))

	opts, err := loadOptions(&cliArgs{paths: []string{input}, unused: true, outputs: []string{"out.yaml"}})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.MaxCallDepth)
	assert.True(t, opts.ReportUnused)
	assert.Equal(t, []config.ExportSpec{{Format: "yaml", Path: "out.yaml"}}, opts.Export)

	_, err = loadOptions(&cliArgs{paths: []string{input}, outputs: []string{"out.csv"}})
	require.Error(t, err)
}

func TestRunReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "main.ast.yaml")
	dump := `type: module
body:
  - type: assign
    targets: [{type: name, id: x, line: 1, col: 1}]
    value: {type: name, id: missing, line: 1, col: 5}
`
	require.NoError(t, os.WriteFile(input, []byte(dump), 0o644))
	out := filepath.Join(dir, "out.json")

	stdout, err := os.CreateTemp(dir, "stdout")
	require.NoError(t, err)
	defer stdout.Close()

	code := run([]string{"-o", out, input}, stdout, os.Stderr)
	assert.Equal(t, 0, code)
	assert.FileExists(t, out)

	printed, err := os.ReadFile(stdout.Name())
	require.NoError(t, err)
	assert.Contains(t, string(printed), "unbound variable missing")
}
