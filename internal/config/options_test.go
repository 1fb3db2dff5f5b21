package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	src := `
debug_types: true
max_call_depth: 3
load_path: [lib, /abs/lib]
docs_url: https://docs.example.org/lib
export:
  - {format: sqlite, path: out/index.db}
`
	o, err := ParseOptions([]byte(src), "/proj/funsonar.yaml")
	require.NoError(t, err)

	assert.True(t, o.DebugTypes)
	assert.False(t, o.ReportUnused)
	assert.Equal(t, 3, o.MaxCallDepth)
	assert.Equal(t, []string{"/proj/lib", "/abs/lib"}, o.LoadPath)
	assert.Equal(t, "https://docs.example.org/lib/", o.DocsURL)
	require.Len(t, o.Export, 1)
	assert.Equal(t, "/proj/out/index.db", o.Export[0].Path)
}

func TestParseOptionsDefaults(t *testing.T) {
	o, err := ParseOptions([]byte("report_unused: true\n"), "funsonar.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCallDepth, o.MaxCallDepth)
	assert.Equal(t, DefaultDocsURL, o.DocsURL)
	assert.Equal(t, DefaultOptions().MaxCallDepth, o.MaxCallDepth)
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad yaml", "export: [", "parsing"},
		{"negative depth", "max_call_depth: -1", "must not be negative"},
		{"missing path", "export: [{format: json}]", "path is required"},
		{"bad format", "export: [{format: xml, path: a.xml}]", `unknown format "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions([]byte(tt.src), "funsonar.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindOptionsWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindOptions(nested)
	require.NoError(t, err)
	assert.Empty(t, found)

	cfg := filepath.Join(root, "a", "funsonar.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("debug_types: true\n"), 0o644))

	found, err = FindOptions(nested)
	require.NoError(t, err)
	assert.Equal(t, cfg, found)

	o, err := LoadOptions(found)
	require.NoError(t, err)
	assert.True(t, o.DebugTypes)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "sqlite", FormatFromPath("x/out.DB"))
	assert.Equal(t, "yaml", FormatFromPath("out.yml"))
	assert.Equal(t, "json", FormatFromPath("out.json"))
	assert.Equal(t, "", FormatFromPath("out.txt"))
}
