package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/pipeline"
	"github.com/funvibe/funsonar/internal/state"
)

var runID = uuid.MustParse("6f1c2a1e-93b4-4d0e-8b57-0a4be3c1d2e9")

// fixture builds a run in which the body of f was analyzed twice, so its
// local x was bound twice at the same site with different types.
func fixture(t *testing.T) *Snapshot {
	t.Helper()
	ix := binding.NewIndex()
	arena := state.NewArena(ix)
	u := arena.Universe()

	global := arena.New(nil, state.Global)
	global.Insert("len", &ast.Url{URL: "https://docs.example.org/functions.html#len"}, u.Int, binding.Function)
	printB := global.Insert("print", &ast.Url{URL: "https://docs.example.org/functions.html#print"}, u.Nil, binding.Function)

	mod := arena.New(global, state.Module)
	mod.Path = "m"
	xNode := &ast.Name{Pos: ast.Pos{File: "m.py", Start: 10, End: 11, Line: 2, Col: 5}, ID: "x"}
	first := arena.New(mod, state.Function)
	first.Path = "m.f"
	x1 := first.Insert("x", xNode, u.IntValue(1), binding.Variable)
	second := arena.New(mod, state.Function)
	second.Path = "m.f"
	x2 := second.Insert("x", xNode, u.StrValue("a"), binding.Variable)

	use := &ast.Name{Pos: ast.Pos{File: "m.py", Start: 20, End: 21, Line: 3, Col: 5}, ID: "x"}
	ix.PutRef(use, []*binding.Binding{x1, x2})
	call := &ast.Call{Pos: ast.Pos{File: "m.py", Start: 30, Line: 4, Col: 1}, Func: &ast.Name{ID: "print"}}
	ix.PutRef(call, []*binding.Binding{printB})

	diags := []*diagnostics.DiagnosticError{
		diagnostics.NewError(diagnostics.ErrW003, ast.Pos{File: "m.py", Line: 5, Col: 1}, "y"),
	}
	return Build(runID, u, ix, diags)
}

func TestBuildMergesRepeatedBindings(t *testing.T) {
	snap := fixture(t)

	assert.Equal(t, runID.String(), snap.RunID)
	assert.Equal(t, []string{"m.py"}, snap.Files)

	require.Len(t, snap.Bindings, 2)
	x := snap.Bindings[0]
	assert.Equal(t, "m.f.x", x.QName)
	assert.Equal(t, "VARIABLE", x.Kind)
	assert.Equal(t, "{int | str}", x.Type)
	assert.Equal(t, 2, x.Refs)
	assert.False(t, x.Builtin)
	assert.Equal(t, Span{File: "m.py", Line: 2, Col: 5, Start: 10, End: 11}, x.Span)

	p := snap.Bindings[1]
	assert.Equal(t, "print", p.QName)
	assert.Contains(t, p.URL, "#print")
	assert.True(t, p.Builtin)

	require.Len(t, snap.References, 2)
	assert.Equal(t, "x", snap.References[0].Name)
	assert.Equal(t, []int{0}, snap.References[0].Targets)
	assert.Equal(t, "print", snap.References[1].Name)
	assert.Equal(t, []int{1}, snap.References[1].Targets)

	require.Len(t, snap.Diagnostics, 1)
	assert.Equal(t, "W003", snap.Diagnostics[0].Code)
	assert.Equal(t, "WARNING", snap.Diagnostics[0].Severity)
	assert.Equal(t, "unbound variable y", snap.Diagnostics[0].Message)
}

func TestWriteJSONAndYAML(t *testing.T) {
	snap := fixture(t)

	var jbuf bytes.Buffer
	require.NoError(t, WriteJSON(&jbuf, snap))
	var fromJSON Snapshot
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &fromJSON))
	assert.Equal(t, snap.Bindings, fromJSON.Bindings)
	assert.Equal(t, snap.References, fromJSON.References)

	var ybuf bytes.Buffer
	require.NoError(t, WriteYAML(&ybuf, snap))
	assert.Contains(t, ybuf.String(), "qname: m.f.x")
	var fromYAML Snapshot
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &fromYAML))
	assert.Equal(t, snap.Diagnostics, fromYAML.Diagnostics)
	assert.Equal(t, snap.RunID, fromYAML.RunID)
}

func TestWriteFileUnknownFormat(t *testing.T) {
	err := WriteFile("xml", filepath.Join(t.TempDir(), "out.xml"), fixture(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown export format "xml"`)
}

func TestWriteSQLite(t *testing.T) {
	snap := fixture(t)
	path := filepath.Join(t.TempDir(), "index.db")
	require.NoError(t, WriteSQLite(path, snap))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	var typ string
	var refs int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT type, refs FROM bindings WHERE run_id = ? AND qname = ?`, snap.RunID, "m.f.x").Scan(&typ, &refs))
	assert.Equal(t, "{int | str}", typ)
	assert.Equal(t, 2, refs)

	var builtin bool
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT builtin FROM bindings WHERE run_id = ? AND qname = ?`, snap.RunID, "print").Scan(&builtin))
	assert.True(t, builtin)

	var target string
	require.NoError(t, db.QueryRowContext(ctx, `
		SELECT b.qname FROM refs r
		JOIN ref_targets t ON t.run_id = r.run_id AND t.ref_id = r.id
		JOIN bindings b ON b.run_id = t.run_id AND b.id = t.binding_id
		WHERE r.run_id = ? AND r.line = 4`, snap.RunID).Scan(&target))
	assert.Equal(t, "print", target)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diagnostics`).Scan(&n))
	assert.Equal(t, 1, n)

	// A second run goes into the same database under its own ID.
	snap.RunID = uuid.NewString()
	require.NoError(t, WriteSQLite(path, snap))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestExportProcessor(t *testing.T) {
	dir := t.TempDir()
	opts := config.DefaultOptions()
	opts.Export = []config.ExportSpec{
		{Format: "json", Path: filepath.Join(dir, "out.json")},
		{Format: "yaml", Path: filepath.Join(dir, "missing", "out.yaml")},
	}
	ctx := pipeline.NewPipelineContext(opts)
	ctx.Snapshot = fixture(t)

	ctx = (&ExportProcessor{}).Process(ctx)
	assert.FileExists(t, filepath.Join(dir, "out.json"))
	require.Len(t, ctx.Errors, 1)
	assert.Contains(t, ctx.Errors[0].Error(), "creating")
}
