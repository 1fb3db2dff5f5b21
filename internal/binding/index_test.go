package binding

import (
	"testing"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/typesystem"
)

func TestPutRefFirstResolutionWins(t *testing.T) {
	ix := NewIndex()
	u := typesystem.NewUniverse(nil)
	def1 := New("x", &ast.Name{ID: "x", Pos: ast.Pos{File: "a.py", Start: 0, End: 1}}, u.IntValue(1), Variable)
	def2 := New("x", &ast.Name{ID: "x", Pos: ast.Pos{File: "a.py", Start: 10, End: 11}}, u.Str, Variable)
	ix.Register(def1)
	ix.Register(def2)

	use := &ast.Name{ID: "x", Pos: ast.Pos{File: "a.py", Start: 20, End: 21}}
	if !ix.PutRef(use, []*Binding{def1}) {
		t.Fatal("first PutRef rejected")
	}
	if !ix.PutRef(use, []*Binding{def1}) {
		t.Error("recording the same candidates again should be accepted")
	}
	if ix.PutRef(use, []*Binding{def1, def2}) {
		t.Error("a different candidate set must be rejected")
	}

	got, ok := ix.Ref(use)
	if !ok || len(got) != 1 || got[0] != def1 {
		t.Errorf("Ref = %v, want [def1]", got)
	}
	if len(def1.Refs()) != 1 || len(def2.Refs()) != 0 {
		t.Errorf("refs: def1=%d def2=%d", len(def1.Refs()), len(def2.Refs()))
	}
	if ix.Rejected() != 1 {
		t.Errorf("Rejected = %d", ix.Rejected())
	}
	if len(ix.References()) != 1 || len(ix.Bindings()) != 2 {
		t.Errorf("references=%d bindings=%d", len(ix.References()), len(ix.Bindings()))
	}
}

func TestBuiltinBinding(t *testing.T) {
	b := New("len", &ast.Url{URL: "https://docs.example/len"}, nil, Function)
	if !b.IsBuiltin() || b.File() != "" {
		t.Errorf("builtin binding = %s", b)
	}
	if b.Kind.String() != "FUNCTION" || ClassMethod.String() != "CLASS_METHOD" {
		t.Errorf("kind names: %s %s", b.Kind, ClassMethod)
	}
}

func TestWiden(t *testing.T) {
	u := typesystem.NewUniverse(nil)
	b := New("n", &ast.Name{ID: "n"}, u.IntValue(1), Variable)
	b.Widen(u, u.IntValue(4))
	if r := b.Type.(*typesystem.Int).Range; r.Lower.Int64() != 1 || r.Upper.Int64() != 4 {
		t.Errorf("widened to %s", r)
	}
}
