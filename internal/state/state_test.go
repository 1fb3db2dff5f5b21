package state

import (
	"testing"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/typesystem"
)

func name(id string) *ast.Name { return &ast.Name{ID: id} }

func TestSiblingScopesDoNotSeeEachOther(t *testing.T) {
	a := NewArena(binding.NewIndex())
	u := a.Universe()
	mod := a.New(nil, Module)
	mod.Path = "m"
	mod.Insert("shared", name("shared"), u.Nil, binding.Variable)

	f := a.New(mod, Function)
	f.Path = mod.ExtendPath("f")
	g := a.New(mod, Function)
	g.Path = mod.ExtendPath("g")
	f.Insert("local", name("local"), u.IntValue(1), binding.Variable)

	if bs := g.Lookup("local"); bs != nil {
		t.Errorf("sibling scope sees %v", bs)
	}
	if bs := mod.Lookup("local"); bs != nil {
		t.Errorf("parent scope sees %v", bs)
	}
	if bs := f.Lookup("local"); len(bs) != 1 || bs[0].QName != "m.f.local" {
		t.Errorf("own lookup = %v", bs)
	}
	if bs := g.Lookup("shared"); len(bs) != 1 {
		t.Errorf("both siblings should see the parent's names, got %v", bs)
	}
}

func TestShadowingHidesOuterBindings(t *testing.T) {
	a := NewArena(binding.NewIndex())
	u := a.Universe()
	outer := a.New(nil, Module)
	inner := a.New(outer, Function)
	outer.Insert("x", name("x"), u.Str, binding.Variable)
	inner.Insert("x", name("x"), u.Nil, binding.Variable)

	bs := inner.Lookup("x")
	if len(bs) != 1 || !typesystem.IsNil(bs[0].Type) {
		t.Errorf("inner lookup = %v, want only the inner binding", bs)
	}
}

func TestUpdateAppends(t *testing.T) {
	ix := binding.NewIndex()
	a := NewArena(ix)
	u := a.Universe()
	s := a.New(nil, Module)
	b1 := s.Insert("x", name("x"), u.IntValue(1), binding.Variable)
	s.Insert("x", name("x"), u.Str, binding.Variable)
	s.Update("x", b1)

	if got := len(s.Lookup("x")); got != 2 {
		t.Fatalf("x has %d bindings, want 2", got)
	}
	if _, ok := s.LookupType("x").(*typesystem.Union); !ok {
		t.Errorf("LookupType = %s, want a union", s.LookupType("x"))
	}
	if len(ix.Bindings()) != 2 {
		t.Errorf("index holds %d bindings", len(ix.Bindings()))
	}
}

func TestExtendPath(t *testing.T) {
	a := NewArena(nil)
	root := a.New(nil, Global)
	if got := root.ExtendPath("top"); got != "top" {
		t.Errorf("root ExtendPath = %q", got)
	}
	root.Path = "pkg.mod"
	if got := root.ExtendPath("C"); got != "pkg.mod.C" {
		t.Errorf("ExtendPath = %q", got)
	}
}

func TestLookupAttrFollowsSuper(t *testing.T) {
	a := NewArena(nil)
	u := a.Universe()
	base := a.New(nil, Class)
	derived := a.New(nil, Class)
	derived.Super = base
	base.Insert("greet", name("greet"), u.Str, binding.Method)
	base.Insert("size", name("size"), u.Int, binding.Attribute)
	derived.Insert("size", name("size"), u.Nil, binding.Attribute)

	if bs := derived.LookupAttr("greet"); len(bs) != 1 {
		t.Errorf("inherited attribute not found")
	}
	bs := derived.LookupAttr("size")
	if len(bs) != 1 || !typesystem.IsNil(bs[0].Type) {
		t.Errorf("own attribute should win, got %v", bs)
	}
	if derived.Lookup("greet") != nil {
		t.Errorf("Lookup must not follow super edges")
	}

	base.Super = derived
	if bs := derived.LookupAttr("missing"); bs != nil {
		t.Errorf("cyclic super chain returned %v", bs)
	}
	if got := derived.AttrNames(); len(got) != 2 {
		t.Errorf("AttrNames = %v", got)
	}
}

func TestCopyMergeAndRefine(t *testing.T) {
	a := NewArena(nil)
	u := a.Universe()
	s := a.New(nil, Module)
	s.Insert("n", name("n"), u.Int, binding.Variable)

	s1, s2 := s.Copy(), s.Copy()
	s1.Refine("n", u.IntValue(1))
	s2.Refine("n", u.IntValue(5))
	s1.Insert("only1", name("only1"), u.Str, binding.Variable)

	if s.Lookup("only1") != nil {
		t.Fatal("copy leaked a binding into the original")
	}
	if got := s1.LookupType("n"); !u.Equal(got, u.IntValue(1)) {
		t.Errorf("refined type = %s", got)
	}

	s1.Merge(s2)
	s.Overwrite(s1)
	u.Debug = true
	if got := u.Print(s.LookupType("n")); got != "int[1..5]" {
		t.Errorf("merged refinement = %s", got)
	}
	if s.Lookup("only1") == nil {
		t.Error("binding from a branch should survive the merge")
	}

	s.Insert("n", name("n"), u.Str, binding.Variable)
	if _, ok := s.LookupType("n").(*typesystem.Union); !ok {
		t.Errorf("assignment should drop the refinement, got %s", s.LookupType("n"))
	}
}

func TestArenaHandles(t *testing.T) {
	a := NewArena(nil)
	s := a.New(nil, Instance)
	s.Insert("b", name("b"), a.Universe().Nil, binding.Attribute)
	s.Insert("a", name("a"), a.Universe().Str, binding.Attribute)

	if a.Get(s.Ref()) != s || a.Get(typesystem.NoTable) != nil || a.Get(99) != nil {
		t.Error("handle resolution broken")
	}
	if names := a.Names(s.Ref()); len(names) != 2 || names[0] != "a" {
		t.Errorf("Names = %v", names)
	}
	if ts := a.Types(s.Ref(), "a"); len(ts) != 1 {
		t.Errorf("Types = %v", ts)
	}
}
