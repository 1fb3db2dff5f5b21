package typesystem

import (
	"sort"
	"strings"
	"testing"

	"github.com/funvibe/funsonar/internal/ast"
)

type fakeTables map[TableRef]map[string][]Type

func (f fakeTables) Names(ref TableRef) []string {
	var out []string
	for name := range f[ref] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (f fakeTables) Types(ref TableRef, name string) []Type {
	return f[ref][name]
}

func (f fakeTables) set(ref TableRef, name string, t Type) {
	if f[ref] == nil {
		f[ref] = make(map[string][]Type)
	}
	f[ref][name] = append(f[ref][name], t)
}

func newTestUniverse() (*Universe, fakeTables) {
	tables := fakeTables{}
	return NewUniverse(tables), tables
}

func TestUnionFlattening(t *testing.T) {
	u, _ := newTestUniverse()
	a, b, c := u.Str, u.Nil, &Class{Name: "C"}

	nested := u.Union(u.Union(a, b), c)
	flat := u.UnionAll(a, b, c)
	if !u.Equal(nested, flat) {
		t.Errorf("union(union(A,B),C) = %s, union(A,B,C) = %s", nested, flat)
	}
	un, ok := nested.(*Union)
	if !ok || len(un.Members) != 3 {
		t.Fatalf("expected a flat union of 3 members, got %s", nested)
	}
	for _, m := range un.Members {
		if _, nested := m.(*Union); nested {
			t.Errorf("member %s is itself a union", m)
		}
	}
}

func TestUnionCollapse(t *testing.T) {
	u, _ := newTestUniverse()
	a := &Class{Name: "A"}
	if got := u.Union(a, a); got != Type(a) {
		t.Errorf("union(A,A) = %s (%T), want A itself", got, got)
	}
	if got := u.UnionAll(u.Nil, u.Nil, u.Nil); got != Type(u.Nil) {
		t.Errorf("repeated members should collapse, got %s", got)
	}
	if got := u.Union(u.Unknown, a); got != Type(a) {
		t.Errorf("unknown should be absorbed, got %s", got)
	}
	if got := u.UnionAll(); !IsUnknown(got) {
		t.Errorf("empty union = %s, want ?", got)
	}
}

func TestUnionJoinsScalars(t *testing.T) {
	u, _ := newTestUniverse()
	u.Debug = true
	tests := []struct {
		name string
		got  Type
		want string
	}{
		{"int hull", u.Union(u.IntValue(1), u.IntValue(5)), "int[1..5]"},
		{"int open side", u.Union(u.IntValue(1), u.Int), "int[-inf..+inf]"},
		{"float hull", u.Union(u.FloatValue(0.5), u.FloatValue(2)), "float[0.5..2]"},
		{"bools", u.Union(u.True, u.False), "bool"},
		{"strings", u.Union(u.StrValue("a"), u.StrValue("b")), "str"},
		{"same string", u.Union(u.StrValue("a"), u.StrValue("a")), `str("a")`},
		{"lists", u.Union(u.NewList(u.IntValue(1)), u.NewList(u.StrValue("x"))), `[{int(1) | str("x")}]`},
		{"mixed", u.UnionAll(u.IntValue(1), u.Nil, u.IntValue(3)), "{int[1..3] | nil}"},
	}
	for _, tt := range tests {
		if got := u.Print(tt.got); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestInstanceEquality(t *testing.T) {
	u, tables := newTestUniverse()
	cls := &Class{Name: "Point", Table: 1}
	a := &Instance{Class: cls, Table: 2}
	b := &Instance{Class: cls, Table: 3}
	tables.set(2, "x", u.IntValue(1))
	tables.set(3, "x", u.StrValue("one"))

	if !u.Equal(a, b) {
		t.Errorf("instances with the same attribute names must be equal regardless of types")
	}

	tables.set(3, "y", u.Nil)
	if u.Equal(a, b) {
		t.Errorf("instances with different attribute names must differ")
	}

	other := &Instance{Class: &Class{Name: "Point", Table: 4}, Table: 5}
	tables.set(5, "x", u.IntValue(1))
	if u.Equal(a, other) {
		t.Errorf("instances of distinct classes must differ")
	}
}

func TestEqualityRules(t *testing.T) {
	u, _ := newTestUniverse()
	def := &ast.FunctionDef{}
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"module same file", &Module{Name: "a", File: "a.py"}, &Module{Name: "b", File: "a.py"}, true},
		{"builtin modules by identity", &Module{Name: "m"}, &Module{Name: "m"}, false},
		{"classes by identity", &Class{Name: "C"}, &Class{Name: "C"}, false},
		{"funcs by definition", NewFunc("f", "f", def, 1), NewFunc("f", "f", def, 2), true},
		{"builtin funcs by identity", NewBuiltinFunc("len", "len", u.Int), NewBuiltinFunc("len", "len", u.Int), false},
		{"tuples", u.NewTuple(u.Nil, u.IntValue(2)), u.NewTuple(u.Nil, u.IntValue(2)), true},
		{"tuple length", u.NewTuple(u.Nil), u.NewTuple(u.Nil, u.Nil), false},
		{"unions as sets", u.UnionAll(u.Nil, u.Str), u.UnionAll(u.Str, u.Nil), true},
		{"int ranges", u.IntValue(1), u.IntValue(2), false},
	}
	for _, tt := range tests {
		if got := u.Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEqualCyclicLists(t *testing.T) {
	u, _ := newTestUniverse()
	a := &List{}
	a.Elem = a
	b := &List{}
	b.Elem = b
	if !u.Equal(a, b) {
		t.Error("self-referential lists of the same shape should be equal")
	}
	if !strings.Contains(u.Print(a), "#1#") {
		t.Errorf("cyclic list printed as %s", u.Print(a))
	}
}

func TestPrinterSelfReturningMethod(t *testing.T) {
	u, tables := newTestUniverse()
	cls := &Class{Name: "C", Table: 1}
	def := &ast.FunctionDef{Name: &ast.Name{ID: "m"}}
	m := NewFunc("m", "C.m", def, 1)
	m.Cls = cls
	tables.set(1, "m", m)

	receiver := &Instance{Class: cls, Table: 2}
	result := &Instance{Class: cls, Table: 3}
	tables.set(2, "m", m)
	tables.set(3, "m", m)
	u.AddArrow(m, u.NewTuple(receiver), result)

	out := u.Print(receiver)
	if got := strings.Count(out, "#1#"); got != 1 {
		t.Fatalf("printed %q: %d back-references, want exactly 1", out, got)
	}
	if out != "#1=C{m: () -> #1#}" {
		t.Errorf("printed %q", out)
	}
}

func TestPrinterShapes(t *testing.T) {
	u, _ := newTestUniverse()
	f := NewBuiltinFunc("len", "len", u.Int)
	tests := []struct {
		t    Type
		want string
	}{
		{u.Unknown, "?"},
		{u.NewDict(u.Str, u.NewList(u.Float)), "{str: [float]}"},
		{u.NewTuple(u.Nil, u.True), "(nil, bool)"},
		{&Class{Name: "K"}, "<K>"},
		{&Module{Name: "os"}, "<module os>"},
		{f, "(...) -> int"},
		{NewFunc("g", "g", &ast.FunctionDef{}, 1), "? -> ?"},
		{&Instance{Class: &Class{Name: "Bare"}}, "Bare"},
	}
	for _, tt := range tests {
		if got := u.Print(tt.t); got != tt.want {
			t.Errorf("Print = %q, want %q", got, tt.want)
		}
	}
}

func TestTruthiness(t *testing.T) {
	u, _ := newTestUniverse()
	tests := []struct {
		name                string
		t                   Type
		wantTrue, wantFalse bool
	}{
		{"nil", u.Nil, false, true},
		{"false", u.False, false, true},
		{"true", u.True, true, false},
		{"undecided", u.Bool, false, false},
		{"zero", u.IntValue(0), false, true},
		{"nonzero", u.IntValue(3), true, false},
		{"unbounded", u.Int, false, false},
		{"float zero", u.FloatValue(0), false, true},
		{"string", u.Str, true, false},
		{"unknown", u.Unknown, false, false},
		{"mixed union", u.UnionAll(u.Nil, u.Str), false, false},
		{"instance", &Instance{Class: &Class{Name: "C"}}, true, false},
	}
	for _, tt := range tests {
		if got := u.IsTrue(tt.t); got != tt.wantTrue {
			t.Errorf("%s: IsTrue = %v", tt.name, got)
		}
		if got := u.IsFalse(tt.t); got != tt.wantFalse {
			t.Errorf("%s: IsFalse = %v", tt.name, got)
		}
	}
}

func TestBinaryOpDispatch(t *testing.T) {
	u, _ := newTestUniverse()
	u.Debug = true
	tests := []struct {
		name string
		got  Type
		want string
	}{
		{"int add", u.BinaryOp(ast.OpAdd, u.IntValue(1), u.IntValue(2)), "int(3)"},
		{"int float add", u.BinaryOp(ast.OpAdd, u.IntValue(1), u.FloatValue(0.5)), "float(1.5)"},
		{"int div", u.BinaryOp(ast.OpDiv, u.IntValue(7), u.IntValue(2)), "int(3)"},
		{"mod", u.BinaryOp(ast.OpMod, u.Int, u.IntValue(4)), "int[0..3]"},
		{"str concat", u.BinaryOp(ast.OpAdd, u.StrValue("a"), u.StrValue("b")), `str("ab")`},
		{"str format", u.BinaryOp(ast.OpMod, u.Str, u.Int), "str"},
		{"lt decided", u.BinaryOp(ast.OpLt, u.IntValue(1), u.IntValue(2)), "bool(true)"},
		{"ge decided", u.BinaryOp(ast.OpGtE, u.IntValue(1), u.IntValue(2)), "bool(false)"},
		{"lt undecided", u.BinaryOp(ast.OpLt, u.Int, u.IntValue(2)), "bool"},
		{"eq", u.BinaryOp(ast.OpEq, u.IntValue(2), u.IntValue(2)), "bool(true)"},
		{"is nil", u.BinaryOp(ast.OpIs, u.Nil, u.Nil), "bool(true)"},
		{"is not nil", u.BinaryOp(ast.OpIsNot, u.Str, u.Nil), "bool(true)"},
		{"union operand", u.BinaryOp(ast.OpAdd, u.UnionAll(u.IntValue(1), u.FloatValue(1)), u.IntValue(1)), "{int(2) | float(2)}"},
		{"unsupported", u.BinaryOp(ast.OpSub, u.Str, u.Nil), "?"},
		{"list concat", u.BinaryOp(ast.OpAdd, u.NewList(u.Nil), u.NewList(u.Str)), "[{nil | str}]"},
		{"tuple concat", u.BinaryOp(ast.OpAdd, u.NewTuple(u.Nil), u.NewTuple(u.Str)), "(nil, str)"},
	}
	for _, tt := range tests {
		if got := u.Print(tt.got); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestUnaryOps(t *testing.T) {
	u, _ := newTestUniverse()
	u.Debug = true
	if got := u.Print(u.UnaryOp(ast.OpNeg, u.IntValue(4))); got != "int(-4)" {
		t.Errorf("neg = %s", got)
	}
	if got := u.UnaryOp(ast.OpNot, u.Nil); got != Type(u.True) {
		t.Errorf("not nil = %s", got)
	}
	b := u.Branches("yes", "no")
	swapped := u.UnaryOp(ast.OpNot, b).(*Bool)
	if swapped.S1 != "no" || swapped.S2 != "yes" {
		t.Errorf("not should swap branch states, got %v %v", swapped.S1, swapped.S2)
	}
}

func TestArrowCache(t *testing.T) {
	u, _ := newTestUniverse()
	f := NewFunc("f", "f", &ast.FunctionDef{}, 1)
	if got := u.ReturnType(f); !IsUnknown(got) {
		t.Errorf("uncalled function returns %s", got)
	}
	u.AddArrow(f, u.NewTuple(u.IntValue(1)), u.Str)
	u.AddArrow(f, u.NewTuple(u.IntValue(1)), u.Nil)
	u.AddArrow(f, u.NewTuple(u.Str), u.Str)
	if len(f.Arrows()) != 2 {
		t.Fatalf("arrows = %d, want 2", len(f.Arrows()))
	}
	to, ok := u.CachedResult(f, u.NewTuple(u.IntValue(1)))
	if !ok || !u.Equal(to, u.UnionAll(u.Str, u.Nil)) {
		t.Errorf("cached = %v %v", to, ok)
	}
	bound := f.Bind(&Instance{Class: &Class{Name: "C"}})
	if len(bound.Arrows()) != 2 {
		t.Error("bound method should share the arrow cache")
	}
}

func TestMustNarrowingPanics(t *testing.T) {
	u, _ := newTestUniverse()
	defer func() {
		r := recover()
		if _, ok := r.(*NarrowingError); !ok {
			t.Fatalf("recovered %v, want *NarrowingError", r)
		}
	}()
	MustClass(u.Nil)
}
