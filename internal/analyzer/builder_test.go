package analyzer

import (
	"math/big"

	"github.com/funvibe/funsonar/internal/ast"
)

// builder makes syntax trees for tests. Every node gets its own line so
// diagnostics and bindings never share a position.
type builder struct {
	file string
	line int
}

func newBuilder(file string) *builder {
	return &builder{file: file}
}

func (b *builder) pos() ast.Pos {
	b.line++
	return ast.Pos{File: b.file, Line: b.line, Col: 1, Start: b.line * 100, End: b.line*100 + 10}
}

func (b *builder) module(name string, body ...ast.Statement) *ast.Module {
	return &ast.Module{Pos: ast.Pos{File: b.file}, Name: name, Body: body}
}

func (b *builder) name(id string) *ast.Name { return &ast.Name{Pos: b.pos(), ID: id} }

func (b *builder) int(v int64) *ast.IntLit { return &ast.IntLit{Pos: b.pos(), Value: big.NewInt(v)} }

func (b *builder) str(v string) *ast.StrLit { return &ast.StrLit{Pos: b.pos(), Value: v} }

func (b *builder) list(elts ...ast.Expression) *ast.ListLit {
	return &ast.ListLit{Pos: b.pos(), Elts: elts}
}

func (b *builder) tuple(elts ...ast.Expression) *ast.TupleLit {
	return &ast.TupleLit{Pos: b.pos(), Elts: elts}
}

func (b *builder) assign(target string, value ast.Expression) *ast.Assign {
	return &ast.Assign{Pos: b.pos(), Targets: []ast.Expression{b.name(target)}, Value: value}
}

func (b *builder) assignTo(target ast.Expression, value ast.Expression) *ast.Assign {
	return &ast.Assign{Pos: b.pos(), Targets: []ast.Expression{target}, Value: value}
}

func (b *builder) call(fn ast.Expression, args ...ast.Expression) *ast.Call {
	return &ast.Call{Pos: b.pos(), Func: fn, Args: args}
}

func (b *builder) attr(target ast.Expression, name string) *ast.Attribute {
	return &ast.Attribute{Pos: b.pos(), Target: target, Attr: b.name(name)}
}

func (b *builder) binop(op ast.Op, l, r ast.Expression) *ast.BinOp {
	return &ast.BinOp{Pos: b.pos(), Op: op, Left: l, Right: r}
}

func (b *builder) ret(v ast.Expression) *ast.Return { return &ast.Return{Pos: b.pos(), Value: v} }

func (b *builder) def(name string, params []string, body ...ast.Statement) *ast.FunctionDef {
	fd := &ast.FunctionDef{Pos: b.pos(), Name: b.name(name), Body: body}
	for _, p := range params {
		fd.Params = append(fd.Params, b.name(p))
	}
	return fd
}

func (b *builder) class(name string, bases []ast.Expression, body ...ast.Statement) *ast.ClassDef {
	return &ast.ClassDef{Pos: b.pos(), Name: b.name(name), Bases: bases, Body: body}
}

func (b *builder) ifStmt(test ast.Expression, body, orelse []ast.Statement) *ast.If {
	return &ast.If{Pos: b.pos(), Test: test, Body: body, Orelse: orelse}
}

func (b *builder) importNames(dotted ...string) *ast.Import {
	imp := &ast.Import{Pos: b.pos()}
	for _, d := range dotted {
		alias := &ast.Alias{Pos: b.pos()}
		for _, seg := range splitDots(d) {
			alias.Name = append(alias.Name, b.name(seg))
		}
		imp.Names = append(imp.Names, alias)
	}
	return imp
}

func (b *builder) importFrom(module string, names ...string) *ast.ImportFrom {
	imp := &ast.ImportFrom{Pos: b.pos(), Module: module}
	for _, n := range names {
		imp.Names = append(imp.Names, &ast.Alias{Pos: b.pos(), Name: []*ast.Name{b.name(n)}})
	}
	return imp
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// mapLoader serves modules from memory.
type mapLoader map[string]*ast.Module

func (m mapLoader) LoadModule(name string) (*ast.Module, error) {
	return m[name], nil
}
