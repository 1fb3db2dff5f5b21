// Package ast holds the syntax tree the inferencer consumes. Trees are
// produced by an external parser and read from dump files with Decode.
package ast

import "fmt"

// Pos is a source span. Start and End are byte offsets.
type Pos struct {
	File  string
	Start int
	End   int
	Line  int
	Col   int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Node is the base interface for all AST nodes.
type Node interface {
	GetPos() Pos
}

// Statement is a Node that can appear in a block body.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that evaluates to a value.
// Every expression may also stand alone as a statement.
type Expression interface {
	Statement
	expressionNode()
}

// Module is the root node of every dump.
type Module struct {
	Pos
	Name string
	Body []Statement
	Doc  string
}

func (m *Module) GetPos() Pos { return m.Pos }

// Url stands in for the definition site of builtins, which have no source.
type Url struct {
	Pos
	URL string
}

func (u *Url) GetPos() Pos { return u.Pos }

// FunctionDef covers both def statements and lambdas.
// A lambda's body is a single Return.
type FunctionDef struct {
	Pos
	Name       *Name
	Params     []*Name
	Defaults   []Expression // aligned to the last len(Defaults) params
	Vararg     *Name
	Kwarg      *Name
	Decorators []Expression
	Body       []Statement
	IsLambda   bool
	Doc        string
}

func (fd *FunctionDef) GetPos() Pos     { return fd.Pos }
func (fd *FunctionDef) statementNode()  {}
func (fd *FunctionDef) expressionNode() {}

// HasDecorator reports whether the definition carries a bare @name decorator.
func (fd *FunctionDef) HasDecorator(name string) bool {
	for _, d := range fd.Decorators {
		if n, ok := d.(*Name); ok && n.ID == name {
			return true
		}
	}
	return false
}

type ClassDef struct {
	Pos
	Name  *Name
	Bases []Expression
	Body  []Statement
	Doc   string
}

func (cd *ClassDef) GetPos() Pos    { return cd.Pos }
func (cd *ClassDef) statementNode() {}

type Return struct {
	Pos
	Value Expression // nil for a bare return
}

func (r *Return) GetPos() Pos    { return r.Pos }
func (r *Return) statementNode() {}

// Assign binds Value to every target: a = b = value.
type Assign struct {
	Pos
	Targets []Expression
	Value   Expression
}

func (a *Assign) GetPos() Pos    { return a.Pos }
func (a *Assign) statementNode() {}

type AugAssign struct {
	Pos
	Target Expression
	Op     Op
	Value  Expression
}

func (a *AugAssign) GetPos() Pos    { return a.Pos }
func (a *AugAssign) statementNode() {}

type If struct {
	Pos
	Test   Expression
	Body   []Statement
	Orelse []Statement
}

func (i *If) GetPos() Pos    { return i.Pos }
func (i *If) statementNode() {}

type While struct {
	Pos
	Test   Expression
	Body   []Statement
	Orelse []Statement
}

func (w *While) GetPos() Pos    { return w.Pos }
func (w *While) statementNode() {}

type For struct {
	Pos
	Target Expression
	Iter   Expression
	Body   []Statement
	Orelse []Statement
}

func (f *For) GetPos() Pos    { return f.Pos }
func (f *For) statementNode() {}

// Import is `import a.b as c`.
type Import struct {
	Pos
	Names []*Alias
}

func (i *Import) GetPos() Pos    { return i.Pos }
func (i *Import) statementNode() {}

// ImportFrom is `from module import a as b`. A single "*" alias imports everything.
type ImportFrom struct {
	Pos
	Module string
	Names  []*Alias
}

func (i *ImportFrom) GetPos() Pos    { return i.Pos }
func (i *ImportFrom) statementNode() {}

type Alias struct {
	Pos
	Name   []*Name // dotted path segments
	AsName *Name
}

func (a *Alias) GetPos() Pos { return a.Pos }

// Dotted joins the path segments with dots.
func (a *Alias) Dotted() string {
	s := ""
	for i, n := range a.Name {
		if i > 0 {
			s += "."
		}
		s += n.ID
	}
	return s
}

type Pass struct{ Pos }

func (p *Pass) GetPos() Pos    { return p.Pos }
func (p *Pass) statementNode() {}

type Break struct{ Pos }

func (b *Break) GetPos() Pos    { return b.Pos }
func (b *Break) statementNode() {}

type Continue struct{ Pos }

func (c *Continue) GetPos() Pos    { return c.Pos }
func (c *Continue) statementNode() {}

type Raise struct {
	Pos
	Exc Expression
}

func (r *Raise) GetPos() Pos    { return r.Pos }
func (r *Raise) statementNode() {}

type Try struct {
	Pos
	Body     []Statement
	Handlers []*Handler
	Orelse   []Statement
	Finally  []Statement
}

func (t *Try) GetPos() Pos    { return t.Pos }
func (t *Try) statementNode() {}

// Handler is one except clause. Type and Name are optional.
type Handler struct {
	Pos
	Type Expression
	Name *Name
	Body []Statement
}

func (h *Handler) GetPos() Pos { return h.Pos }
