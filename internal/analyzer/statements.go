package analyzer

import (
	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

// flow is the outcome of a statement: the union of values it may return
// and whether control can reach the next statement.
type flow struct {
	ret   typesystem.Type
	falls bool
}

var next = flow{falls: true}

func (a *Analyzer) joinRet(x, y typesystem.Type) typesystem.Type {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	}
	return a.u.Union(x, y)
}

// block analyzes a statement list in s. Statements after a return are still
// analyzed for their references but do not contribute to the outcome.
func (a *Analyzer) block(body []ast.Statement, s *state.State) flow {
	out := next
	for _, st := range body {
		f := a.stmt(st, s)
		if out.falls {
			out.ret = a.joinRet(out.ret, f.ret)
			out.falls = f.falls
		}
	}
	return out
}

func (a *Analyzer) stmt(node ast.Statement, s *state.State) flow {
	a.cursor = node.GetPos()
	switch n := node.(type) {
	case *ast.FunctionDef:
		a.defineFunction(n, s)
	case *ast.ClassDef:
		a.defineClass(n, s)
	case *ast.Return:
		var t typesystem.Type = a.u.Nil
		if n.Value != nil {
			t = a.expr(n.Value, s)
		}
		return flow{ret: t}
	case *ast.Assign:
		t := a.expr(n.Value, s)
		for _, target := range n.Targets {
			a.bind(target, t, s, a.assignKind(s))
		}
	case *ast.AugAssign:
		cur := a.expr(n.Target, s)
		t := a.u.BinaryOp(n.Op, cur, a.expr(n.Value, s))
		a.bind(n.Target, t, s, a.assignKind(s))
	case *ast.If:
		return a.ifStmt(n, s)
	case *ast.While:
		return a.whileStmt(n, s)
	case *ast.For:
		return a.forStmt(n, s)
	case *ast.Try:
		return a.tryStmt(n, s)
	case *ast.Import:
		a.importStmt(n, s)
	case *ast.ImportFrom:
		a.importFrom(n, s)
	case *ast.Raise:
		if n.Exc != nil {
			a.expr(n.Exc, s)
		}
		return flow{}
	case *ast.Pass, *ast.Break, *ast.Continue:
	case ast.Expression:
		a.expr(n, s)
	default:
		a.fatal(diagnostics.ErrF002, node, node)
	}
	return next
}

// assignKind is the binding kind of a plain assignment in s.
func (a *Analyzer) assignKind(s *state.State) binding.Kind {
	switch s.Kind {
	case state.Class, state.Instance:
		return binding.Attribute
	}
	return binding.Variable
}

// branches returns the states to analyze the two arms of a condition in.
// Conditions built from comparisons carry narrowed states.
func (a *Analyzer) branches(test ast.Expression, t typesystem.Type, s *state.State) (*state.State, *state.State) {
	switch test.(type) {
	case *ast.BinOp, *ast.UnaryOp:
		if b, ok := t.(*typesystem.Bool); ok {
			s1, ok1 := b.S1.(*state.State)
			s2, ok2 := b.S2.(*state.State)
			if ok1 && ok2 {
				return s1, s2
			}
		}
	}
	return s.Copy(), s.Copy()
}

func (a *Analyzer) ifStmt(n *ast.If, s *state.State) flow {
	t := a.expr(n.Test, s)
	s1, s2 := a.branches(n.Test, t, s)
	switch {
	case a.u.IsTrue(t):
		f := a.block(n.Body, s1)
		s.Overwrite(s1)
		return f
	case a.u.IsFalse(t):
		f := a.block(n.Orelse, s2)
		s.Overwrite(s2)
		return f
	}
	f1 := a.block(n.Body, s1)
	f2 := a.block(n.Orelse, s2)
	switch {
	case f1.falls && !f2.falls:
		s.Overwrite(s1)
	case f2.falls && !f1.falls:
		s.Overwrite(s2)
	default:
		s1.Merge(s2)
		s.Overwrite(s1)
	}
	return flow{ret: a.joinRet(f1.ret, f2.ret), falls: f1.falls || f2.falls}
}

// whileStmt analyzes the body once; the loop may run zero or more times,
// so the state after it is the merge of both.
func (a *Analyzer) whileStmt(n *ast.While, s *state.State) flow {
	t := a.expr(n.Test, s)
	if a.u.IsFalse(t) {
		return a.block(n.Orelse, s)
	}
	s1, _ := a.branches(n.Test, t, s)
	f := a.block(n.Body, s1)
	s.Merge(s1)
	fe := a.block(n.Orelse, s)
	return flow{ret: a.joinRet(f.ret, fe.ret), falls: true}
}

func (a *Analyzer) forStmt(n *ast.For, s *state.State) flow {
	iter := a.expr(n.Iter, s)
	s1 := s.Copy()
	a.bind(n.Target, a.elemType(iter), s1, binding.Scope)
	f := a.block(n.Body, s1)
	s.Merge(s1)
	fe := a.block(n.Orelse, s)
	return flow{ret: a.joinRet(f.ret, fe.ret), falls: true}
}

// tryStmt runs the body in s and each handler in a copy taken before the
// body, then merges the handlers back.
func (a *Analyzer) tryStmt(n *ast.Try, s *state.State) flow {
	before := s.Copy()
	f := a.block(n.Body, s)
	if f.falls {
		fe := a.block(n.Orelse, s)
		f = flow{ret: a.joinRet(f.ret, fe.ret), falls: fe.falls}
	}
	for _, h := range n.Handlers {
		hs := before.Copy()
		var exc typesystem.Type = a.u.Unknown
		if h.Type != nil {
			exc = a.exceptionValue(a.expr(h.Type, hs))
		}
		if h.Name != nil {
			hs.Insert(h.Name.ID, h.Name, exc, binding.Variable)
		}
		fh := a.block(h.Body, hs)
		s.Merge(hs)
		f = flow{ret: a.joinRet(f.ret, fh.ret), falls: f.falls || fh.falls}
	}
	if len(n.Finally) > 0 {
		ff := a.block(n.Finally, s)
		if !ff.falls {
			return flow{ret: a.joinRet(f.ret, ff.ret)}
		}
	}
	return f
}

// exceptionValue is the value an except clause binds for a handled type.
func (a *Analyzer) exceptionValue(t typesystem.Type) typesystem.Type {
	var out []typesystem.Type
	for _, m := range typesystem.Members(t) {
		switch x := m.(type) {
		case *typesystem.Class:
			out = append(out, a.canon(x))
		case *typesystem.Tuple:
			for _, e := range x.Elems {
				out = append(out, a.exceptionValue(e))
			}
		default:
			out = append(out, a.u.Unknown)
		}
	}
	return a.u.UnionAll(out...)
}
