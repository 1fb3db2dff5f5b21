package analyzer

import (
	"math/big"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/numeric"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

func (a *Analyzer) expr(node ast.Expression, s *state.State) typesystem.Type {
	a.cursor = node.GetPos()
	switch n := node.(type) {
	case *ast.Name:
		return a.name(n, s)
	case *ast.Attribute:
		return a.attribute(n, s)
	case *ast.Call:
		return a.call(n, s)
	case *ast.FunctionDef:
		return a.defineFunction(n, s)
	case *ast.BinOp:
		if n.Op.IsComparison() {
			return a.compare(n, s)
		}
		return a.u.BinaryOp(n.Op, a.expr(n.Left, s), a.expr(n.Right, s))
	case *ast.BoolOp:
		return a.boolOp(n, s)
	case *ast.UnaryOp:
		return a.u.UnaryOp(n.Op, a.expr(n.Operand, s))
	case *ast.Subscript:
		return a.subscript(n, s)
	case *ast.IntLit:
		return a.u.IntOf(n.Value)
	case *ast.FloatLit:
		return a.u.FloatValue(n.Value)
	case *ast.StrLit:
		return a.u.StrValue(n.Value)
	case *ast.BoolLit:
		return a.u.BoolOf(n.Value)
	case *ast.NilLit:
		return a.u.Nil
	case *ast.ListLit:
		return a.u.NewList(a.exprs(n.Elts, s)...)
	case *ast.TupleLit:
		return a.u.NewTuple(a.exprs(n.Elts, s)...)
	case *ast.DictLit:
		keys, values := a.exprs(n.Keys, s), a.exprs(n.Values, s)
		if len(keys) == 0 {
			return a.u.NewDict(a.u.Unknown, a.u.Unknown)
		}
		return a.u.NewDict(a.u.UnionAll(keys...), a.u.UnionAll(values...))
	}
	a.fatal(diagnostics.ErrF002, node, node)
	return nil
}

func (a *Analyzer) exprs(nodes []ast.Expression, s *state.State) []typesystem.Type {
	out := make([]typesystem.Type, len(nodes))
	for i, n := range nodes {
		out[i] = a.expr(n, s)
	}
	return out
}

// name resolves a use of an identifier and records the reference.
func (a *Analyzer) name(n *ast.Name, s *state.State) typesystem.Type {
	bs := s.Lookup(n.ID)
	if len(bs) == 0 {
		a.warn(diagnostics.ErrW003, n, n.ID)
		return a.u.Unknown
	}
	a.Index.PutRef(n, bs)
	if t := s.LookupType(n.ID); t != nil {
		return t
	}
	return a.arena.TypeOf(bs)
}

func (a *Analyzer) attribute(n *ast.Attribute, s *state.State) typesystem.Type {
	target := a.expr(n.Target, s)
	var out []typesystem.Type
	var found []*binding.Binding
	missing := false
	for _, m := range typesystem.Members(target) {
		if typesystem.IsUnknown(m) {
			out = append(out, a.u.Unknown)
			continue
		}
		t, bs := a.getAttr(m, n.Attr.ID)
		if t == nil {
			missing = true
			continue
		}
		out = append(out, t)
		found = append(found, bs...)
	}
	if len(found) > 0 {
		a.Index.PutRef(n.Attr, found)
	}
	if len(out) == 0 {
		if missing {
			a.warn(diagnostics.ErrW004, n.Attr, n.Attr.ID, a.u.Print(target))
		}
		return a.u.Unknown
	}
	return a.u.UnionAll(out...)
}

// getAttr looks name up on one non-union value. Methods found through an
// instance or a builtin value come back bound to it. A nil type means the
// attribute does not exist.
func (a *Analyzer) getAttr(t typesystem.Type, name string) (typesystem.Type, []*binding.Binding) {
	var table *state.State
	var self typesystem.Type
	local := false
	switch x := t.(type) {
	case *typesystem.Instance:
		table, self = a.arena.Get(x.Table), x
	case *typesystem.Class:
		table = a.arena.Get(x.Table)
	case *typesystem.Module:
		table, local = a.arena.Get(x.Table), true
	default:
		if cls := a.builtins.classFor(t); cls != nil {
			table, self = a.arena.Get(cls.Table), t
		}
	}
	if table == nil {
		return nil, nil
	}
	var bs []*binding.Binding
	if local {
		bs = table.LookupLocal(name)
	} else {
		bs = table.LookupAttr(name)
	}
	if len(bs) == 0 {
		return nil, nil
	}
	var out []typesystem.Type
	for _, b := range bs {
		out = append(out, a.bindMethod(b.Type, t, self))
	}
	return a.u.UnionAll(out...), bs
}

// bindMethod binds functions found on a receiver: instance methods to the
// instance, class methods to the class.
func (a *Analyzer) bindMethod(t, receiver, self typesystem.Type) typesystem.Type {
	var out []typesystem.Type
	for _, m := range typesystem.Members(t) {
		f, ok := m.(*typesystem.Func)
		switch {
		case !ok:
			out = append(out, m)
		case f.IsMethod() && self != nil:
			out = append(out, f.Bind(self))
		case isClassMethod(f):
			out = append(out, f.Bind(classOf(receiver)))
		default:
			out = append(out, f)
		}
	}
	return a.u.UnionAll(out...)
}

func classOf(t typesystem.Type) typesystem.Type {
	if inst, ok := t.(*typesystem.Instance); ok {
		return inst.Class
	}
	return t
}

func (a *Analyzer) subscript(n *ast.Subscript, s *state.State) typesystem.Type {
	v := a.expr(n.Value, s)
	idx := a.expr(n.Index, s)
	var out []typesystem.Type
	for _, m := range typesystem.Members(v) {
		out = append(out, a.item(m, idx, n))
	}
	return a.u.UnionAll(out...)
}

func (a *Analyzer) item(v, idx typesystem.Type, n ast.Node) typesystem.Type {
	switch x := v.(type) {
	case *typesystem.List:
		if i, ok := index(idx, len(x.Positional)); ok {
			return x.Positional[i]
		}
		return x.Elem
	case *typesystem.Tuple:
		if i, ok := index(idx, len(x.Elems)); ok {
			return x.Elems[i]
		}
		return a.u.UnionAll(x.Elems...)
	case *typesystem.Dict:
		return x.Value
	case *typesystem.Str:
		return a.u.Str
	case *typesystem.Instance:
		if t, _ := a.getAttr(x, "__getitem__"); t != nil {
			return a.applyAll(t, callArgs{pos: []typesystem.Type{idx}}, n)
		}
	}
	return a.u.Unknown
}

// index resolves a statically known subscript into [0, n).
func index(idx typesystem.Type, n int) (int, bool) {
	it, ok := idx.(*typesystem.Int)
	if !ok || !it.Range.IsActual() || n == 0 {
		return 0, false
	}
	if !it.Range.Lower.IsInt64() {
		return 0, false
	}
	i := it.Range.Lower.Int64()
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}

// boolOp follows `and`/`or` semantics: the result is one of the operands.
// Operands that are all booleans combine by truth value.
func (a *Analyzer) boolOp(n *ast.BoolOp, s *state.State) typesystem.Type {
	ts := a.exprs(n.Values, s)
	allBool := true
	for _, t := range ts {
		if _, ok := t.(*typesystem.Bool); !ok {
			allBool = false
		}
	}
	if !allBool {
		return a.u.UnionAll(ts...)
	}
	short, long := a.u.IsFalse, a.u.IsTrue
	if n.Op == ast.OpOr {
		short, long = a.u.IsTrue, a.u.IsFalse
	}
	all := true
	for _, t := range ts {
		if short(t) {
			return t
		}
		all = all && long(t)
	}
	if all {
		return ts[len(ts)-1]
	}
	return a.u.Bool
}

// compare evaluates a comparison. When an integer variable is compared with
// an integer, the result carries states in which the variable's interval is
// narrowed for each outcome.
func (a *Analyzer) compare(n *ast.BinOp, s *state.State) typesystem.Type {
	l := a.expr(n.Left, s)
	r := a.expr(n.Right, s)
	res := a.u.BinaryOp(n.Op, l, r)
	b, ok := res.(*typesystem.Bool)
	if !ok || b.Value != typesystem.Undecided {
		return res
	}
	op, name, subject, bound := n.Op, n.Left, l, r
	if _, isName := name.(*ast.Name); !isName {
		op, name, subject, bound = flip(n.Op), n.Right, r, l
	}
	id, ok := name.(*ast.Name)
	if !ok {
		return res
	}
	si, ok1 := subject.(*typesystem.Int)
	bi, ok2 := bound.(*typesystem.Int)
	if !ok1 || !ok2 {
		return res
	}
	yes, no, ok := narrow(op, si.Range, bi.Range)
	if !ok {
		return res
	}
	if !yes.IsFeasible() && yes.LowerBounded && yes.UpperBounded {
		a.warn(diagnostics.ErrW011, n, "true")
		return a.u.False
	}
	if !no.IsFeasible() && no.LowerBounded && no.UpperBounded {
		a.warn(diagnostics.ErrW011, n, "false")
		return a.u.True
	}
	s1, s2 := s.Copy(), s.Copy()
	s1.Refine(id.ID, &typesystem.Int{Range: yes})
	s2.Refine(id.ID, &typesystem.Int{Range: no})
	return a.u.Branches(s1, s2)
}

// flip mirrors a comparison so its operands can be swapped.
func flip(op ast.Op) ast.Op {
	switch op {
	case ast.OpLt:
		return ast.OpGt
	case ast.OpGt:
		return ast.OpLt
	case ast.OpLtE:
		return ast.OpGtE
	case ast.OpGtE:
		return ast.OpLtE
	}
	return op
}

// narrow returns the subject's interval when `subject op bound` holds and
// when it does not.
func narrow(op ast.Op, subject, bound numeric.IntRange) (yes, no numeric.IntRange, ok bool) {
	upper := func(r numeric.IntRange, delta int) numeric.IntRange {
		if !bound.UpperBounded {
			return r
		}
		return r.WithUpper(new(big.Int).Add(bound.Upper, big.NewInt(int64(delta))))
	}
	lower := func(r numeric.IntRange, delta int) numeric.IntRange {
		if !bound.LowerBounded {
			return r
		}
		return r.WithLower(new(big.Int).Add(bound.Lower, big.NewInt(int64(delta))))
	}
	switch op {
	case ast.OpLt:
		return upper(subject, -1), lower(subject, 0), true
	case ast.OpLtE:
		return upper(subject, 0), lower(subject, 1), true
	case ast.OpGt:
		return lower(subject, 1), upper(subject, 0), true
	case ast.OpGtE:
		return lower(subject, 0), upper(subject, -1), true
	case ast.OpEq:
		return upper(lower(subject, 0), 0), subject, true
	case ast.OpNotEq:
		return subject, upper(lower(subject, 0), 0), true
	}
	return subject, subject, false
}
