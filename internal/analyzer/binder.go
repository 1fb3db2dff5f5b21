package analyzer

import (
	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

// bind assigns t to an assignment target.
func (a *Analyzer) bind(target ast.Expression, t typesystem.Type, s *state.State, kind binding.Kind) {
	switch x := target.(type) {
	case *ast.Name:
		s.Insert(x.ID, x, t, kind)
	case *ast.TupleLit:
		a.bindSeq(x, x.Elts, t, s, kind)
	case *ast.ListLit:
		a.bindSeq(x, x.Elts, t, s, kind)
	case *ast.Attribute:
		a.setAttr(x, t, s)
	case *ast.Subscript:
		a.setItem(x, t, s)
	default:
		a.expr(target, s)
	}
}

// bindSeq destructures t over targets. A tuple of the wrong size is
// reported and every target becomes Unknown.
func (a *Analyzer) bindSeq(node ast.Node, targets []ast.Expression, t typesystem.Type, s *state.State, kind binding.Kind) {
	var elems []typesystem.Type
	switch x := t.(type) {
	case *typesystem.Tuple:
		if len(x.Elems) == len(targets) {
			elems = x.Elems
		} else {
			a.warn(diagnostics.ErrW008, node, len(x.Elems), len(targets))
		}
	case *typesystem.List:
		if len(x.Positional) == len(targets) {
			elems = x.Positional
		} else if x.Positional == nil {
			for range targets {
				elems = append(elems, x.Elem)
			}
		} else {
			a.warn(diagnostics.ErrW008, node, len(x.Positional), len(targets))
		}
	}
	for i, target := range targets {
		var et typesystem.Type = a.u.Unknown
		if elems != nil {
			et = elems[i]
		}
		a.bind(target, et, s, kind)
	}
}

// setAttr assigns t to target.attr on every member of the target's type.
func (a *Analyzer) setAttr(x *ast.Attribute, t typesystem.Type, s *state.State) {
	target := a.expr(x.Target, s)
	for _, m := range typesystem.Members(target) {
		var table typesystem.TableRef
		switch v := m.(type) {
		case *typesystem.Instance:
			table = v.Table
		case *typesystem.Class:
			table = v.Table
		case *typesystem.Module:
			table = v.Table
		case *typesystem.Unknown:
			continue
		}
		st := a.arena.Get(table)
		if st == nil {
			a.warn(diagnostics.ErrW005, x.Attr, x.Attr.ID, a.u.Print(m))
			continue
		}
		st.Insert(x.Attr.ID, x.Attr, t, binding.Attribute)
	}
}

// setItem widens the element types of a container stored into.
func (a *Analyzer) setItem(x *ast.Subscript, t typesystem.Type, s *state.State) {
	v := a.expr(x.Value, s)
	idx := a.expr(x.Index, s)
	for _, m := range typesystem.Members(v) {
		switch c := m.(type) {
		case *typesystem.List:
			c.Elem = a.u.Union(c.Elem, t)
			c.Positional = nil
		case *typesystem.Dict:
			c.Key = a.u.Union(c.Key, idx)
			c.Value = a.u.Union(c.Value, t)
		case *typesystem.Instance:
			if f, _ := a.getAttr(c, "__setitem__"); f != nil {
				a.applyAll(f, callArgs{pos: []typesystem.Type{idx, t}}, x)
			}
		}
	}
}
