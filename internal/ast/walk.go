package ast

// Inspect traverses the tree rooted at n depth-first. If f returns false,
// the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children lists the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *Module:
		add(stmts(n.Body)...)
	case *FunctionDef:
		add(exprs(n.Decorators)...)
		if n.Name != nil {
			add(n.Name)
		}
		for _, p := range n.Params {
			add(p)
		}
		add(exprs(n.Defaults)...)
		if n.Vararg != nil {
			add(n.Vararg)
		}
		if n.Kwarg != nil {
			add(n.Kwarg)
		}
		add(stmts(n.Body)...)
	case *ClassDef:
		if n.Name != nil {
			add(n.Name)
		}
		add(exprs(n.Bases)...)
		add(stmts(n.Body)...)
	case *Return:
		add(n.Value)
	case *Assign:
		add(exprs(n.Targets)...)
		add(n.Value)
	case *AugAssign:
		add(n.Target, n.Value)
	case *If:
		add(n.Test)
		add(stmts(n.Body)...)
		add(stmts(n.Orelse)...)
	case *While:
		add(n.Test)
		add(stmts(n.Body)...)
		add(stmts(n.Orelse)...)
	case *For:
		add(n.Target, n.Iter)
		add(stmts(n.Body)...)
		add(stmts(n.Orelse)...)
	case *Import:
		for _, a := range n.Names {
			add(a)
		}
	case *ImportFrom:
		for _, a := range n.Names {
			add(a)
		}
	case *Alias:
		for _, s := range n.Name {
			add(s)
		}
		if n.AsName != nil {
			add(n.AsName)
		}
	case *Raise:
		add(n.Exc)
	case *Try:
		add(stmts(n.Body)...)
		for _, h := range n.Handlers {
			add(h)
		}
		add(stmts(n.Orelse)...)
		add(stmts(n.Finally)...)
	case *Handler:
		add(n.Type)
		if n.Name != nil {
			add(n.Name)
		}
		add(stmts(n.Body)...)
	case *Attribute:
		add(n.Target)
		if n.Attr != nil {
			add(n.Attr)
		}
	case *Call:
		add(n.Func)
		add(exprs(n.Args)...)
		for _, k := range n.Keywords {
			add(k)
		}
		add(n.Star, n.KwStar)
	case *Keyword:
		add(n.Value)
	case *BinOp:
		add(n.Left, n.Right)
	case *BoolOp:
		add(exprs(n.Values)...)
	case *UnaryOp:
		add(n.Operand)
	case *Subscript:
		add(n.Value, n.Index)
	case *ListLit:
		add(exprs(n.Elts)...)
	case *TupleLit:
		add(exprs(n.Elts)...)
	case *DictLit:
		for i := range n.Keys {
			add(n.Keys[i])
			if i < len(n.Values) {
				add(n.Values[i])
			}
		}
	}
	return out
}

func stmts(list []Statement) []Node {
	out := make([]Node, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}
	return out
}

func exprs(list []Expression) []Node {
	out := make([]Node, 0, len(list))
	for _, e := range list {
		out = append(out, e)
	}
	return out
}

// isNil catches typed nil pointers stored in an interface.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Name:
		return v == nil
	case *FunctionDef:
		return v == nil
	case *Alias:
		return v == nil
	case *Handler:
		return v == nil
	case *Keyword:
		return v == nil
	}
	return false
}
