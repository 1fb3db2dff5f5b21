package typesystem

import (
	"math/big"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/numeric"
)

type opKey struct {
	op          ast.Op
	left, right Tag
}

type opFunc func(u *Universe, l, r Type) Type

// binaryOps is decided once per operator and operand tag pair.
var binaryOps = buildBinaryOps()

func buildBinaryOps() map[opKey]opFunc {
	ops := make(map[opKey]opFunc)
	reg := func(op ast.Op, l, r Tag, f opFunc) { ops[opKey{op, l, r}] = f }

	nums := []Tag{TagInt, TagFloat}
	for _, l := range nums {
		for _, r := range nums {
			for _, op := range []ast.Op{ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpFloorDiv} {
				reg(op, l, r, arith(op))
			}
			for _, op := range []ast.Op{ast.OpLt, ast.OpGt, ast.OpLtE, ast.OpGtE, ast.OpEq, ast.OpNotEq} {
				reg(op, l, r, compare(op))
			}
			reg(ast.OpPow, l, r, func(u *Universe, l, r Type) Type { return widest(u, l, r) })
		}
	}
	reg(ast.OpMod, TagInt, TagInt, modInt)
	reg(ast.OpMod, TagFloat, TagFloat, func(u *Universe, _, _ Type) Type { return u.Float })
	reg(ast.OpMod, TagFloat, TagInt, func(u *Universe, _, _ Type) Type { return u.Float })
	reg(ast.OpMod, TagInt, TagFloat, func(u *Universe, _, _ Type) Type { return u.Float })

	reg(ast.OpAdd, TagStr, TagStr, func(u *Universe, l, r Type) Type {
		a, b := l.(*Str), r.(*Str)
		if a.Known && b.Known {
			return u.StrValue(a.Value + b.Value)
		}
		return u.Str
	})
	reg(ast.OpMul, TagStr, TagInt, func(u *Universe, _, _ Type) Type { return u.Str })
	reg(ast.OpMul, TagInt, TagStr, func(u *Universe, _, _ Type) Type { return u.Str })
	for _, r := range []Tag{TagUnknown, TagNil, TagBool, TagInt, TagFloat, TagStr, TagList, TagDict, TagTuple, TagInstance} {
		reg(ast.OpMod, TagStr, r, func(u *Universe, _, _ Type) Type { return u.Str })
	}
	for _, op := range []ast.Op{ast.OpEq, ast.OpNotEq} {
		reg(op, TagStr, TagStr, compareStr(op))
	}

	reg(ast.OpAdd, TagList, TagList, func(u *Universe, l, r Type) Type {
		return u.ListOf(u.Union(l.(*List).Elem, r.(*List).Elem))
	})
	reg(ast.OpMul, TagList, TagInt, func(u *Universe, l, _ Type) Type { return u.ListOf(l.(*List).Elem) })
	reg(ast.OpAdd, TagTuple, TagTuple, func(u *Universe, l, r Type) Type {
		elems := append(append([]Type{}, l.(*Tuple).Elems...), r.(*Tuple).Elems...)
		return u.NewTuple(elems...)
	})
	return ops
}

// BinaryOp computes the result of l op r, distributing over union members.
func (u *Universe) BinaryOp(op ast.Op, l, r Type) Type {
	var results []Type
	for _, a := range Members(l) {
		for _, b := range Members(r) {
			results = append(results, u.binaryOp(op, a, b))
		}
	}
	if op.IsComparison() && len(results) > 1 {
		return u.joinBools(results)
	}
	return u.UnionAll(results...)
}

func (u *Universe) binaryOp(op ast.Op, l, r Type) Type {
	if f, ok := binaryOps[opKey{op, l.Tag(), r.Tag()}]; ok {
		return f(u, l, r)
	}
	switch op {
	case ast.OpIs, ast.OpIsNot:
		res := u.identity(l, r)
		if op == ast.OpIsNot {
			return res.Swap()
		}
		return res
	case ast.OpEq, ast.OpNotEq:
		if IsNil(l) || IsNil(r) {
			res := u.identity(l, r)
			if op == ast.OpNotEq {
				return res.Swap()
			}
			return res
		}
		return u.Bool
	}
	if op.IsComparison() {
		return u.Bool
	}
	return u.Unknown
}

// joinBools keeps a decided answer only when every alternative agrees.
func (u *Universe) joinBools(results []Type) Type {
	first, ok := results[0].(*Bool)
	if !ok {
		return u.Bool
	}
	for _, r := range results[1:] {
		b, ok := r.(*Bool)
		if !ok || b.Value != first.Value || first.Value == Undecided {
			return u.Bool
		}
	}
	return u.BoolOf(first.Value == True)
}

func (u *Universe) identity(l, r Type) *Bool {
	ln, rn := IsNil(l), IsNil(r)
	switch {
	case ln && rn:
		return u.True
	case IsUnknown(l) || IsUnknown(r):
		return u.Bool
	case ln != rn:
		return u.False
	}
	return u.Bool
}

// UnaryOp computes op t.
func (u *Universe) UnaryOp(op ast.Op, t Type) Type {
	switch op {
	case ast.OpNot:
		if b, ok := t.(*Bool); ok {
			return b.Swap()
		}
		switch {
		case u.IsTrue(t):
			return u.False
		case u.IsFalse(t):
			return u.True
		}
		return u.Bool
	case ast.OpNeg, ast.OpPos:
		var out []Type
		for _, m := range Members(t) {
			switch x := m.(type) {
			case *Int:
				if op == ast.OpNeg {
					out = append(out, &Int{Range: x.Range.Negate()})
				} else {
					out = append(out, x)
				}
			case *Float:
				if op == ast.OpNeg {
					out = append(out, &Float{Range: x.Range.Negate()})
				} else {
					out = append(out, x)
				}
			default:
				out = append(out, u.Unknown)
			}
		}
		return u.UnionAll(out...)
	}
	return u.Unknown
}

func arith(op ast.Op) opFunc {
	return func(u *Universe, l, r Type) Type {
		a, aok := l.(*Int)
		b, bok := r.(*Int)
		if aok && bok {
			switch op {
			case ast.OpAdd:
				return &Int{Range: numeric.AddInt(a.Range, b.Range)}
			case ast.OpSub:
				return &Int{Range: numeric.SubInt(a.Range, b.Range)}
			case ast.OpMul:
				return &Int{Range: numeric.MulInt(a.Range, b.Range)}
			default:
				return &Int{Range: numeric.DivInt(a.Range, b.Range)}
			}
		}
		x, y := floatRange(l), floatRange(r)
		switch op {
		case ast.OpAdd:
			return &Float{Range: numeric.AddFloat(x, y)}
		case ast.OpSub:
			return &Float{Range: numeric.SubFloat(x, y)}
		case ast.OpMul:
			return &Float{Range: numeric.MulFloat(x, y)}
		default:
			return &Float{Range: numeric.DivFloat(x, y)}
		}
	}
}

func floatRange(t Type) numeric.FloatRange {
	switch x := t.(type) {
	case *Int:
		return x.Range.Float()
	case *Float:
		return x.Range
	}
	return numeric.UnboundedFloat()
}

func widest(u *Universe, l, r Type) Type {
	if l.Tag() == TagInt && r.Tag() == TagInt {
		return u.Int
	}
	return u.Float
}

// modInt bounds a % n by [0, n-1] for an actual positive n.
func modInt(u *Universe, _, r Type) Type {
	n := r.(*Int).Range
	if n.IsActual() && n.Lower.Sign() > 0 {
		hi := new(big.Int).Sub(n.Lower, big.NewInt(1))
		return &Int{Range: numeric.IntBetween(new(big.Int), hi)}
	}
	return u.Int
}

// compare decides a numeric comparison when the intervals allow it.
func compare(op ast.Op) opFunc {
	return func(u *Universe, l, r Type) Type {
		var lt, gt, eq bool
		a, aok := l.(*Int)
		b, bok := r.(*Int)
		if aok && bok {
			lt, gt, eq = a.Range.Lt(b.Range), a.Range.Gt(b.Range), a.Range.Eq(b.Range)
		} else {
			x, y := floatRange(l), floatRange(r)
			lt, gt, eq = x.Lt(y), x.Gt(y), x.Eq(y)
		}
		switch op {
		case ast.OpLt:
			return decide(u, lt, gt || eq)
		case ast.OpLtE:
			return decide(u, lt || eq, gt)
		case ast.OpGt:
			return decide(u, gt, lt || eq)
		case ast.OpGtE:
			return decide(u, gt || eq, lt)
		case ast.OpEq:
			return decide(u, eq, lt || gt)
		default:
			return decide(u, lt || gt, eq)
		}
	}
}

func compareStr(op ast.Op) opFunc {
	return func(u *Universe, l, r Type) Type {
		a, b := l.(*Str), r.(*Str)
		if !a.Known || !b.Known {
			return u.Bool
		}
		same := a.Value == b.Value
		if op == ast.OpNotEq {
			same = !same
		}
		return u.BoolOf(same)
	}
}

func decide(u *Universe, yes, no bool) *Bool {
	switch {
	case yes:
		return u.True
	case no:
		return u.False
	}
	return u.Bool
}
