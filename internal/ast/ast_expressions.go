package ast

import "math/big"

// Op names a binary, boolean, comparison or unary operator.
type Op string

const (
	OpAdd      Op = "+"
	OpSub      Op = "-"
	OpMul      Op = "*"
	OpDiv      Op = "/"
	OpFloorDiv Op = "//"
	OpMod      Op = "%"
	OpPow      Op = "**"

	OpLt    Op = "<"
	OpGt    Op = ">"
	OpLtE   Op = "<="
	OpGtE   Op = ">="
	OpEq    Op = "=="
	OpNotEq Op = "!="
	OpIn    Op = "in"
	OpNotIn Op = "not in"
	OpIs    Op = "is"
	OpIsNot Op = "is not"

	OpAnd Op = "and"
	OpOr  Op = "or"
	OpNot Op = "not"
	OpNeg Op = "neg"
	OpPos Op = "pos"
)

// IsComparison reports whether the operator yields a boolean.
func (o Op) IsComparison() bool {
	switch o {
	case OpLt, OpGt, OpLtE, OpGtE, OpEq, OpNotEq, OpIn, OpNotIn, OpIs, OpIsNot:
		return true
	}
	return false
}

// Name is an identifier, either a use or a definition site.
type Name struct {
	Pos
	ID string
}

func (n *Name) GetPos() Pos     { return n.Pos }
func (n *Name) statementNode()  {}
func (n *Name) expressionNode() {}

// Attribute is target.attr.
type Attribute struct {
	Pos
	Target Expression
	Attr   *Name
}

func (a *Attribute) GetPos() Pos     { return a.Pos }
func (a *Attribute) statementNode()  {}
func (a *Attribute) expressionNode() {}

type Call struct {
	Pos
	Func     Expression
	Args     []Expression
	Keywords []*Keyword
	Star     Expression // *args
	KwStar   Expression // **kwargs
}

func (c *Call) GetPos() Pos     { return c.Pos }
func (c *Call) statementNode()  {}
func (c *Call) expressionNode() {}

type Keyword struct {
	Pos
	Arg   string
	Value Expression
}

func (k *Keyword) GetPos() Pos { return k.Pos }

// BinOp is arithmetic or a single comparison.
type BinOp struct {
	Pos
	Op    Op
	Left  Expression
	Right Expression
}

func (b *BinOp) GetPos() Pos     { return b.Pos }
func (b *BinOp) statementNode()  {}
func (b *BinOp) expressionNode() {}

type BoolOp struct {
	Pos
	Op     Op
	Values []Expression
}

func (b *BoolOp) GetPos() Pos     { return b.Pos }
func (b *BoolOp) statementNode()  {}
func (b *BoolOp) expressionNode() {}

type UnaryOp struct {
	Pos
	Op      Op
	Operand Expression
}

func (u *UnaryOp) GetPos() Pos     { return u.Pos }
func (u *UnaryOp) statementNode()  {}
func (u *UnaryOp) expressionNode() {}

type Subscript struct {
	Pos
	Value Expression
	Index Expression
}

func (s *Subscript) GetPos() Pos     { return s.Pos }
func (s *Subscript) statementNode()  {}
func (s *Subscript) expressionNode() {}

type IntLit struct {
	Pos
	Value *big.Int
}

func (l *IntLit) GetPos() Pos     { return l.Pos }
func (l *IntLit) statementNode()  {}
func (l *IntLit) expressionNode() {}

type FloatLit struct {
	Pos
	Value float64
}

func (l *FloatLit) GetPos() Pos     { return l.Pos }
func (l *FloatLit) statementNode()  {}
func (l *FloatLit) expressionNode() {}

type StrLit struct {
	Pos
	Value string
}

func (l *StrLit) GetPos() Pos     { return l.Pos }
func (l *StrLit) statementNode()  {}
func (l *StrLit) expressionNode() {}

type BoolLit struct {
	Pos
	Value bool
}

func (l *BoolLit) GetPos() Pos     { return l.Pos }
func (l *BoolLit) statementNode()  {}
func (l *BoolLit) expressionNode() {}

type NilLit struct{ Pos }

func (l *NilLit) GetPos() Pos     { return l.Pos }
func (l *NilLit) statementNode()  {}
func (l *NilLit) expressionNode() {}

type ListLit struct {
	Pos
	Elts []Expression
}

func (l *ListLit) GetPos() Pos     { return l.Pos }
func (l *ListLit) statementNode()  {}
func (l *ListLit) expressionNode() {}

type TupleLit struct {
	Pos
	Elts []Expression
}

func (l *TupleLit) GetPos() Pos     { return l.Pos }
func (l *TupleLit) statementNode()  {}
func (l *TupleLit) expressionNode() {}

type DictLit struct {
	Pos
	Keys   []Expression
	Values []Expression
}

func (l *DictLit) GetPos() Pos     { return l.Pos }
func (l *DictLit) statementNode()  {}
func (l *DictLit) expressionNode() {}
