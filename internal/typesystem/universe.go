package typesystem

import (
	"math/big"

	"github.com/funvibe/funsonar/internal/numeric"
)

// Tables gives read access to the scope nodes that Class, Instance and
// Module values refer to by handle.
type Tables interface {
	// Names lists the names bound in the table, sorted.
	Names(ref TableRef) []string
	// Types lists the types of every binding of name in the table.
	Types(ref TableRef, name string) []Type
}

// Universe owns the constants of one analysis session. Values such as
// Unknown and Nil are shared within a session and never across sessions.
type Universe struct {
	Unknown *Unknown
	Nil     *Nil
	True    *Bool
	False   *Bool
	Bool    *Bool
	Str     *Str
	Int     *Int
	Float   *Float

	// Debug makes printed types include interval bounds and literal values.
	Debug bool

	tables Tables
}

func NewUniverse(tables Tables) *Universe {
	return &Universe{
		Unknown: &Unknown{},
		Nil:     &Nil{},
		True:    &Bool{Value: True},
		False:   &Bool{Value: False},
		Bool:    &Bool{Value: Undecided},
		Str:     &Str{},
		Int:     &Int{Range: numeric.UnboundedInt()},
		Float:   &Float{Range: numeric.UnboundedFloat()},
		tables:  tables,
	}
}

func (u *Universe) Tables() Tables { return u.tables }

func (u *Universe) IntOf(v *big.Int) *Int {
	return &Int{Range: numeric.IntOf(v)}
}

func (u *Universe) IntValue(v int64) *Int {
	return &Int{Range: numeric.IntValue(v)}
}

func (u *Universe) FloatValue(v float64) *Float {
	return &Float{Range: numeric.FloatValue(v)}
}

func (u *Universe) StrValue(s string) *Str {
	return &Str{Value: s, Known: true}
}

func (u *Universe) BoolOf(v bool) *Bool {
	if v {
		return u.True
	}
	return u.False
}

// Branches is an Undecided Bool carrying branch states.
func (u *Universe) Branches(s1, s2 any) *Bool {
	return &Bool{Value: Undecided, S1: s1, S2: s2}
}

// NewList makes a list from literal elements.
func (u *Universe) NewList(elems ...Type) *List {
	l := &List{Elem: u.UnionAll(elems...), Positional: elems}
	if len(elems) == 0 {
		l.Elem = u.Unknown
	}
	return l
}

// ListOf makes a list of elem with no positional information.
func (u *Universe) ListOf(elem Type) *List {
	return &List{Elem: elem}
}

func (u *Universe) NewTuple(elems ...Type) *Tuple {
	return &Tuple{Elems: elems}
}

func (u *Universe) NewDict(key, value Type) *Dict {
	return &Dict{Key: key, Value: value}
}

// AttrNames returns the names bound in the table of an instance, class or module.
func (u *Universe) AttrNames(ref TableRef) []string {
	if u.tables == nil || ref == NoTable {
		return nil
	}
	return u.tables.Names(ref)
}

// AttrType is the union of every binding of name in the table, or nil if unbound.
func (u *Universe) AttrType(ref TableRef, name string) Type {
	if u.tables == nil || ref == NoTable {
		return nil
	}
	ts := u.tables.Types(ref, name)
	if len(ts) == 0 {
		return nil
	}
	return u.UnionAll(ts...)
}
