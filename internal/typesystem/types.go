// Package typesystem defines the abstract values the inferencer computes:
// a closed set of type variants plus the session-owned Universe that holds
// the shared constants and implements union, equality and printing.
package typesystem

import (
	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/numeric"
)

// Tag identifies a type variant. The operator dispatch table is keyed by tags.
type Tag int

const (
	TagUnknown Tag = iota
	TagNil
	TagBool
	TagInt
	TagFloat
	TagStr
	TagList
	TagDict
	TagTuple
	TagFunc
	TagClass
	TagInstance
	TagModule
	TagUnion
)

var tagNames = [...]string{
	TagUnknown:  "unknown",
	TagNil:      "nil",
	TagBool:     "bool",
	TagInt:      "int",
	TagFloat:    "float",
	TagStr:      "str",
	TagList:     "list",
	TagDict:     "dict",
	TagTuple:    "tuple",
	TagFunc:     "function",
	TagClass:    "class",
	TagInstance: "instance",
	TagModule:   "module",
	TagUnion:    "union",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "tag?"
}

// Type is implemented only by the variants in this file.
type Type interface {
	Tag() Tag
	String() string
	sealed()
}

// TableRef is a handle to a scope node owned by the session arena.
// Class, Instance, Module and Func values refer to their tables by handle.
type TableRef int

// NoTable is the zero handle.
const NoTable TableRef = 0

type Unknown struct{}

type Nil struct{}

// BoolValue is the three-valued truth of a Bool.
type BoolValue int

const (
	Undecided BoolValue = iota
	True
	False
)

// Bool is a truth value. An Undecided Bool may carry the analyzer states
// that hold after assuming the condition true (S1) and false (S2).
type Bool struct {
	Value BoolValue
	S1    any
	S2    any
}

// Swap exchanges the branch states and the truth value, as for `not`.
func (b *Bool) Swap() *Bool {
	out := &Bool{Value: b.Value, S1: b.S2, S2: b.S1}
	switch b.Value {
	case True:
		out.Value = False
	case False:
		out.Value = True
	}
	return out
}

type Int struct {
	Range numeric.IntRange
}

type Float struct {
	Range numeric.FloatRange
}

// Str is a string; Value is meaningful only when Known.
type Str struct {
	Value string
	Known bool
}

// List has one element type. Positional keeps per-index types for lists
// built from literals and is dropped once the list is widened.
type List struct {
	Elem       Type
	Positional []Type
}

type Dict struct {
	Key   Type
	Value Type
}

type Tuple struct {
	Elems []Type
}

// Arrow is one analyzed call of a function: argument types to result.
type Arrow struct {
	From *Tuple
	To   Type
}

type arrowCache struct {
	arrows []Arrow
}

// Func is a function or method. Def is nil for builtins, which compute their
// result with Native or return Returns.
type Func struct {
	Name        string
	Path        string
	Def         *ast.FunctionDef
	Env         TableRef
	Cls         *Class
	Self        Type
	Defaults    []Type
	ClassMethod bool
	Native      func(u *Universe, self Type, args []Type) Type
	Returns     Type

	cache *arrowCache
}

// NewFunc creates a function defined by def in the scope env.
func NewFunc(name, path string, def *ast.FunctionDef, env TableRef) *Func {
	return &Func{Name: name, Path: path, Def: def, Env: env, cache: &arrowCache{}}
}

// NewBuiltinFunc creates a function with no definition that returns ret.
func NewBuiltinFunc(name, path string, ret Type) *Func {
	return &Func{Name: name, Path: path, Returns: ret, cache: &arrowCache{}}
}

// Bind returns the method bound to self. The copy shares the arrow cache.
func (f *Func) Bind(self Type) *Func {
	bound := *f
	bound.Self = self
	return &bound
}

// IsMethod reports whether the first parameter receives the instance.
func (f *Func) IsMethod() bool {
	return f.Cls != nil && !f.ClassMethod
}

func (f *Func) Arrows() []Arrow {
	if f.cache == nil {
		return nil
	}
	return f.cache.arrows
}

// Class is a class declaration. Its attribute table's super edge points at
// the superclass table. Canon is the generic instance, built on demand.
type Class struct {
	Name  string
	Path  string
	Super *Class
	Table TableRef
	Canon *Instance
	Def   *ast.ClassDef
}

type Instance struct {
	Class *Class
	Table TableRef
}

// Module is a loaded file or a builtin module (File is empty).
type Module struct {
	Name  string
	File  string
	QName string
	Table TableRef
}

// Union holds at least two distinct members, none of them a Union.
type Union struct {
	Members []Type
}

func (*Unknown) Tag() Tag  { return TagUnknown }
func (*Nil) Tag() Tag      { return TagNil }
func (*Bool) Tag() Tag     { return TagBool }
func (*Int) Tag() Tag      { return TagInt }
func (*Float) Tag() Tag    { return TagFloat }
func (*Str) Tag() Tag      { return TagStr }
func (*List) Tag() Tag     { return TagList }
func (*Dict) Tag() Tag     { return TagDict }
func (*Tuple) Tag() Tag    { return TagTuple }
func (*Func) Tag() Tag     { return TagFunc }
func (*Class) Tag() Tag    { return TagClass }
func (*Instance) Tag() Tag { return TagInstance }
func (*Module) Tag() Tag   { return TagModule }
func (*Union) Tag() Tag    { return TagUnion }

func (*Unknown) sealed()  {}
func (*Nil) sealed()      {}
func (*Bool) sealed()     {}
func (*Int) sealed()      {}
func (*Float) sealed()    {}
func (*Str) sealed()      {}
func (*List) sealed()     {}
func (*Dict) sealed()     {}
func (*Tuple) sealed()    {}
func (*Func) sealed()     {}
func (*Class) sealed()    {}
func (*Instance) sealed() {}
func (*Module) sealed()   {}
func (*Union) sealed()    {}

func (t *Unknown) String() string  { return plain(t) }
func (t *Nil) String() string      { return plain(t) }
func (t *Bool) String() string     { return plain(t) }
func (t *Int) String() string      { return plain(t) }
func (t *Float) String() string    { return plain(t) }
func (t *Str) String() string      { return plain(t) }
func (t *List) String() string     { return plain(t) }
func (t *Dict) String() string     { return plain(t) }
func (t *Tuple) String() string    { return plain(t) }
func (t *Func) String() string     { return plain(t) }
func (t *Class) String() string    { return plain(t) }
func (t *Instance) String() string { return plain(t) }
func (t *Module) String() string   { return plain(t) }
func (t *Union) String() string    { return plain(t) }

// Members lists the alternatives of t: the members of a Union, else t itself.
func Members(t Type) []Type {
	if u, ok := t.(*Union); ok {
		return u.Members
	}
	return []Type{t}
}

func IsUnknown(t Type) bool {
	_, ok := t.(*Unknown)
	return ok
}

func IsNil(t Type) bool {
	_, ok := t.(*Nil)
	return ok
}

// IsCallable reports whether every alternative of t can be applied.
func IsCallable(t Type) bool {
	for _, m := range Members(t) {
		switch m.(type) {
		case *Func, *Class:
		default:
			return false
		}
	}
	return true
}
