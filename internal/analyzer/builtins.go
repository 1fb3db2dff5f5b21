package analyzer

import (
	"math"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/numeric"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

type native = func(u *typesystem.Universe, self typesystem.Type, args []typesystem.Type) typesystem.Type

// builtinTable holds the builtin classes that give primitive values their
// methods, and the constructors of classes whose instances are primitives.
type builtinTable struct {
	object  *typesystem.Class
	classes map[typesystem.Tag]*typesystem.Class
	ctors   map[*typesystem.Class]func(args []typesystem.Type) typesystem.Type
}

func (bt *builtinTable) classFor(t typesystem.Type) *typesystem.Class {
	if bt == nil {
		return nil
	}
	return bt.classes[t.Tag()]
}

func (a *Analyzer) docURL(page string) string {
	return a.Options.DocsURL + page
}

func (a *Analyzer) builtinFunc(s *state.State, name, page string, fn native) *typesystem.Func {
	f := typesystem.NewBuiltinFunc(name, s.ExtendPath(name), nil)
	f.Native = fn
	s.Insert(name, &ast.Url{URL: a.docURL(page)}, f, binding.Function)
	return f
}

func (a *Analyzer) builtinClass(name string, super *typesystem.Class) *typesystem.Class {
	cs := a.arena.New(a.global, state.Class)
	cs.Path = a.global.ExtendPath(name)
	cls := &typesystem.Class{Name: name, Path: cs.Path, Table: cs.Ref(), Super: super}
	if super != nil {
		cs.Super = a.arena.Get(super.Table)
	}
	cs.Type = cls
	a.global.Insert(name, &ast.Url{URL: a.docURL("stdtypes.html#" + name)}, cls, binding.Class)
	return cls
}

func (a *Analyzer) builtinMethod(cls *typesystem.Class, name string, fn native) {
	cs := a.arena.Get(cls.Table)
	f := typesystem.NewBuiltinFunc(name, cs.ExtendPath(name), nil)
	f.Cls = cls
	f.Native = fn
	cs.Insert(name, &ast.Url{URL: a.docURL("stdtypes.html#" + cls.Name + "." + name)}, f, binding.Method)
}

func returns(t typesystem.Type) native {
	return func(*typesystem.Universe, typesystem.Type, []typesystem.Type) typesystem.Type { return t }
}

func arg(args []typesystem.Type, i int, u *typesystem.Universe) typesystem.Type {
	if i < len(args) {
		return args[i]
	}
	return u.Unknown
}

func natural() *typesystem.Int {
	return &typesystem.Int{Range: numeric.IntBetween(big.NewInt(0), nil)}
}

// installBuiltins fills the global scope with the builtin functions and
// classes, and registers it as the builtins module.
func (a *Analyzer) installBuiltins() {
	u := a.u
	g := a.global
	a.builtins = &builtinTable{
		classes: make(map[typesystem.Tag]*typesystem.Class),
		ctors:   make(map[*typesystem.Class]func([]typesystem.Type) typesystem.Type),
	}
	mt := &typesystem.Module{Name: config.BuiltinsModuleName, QName: config.BuiltinsModuleName, Table: g.Ref()}
	g.Type = mt
	a.byName[mt.Name] = mt

	a.builtinFunc(g, "print", "functions.html#print", returns(u.Nil))
	a.builtinFunc(g, "input", "functions.html#input", returns(u.Str))
	a.builtinFunc(g, "repr", "functions.html#repr", returns(u.Str))
	a.builtinFunc(g, "open", "functions.html#open", returns(u.Unknown))
	a.builtinFunc(g, "isinstance", "functions.html#isinstance", returns(u.Bool))
	a.builtinFunc(g, "len", "functions.html#len", a.lenOf)
	a.builtinFunc(g, "range", "functions.html#func-range", a.rangeOf)
	a.builtinFunc(g, "abs", "functions.html#abs", a.absOf)
	a.builtinFunc(g, "sorted", "functions.html#sorted", func(u *typesystem.Universe, _ typesystem.Type, args []typesystem.Type) typesystem.Type {
		return u.ListOf(a.elemType(arg(args, 0, u)))
	})
	extreme := func(u *typesystem.Universe, _ typesystem.Type, args []typesystem.Type) typesystem.Type {
		if len(args) == 1 {
			return a.elemType(args[0])
		}
		return u.UnionAll(args...)
	}
	a.builtinFunc(g, "min", "functions.html#min", extreme)
	a.builtinFunc(g, "max", "functions.html#max", extreme)
	identity := func(u *typesystem.Universe, _ typesystem.Type, args []typesystem.Type) typesystem.Type {
		return arg(args, 0, u)
	}
	a.builtinFunc(g, config.StaticMethodDecorator, "functions.html#staticmethod", identity)
	a.builtinFunc(g, config.ClassMethodDecorator, "functions.html#classmethod", identity)
	a.builtinFunc(g, "property", "functions.html#property", identity)

	object := a.builtinClass("object", nil)
	a.builtins.object = object
	a.installPrimitives(object)

	exc := a.builtinClass("Exception", object)
	a.builtinMethod(exc, config.InitMethodName, returns(u.Nil))
	for _, name := range []string{"ValueError", "TypeError", "KeyError", "IndexError", "RuntimeError", "AttributeError"} {
		a.builtinClass(name, exc)
	}
}

func (a *Analyzer) installPrimitives(object *typesystem.Class) {
	u := a.u
	primitive := func(name string, tag typesystem.Tag, ctor func([]typesystem.Type) typesystem.Type) *typesystem.Class {
		cls := a.builtinClass(name, object)
		a.builtins.classes[tag] = cls
		a.builtins.ctors[cls] = ctor
		return cls
	}

	intCls := primitive("int", typesystem.TagInt, func(args []typesystem.Type) typesystem.Type {
		if len(args) > 0 {
			if i, ok := args[0].(*typesystem.Int); ok {
				return i
			}
		}
		return u.Int
	})
	a.builtinMethod(intCls, "bit_length", returns(natural()))

	floatCls := primitive("float", typesystem.TagFloat, func(args []typesystem.Type) typesystem.Type {
		if len(args) > 0 {
			switch x := args[0].(type) {
			case *typesystem.Float:
				return x
			case *typesystem.Int:
				return &typesystem.Float{Range: x.Range.Float()}
			}
		}
		return u.Float
	})
	a.builtinMethod(floatCls, "is_integer", returns(u.Bool))

	primitive("bool", typesystem.TagBool, func(args []typesystem.Type) typesystem.Type {
		if len(args) == 0 {
			return u.False
		}
		switch {
		case u.IsTrue(args[0]):
			return u.True
		case u.IsFalse(args[0]):
			return u.False
		}
		return u.Bool
	})

	strCls := primitive("str", typesystem.TagStr, func(args []typesystem.Type) typesystem.Type {
		if len(args) > 0 {
			if s, ok := args[0].(*typesystem.Str); ok {
				return s
			}
			return u.Str
		}
		return u.StrValue("")
	})
	mapStr := func(fn func(string) string) native {
		return func(u *typesystem.Universe, self typesystem.Type, _ []typesystem.Type) typesystem.Type {
			if s, ok := self.(*typesystem.Str); ok && s.Known {
				return u.StrValue(fn(s.Value))
			}
			return u.Str
		}
	}
	a.builtinMethod(strCls, "upper", mapStr(strings.ToUpper))
	a.builtinMethod(strCls, "lower", mapStr(strings.ToLower))
	a.builtinMethod(strCls, "strip", mapStr(strings.TrimSpace))
	for _, name := range []string{"replace", "format", "join"} {
		a.builtinMethod(strCls, name, returns(u.Str))
	}
	a.builtinMethod(strCls, "split", func(u *typesystem.Universe, _ typesystem.Type, _ []typesystem.Type) typesystem.Type {
		return u.ListOf(u.Str)
	})
	a.builtinMethod(strCls, "startswith", returns(u.Bool))
	a.builtinMethod(strCls, "endswith", returns(u.Bool))
	a.builtinMethod(strCls, "find", returns(&typesystem.Int{Range: numeric.IntBetween(big.NewInt(-1), nil)}))

	listCls := primitive("list", typesystem.TagList, func(args []typesystem.Type) typesystem.Type {
		if len(args) == 0 {
			return u.NewList()
		}
		return u.ListOf(a.elemType(args[0]))
	})
	a.builtinMethod(listCls, "append", func(u *typesystem.Universe, self typesystem.Type, args []typesystem.Type) typesystem.Type {
		if l, ok := self.(*typesystem.List); ok {
			l.Elem = u.Union(l.Elem, arg(args, 0, u))
			l.Positional = nil
		}
		return u.Nil
	})
	a.builtinMethod(listCls, "extend", func(u *typesystem.Universe, self typesystem.Type, args []typesystem.Type) typesystem.Type {
		if l, ok := self.(*typesystem.List); ok {
			l.Elem = u.Union(l.Elem, a.elemType(arg(args, 0, u)))
			l.Positional = nil
		}
		return u.Nil
	})
	a.builtinMethod(listCls, "insert", func(u *typesystem.Universe, self typesystem.Type, args []typesystem.Type) typesystem.Type {
		if l, ok := self.(*typesystem.List); ok {
			l.Elem = u.Union(l.Elem, arg(args, 1, u))
			l.Positional = nil
		}
		return u.Nil
	})
	a.builtinMethod(listCls, "pop", func(u *typesystem.Universe, self typesystem.Type, _ []typesystem.Type) typesystem.Type {
		return a.elemType(self)
	})
	a.builtinMethod(listCls, "copy", func(u *typesystem.Universe, self typesystem.Type, _ []typesystem.Type) typesystem.Type {
		return u.ListOf(a.elemType(self))
	})
	a.builtinMethod(listCls, "index", returns(natural()))
	a.builtinMethod(listCls, "count", returns(natural()))

	dictCls := primitive("dict", typesystem.TagDict, func([]typesystem.Type) typesystem.Type {
		return u.NewDict(u.Unknown, u.Unknown)
	})
	dictOf := func(self typesystem.Type) *typesystem.Dict {
		if d, ok := self.(*typesystem.Dict); ok {
			return d
		}
		return u.NewDict(u.Unknown, u.Unknown)
	}
	a.builtinMethod(dictCls, "get", func(u *typesystem.Universe, self typesystem.Type, args []typesystem.Type) typesystem.Type {
		var fallback typesystem.Type = u.Nil
		if len(args) > 1 {
			fallback = args[1]
		}
		return u.Union(dictOf(self).Value, fallback)
	})
	a.builtinMethod(dictCls, "keys", func(u *typesystem.Universe, self typesystem.Type, _ []typesystem.Type) typesystem.Type {
		return u.ListOf(dictOf(self).Key)
	})
	a.builtinMethod(dictCls, "values", func(u *typesystem.Universe, self typesystem.Type, _ []typesystem.Type) typesystem.Type {
		return u.ListOf(dictOf(self).Value)
	})
	a.builtinMethod(dictCls, "items", func(u *typesystem.Universe, self typesystem.Type, _ []typesystem.Type) typesystem.Type {
		d := dictOf(self)
		return u.ListOf(u.NewTuple(d.Key, d.Value))
	})
	a.builtinMethod(dictCls, "pop", func(u *typesystem.Universe, self typesystem.Type, _ []typesystem.Type) typesystem.Type {
		return dictOf(self).Value
	})
	a.builtinMethod(dictCls, "update", returns(u.Nil))

	tupleCls := primitive("tuple", typesystem.TagTuple, func(args []typesystem.Type) typesystem.Type {
		if len(args) == 0 {
			return u.NewTuple()
		}
		switch x := args[0].(type) {
		case *typesystem.Tuple:
			return x
		case *typesystem.List:
			if x.Positional != nil {
				return u.NewTuple(x.Positional...)
			}
		}
		return u.Unknown
	})
	a.builtinMethod(tupleCls, "index", returns(natural()))
	a.builtinMethod(tupleCls, "count", returns(natural()))
}

// lenOf is exact for literal-built sequences and known strings.
func (a *Analyzer) lenOf(u *typesystem.Universe, _ typesystem.Type, args []typesystem.Type) typesystem.Type {
	switch x := arg(args, 0, u).(type) {
	case *typesystem.List:
		if x.Positional != nil {
			return u.IntValue(int64(len(x.Positional)))
		}
	case *typesystem.Tuple:
		return u.IntValue(int64(len(x.Elems)))
	case *typesystem.Str:
		if x.Known {
			return u.IntValue(int64(utf8.RuneCountInString(x.Value)))
		}
	}
	return natural()
}

// rangeOf bounds the element interval by the arguments' intervals.
func (a *Analyzer) rangeOf(u *typesystem.Universe, _ typesystem.Type, args []typesystem.Type) typesystem.Type {
	var lo, hi typesystem.Type
	switch len(args) {
	case 0:
		return u.ListOf(u.Int)
	case 1:
		lo, hi = u.IntValue(0), args[0]
	default:
		lo, hi = args[0], args[1]
	}
	elem := numeric.UnboundedInt()
	if l, ok := lo.(*typesystem.Int); ok && l.Range.LowerBounded && len(args) < 3 {
		elem = elem.WithLower(l.Range.Lower)
	}
	if h, ok := hi.(*typesystem.Int); ok && h.Range.UpperBounded && len(args) < 3 {
		elem = elem.WithUpper(new(big.Int).Sub(h.Range.Upper, big.NewInt(1)))
	}
	return u.ListOf(&typesystem.Int{Range: elem})
}

func (a *Analyzer) absOf(u *typesystem.Universe, _ typesystem.Type, args []typesystem.Type) typesystem.Type {
	var out []typesystem.Type
	for _, m := range typesystem.Members(arg(args, 0, u)) {
		switch x := m.(type) {
		case *typesystem.Int:
			r := x.Range
			if r.LowerBounded && r.Lower.Sign() >= 0 {
				out = append(out, x)
				continue
			}
			res := numeric.IntBetween(big.NewInt(0), nil)
			if r.LowerBounded && r.UpperBounded {
				hi := new(big.Int).Abs(r.Lower)
				if up := new(big.Int).Abs(r.Upper); up.Cmp(hi) > 0 {
					hi = up
				}
				res = res.WithUpper(hi)
			}
			out = append(out, &typesystem.Int{Range: res})
		case *typesystem.Float:
			out = append(out, &typesystem.Float{Range: numeric.FloatBetween(0, math.Inf(1))})
		default:
			out = append(out, u.Unknown)
		}
	}
	return u.UnionAll(out...)
}
