package analyzer

import (
	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

// defineFunction creates the function value for a def or lambda. A def also
// binds its name in s. Bodies are not analyzed until the function is called.
func (a *Analyzer) defineFunction(fd *ast.FunctionDef, s *state.State) *typesystem.Func {
	for _, d := range fd.Decorators {
		a.expr(d, s)
	}
	env := s
	for env.Kind == state.Class && env.Parent != nil {
		env = env.Parent
	}
	f := typesystem.NewFunc(fd.Name.ID, s.ExtendPath(fd.Name.ID), fd, env.Ref())
	for _, d := range fd.Defaults {
		f.Defaults = append(f.Defaults, a.expr(d, s))
	}
	kind := binding.Function
	if s.Kind == state.Class {
		f.Cls = typesystem.MustClass(s.Type)
		kind = binding.Method
		if fd.HasDecorator(config.StaticMethodDecorator) || fd.HasDecorator(config.ClassMethodDecorator) {
			f.ClassMethod = true
			kind = binding.ClassMethod
		}
	}
	if !fd.IsLambda {
		b := s.Insert(fd.Name.ID, fd.Name, f, kind)
		b.Body = fd.Pos
	}
	a.addUncalled(f)
	return f
}

// isClassMethod reports whether f receives its class as first argument.
func isClassMethod(f *typesystem.Func) bool {
	return f.ClassMethod && f.Def != nil && f.Def.HasDecorator(config.ClassMethodDecorator)
}

// defineClass creates the class and analyzes its body in the class scope.
// Only the first base class is followed.
func (a *Analyzer) defineClass(cd *ast.ClassDef, s *state.State) *typesystem.Class {
	cs := a.arena.New(s, state.Class)
	cs.Path = s.ExtendPath(cd.Name.ID)
	cls := &typesystem.Class{Name: cd.Name.ID, Path: cs.Path, Table: cs.Ref(), Def: cd}
	cs.Type = cls
	for _, base := range cd.Bases {
		t := a.expr(base, s)
		sup, ok := t.(*typesystem.Class)
		if !ok || cls.Super != nil {
			continue
		}
		cls.Super = sup
		cs.Super = a.arena.Get(sup.Table)
	}
	if len(cd.Bases) > 1 && cls.Super != nil {
		a.warn(diagnostics.ErrW009, cd.Name, cls.Name, cls.Super.Name)
	}
	if cls.Super == nil && a.builtins.object != nil {
		cls.Super = a.builtins.object
		cs.Super = a.arena.Get(a.builtins.object.Table)
	}
	b := s.Insert(cd.Name.ID, cd.Name, cls, binding.Class)
	b.Body = cd.Pos
	a.block(cd.Body, cs)
	return cls
}

// newInstance creates an instance whose table starts with the class's
// instance-level bindings and inherits through the class's superclass.
func (a *Analyzer) newInstance(cls *typesystem.Class) *typesystem.Instance {
	cs := a.arena.Get(cls.Table)
	is := a.arena.New(cs.Parent, state.Instance)
	is.Path = cs.Path
	is.Super = cs.Super
	inst := &typesystem.Instance{Class: cls, Table: is.Ref()}
	is.Type = inst
	for _, name := range cs.Names() {
		for _, b := range cs.LookupLocal(name) {
			if !b.Kind.ClassLevel() {
				is.Update(name, b)
			}
		}
	}
	return inst
}

// canon returns the class's generic instance, creating it without running
// the constructor.
func (a *Analyzer) canon(cls *typesystem.Class) *typesystem.Instance {
	if cls.Canon == nil {
		cls.Canon = a.newInstance(cls)
	}
	return cls.Canon
}

func (a *Analyzer) addUncalled(f *typesystem.Func) {
	if a.calledDefs.Contains(f.Def) {
		return
	}
	if a.uncalled.Insert(f.Def) {
		a.queue = append(a.queue, f.Def)
	}
	a.uncalledFns[f.Def] = f
}

func (a *Analyzer) markCalled(def *ast.FunctionDef) {
	a.calledDefs.Insert(def)
	a.uncalled.Remove(def)
}

// applyUncalled analyzes every function no call reached, in definition
// order, with unknown arguments. Methods receive the generic instance.
// Applying one function may define or call others, so the queue is drained
// until it stays empty.
func (a *Analyzer) applyUncalled() {
	for len(a.queue) > 0 {
		def := a.queue[0]
		a.queue = a.queue[1:]
		if !a.uncalled.Contains(def) {
			continue
		}
		f := a.uncalledFns[def]
		switch {
		case f.IsMethod():
			f = f.Bind(a.canon(f.Cls))
		case isClassMethod(f):
			f = f.Bind(f.Cls)
		}
		a.Apply(f, callArgs{}, nil)
		a.swept++
	}
}
