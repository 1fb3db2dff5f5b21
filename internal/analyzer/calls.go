package analyzer

import (
	"fmt"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

type keywordArg struct {
	name string
	t    typesystem.Type
}

// callArgs are the evaluated arguments of one call site.
type callArgs struct {
	pos    []typesystem.Type
	kw     []keywordArg
	star   typesystem.Type
	kwstar typesystem.Type
}

func (c callArgs) keyword(name string) (typesystem.Type, bool) {
	for _, k := range c.kw {
		if k.name == name {
			return k.t, true
		}
	}
	return nil, false
}

// frame is one entry of the in-progress call stack.
type frame struct {
	callee any
	args   []typesystem.Type
}

type callStack struct {
	frames []frame
}

func (cs *callStack) push(f frame) { cs.frames = append(cs.frames, f) }
func (cs *callStack) pop()         { cs.frames = cs.frames[:len(cs.frames)-1] }

// depth counts the frames of callee currently on the stack.
func (cs *callStack) depth(callee any) int {
	n := 0
	for _, f := range cs.frames {
		if f.callee == callee {
			n++
		}
	}
	return n
}

func (a *Analyzer) onStack(callee any, args []typesystem.Type) bool {
	for _, f := range a.calls.frames {
		if f.callee != callee || len(f.args) != len(args) {
			continue
		}
		same := true
		for i := range args {
			if !a.u.Equal(f.args[i], args[i]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// guard decides whether a call may proceed. A callee that is already being
// analyzed gets its arguments widened so recursion converges; a frame that
// repeats exactly, or a callee nested too deeply, yields Unknown.
func (a *Analyzer) guard(callee any, args []typesystem.Type) ([]typesystem.Type, bool) {
	d := a.calls.depth(callee)
	if d == 0 {
		return args, true
	}
	limit := a.Options.MaxCallDepth
	if limit <= 0 {
		limit = config.DefaultMaxCallDepth
	}
	if d >= limit {
		return nil, false
	}
	widened := make([]typesystem.Type, len(args))
	for i, t := range args {
		widened[i] = a.widen(t)
	}
	if a.onStack(callee, widened) {
		return nil, false
	}
	return widened, true
}

// widen drops interval bounds and literal values.
func (a *Analyzer) widen(t typesystem.Type) typesystem.Type {
	switch x := t.(type) {
	case *typesystem.Int:
		return a.u.Int
	case *typesystem.Float:
		return a.u.Float
	case *typesystem.Str:
		return a.u.Str
	case *typesystem.Bool:
		return a.u.Bool
	case *typesystem.Union:
		out := make([]typesystem.Type, len(x.Members))
		for i, m := range x.Members {
			out[i] = a.widen(m)
		}
		return a.u.UnionAll(out...)
	}
	return t
}

func (a *Analyzer) call(n *ast.Call, s *state.State) typesystem.Type {
	fn := a.expr(n.Func, s)
	args := callArgs{pos: a.exprs(n.Args, s)}
	for _, k := range n.Keywords {
		args.kw = append(args.kw, keywordArg{name: k.Arg, t: a.expr(k.Value, s)})
	}
	if n.Star != nil {
		args.star = a.expr(n.Star, s)
	}
	if n.KwStar != nil {
		args.kwstar = a.expr(n.KwStar, s)
	}
	return a.applyAll(fn, args, n)
}

// applyAll calls every member of a possibly union-typed callee.
func (a *Analyzer) applyAll(fn typesystem.Type, args callArgs, n ast.Node) typesystem.Type {
	var out []typesystem.Type
	for _, m := range typesystem.Members(fn) {
		switch f := m.(type) {
		case *typesystem.Func:
			out = append(out, a.Apply(f, args, n))
		case *typesystem.Class:
			out = append(out, a.Construct(f, args, n))
		case *typesystem.Unknown:
			out = append(out, a.u.Unknown)
		default:
			a.warn(diagnostics.ErrW001, n, a.u.Print(m))
			out = append(out, a.u.Unknown)
		}
	}
	return a.u.UnionAll(out...)
}

// Apply analyzes a call of f. The body is analyzed in a fresh scope whose
// parent is the scope f was defined in, once per distinct argument tuple.
// node is the call site; it is nil when f is applied by the uncalled sweep,
// which suppresses arity checks.
func (a *Analyzer) Apply(f *typesystem.Func, args callArgs, node ast.Node) typesystem.Type {
	if f.Def == nil {
		if f.Native != nil {
			return f.Native(a.u, f.Self, args.pos)
		}
		if f.Returns != nil {
			return f.Returns
		}
		return a.u.Unknown
	}
	a.markCalled(f.Def)
	if f.Self != nil {
		args.pos = append([]typesystem.Type{f.Self}, args.pos...)
	}
	types, problem := a.paramTypes(f, args, node != nil)
	if problem != "" {
		a.warn(diagnostics.ErrW002, node, f.Name, problem)
		return a.u.Unknown
	}
	types, ok := a.guard(f.Def, types)
	if !ok {
		return a.u.Unknown
	}
	from := a.u.NewTuple(types...)
	if to, ok := a.u.CachedResult(f, from); ok {
		return to
	}

	a.calls.push(frame{callee: f.Def, args: types})
	defer a.calls.pop()

	env := a.arena.Get(f.Env)
	fs := a.arena.New(env, state.Function)
	fs.Path = f.Path
	fs.Type = f
	def := f.Def
	for i, p := range def.Params {
		fs.Insert(p.ID, p, types[i], binding.Parameter)
	}
	rest := types[len(def.Params):]
	if def.Vararg != nil {
		fs.Insert(def.Vararg.ID, def.Vararg, rest[0], binding.Parameter)
		rest = rest[1:]
	}
	if def.Kwarg != nil {
		fs.Insert(def.Kwarg.ID, def.Kwarg, rest[0], binding.Parameter)
	}

	out := a.block(def.Body, fs)
	ret := out.ret
	if out.falls {
		if ret != nil && !def.IsLambda && !typesystem.IsNil(ret) {
			a.warn(diagnostics.ErrW006, def.Name, f.Name)
		}
		ret = a.joinRet(ret, a.u.Nil)
	}
	a.u.AddArrow(f, from, ret)
	a.applied++
	return ret
}

// paramTypes matches call arguments to f's parameters. The result holds one
// type per parameter followed by the *args and **kwargs types when declared.
// A non-empty problem describes an arity mismatch.
func (a *Analyzer) paramTypes(f *typesystem.Func, args callArgs, checked bool) ([]typesystem.Type, string) {
	def := f.Def
	n := len(def.Params)
	out := make([]typesystem.Type, n, n+2)
	firstDefault := n - len(f.Defaults)
	var starElem typesystem.Type
	if args.star != nil {
		starElem = a.elemType(args.star)
	}
	used := make(map[string]bool)
	for i, p := range def.Params {
		switch {
		case i < len(args.pos):
			out[i] = args.pos[i]
		case hasKeyword(args, p.ID):
			out[i], _ = args.keyword(p.ID)
			used[p.ID] = true
		case starElem != nil:
			out[i] = starElem
		case i >= firstDefault:
			out[i] = f.Defaults[i-firstDefault]
		case !checked:
			out[i] = a.u.Unknown
		default:
			return nil, fmt.Sprintf("missing argument %s", p.ID)
		}
	}
	if len(args.pos) > n {
		if def.Vararg == nil && checked {
			return nil, fmt.Sprintf("expected at most %d arguments, got %d", n, len(args.pos))
		}
	}
	if def.Vararg != nil {
		var extra []typesystem.Type
		if len(args.pos) > n {
			extra = args.pos[n:]
		}
		if starElem != nil {
			extra = append(extra, starElem)
		}
		out = append(out, a.u.ListOf(a.u.UnionAll(extra...)))
	}
	var kwValues []typesystem.Type
	for _, k := range args.kw {
		if used[k.name] {
			continue
		}
		if def.Kwarg == nil && checked && args.kwstar == nil {
			return nil, fmt.Sprintf("unexpected keyword argument %s", k.name)
		}
		kwValues = append(kwValues, k.t)
	}
	if def.Kwarg != nil {
		if d, ok := args.kwstar.(*typesystem.Dict); ok {
			kwValues = append(kwValues, d.Value)
		}
		out = append(out, a.u.NewDict(a.u.Str, a.u.UnionAll(kwValues...)))
	}
	return out, ""
}

func hasKeyword(args callArgs, name string) bool {
	_, ok := args.keyword(name)
	return ok
}

// Construct analyzes `cls(args)`: a new instance receives the class's
// instance-level bindings and is passed to the constructor.
func (a *Analyzer) Construct(cls *typesystem.Class, args callArgs, node ast.Node) typesystem.Type {
	if ctor := a.builtins.ctors[cls]; ctor != nil {
		return ctor(args.pos)
	}
	pos, ok := a.guard(cls, args.pos)
	if !ok {
		return a.u.Unknown
	}
	args.pos = pos
	a.calls.push(frame{callee: cls, args: pos})
	defer a.calls.pop()

	inst := a.newInstance(cls)
	if cls.Canon == nil {
		cls.Canon = inst
	}
	is := a.arena.Get(inst.Table)
	bs := is.LookupAttr(config.InitMethodName)
	if len(bs) == 0 {
		bs = is.LookupAttr(config.InitializerName)
	}
	if len(bs) == 0 {
		if len(args.pos) > 0 && node != nil {
			a.warn(diagnostics.ErrW002, node, cls.Name, fmt.Sprintf("expected 0 arguments, got %d", len(args.pos)))
		}
		return inst
	}
	if call, ok := node.(*ast.Call); ok {
		a.Index.PutRef(call, bs)
	}
	for _, b := range bs {
		if f, ok := b.Type.(*typesystem.Func); ok {
			a.Apply(f.Bind(inst), args, node)
		}
	}
	return inst
}

// elemType is the type produced by iterating over t.
func (a *Analyzer) elemType(t typesystem.Type) typesystem.Type {
	var out []typesystem.Type
	for _, m := range typesystem.Members(t) {
		switch x := m.(type) {
		case *typesystem.List:
			out = append(out, x.Elem)
		case *typesystem.Tuple:
			out = append(out, a.u.UnionAll(x.Elems...))
		case *typesystem.Dict:
			out = append(out, x.Key)
		case *typesystem.Str:
			out = append(out, a.u.Str)
		default:
			out = append(out, a.u.Unknown)
		}
	}
	return a.u.UnionAll(out...)
}
