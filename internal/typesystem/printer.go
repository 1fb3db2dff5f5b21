package typesystem

import (
	"strconv"
	"strings"
)

// Print renders t. Cyclic values terminate: the first occurrence of a value
// that is reached again while it is being printed is prefixed with #N= and
// the repeat is written as #N#. Instances are identified by their class.
func (u *Universe) Print(t Type) string {
	p := &printer{u: u, debug: u.Debug, ids: make(map[any]int), used: make(map[any]bool)}
	var sb strings.Builder
	p.print(t, &sb)
	return sb.String()
}

// plain renders without access to scope tables; instances print their class name only.
func plain(t Type) string {
	p := &printer{ids: make(map[any]int), used: make(map[any]bool)}
	var sb strings.Builder
	p.print(t, &sb)
	return sb.String()
}

type printer struct {
	u     *Universe
	debug bool
	stack []any
	ids   map[any]int
	used  map[any]bool
	next  int
}

func (p *printer) push(key any) int {
	p.next++
	p.ids[key] = p.next
	p.stack = append(p.stack, key)
	return p.next
}

func (p *printer) pop() {
	key := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	delete(p.ids, key)
}

func (p *printer) onStack(key any) (int, bool) {
	id, ok := p.ids[key]
	return id, ok
}

func identity(t Type) any {
	if inst, ok := t.(*Instance); ok {
		return inst.Class
	}
	return t
}

func (p *printer) print(t Type, sb *strings.Builder) {
	switch x := t.(type) {
	case nil:
		sb.WriteString("?")
		return
	case *Unknown:
		sb.WriteString("?")
		return
	case *Nil:
		sb.WriteString("nil")
		return
	case *Bool:
		sb.WriteString("bool")
		if p.debug && x.Value != Undecided {
			sb.WriteString("(" + strconv.FormatBool(x.Value == True) + ")")
		}
		return
	case *Int:
		sb.WriteString("int")
		if p.debug {
			p.bounds(x.Range.String(), x.Range.IsActual(), sb)
		}
		return
	case *Float:
		sb.WriteString("float")
		if p.debug {
			p.bounds(x.Range.String(), x.Range.IsActual(), sb)
		}
		return
	case *Str:
		sb.WriteString("str")
		if p.debug && x.Known {
			sb.WriteString("(" + strconv.Quote(x.Value) + ")")
		}
		return
	case *Class:
		sb.WriteString("<" + x.Name + ">")
		return
	case *Module:
		sb.WriteString("<module " + x.Name + ">")
		return
	}

	key := identity(t)
	if id, ok := p.onStack(key); ok {
		p.used[key] = true
		sb.WriteString("#" + strconv.Itoa(id) + "#")
		return
	}
	id := p.push(key)
	var body strings.Builder
	p.composite(t, &body)
	p.pop()
	if p.used[key] {
		delete(p.used, key)
		sb.WriteString("#" + strconv.Itoa(id) + "=")
	}
	sb.WriteString(body.String())
}

func (p *printer) bounds(s string, actual bool, sb *strings.Builder) {
	if actual {
		sb.WriteString("(" + s + ")")
		return
	}
	sb.WriteString(s)
}

func (p *printer) composite(t Type, sb *strings.Builder) {
	switch x := t.(type) {
	case *List:
		sb.WriteString("[")
		p.print(x.Elem, sb)
		sb.WriteString("]")
	case *Dict:
		sb.WriteString("{")
		p.print(x.Key, sb)
		sb.WriteString(": ")
		p.print(x.Value, sb)
		sb.WriteString("}")
	case *Tuple:
		p.tuple(x.Elems, sb)
	case *Union:
		sb.WriteString("{")
		for i, m := range x.Members {
			if i > 0 {
				sb.WriteString(" | ")
			}
			p.print(m, sb)
		}
		sb.WriteString("}")
	case *Func:
		p.function(x, sb)
	case *Instance:
		sb.WriteString(x.Class.Name)
		if p.u == nil {
			return
		}
		names := p.u.AttrNames(x.Table)
		if len(names) == 0 {
			return
		}
		sb.WriteString("{")
		for i, name := range names {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(name + ": ")
			p.print(p.u.AttrType(x.Table, name), sb)
		}
		sb.WriteString("}")
	}
}

func (p *printer) tuple(elems []Type, sb *strings.Builder) {
	sb.WriteString("(")
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		p.print(e, sb)
	}
	sb.WriteString(")")
}

// function prints each arrow as (params) -> result. Method receivers are omitted.
func (p *printer) function(f *Func, sb *strings.Builder) {
	arrows := f.Arrows()
	if len(arrows) == 0 {
		if f.Def == nil && f.Returns != nil {
			sb.WriteString("(...) -> ")
			p.print(f.Returns, sb)
			return
		}
		sb.WriteString("? -> ?")
		return
	}
	for i, a := range arrows {
		if i > 0 {
			sb.WriteString(" | ")
		}
		params := a.From.Elems
		if f.IsMethod() && len(params) > 0 {
			params = params[1:]
		}
		p.tuple(params, sb)
		sb.WriteString(" -> ")
		p.print(a.To, sb)
	}
}
