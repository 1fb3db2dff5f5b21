// Package state implements the scope tree: lexical parents for name lookup,
// super edges for attribute inheritance, and the arena that owns every node.
package state

import (
	"slices"
	"sort"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/typesystem"
)

type Kind int

const (
	Global Kind = iota
	Module
	Class
	Instance
	Function
	Scope
)

var kindNames = [...]string{
	Global:   "GLOBAL",
	Module:   "MODULE",
	Class:    "CLASS",
	Instance: "INSTANCE",
	Function: "FUNCTION",
	Scope:    "SCOPE",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "SCOPE?"
}

// Separator joins qualified name segments.
const Separator = "."

// State is one scope node.
type State struct {
	Parent *State
	Super  *State
	Kind   Kind
	Path   string
	// Type is the value this scope belongs to: a class, instance, module or function.
	Type typesystem.Type

	ref     typesystem.TableRef
	arena   *Arena
	table   map[string][]*binding.Binding
	refined map[string]typesystem.Type
}

// Ref is the handle types use to refer to this node.
func (s *State) Ref() typesystem.TableRef { return s.ref }

func (s *State) Arena() *Arena { return s.arena }

// ExtendPath is the qualified name of name defined in this scope.
func (s *State) ExtendPath(name string) string {
	if s.Path == "" {
		return name
	}
	return s.Path + Separator + name
}

// Insert creates and registers a binding for name and appends it to this scope.
func (s *State) Insert(name string, node ast.Node, t typesystem.Type, kind binding.Kind) *binding.Binding {
	b := binding.New(name, node, t, kind)
	b.QName = s.ExtendPath(name)
	if s.arena.index != nil {
		s.arena.index.Register(b)
	}
	s.Update(name, b)
	return b
}

// Update appends b to the bindings of name. Earlier bindings stay visible.
func (s *State) Update(name string, b *binding.Binding) {
	delete(s.refined, name)
	for _, old := range s.table[name] {
		if old == b {
			return
		}
	}
	s.table[name] = append(s.table[name], b)
}

// UpdateAll appends each of bs.
func (s *State) UpdateAll(name string, bs []*binding.Binding) {
	for _, b := range bs {
		s.Update(name, b)
	}
}

// Remove drops every binding of name from this scope only.
func (s *State) Remove(name string) {
	delete(s.table, name)
	delete(s.refined, name)
}

// LookupLocal returns the bindings of name in this scope only.
func (s *State) LookupLocal(name string) []*binding.Binding {
	return s.table[name]
}

// Lookup walks the lexical parents and returns the bindings from the first
// scope that defines name. Outer definitions are shadowed.
func (s *State) Lookup(name string) []*binding.Binding {
	if found := s.LookupScope(name); found != nil {
		return found.table[name]
	}
	return nil
}

// LookupScope returns the nearest scope that defines name.
func (s *State) LookupScope(name string) *State {
	for st := s; st != nil; st = st.Parent {
		if len(st.table[name]) > 0 {
			return st
		}
	}
	return nil
}

// LookupType is the type of name as seen from this scope: a narrowed type
// if a branch refined it, else the union of its bindings. nil if unbound.
func (s *State) LookupType(name string) typesystem.Type {
	for st := s; st != nil; st = st.Parent {
		if t, ok := st.refined[name]; ok {
			return t
		}
		if bs := st.table[name]; len(bs) > 0 {
			return s.arena.typeOf(bs)
		}
	}
	return nil
}

// Refine narrows the type of name within this scope without adding a binding.
func (s *State) Refine(name string, t typesystem.Type) {
	if s.refined == nil {
		s.refined = make(map[string]typesystem.Type)
	}
	s.refined[name] = t
}

// Names lists the names bound in this scope, sorted.
func (s *State) Names() []string {
	out := make([]string, 0, len(s.table))
	for name := range s.table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Copy creates a new node with the same links and a copy of the table.
// Binding slices are cloned so later updates do not leak between copies.
func (s *State) Copy() *State {
	c := s.arena.New(s.Parent, s.Kind)
	c.Super = s.Super
	c.Path = s.Path
	c.Type = s.Type
	for name, bs := range s.table {
		c.table[name] = slices.Clone(bs)
	}
	for name, t := range s.refined {
		c.Refine(name, t)
	}
	return c
}

// Overwrite makes s share the contents of other.
func (s *State) Overwrite(other *State) {
	s.Parent = other.Parent
	s.Super = other.Super
	s.Kind = other.Kind
	s.Path = other.Path
	s.Type = other.Type
	s.table = other.table
	s.refined = other.refined
}

// Merge joins other into s: binding sets are combined name by name and a
// refinement survives only when both sides refined the name.
func (s *State) Merge(other *State) {
	for name, bs := range other.table {
		s.UpdateAllKeepRefined(name, bs)
	}
	for name, t := range s.refined {
		ot, ok := other.refined[name]
		if !ok {
			delete(s.refined, name)
			continue
		}
		s.refined[name] = s.arena.u.Union(t, ot)
	}
}

// UpdateAllKeepRefined appends bs without touching refinements.
func (s *State) UpdateAllKeepRefined(name string, bs []*binding.Binding) {
	existing := s.table[name]
	for _, b := range bs {
		if !slices.Contains(existing, b) {
			existing = append(existing, b)
		}
	}
	s.table[name] = existing
}
