package state

import (
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/typesystem"
)

// Arena owns every scope node of a session. Handles index into nodes;
// handle 0 is reserved for "no table".
type Arena struct {
	nodes []*State
	u     *typesystem.Universe
	index *binding.Index
}

// NewArena creates an arena and the universe that reads tables through it.
// Bindings inserted into any node are registered with index.
func NewArena(index *binding.Index) *Arena {
	a := &Arena{nodes: []*State{nil}, index: index}
	a.u = typesystem.NewUniverse(a)
	return a
}

func (a *Arena) Universe() *typesystem.Universe { return a.u }

// New allocates a scope node.
func (a *Arena) New(parent *State, kind Kind) *State {
	s := &State{
		Parent: parent,
		Kind:   kind,
		ref:    typesystem.TableRef(len(a.nodes)),
		arena:  a,
		table:  make(map[string][]*binding.Binding),
	}
	a.nodes = append(a.nodes, s)
	return s
}

// Get resolves a handle; nil for NoTable or an unknown handle.
func (a *Arena) Get(ref typesystem.TableRef) *State {
	if ref <= typesystem.NoTable || int(ref) >= len(a.nodes) {
		return nil
	}
	return a.nodes[ref]
}

func (a *Arena) Len() int { return len(a.nodes) - 1 }

func (a *Arena) Names(ref typesystem.TableRef) []string {
	if s := a.Get(ref); s != nil {
		return s.Names()
	}
	return nil
}

func (a *Arena) Types(ref typesystem.TableRef, name string) []typesystem.Type {
	s := a.Get(ref)
	if s == nil {
		return nil
	}
	var out []typesystem.Type
	for _, b := range s.table[name] {
		out = append(out, b.Type)
	}
	return out
}

func (a *Arena) typeOf(bs []*binding.Binding) typesystem.Type {
	ts := make([]typesystem.Type, 0, len(bs))
	for _, b := range bs {
		ts = append(ts, b.Type)
	}
	return a.u.UnionAll(ts...)
}

// TypeOf is the union of the types of bs.
func (a *Arena) TypeOf(bs []*binding.Binding) typesystem.Type {
	return a.typeOf(bs)
}
