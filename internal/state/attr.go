package state

import (
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/hashicorp/go-set/v3"
)

// LookupAttr finds name in this node's own table or, failing that, along
// the super chain. The first node that binds name wins. Cyclic super
// chains terminate.
func (s *State) LookupAttr(name string) []*binding.Binding {
	looked := set.New[*State](4)
	for st := s; st != nil; st = st.Super {
		if !looked.Insert(st) {
			return nil
		}
		if bs := st.table[name]; len(bs) > 0 {
			return bs
		}
	}
	return nil
}

// AttrNames lists the names visible as attributes, own names first, without
// repeats, following the super chain.
func (s *State) AttrNames() []string {
	looked := set.New[*State](4)
	seen := set.New[string](16)
	var out []string
	for st := s; st != nil && looked.Insert(st); st = st.Super {
		for _, name := range st.Names() {
			if seen.Insert(name) {
				out = append(out, name)
			}
		}
	}
	return out
}
