package binding

import "github.com/funvibe/funsonar/internal/ast"

// Index is the store of every binding created in a run and every resolved
// use site. A use site keeps the first candidate list recorded for it.
type Index struct {
	bindings []*Binding
	refs     map[ast.Node][]*Binding
	order    []ast.Node
	rejected int
}

func NewIndex() *Index {
	return &Index{refs: make(map[ast.Node][]*Binding)}
}

// Register adds b to the list of all bindings.
func (ix *Index) Register(b *Binding) {
	ix.bindings = append(ix.bindings, b)
}

// Bindings lists every registered binding in creation order.
func (ix *Index) Bindings() []*Binding {
	return ix.bindings
}

// PutRef records that node resolves to bs. A node that already resolved to a
// different candidate set keeps its first resolution and PutRef returns false.
func (ix *Index) PutRef(node ast.Node, bs []*Binding) bool {
	if node == nil || len(bs) == 0 {
		return false
	}
	if prev, ok := ix.refs[node]; ok {
		if sameBindings(prev, bs) {
			return true
		}
		ix.rejected++
		return false
	}
	ix.refs[node] = append([]*Binding(nil), bs...)
	ix.order = append(ix.order, node)
	for _, b := range bs {
		b.AddRef(node)
	}
	return true
}

// Ref returns the candidates recorded for node.
func (ix *Index) Ref(node ast.Node) ([]*Binding, bool) {
	bs, ok := ix.refs[node]
	return bs, ok
}

// Reference pairs a use site with its candidate bindings.
type Reference struct {
	Node     ast.Node
	Bindings []*Binding
}

// References lists resolved use sites in the order they were first recorded.
func (ix *Index) References() []Reference {
	out := make([]Reference, 0, len(ix.order))
	for _, n := range ix.order {
		out = append(out, Reference{Node: n, Bindings: ix.refs[n]})
	}
	return out
}

// Rejected counts re-resolutions that were dropped in favor of the first one.
func (ix *Index) Rejected() int { return ix.rejected }

func sameBindings(a, b []*Binding) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[*Binding]bool, len(a))
	for _, x := range a {
		seen[x] = true
	}
	for _, y := range b {
		if !seen[y] {
			return false
		}
	}
	return true
}
