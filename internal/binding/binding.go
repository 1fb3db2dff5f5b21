// Package binding records definition sites and the use sites that resolve to them.
package binding

import (
	"fmt"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/typesystem"
)

type Kind int

const (
	Module Kind = iota
	Class
	Function
	Method
	ClassMethod
	Attribute
	Parameter
	Scope
	Variable
	Constant
)

var kindNames = [...]string{
	Module:      "MODULE",
	Class:       "CLASS",
	Function:    "FUNCTION",
	Method:      "METHOD",
	ClassMethod: "CLASS_METHOD",
	Attribute:   "ATTRIBUTE",
	Parameter:   "PARAMETER",
	Scope:       "SCOPE",
	Variable:    "VARIABLE",
	Constant:    "CONSTANT",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ClassLevel reports whether instances leave bindings of this kind behind.
func (k Kind) ClassLevel() bool {
	return k == ClassMethod
}

// Binding is one definition of a name.
type Binding struct {
	Name  string
	QName string
	Kind  Kind
	Node  ast.Node
	Type  typesystem.Type
	Pos   ast.Pos
	// Body spans the whole definition for functions, classes and modules.
	Body ast.Pos
	// URL points to external documentation for builtins.
	URL string

	refs    []ast.Node
	refSeen map[ast.Node]bool
}

// New creates a binding for name defined at node.
func New(name string, node ast.Node, t typesystem.Type, kind Kind) *Binding {
	b := &Binding{Name: name, Node: node, Type: t, Kind: kind}
	if node != nil {
		b.Pos = node.GetPos()
		b.Body = b.Pos
		if u, ok := node.(*ast.Url); ok {
			b.URL = u.URL
		}
	}
	return b
}

// IsBuiltin reports whether the binding has no source and links to documentation instead.
func (b *Binding) IsBuiltin() bool {
	return b.URL != ""
}

// File is the file holding the definition, empty for builtins.
func (b *Binding) File() string {
	return b.Pos.File
}

// Widen joins t into the binding's type.
func (b *Binding) Widen(u *typesystem.Universe, t typesystem.Type) {
	b.Type = u.Union(b.Type, t)
}

// AddRef records a use site. Repeats are ignored.
func (b *Binding) AddRef(node ast.Node) {
	if b.refSeen == nil {
		b.refSeen = make(map[ast.Node]bool)
	}
	if b.refSeen[node] {
		return
	}
	b.refSeen[node] = true
	b.refs = append(b.refs, node)
}

// Refs lists use sites in the order they were recorded.
func (b *Binding) Refs() []ast.Node {
	return b.refs
}

func (b *Binding) String() string {
	return fmt.Sprintf("(binding:%s:kind=%s:node=%s:type=%s:refs=%d)", b.QName, b.Kind, b.Pos, b.Type, len(b.refs))
}
