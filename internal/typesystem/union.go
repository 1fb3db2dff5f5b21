package typesystem

import (
	"github.com/funvibe/funsonar/internal/numeric"
	"github.com/hashicorp/go-set/v3"
)

// Union joins two types. Nested unions are flattened, equal members
// collapse, and a single remaining member is returned as itself.
// Unknown is absorbed by any other member. Same-kind scalars join in place:
// intervals to their hull, differing bools to Undecided, differing strings
// to a string of unknown value, lists and dicts element-wise.
func (u *Universe) Union(a, b Type) Type {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case u.Equal(a, b):
		return a
	case IsUnknown(a):
		return b
	case IsUnknown(b):
		return a
	}
	var out []Type
	for _, m := range Members(a) {
		out = u.addMember(out, m)
	}
	for _, m := range Members(b) {
		out = u.addMember(out, m)
	}
	return u.collapse(out)
}

// UnionAll joins all of ts. With no arguments it returns Unknown.
func (u *Universe) UnionAll(ts ...Type) Type {
	var out []Type
	for _, t := range ts {
		if t == nil {
			continue
		}
		for _, m := range Members(t) {
			out = u.addMember(out, m)
		}
	}
	return u.collapse(out)
}

func (u *Universe) collapse(members []Type) Type {
	if len(members) > 1 {
		known := members[:0:0]
		for _, m := range members {
			if !IsUnknown(m) {
				known = append(known, m)
			}
		}
		members = known
	}
	switch len(members) {
	case 0:
		return u.Unknown
	case 1:
		return members[0]
	}
	return &Union{Members: members}
}

func (u *Universe) addMember(list []Type, m Type) []Type {
	for i, x := range list {
		if u.Equal(x, m) {
			return list
		}
		if j := u.join(x, m); j != nil {
			list[i] = j
			return list
		}
	}
	return append(list, m)
}

// join merges two members of the same kind, or returns nil when they stay apart.
func (u *Universe) join(a, b Type) Type {
	switch x := a.(type) {
	case *Int:
		if y, ok := b.(*Int); ok {
			return &Int{Range: numeric.Hull(x.Range, y.Range)}
		}
	case *Float:
		if y, ok := b.(*Float); ok {
			return &Float{Range: numeric.HullFloat(x.Range, y.Range)}
		}
	case *Bool:
		if _, ok := b.(*Bool); ok {
			return u.Bool
		}
	case *Str:
		if _, ok := b.(*Str); ok {
			return u.Str
		}
	case *List:
		if y, ok := b.(*List); ok {
			return &List{Elem: u.Union(x.Elem, y.Elem)}
		}
	case *Dict:
		if y, ok := b.(*Dict); ok {
			return &Dict{Key: u.Union(x.Key, y.Key), Value: u.Union(x.Value, y.Value)}
		}
	}
	return nil
}

// Contains reports whether t is, or has a member equal to, m.
func (u *Universe) Contains(t, m Type) bool {
	for _, x := range Members(t) {
		if u.Equal(x, m) {
			return true
		}
	}
	return false
}

// Remove drops members equal to m.
func (u *Universe) Remove(t, m Type) Type {
	var out []Type
	for _, x := range Members(t) {
		if !u.Equal(x, m) {
			out = append(out, x)
		}
	}
	return u.collapse(out)
}

// Equal is structural equality with a pair stack for cyclic values.
// Classes compare by identity, modules by file, instances by class and the
// set of attribute names they hold.
func (u *Universe) Equal(a, b Type) bool {
	return u.equal(a, b, &pairStack{})
}

type pair struct{ a, b Type }

type pairStack struct {
	pairs []pair
}

func (s *pairStack) contains(a, b Type) bool {
	for _, p := range s.pairs {
		if (p.a == a && p.b == b) || (p.a == b && p.b == a) {
			return true
		}
	}
	return false
}

func (s *pairStack) push(a, b Type) { s.pairs = append(s.pairs, pair{a, b}) }
func (s *pairStack) pop()           { s.pairs = s.pairs[:len(s.pairs)-1] }

func (u *Universe) equal(a, b Type, st *pairStack) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Tag() != b.Tag() {
		return false
	}
	if st.contains(a, b) {
		return true
	}
	switch x := a.(type) {
	case *Unknown, *Nil:
		return true
	case *Bool:
		return x.Value == b.(*Bool).Value
	case *Int:
		return x.Range.SameRange(b.(*Int).Range)
	case *Float:
		return x.Range.SameRange(b.(*Float).Range)
	case *Str:
		y := b.(*Str)
		return x.Known == y.Known && x.Value == y.Value
	case *List:
		st.push(a, b)
		defer st.pop()
		return u.equal(x.Elem, b.(*List).Elem, st)
	case *Dict:
		y := b.(*Dict)
		st.push(a, b)
		defer st.pop()
		return u.equal(x.Key, y.Key, st) && u.equal(x.Value, y.Value, st)
	case *Tuple:
		y := b.(*Tuple)
		if len(x.Elems) != len(y.Elems) {
			return false
		}
		st.push(a, b)
		defer st.pop()
		for i := range x.Elems {
			if !u.equal(x.Elems[i], y.Elems[i], st) {
				return false
			}
		}
		return true
	case *Union:
		y := b.(*Union)
		st.push(a, b)
		defer st.pop()
		return u.subset(x.Members, y.Members, st) && u.subset(y.Members, x.Members, st)
	case *Func:
		y := b.(*Func)
		return x.Def != nil && x.Def == y.Def && x.Cls == y.Cls
	case *Class:
		return false
	case *Instance:
		y := b.(*Instance)
		if x.Class != y.Class {
			return false
		}
		if x.Table == y.Table {
			return true
		}
		xs := set.From(u.AttrNames(x.Table))
		ys := set.From(u.AttrNames(y.Table))
		return xs.Equal(ys)
	case *Module:
		y := b.(*Module)
		return x.File != "" && y.File != "" && x.File == y.File
	}
	return false
}

func (u *Universe) subset(xs, ys []Type, st *pairStack) bool {
	for _, x := range xs {
		found := false
		for _, y := range ys {
			if u.equal(x, y, st) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
