package typesystem

// IsTrue reports whether t is statically known to be truthy.
// Nil, False and actual zeros are false; Undecided bools, infeasible or
// zero-straddling intervals, Unknown and mixed unions are neither.
func (u *Universe) IsTrue(t Type) bool {
	switch x := t.(type) {
	case *Bool:
		return x.Value == True
	case *Int:
		zero := u.IntValue(0).Range
		return x.Range.Lt(zero) || x.Range.Gt(zero)
	case *Float:
		zero := u.FloatValue(0).Range
		return x.Range.Lt(zero) || x.Range.Gt(zero)
	case *Nil:
		return false
	case *Unknown:
		// Unknown may stand for a falsy value, so neither predicate holds
		// and both branches are analyzed.
		return false
	case *Union:
		for _, m := range x.Members {
			if !u.IsTrue(m) {
				return false
			}
		}
		return true
	}
	return true
}

// IsFalse reports whether t is statically known to be falsy.
func (u *Universe) IsFalse(t Type) bool {
	switch x := t.(type) {
	case *Bool:
		return x.Value == False
	case *Int:
		return x.Range.IsZero()
	case *Float:
		return x.Range.IsZero()
	case *Nil:
		return true
	case *Union:
		for _, m := range x.Members {
			if !u.IsFalse(m) {
				return false
			}
		}
		return true
	}
	return false
}
