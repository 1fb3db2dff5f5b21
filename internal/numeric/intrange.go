// Package numeric implements the interval abstractions used for integer and
// floating point values during inference.
package numeric

import (
	"fmt"
	"math/big"
)

// IntRange is an integer interval over arbitrary precision bounds.
// A side is meaningful only when its Bounded flag is set; big.Int has no
// infinity so the flag stands in for it. Values are immutable: every
// operation returns a fresh range and never touches its operands.
type IntRange struct {
	Lower        *big.Int
	Upper        *big.Int
	LowerBounded bool
	UpperBounded bool
}

// UnboundedInt is the range of every integer.
func UnboundedInt() IntRange {
	return IntRange{Lower: new(big.Int), Upper: new(big.Int)}
}

// IntValue is the actual value v.
func IntValue(v int64) IntRange {
	return IntOf(big.NewInt(v))
}

// IntOf is the actual value v. v is copied.
func IntOf(v *big.Int) IntRange {
	return IntRange{
		Lower:        new(big.Int).Set(v),
		Upper:        new(big.Int).Set(v),
		LowerBounded: true,
		UpperBounded: true,
	}
}

// IntBetween is the closed interval [lo, hi]. A nil bound leaves that side open.
func IntBetween(lo, hi *big.Int) IntRange {
	r := UnboundedInt()
	if lo != nil {
		r.Lower.Set(lo)
		r.LowerBounded = true
	}
	if hi != nil {
		r.Upper.Set(hi)
		r.UpperBounded = true
	}
	return r
}

// IsActual reports whether the range holds exactly one known value.
func (r IntRange) IsActual() bool {
	return r.LowerBounded && r.UpperBounded && r.Lower.Cmp(r.Upper) == 0
}

// IsFeasible is false when both sides are bounded and cross.
func (r IntRange) IsFeasible() bool {
	if r.LowerBounded && r.UpperBounded {
		return r.Lower.Cmp(r.Upper) <= 0
	}
	return true
}

// IsZero reports whether the range is the actual value 0.
func (r IntRange) IsZero() bool {
	return r.IsActual() && r.Lower.Sign() == 0
}

// Lt reports whether every value of r is strictly below every value of o.
func (r IntRange) Lt(o IntRange) bool {
	if !r.IsFeasible() || !o.IsFeasible() {
		return false
	}
	return r.UpperBounded && o.LowerBounded && r.Upper.Cmp(o.Lower) < 0
}

// Gt reports whether every value of r is strictly above every value of o.
func (r IntRange) Gt(o IntRange) bool {
	if !r.IsFeasible() || !o.IsFeasible() {
		return false
	}
	return r.LowerBounded && o.UpperBounded && r.Lower.Cmp(o.Upper) > 0
}

// Eq holds only for two actual values with the same scalar.
func (r IntRange) Eq(o IntRange) bool {
	return r.IsActual() && o.IsActual() && r.Lower.Cmp(o.Lower) == 0
}

// SameRange compares the ranges themselves rather than the values they hold.
func (r IntRange) SameRange(o IntRange) bool {
	if r.LowerBounded != o.LowerBounded || r.UpperBounded != o.UpperBounded {
		return false
	}
	if r.LowerBounded && r.Lower.Cmp(o.Lower) != 0 {
		return false
	}
	if r.UpperBounded && r.Upper.Cmp(o.Upper) != 0 {
		return false
	}
	return true
}

func AddInt(a, b IntRange) IntRange {
	return IntRange{
		Lower:        new(big.Int).Add(a.Lower, b.Lower),
		Upper:        new(big.Int).Add(a.Upper, b.Upper),
		LowerBounded: a.LowerBounded && b.LowerBounded,
		UpperBounded: a.UpperBounded && b.UpperBounded,
	}
}

func SubInt(a, b IntRange) IntRange {
	return IntRange{
		Lower:        new(big.Int).Sub(a.Lower, b.Upper),
		Upper:        new(big.Int).Sub(a.Upper, b.Lower),
		LowerBounded: a.LowerBounded && b.UpperBounded,
		UpperBounded: a.UpperBounded && b.LowerBounded,
	}
}

// MulInt multiplies matching bounds only (lower*lower, upper*upper). Ranges
// that span zero come out under-approximated, possibly infeasible.
func MulInt(a, b IntRange) IntRange {
	return IntRange{
		Lower:        new(big.Int).Mul(a.Lower, b.Lower),
		Upper:        new(big.Int).Mul(a.Upper, b.Upper),
		LowerBounded: a.LowerBounded && b.LowerBounded,
		UpperBounded: a.UpperBounded && b.UpperBounded,
	}
}

// DivInt divides by the opposite divisor bound with truncation toward zero.
// A side whose divisor bound is exactly zero becomes unbounded.
func DivInt(a, b IntRange) IntRange {
	r := UnboundedInt()
	if a.LowerBounded && b.UpperBounded && b.Upper.Sign() != 0 {
		r.Lower.Quo(a.Lower, b.Upper)
		r.LowerBounded = true
	}
	if a.UpperBounded && b.LowerBounded && b.Lower.Sign() != 0 {
		r.Upper.Quo(a.Upper, b.Lower)
		r.UpperBounded = true
	}
	return r
}

// Negate mirrors the range around zero.
func (r IntRange) Negate() IntRange {
	return IntRange{
		Lower:        new(big.Int).Neg(r.Upper),
		Upper:        new(big.Int).Neg(r.Lower),
		LowerBounded: r.UpperBounded,
		UpperBounded: r.LowerBounded,
	}
}

// Hull is the smallest range containing both a and b.
func Hull(a, b IntRange) IntRange {
	r := UnboundedInt()
	if a.LowerBounded && b.LowerBounded {
		r.Lower.Set(minInt(a.Lower, b.Lower))
		r.LowerBounded = true
	}
	if a.UpperBounded && b.UpperBounded {
		r.Upper.Set(maxInt(a.Upper, b.Upper))
		r.UpperBounded = true
	}
	return r
}

// WithUpper returns r with its upper bound tightened to hi when hi is lower.
func (r IntRange) WithUpper(hi *big.Int) IntRange {
	out := r.clone()
	if !out.UpperBounded || hi.Cmp(out.Upper) < 0 {
		out.Upper.Set(hi)
		out.UpperBounded = true
	}
	return out
}

// WithLower returns r with its lower bound tightened to lo when lo is higher.
func (r IntRange) WithLower(lo *big.Int) IntRange {
	out := r.clone()
	if !out.LowerBounded || lo.Cmp(out.Lower) > 0 {
		out.Lower.Set(lo)
		out.LowerBounded = true
	}
	return out
}

func (r IntRange) clone() IntRange {
	return IntRange{
		Lower:        new(big.Int).Set(r.Lower),
		Upper:        new(big.Int).Set(r.Upper),
		LowerBounded: r.LowerBounded,
		UpperBounded: r.UpperBounded,
	}
}

// Float converts the range to a float range, keeping open sides open.
func (r IntRange) Float() FloatRange {
	out := UnboundedFloat()
	if r.LowerBounded {
		out.Lower, _ = new(big.Float).SetInt(r.Lower).Float64()
	}
	if r.UpperBounded {
		out.Upper, _ = new(big.Float).SetInt(r.Upper).Float64()
	}
	return out
}

func (r IntRange) String() string {
	if r.IsActual() {
		return r.Lower.String()
	}
	lo, hi := "-inf", "+inf"
	if r.LowerBounded {
		lo = r.Lower.String()
	}
	if r.UpperBounded {
		hi = r.Upper.String()
	}
	return fmt.Sprintf("[%s..%s]", lo, hi)
}

func minInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func maxInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
