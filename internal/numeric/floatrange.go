package numeric

import (
	"math"
	"strconv"
)

// FloatRange is a floating point interval. Open sides are -Inf and +Inf.
type FloatRange struct {
	Lower float64
	Upper float64
}

func UnboundedFloat() FloatRange {
	return FloatRange{Lower: math.Inf(-1), Upper: math.Inf(1)}
}

func FloatValue(v float64) FloatRange {
	return FloatRange{Lower: v, Upper: v}
}

func FloatBetween(lo, hi float64) FloatRange {
	return FloatRange{Lower: lo, Upper: hi}
}

func (r FloatRange) LowerBounded() bool { return !math.IsInf(r.Lower, -1) }
func (r FloatRange) UpperBounded() bool { return !math.IsInf(r.Upper, 1) }

func (r FloatRange) IsActual() bool {
	return r.LowerBounded() && r.UpperBounded() && r.Lower == r.Upper
}

func (r FloatRange) IsFeasible() bool {
	if math.IsNaN(r.Lower) || math.IsNaN(r.Upper) {
		return false
	}
	return r.Lower <= r.Upper
}

func (r FloatRange) IsZero() bool {
	return r.IsActual() && r.Lower == 0
}

func (r FloatRange) Lt(o FloatRange) bool {
	if !r.IsFeasible() || !o.IsFeasible() {
		return false
	}
	return r.UpperBounded() && o.LowerBounded() && r.Upper < o.Lower
}

func (r FloatRange) Gt(o FloatRange) bool {
	if !r.IsFeasible() || !o.IsFeasible() {
		return false
	}
	return r.LowerBounded() && o.UpperBounded() && r.Lower > o.Upper
}

func (r FloatRange) Eq(o FloatRange) bool {
	return r.IsActual() && o.IsActual() && r.Lower == o.Lower
}

func (r FloatRange) SameRange(o FloatRange) bool {
	return r.Lower == o.Lower && r.Upper == o.Upper
}

func AddFloat(a, b FloatRange) FloatRange {
	return bound(a.Lower+b.Lower, a.Upper+b.Upper,
		a.LowerBounded() && b.LowerBounded(), a.UpperBounded() && b.UpperBounded())
}

func SubFloat(a, b FloatRange) FloatRange {
	return bound(a.Lower-b.Upper, a.Upper-b.Lower,
		a.LowerBounded() && b.UpperBounded(), a.UpperBounded() && b.LowerBounded())
}

// MulFloat follows MulInt: lower*lower and upper*upper only.
func MulFloat(a, b FloatRange) FloatRange {
	return bound(a.Lower*b.Lower, a.Upper*b.Upper,
		a.LowerBounded() && b.LowerBounded(), a.UpperBounded() && b.UpperBounded())
}

func DivFloat(a, b FloatRange) FloatRange {
	return bound(a.Lower/b.Upper, a.Upper/b.Lower,
		a.LowerBounded() && b.UpperBounded() && b.Upper != 0,
		a.UpperBounded() && b.LowerBounded() && b.Lower != 0)
}

func (r FloatRange) Negate() FloatRange {
	return FloatRange{Lower: -r.Upper, Upper: -r.Lower}
}

func HullFloat(a, b FloatRange) FloatRange {
	return FloatRange{Lower: math.Min(a.Lower, b.Lower), Upper: math.Max(a.Upper, b.Upper)}
}

// bound builds a range, opening any side that is not bounded or not a number.
func bound(lo, hi float64, loOK, hiOK bool) FloatRange {
	r := UnboundedFloat()
	if loOK && !math.IsNaN(lo) && !math.IsInf(lo, 0) {
		r.Lower = lo
	}
	if hiOK && !math.IsNaN(hi) && !math.IsInf(hi, 0) {
		r.Upper = hi
	}
	return r
}

func (r FloatRange) String() string {
	if r.IsActual() {
		return formatFloat(r.Lower)
	}
	lo, hi := "-inf", "+inf"
	if r.LowerBounded() {
		lo = formatFloat(r.Lower)
	}
	if r.UpperBounded() {
		hi = formatFloat(r.Upper)
	}
	return "[" + lo + ".." + hi + "]"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
