package ppm

import "strconv"

// Bound is an optional non-negative limit value. The zero value is unset.
type Bound struct {
	value int
	set   bool
}

// Unbounded is the unset Bound.
var Unbounded = Bound{}

// At returns a Bound set to v.
func At(v int) Bound {
	return Bound{value: v, set: true}
}

// BoundFromRaw converts the text-interface encoding, where -1 means unset.
func BoundFromRaw(v int) Bound {
	if v == -1 {
		return Unbounded
	}
	return At(v)
}

// Get returns the value and whether the bound is set.
func (b Bound) Get() (int, bool) {
	return b.value, b.set
}

// IsSet reports whether the bound carries a value.
func (b Bound) IsSet() bool {
	return b.set
}

// Raw returns the value, or -1 when unset.
func (b Bound) Raw() int {
	if !b.set {
		return -1
	}
	return b.value
}

// Or returns the value, or def when unset.
func (b Bound) Or(def int) int {
	if !b.set {
		return def
	}
	return b.value
}

func (b Bound) String() string {
	if !b.set {
		return "unset"
	}
	return strconv.Itoa(b.value)
}

// MaxBound returns the larger of two bounds. Unset values are ignored;
// the result is unset only when both are.
func MaxBound(a, b Bound) Bound {
	if !a.set {
		return b
	}
	if !b.set {
		return a
	}
	return At(max(a.value, b.value))
}

// MinBound returns the smaller of two bounds. Unset values are ignored;
// the result is unset only when both are.
func MinBound(a, b Bound) Bound {
	if !a.set {
		return b
	}
	if !b.set {
		return a
	}
	return At(min(a.value, b.value))
}
