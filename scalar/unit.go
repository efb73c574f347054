package scalar

import "math"

// Unit is a saturating linear fixed-point magnitude in [0, 2^32). Unlike
// Turn it never wraps: arithmetic that would overflow clamps to the
// maximum representable value instead.
type Unit uint32

// MaxUnit is the largest representable Unit value.
const MaxUnit Unit = math.MaxUint32

// UnitFromFrac returns floor(num*2^32/den) as a Unit. This mirrors
// TurnFromFrac exactly: the reference recipe defaults are built from this
// formula for both scalar kinds, not from a max-value-scaled variant.
func UnitFromFrac(num, den uint64) Unit {
	return Unit((num << 32) / den)
}

// SaturatingAdd returns u+other, clamped to MaxUnit instead of wrapping.
func (u Unit) SaturatingAdd(other Unit) Unit {
	sum := uint64(u) + uint64(other)
	if sum > uint64(MaxUnit) {
		return MaxUnit
	}
	return Unit(sum)
}

// IsMax reports whether u has saturated to MaxUnit.
func (u Unit) IsMax() bool {
	return u == MaxUnit
}

// Uint32 returns the raw representation.
func (u Unit) Uint32() uint32 {
	return uint32(u)
}
