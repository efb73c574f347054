// Package scalar implements the two fixed-point scalar kinds the cadence
// engine runs on: Turn, a wrapping (circular) phase, and Unit, a
// saturating linear magnitude. Both are backed by a plain uint32 so
// arithmetic stays branch-free and deterministic across platforms.
package scalar

// Turn is a circular fixed-point phase in [0, 2^32) representing one full
// revolution. Arithmetic wraps modulo 2^32, matching a clock face: adding
// past the top comes back around to zero.
type Turn uint32

// HalfTurn is exactly half a revolution, used by Dist to fold a raw
// difference into the shorter arc.
const HalfTurn Turn = 1 << 31

// TurnFromFrac returns floor(num*2^32/den) as a Turn, the same formula
// used to build every golden default constant in the recipe package.
// den must be non-zero.
func TurnFromFrac(num, den uint64) Turn {
	return Turn((num << 32) / den)
}

// Add returns t+other, wrapping modulo 2^32.
func (t Turn) Add(other Turn) Turn {
	return t + other
}

// Sub returns t-other, wrapping modulo 2^32.
func (t Turn) Sub(other Turn) Turn {
	return t - other
}

// Dist returns the shortest circular distance between two turns, always
// in [0, HalfTurn].
func (t Turn) Dist(other Turn) Turn {
	d := t - other
	if d > HalfTurn {
		d = -d
	}
	return d
}

// Uint32 returns the raw wrapping representation.
func (t Turn) Uint32() uint32 {
	return uint32(t)
}
