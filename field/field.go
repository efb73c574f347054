// Package field evaluates the deterministic symbolic field model: a sum
// of triangle waves driven by phase, tick, and time counters, saturating
// into a single clamped int64 sample.
package field

import "math"

// Wave is one triangle-wave term of a field model. All coefficient
// arithmetic on the driving phase is wrapping uint32 math; only the final
// accumulation across waves saturates.
type Wave struct {
	KPhi  uint32
	KT    uint32
	KTime uint32
	Phase uint32
	Amp   int32
}

// Clamp bounds the accumulated field sample.
type Clamp struct {
	Min int64
	Max int64
}

// Model is an ordered list of waves evaluated and summed together.
type Model struct {
	Waves []Wave
	Clamp Clamp
}

// triU32 turns a raw uint32 phase into a triangle wave sample in
// [-32768, 32767]. The top 16 bits of x form a 0..65535 ramp; its own top
// bit (== x's bit 31) selects whether that ramp runs rising or mirrored.
func triU32(x uint32) int32 {
	ramp := int32(x >> 16)
	if x&0x80000000 != 0 {
		return (65535 - ramp) - 32768
	}
	return ramp - 32768
}

// saturatingAddInt64 adds a and b, clamping to the int64 range on overflow
// instead of wrapping.
func saturatingAddInt64(a, b int64) int64 {
	sum := a + b
	if a > 0 && b > 0 && sum < 0 {
		return math.MaxInt64
	}
	if a < 0 && b < 0 && sum > 0 {
		return math.MinInt64
	}
	return sum
}

// EvalWave evaluates a single wave term at the given phase, tick, and time
// counters.
func EvalWave(w Wave, phi, t, time uint32) int64 {
	x := w.Phase + w.KPhi*phi + w.KT*t + w.KTime*time
	tri := triU32(x)
	return int64(tri) * int64(w.Amp)
}

// EvalRaw sums every wave's contribution with saturating int64
// accumulation, before any clamp is applied.
func EvalRaw(waves []Wave, phi, t, time uint32) int64 {
	var sum int64
	for _, w := range waves {
		sum = saturatingAddInt64(sum, EvalWave(w, phi, t, time))
	}
	return sum
}

// Eval evaluates the full model and clamps the result into m.Clamp.
func (m Model) Eval(phi, t, time uint32) int64 {
	raw := EvalRaw(m.Waves, phi, t, time)
	if raw < m.Clamp.Min {
		return m.Clamp.Min
	}
	if raw > m.Clamp.Max {
		return m.Clamp.Max
	}
	return raw
}
