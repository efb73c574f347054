package cadence

// NumBins is the fixed alphabet size the quantizer rounds samples into.
const NumBins = 16

func saturatingAddInt64(a, b int64) int64 {
	sum := a + b
	const maxInt64 = int64(1<<63 - 1)
	const minInt64 = -maxInt64 - 1
	if a > 0 && b > 0 && sum < 0 {
		return maxInt64
	}
	if a < 0 && b < 0 && sum > 0 {
		return minInt64
	}
	return sum
}

// ShiftedBounds applies shift to both min and max with saturating
// addition, before either bound is used for quantization. It is applied
// to labels only, never to the underlying field dynamics.
func ShiftedBounds(min, max, shift int64) (int64, int64) {
	return saturatingAddInt64(min, shift), saturatingAddInt64(max, shift)
}

// Quantize rounds s into one of NumBins bins spanning [min, max],
// rounding to nearest with ties resolved upward. Defensive against a
// swapped or degenerate [min, max]: a degenerate range always quantizes
// to bin 0.
func Quantize(s, min, max int64) int {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return 0
	}

	clamped := s
	if clamped < min {
		clamped = min
	}
	if clamped > max {
		clamped = max
	}

	shifted := clamped - min
	rng := max - min
	if shifted >= rng {
		return NumBins - 1
	}

	bin := (shifted*int64(NumBins) + rng/2) / rng
	if bin < 0 {
		bin = 0
	}
	if bin > int64(NumBins-1) {
		bin = int64(NumBins - 1)
	}
	return int(bin)
}
