package bytecodec

// text40Alphabet is the 31-symbol alphabet text40 and text40-weighted
// select from: a space, the 26 lowercase letters ranked by English
// frequency, and four punctuation symbols.
const text40Alphabet = " etaoinshrdlucmfwypvbgkjqxz\n.,'"

// text40Weights are text40-weighted's per-symbol weights, same order and
// length as text40Alphabet.
var text40Weights = []int{
	58, 22, 16, 16, 14, 13, 12, 10, 9, 9, 8, 8, 6, 6, 6, 5,
	4, 4, 4, 3, 3, 3, 2, 1, 1, 1, 1, 6, 2, 2, 1,
}

// text64Alphabet is the 73-symbol alphabet text64 selects from: the
// text40 lowercase run, its uppercase mirror, a wider punctuation set,
// and the ten digits.
const text64Alphabet = " etaoinshrdlucmfwypvbgkjqxz" +
	"ETAOINSHRDLUCMFWYPVBGKJQXZ" +
	"\n.,;:'\"-?!" +
	"0123456789"

// laneAlphabets are the six lane-indexed weighted alphabets text40-lane
// and text40-field select from, keyed by pos%6. Each lane is its own
// short, hand-tuned symbol set (space/punctuation, vowels, common
// consonant clusters, the long tail, a second punctuation lane, and a
// compact letter ranking) rather than a rotation of text40Alphabet.
var laneAlphabets = [6]string{
	" \n.,'",
	" aeiou",
	" nstrhl",
	" dcmfwypvbgkjqxz",
	" \n.,'",
	" etaoinshrdl",
}

var laneWeights = [6][]int{
	{200, 40, 6, 6, 4},
	{64, 48, 56, 44, 28, 16},
	{64, 44, 44, 42, 36, 32, 38},
	{64, 20, 20, 18, 18, 16, 16, 14, 12, 12, 12, 8, 4, 4, 4, 4},
	{140, 44, 28, 28, 16},
	{96, 18, 14, 14, 12, 12, 10, 10, 10, 8, 6, 6},
}

// textFromWeightedAlphabet walks alpha/weights in lockstep, treating raw
// as a threshold ladder: subtract each weight from raw in turn until raw
// falls below the current weight. Weights need not sum to 256 — if raw
// outruns every weight, fall back to raw%len(alpha). This mirrors
// text_from_weighted_alphabet exactly rather than normalizing weights
// into a proportional 256-entry table.
func textFromWeightedAlphabet(alpha string, weights []int, raw byte) byte {
	x := int(raw)
	for i, w := range weights {
		if x < w {
			return alpha[i]
		}
		x -= w
	}
	return alpha[int(raw)%len(alpha)]
}

// buildWeightedLUT expands weights into a 256-entry lookup table so any
// uniformly distributed byte selects an alphabet index proportional to
// its weight.
func buildWeightedLUT(weights []int) [256]int {
	total := 0
	for _, w := range weights {
		total += w
	}

	var lut [256]int
	pos := 0
	for i, w := range weights {
		count := w * 256 / total
		for j := 0; j < count && pos < 256; j++ {
			lut[pos] = i
			pos++
		}
	}
	for ; pos < 256; pos++ {
		lut[pos] = len(weights) - 1
	}
	return lut
}

var text40WeightedLUT = buildWeightedLUT(text40Weights)
