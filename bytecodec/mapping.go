// Package bytecodec implements the byte-pipeline residual codec: the
// cadence engine's emission stream (one byte per token via pack_byte, or
// six bytes per token via the RGB expansion) is run through a
// deterministic mapping law, diffed against real bytes via a residual
// mode, with a fit step that locates the engine-stream offset a real
// buffer best aligns to.
package bytecodec

import "github.com/ark8-project/ark8/internal/splitmix"

// Law selects how MapByte turns a raw engine byte, a seed and a position
// into a predicted byte.
type Law uint8

const (
	LawNone Law = iota
	LawSplitmix64
	LawAscii7
	LawAscii7Splitmix
	LawText40
	LawText40Weighted
	LawText40Lane
	LawText40Field
	LawText64
)

func mixByte(seed, pos uint64) byte {
	return byte(splitmix.Mix64(seed ^ pos))
}

func coerceAscii7(b byte) byte {
	if b >= 0x20 && b <= 0x7E {
		return b
	}
	return 0x20 + b%95
}

// fieldSeedBits unpacks the packed per-seed state text40-field evolves
// its stripe/phase from: a 32-bit base noise seed plus four one-byte
// parameters (rate, time-scale shift, phase offset, shift amplitude).
func fieldSeedBits(seed uint64) (seedLo uint32, rate, tshift, phase0, shiftAmp byte) {
	seedLo = uint32(seed)
	rate = byte(seed >> 32)
	tshift = byte(seed >> 40)
	phase0 = byte(seed >> 48)
	shiftAmp = byte(seed >> 56)
	return
}

// text40FieldTri folds an 8-bit ramp (t8) into an 8-bit triangle: the top
// bit of t8 selects the rising or falling half of the ramp's low 7 bits,
// doubled to span the full byte range.
func text40FieldTri(t8 byte) byte {
	x := t8 & 0x7F
	if t8&0x80 == 0 {
		return x * 2
	}
	return (127 - x) * 2
}

// MapByte transforms one byte of the cadence engine's raw emission
// stream (raw, found at absolute stream position pos) into the mapped
// prediction byte the residual is computed against.
func MapByte(law Law, seed uint64, pos uint64, raw byte) byte {
	switch law {
	case LawNone:
		return raw
	case LawSplitmix64:
		return raw ^ mixByte(seed, pos)
	case LawAscii7:
		return coerceAscii7(raw)
	case LawAscii7Splitmix:
		return coerceAscii7(raw ^ mixByte(seed, pos))
	case LawText40:
		idx := int(raw) % len(text40Alphabet)
		return text40Alphabet[idx]
	case LawText40Weighted:
		v := raw ^ mixByte(seed, pos)
		return text40Alphabet[text40WeightedLUT[v]]
	case LawText40Lane:
		lane := pos % 6
		return textFromWeightedAlphabet(laneAlphabets[lane], laneWeights[lane], raw)
	case LawText40Field:
		lane := byte(pos % 6)
		stripe := byte((pos >> 7) & 0xFF)
		phase := byte((pos >> 11) & 0xFF)
		seedLo, rate, tshift, phase0, shiftAmp := fieldSeedBits(seed)

		sh := uint(tshift)
		if sh > 56 {
			sh = 56
		}
		t := uint16((pos >> sh) & 0xFFFF)
		t8 := byte(t) + phase0
		tri := text40FieldTri(t8)

		if shiftAmp != 0 {
			w := tri + lane*31 + phase0
			centered := int16(w) - 128
			scaled := (centered * int16(shiftAmp)) / 256
			stripe += byte(int8(scaled))
			phase += byte(int8(scaled / 2))
		}

		noise := byte(splitmix.Mix64(uint64(seedLo)^pos)) * 13

		r := rate
		if r == 0 {
			r = 1
		}
		f := stripe + phase + lane*17 + noise + tri*r
		mixed := raw + f

		return textFromWeightedAlphabet(laneAlphabets[lane], laneWeights[lane], mixed)
	case LawText64:
		v := raw ^ mixByte(seed, pos)
		return text64Alphabet[int(v)%len(text64Alphabet)]
	default:
		return raw
	}
}

// MapStream applies MapByte across raw, whose first byte sits at
// absolute stream position offset.
func MapStream(law Law, seed uint64, offset uint64, raw []byte) []byte {
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = MapByte(law, seed, offset+uint64(i), b)
	}
	return out
}
