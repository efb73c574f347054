package cadence

// PairToken packs two independent 4-bit symbols (A-dot and C-dot, one
// per counter-rotating phase) into a single byte, nibble per symbol.
type PairToken struct {
	A uint8
	C uint8
}

// PackByte packs the pair into one byte, A in the high nibble.
func (p PairToken) PackByte() byte {
	return (p.A&0x0F)<<4 | (p.C & 0x0F)
}

// UnpackByte is the inverse of PackByte.
func UnpackByte(b byte) PairToken {
	return PairToken{A: uint8(b >> 4), C: uint8(b & 0x0F)}
}

// Rgb is one 24-bit color sample.
type Rgb struct {
	R uint8
	G uint8
	B uint8
}

// palette16 maps each of the 16 quantizer bins onto a fixed, visually
// distinct color. The six-byte RGB expansion of a token (RgbPair
// apply-mode bytes and bit-field symbols) is built from these values; the
// PairToken stream itself does not depend on them.
var palette16 = [16]Rgb{
	{255, 60, 60},   // 0: red
	{255, 120, 60},  // 1: red-orange
	{255, 180, 60},  // 2: orange
	{255, 230, 60},  // 3: amber
	{200, 255, 60},  // 4: chartreuse
	{120, 255, 60},  // 5: green-yellow
	{60, 255, 90},   // 6: green
	{60, 255, 170},  // 7: spring green
	{60, 255, 230},  // 8: turquoise
	{60, 200, 255},  // 9: sky blue
	{60, 120, 255},  // A: blue
	{90, 60, 255},   // B: indigo
	{160, 60, 255},  // C: violet
	{220, 60, 255},  // D: magenta
	{255, 60, 200},  // E: rose
	{255, 60, 120},  // F: pink-red
}

// RgbPairToken decorates a PairToken with its palette colors.
type RgbPairToken struct {
	A Rgb
	C Rgb
}

// ToRgbPair resolves a PairToken's two nibbles through palette16.
func ToRgbPair(p PairToken) RgbPairToken {
	return RgbPairToken{A: palette16[p.A&0x0F], C: palette16[p.C&0x0F]}
}

// ToBytes serializes the pair as six bytes: A's R,G,B then C's R,G,B.
func (t RgbPairToken) ToBytes() []byte {
	return []byte{t.A.R, t.A.G, t.A.B, t.C.R, t.C.G, t.C.B}
}
