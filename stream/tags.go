package stream

import (
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/internal/splitmix"
)

// MagicTG1 tags the conditioning-tag container.
var MagicTG1 = [4]byte{'T', 'G', '1', 0}

// CondTags is a packed array of small integer tags, one per output
// position, used to condition the residual codec's mapping.
type CondTags struct {
	BitsPerTag int
	Tags       []byte
}

// EncodeTG1 serializes tags into the TG1 container: magic, bits-per-tag,
// a reserved byte, the tag count, then the tags bit-packed MSB-first.
func EncodeTG1(tags CondTags) ([]byte, error) {
	packed, err := PackSymbols(tags.Tags, tags.BitsPerTag)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 14+len(packed))
	buf = append(buf, MagicTG1[:]...)
	buf = append(buf, byte(tags.BitsPerTag), 0)
	buf = appendU64LE(buf, uint64(len(tags.Tags)))
	buf = append(buf, packed...)
	return buf, nil
}

// DecodeTG1 is the inverse of EncodeTG1.
func DecodeTG1(data []byte) (CondTags, error) {
	if len(data) < 14 || [4]byte(data[:4]) != MagicTG1 {
		return CondTags{}, errs.New(errs.Format, errs.ErrBadMagic, "not a TG1 conditioning-tag container")
	}
	bits := int(data[4])
	count := readU64LE(data[6:14])

	tags, err := UnpackSymbols(data[14:], bits, int(count))
	if err != nil {
		return CondTags{}, err
	}
	return CondTags{BitsPerTag: bits, Tags: tags}, nil
}

// CondMaskByte derives the per-position conditioning mask XORed into a
// mapped byte when conditioning is enabled.
func CondMaskByte(condSeed uint64, tag byte, outIndex uint64) byte {
	x := condSeed ^ (uint64(tag) << 56) ^ outIndex
	return byte(splitmix.Mix64(x) & 0xFF)
}

// ApplyConditioning XORs CondMaskByte into b when tags carries a tag for
// outIndex; otherwise b is returned unchanged.
func ApplyConditioning(b byte, condSeed uint64, tags CondTags, outIndex uint64) byte {
	if tags.Tags == nil || outIndex >= uint64(len(tags.Tags)) {
		return b
	}
	return b ^ CondMaskByte(condSeed, tags.Tags[outIndex], outIndex)
}

func appendU64LE(buf []byte, v uint64) []byte {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return append(buf, b[:]...)
}

func readU64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
