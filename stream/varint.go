// Package stream implements the symbol-stream primitives the codec
// layers build on: unsigned varints, MSB-first bit-packing, timing maps,
// sparse patch lists, and the TG1 conditioning-tag container.
package stream

import "github.com/ark8-project/ark8/errs"

// PutUvarint appends v to buf as an unsigned LEB128 varint (7 bits per
// byte, low-order group first, continuation bit set on every byte but
// the last).
func PutUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// GetUvarint reads an unsigned LEB128 varint from the front of buf,
// returning the value and the number of bytes consumed.
func GetUvarint(buf []byte) (uint64, int, error) {
	var x uint64
	var shift uint
	for i, b := range buf {
		if shift > 63 {
			return 0, 0, errs.New(errs.Format, errs.ErrBadEncoding, "varint shift overflow")
		}
		if b < 0x80 {
			x |= uint64(b) << shift
			return x, i + 1, nil
		}
		x |= uint64(b&0x7F) << shift
		shift += 7
	}
	return 0, 0, errs.New(errs.Truncation, errs.ErrTruncated, "truncated varint")
}
