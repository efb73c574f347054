package stream

import "github.com/ark8-project/ark8/errs"

// MagicTM1 and MagicTM0 tag the two timing-map encodings: TM1 stores an
// explicit, strictly increasing index list as delta-varints; TM0 stores
// an arithmetic progression's three parameters instead.
var (
	MagicTM1 = [4]byte{'T', 'M', '1', 0}
	MagicTM0 = [4]byte{'T', 'M', '0', 0}
)

// EncodeTM1 encodes a strictly increasing index list as magic + varint
// count + varint deltas (the first delta is the first index itself).
func EncodeTM1(indices []uint64) []byte {
	buf := make([]byte, 0, 8+len(indices)*2)
	buf = append(buf, MagicTM1[:]...)
	buf = PutUvarint(buf, uint64(len(indices)))

	var prev uint64
	for i, idx := range indices {
		if i == 0 {
			buf = PutUvarint(buf, idx)
		} else {
			buf = PutUvarint(buf, idx-prev)
		}
		prev = idx
	}
	return buf
}

// DecodeTM1 decodes a TM1 buffer, rejecting any index list that is not
// strictly increasing.
func DecodeTM1(data []byte) ([]uint64, error) {
	if len(data) < 4 || [4]byte(data[:4]) != MagicTM1 {
		return nil, errs.New(errs.Format, errs.ErrBadMagic, "not a TM1 timing map")
	}
	rest := data[4:]

	count, n, err := GetUvarint(rest)
	if err != nil {
		return nil, err
	}
	rest = rest[n:]

	indices := make([]uint64, 0, count)
	var prev uint64
	for i := uint64(0); i < count; i++ {
		delta, n, err := GetUvarint(rest)
		if err != nil {
			return nil, err
		}
		rest = rest[n:]

		var idx uint64
		if i == 0 {
			idx = delta
		} else {
			idx = prev + delta
			if idx <= prev {
				return nil, errs.New(errs.Validation, errs.ErrNonIncreasingIndex, "TM1 index did not strictly increase")
			}
		}
		indices = append(indices, idx)
		prev = idx
	}
	return indices, nil
}

// EncodeTM0 encodes an arithmetic-progression timing map: length many
// indices starting at start and advancing by step each time.
func EncodeTM0(length, start, step uint64) []byte {
	buf := make([]byte, 0, 16)
	buf = append(buf, MagicTM0[:]...)
	buf = PutUvarint(buf, length)
	buf = PutUvarint(buf, start)
	buf = PutUvarint(buf, step)
	return buf
}

// DecodeTM0 decodes a TM0 buffer into its three progression parameters.
func DecodeTM0(data []byte) (length, start, step uint64, err error) {
	if len(data) < 4 || [4]byte(data[:4]) != MagicTM0 {
		return 0, 0, 0, errs.New(errs.Format, errs.ErrBadMagic, "not a TM0 timing map")
	}
	rest := data[4:]

	length, n, err := GetUvarint(rest)
	if err != nil {
		return 0, 0, 0, err
	}
	rest = rest[n:]

	start, n, err = GetUvarint(rest)
	if err != nil {
		return 0, 0, 0, err
	}
	rest = rest[n:]

	step, _, err = GetUvarint(rest)
	if err != nil {
		return 0, 0, 0, err
	}
	return length, start, step, nil
}

// ExpandTM0 materializes a TM0 progression into an explicit index list.
func ExpandTM0(length, start, step uint64) []uint64 {
	indices := make([]uint64, length)
	v := start
	for i := range indices {
		indices[i] = v
		v += step
	}
	return indices
}
