package stream

import "github.com/ark8-project/ark8/errs"

// Patch is one (position, value) correction against a predicted byte
// stream.
type Patch struct {
	Pos   uint64
	Value byte
}

// PatchList is a sparse, position-sorted set of corrections.
type PatchList struct {
	Patches []Patch
}

// FromPredActual builds the patch list of every position where pred and
// actual disagree. pred and actual must be the same length.
func FromPredActual(pred, actual []byte) PatchList {
	var pl PatchList
	for i := range actual {
		if pred[i] != actual[i] {
			pl.Patches = append(pl.Patches, Patch{Pos: uint64(i), Value: actual[i]})
		}
	}
	return pl
}

// ApplyToPred returns a copy of pred with every patch applied.
func (pl PatchList) ApplyToPred(pred []byte) []byte {
	out := append([]byte(nil), pred...)
	for _, p := range pl.Patches {
		if p.Pos < uint64(len(out)) {
			out[p.Pos] = p.Value
		}
	}
	return out
}

// Encode serializes the patch list as varint(count) followed by
// delta-encoded (position, value) varint pairs.
func (pl PatchList) Encode() []byte {
	buf := make([]byte, 0, 4+len(pl.Patches)*2)
	buf = PutUvarint(buf, uint64(len(pl.Patches)))

	var prevPos uint64
	for i, p := range pl.Patches {
		if i == 0 {
			buf = PutUvarint(buf, p.Pos)
		} else {
			buf = PutUvarint(buf, p.Pos-prevPos)
		}
		buf = PutUvarint(buf, uint64(p.Value))
		prevPos = p.Pos
	}
	return buf
}

// DecodePatchList is the inverse of PatchList.Encode.
func DecodePatchList(data []byte) (PatchList, int, error) {
	count, n, err := GetUvarint(data)
	if err != nil {
		return PatchList{}, 0, err
	}
	consumed := n
	rest := data[n:]

	pl := PatchList{Patches: make([]Patch, 0, count)}
	var prevPos uint64
	for i := uint64(0); i < count; i++ {
		deltaOrPos, n, err := GetUvarint(rest)
		if err != nil {
			return PatchList{}, 0, err
		}
		rest = rest[n:]
		consumed += n

		value, n, err := GetUvarint(rest)
		if err != nil {
			return PatchList{}, 0, err
		}
		rest = rest[n:]
		consumed += n

		if value > 0xFF {
			return PatchList{}, 0, errs.New(errs.Format, errs.ErrBadEncoding, "patch value out of byte range")
		}

		pos := deltaOrPos
		if i > 0 {
			pos = prevPos + deltaOrPos
		}
		pl.Patches = append(pl.Patches, Patch{Pos: pos, Value: byte(value)})
		prevPos = pos
	}
	return pl, consumed, nil
}
