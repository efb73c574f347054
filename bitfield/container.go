package bitfield

import (
	"encoding/binary"

	"github.com/ark8-project/ark8/compress"
	"github.com/ark8-project/ark8/endian"
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/stream"
)

// MagicBF1 and MagicBF2 tag the bit-field codec's two container shapes:
// BF1 packs symbols densely; BF2 stores one compressed bitset per lane.
var (
	MagicBF1 = [4]byte{'B', 'F', '1', 0}
	MagicBF2 = [4]byte{'B', 'F', '2', 0}
)

const flagChunkAddK = 1 << 0

// EncodeBF1 packs symbols densely, optionally applying a per-chunk
// additive key before packing (chunkAddK[i] is added mod 2^bits to every
// symbol in chunk i; pass nil to skip).
func EncodeBF1(bits int, law MappingLaw, origLen uint64, symbols []byte, chunkSize uint32, chunkAddK []byte) ([]byte, error) {
	effective := symbols
	if len(chunkAddK) > 0 {
		effective = applyChunkAddK(symbols, int(chunkSize), bits, chunkAddK)
	}

	packed, err := stream.PackSymbols(effective, bits)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 24+len(packed))
	buf = append(buf, MagicBF1[:]...)
	buf = append(buf, byte(bits), byte(law))
	if len(chunkAddK) > 0 {
		buf = append(buf, flagChunkAddK, 0)
	} else {
		buf = append(buf, 0, 0)
	}
	buf = appendU64(buf, origLen)
	buf = appendU64(buf, uint64(len(symbols)))

	if len(chunkAddK) > 0 {
		buf = appendU32(buf, chunkSize)
		buf = appendU32(buf, uint32(len(chunkAddK)))
		buf = append(buf, chunkAddK...)
	}
	buf = append(buf, packed...)
	return buf, nil
}

// DecodeBF1 is the inverse of EncodeBF1.
func DecodeBF1(data []byte) (bits int, law MappingLaw, origLen uint64, symbols []byte, err error) {
	if len(data) < 22 || [4]byte(data[:4]) != MagicBF1 {
		return 0, 0, 0, nil, errs.New(errs.Format, errs.ErrBadMagic, "not a BF1 bit-field container")
	}
	bits = int(data[4])
	law = MappingLaw(data[5])
	flags := data[6]
	rest := data[8:]

	origLen = binary.LittleEndian.Uint64(rest[0:8])
	symbolCount := binary.LittleEndian.Uint64(rest[8:16])
	rest = rest[16:]

	var chunkAddK []byte
	var chunkSize uint32
	if flags&flagChunkAddK != 0 {
		chunkSize = binary.LittleEndian.Uint32(rest[0:4])
		chunkCount := binary.LittleEndian.Uint32(rest[4:8])
		rest = rest[8:]
		if uint32(len(rest)) < chunkCount {
			return 0, 0, 0, nil, errs.New(errs.Truncation, errs.ErrTruncated, "truncated BF1 chunk-addk table")
		}
		chunkAddK = append([]byte(nil), rest[:chunkCount]...)
		rest = rest[chunkCount:]
	}

	symbols, err = stream.UnpackSymbols(rest, bits, int(symbolCount))
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if len(chunkAddK) > 0 {
		symbols = inverseChunkAddK(symbols, int(chunkSize), bits, chunkAddK)
	}
	return bits, law, origLen, symbols, nil
}

func applyChunkAddK(symbols []byte, chunkSize, bits int, addK []byte) []byte {
	mask := symMask(bits)
	out := make([]byte, len(symbols))
	for i, s := range symbols {
		chunk := i / chunkSize
		k := byte(0)
		if chunk < len(addK) {
			k = addK[chunk]
		}
		out[i] = (s + k) & mask
	}
	return out
}

func inverseChunkAddK(symbols []byte, chunkSize, bits int, addK []byte) []byte {
	mask := symMask(bits)
	out := make([]byte, len(symbols))
	for i, s := range symbols {
		chunk := i / chunkSize
		k := byte(0)
		if chunk < len(addK) {
			k = addK[chunk]
		}
		out[i] = (s - k) & mask
	}
	return out
}

// EncodeBF2 stores one zstd-compressed positional bitset per lane value
// (lane count is 2^bits): lane v's bitset has bit i set when symbols[i]
// == v.
func EncodeBF2(bits int, law MappingLaw, origLen uint64, symbols []byte) ([]byte, error) {
	laneCount := 1 << uint(bits)
	codec := compress.NewZstdCompressor()

	bitsetLen := (len(symbols) + 7) / 8
	lanes := make([][]byte, laneCount)
	for v := 0; v < laneCount; v++ {
		lanes[v] = make([]byte, bitsetLen)
	}
	for i, s := range symbols {
		lanes[s][i/8] |= 1 << uint(i%8)
	}

	buf := make([]byte, 0, 32)
	buf = append(buf, MagicBF2[:]...)
	buf = append(buf, byte(bits), byte(law), 0, 0)
	buf = appendU64(buf, origLen)
	buf = appendU64(buf, uint64(len(symbols)))
	buf = appendU32(buf, uint32(laneCount))
	buf = appendU32(buf, 0)

	for _, lane := range lanes {
		compressed, err := codec.Compress(lane)
		if err != nil {
			return nil, err
		}
		buf = appendU32(buf, uint32(len(compressed)))
		buf = append(buf, compressed...)
	}
	return buf, nil
}

// DecodeBF2 is the inverse of EncodeBF2.
func DecodeBF2(data []byte) (bits int, law MappingLaw, origLen uint64, symbols []byte, err error) {
	if len(data) < 32 || [4]byte(data[:4]) != MagicBF2 {
		return 0, 0, 0, nil, errs.New(errs.Format, errs.ErrBadMagic, "not a BF2 bit-field container")
	}
	bits = int(data[4])
	law = MappingLaw(data[5])
	rest := data[8:]

	origLen = binary.LittleEndian.Uint64(rest[0:8])
	symbolCount := binary.LittleEndian.Uint64(rest[8:16])
	laneCount := binary.LittleEndian.Uint32(rest[16:20])
	rest = rest[24:]

	codec := compress.NewZstdCompressor()
	symbols = make([]byte, symbolCount)
	for v := uint32(0); v < laneCount; v++ {
		if len(rest) < 4 {
			return 0, 0, 0, nil, errs.New(errs.Truncation, errs.ErrTruncated, "truncated BF2 lane table")
		}
		clen := binary.LittleEndian.Uint32(rest[:4])
		rest = rest[4:]
		if uint32(len(rest)) < clen {
			return 0, 0, 0, nil, errs.New(errs.Truncation, errs.ErrTruncated, "truncated BF2 lane payload")
		}
		compressed := rest[:clen]
		rest = rest[clen:]

		bitset, err := codec.Decompress(compressed)
		if err != nil {
			return 0, 0, 0, nil, err
		}
		for i := uint64(0); i < symbolCount; i++ {
			if bitset[i/8]&(1<<uint(i%8)) != 0 {
				symbols[i] = byte(v)
			}
		}
	}
	return bits, law, origLen, symbols, nil
}

var le = endian.GetLittleEndianEngine()

func appendU32(buf []byte, v uint32) []byte {
	return le.AppendUint32(buf, v)
}

func appendU64(buf []byte, v uint64) []byte {
	return le.AppendUint64(buf, v)
}
