package bitfield

import "github.com/ark8-project/ark8/stream"

// SymbolCount returns how many k-bit symbols origLen bytes unpack into:
// ceil(8*origLen/bits).
func SymbolCount(origLen int, bits int) int {
	return (origLen*8 + bits - 1) / bits
}

// TargetSymbols pads target's bit length up to a multiple of bits, then
// unpacks it MSB-first into a symbol-per-byte stream of SymbolCount(len(target), bits) symbols.
func TargetSymbols(target []byte, bits int) ([]byte, error) {
	count := SymbolCount(len(target), bits)
	return stream.UnpackSymbols(target, bits, count)
}

// PackTargetSymbols inverts TargetSymbols, repacking symbols back into
// bytes and truncating to origLen.
func PackTargetSymbols(symbols []byte, bits int, origLen int) ([]byte, error) {
	packed, err := stream.PackSymbols(symbols, bits)
	if err != nil {
		return nil, err
	}
	if len(packed) > origLen {
		packed = packed[:origLen]
	}
	return packed, nil
}
