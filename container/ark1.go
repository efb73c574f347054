package container

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/stream"
)

// MagicARK1 tags the recipe-embedded payload wrapper: a recipe plus
// arbitrary data, checksummed together.
var MagicARK1 = [4]byte{'A', 'R', 'K', '1'}

const VersionARK1 = 1

// ARK1Wrapper pairs an encoded recipe with opaque payload bytes under a
// single CRC32. It carries no identity-verification obligation of its
// own: whether a caller must check RecipeBytes's identity against an
// external expectation before trusting Data is left to the caller.
type ARK1Wrapper struct {
	RecipeBytes []byte
	Data        []byte
}

// Encode serializes the wrapper: magic, u32 recipe length, recipe bytes,
// u64 data length, data, trailing CRC32 over everything between the magic
// and the CRC itself.
func (w ARK1Wrapper) Encode() []byte {
	buf := make([]byte, 0, 16+len(w.RecipeBytes)+len(w.Data)+4)
	buf = append(buf, MagicARK1[:]...)
	buf = appendU32(buf, uint32(len(w.RecipeBytes)))
	buf = append(buf, w.RecipeBytes...)
	buf = appendU64(buf, uint64(len(w.Data)))
	buf = append(buf, w.Data...)
	buf = appendU32(buf, crc32.ChecksumIEEE(buf[4:]))
	return buf
}

// DecodeARK1 parses an ARK1Wrapper, verifying its CRC32.
func DecodeARK1(data []byte) (ARK1Wrapper, error) {
	if len(data) < 8 || [4]byte(data[:4]) != MagicARK1 {
		return ARK1Wrapper{}, errs.New(errs.Format, errs.ErrBadMagic, "not an ARK1 wrapper")
	}
	recipeLen := binary.LittleEndian.Uint32(data[4:8])
	if uint64(len(data)) < 8+uint64(recipeLen)+8 {
		return ARK1Wrapper{}, errs.New(errs.Truncation, errs.ErrTruncated, "truncated ARK1 recipe section")
	}
	recipeBytes := data[8 : 8+recipeLen]
	rest := data[8+recipeLen:]

	dataLen := binary.LittleEndian.Uint64(rest[:8])
	rest = rest[8:]
	if uint64(len(rest)) < dataLen+4 {
		return ARK1Wrapper{}, errs.New(errs.Truncation, errs.ErrTruncated, "truncated ARK1 data section")
	}
	payload := rest[:dataLen]
	sumOff := len(data) - 4
	sum := binary.LittleEndian.Uint32(data[sumOff:])
	if sum != crc32.ChecksumIEEE(data[4:sumOff]) {
		return ARK1Wrapper{}, errs.New(errs.Format, errs.ErrChecksum, "ARK1 crc32 mismatch")
	}

	return ARK1Wrapper{
		RecipeBytes: append([]byte(nil), recipeBytes...),
		Data:        append([]byte(nil), payload...),
	}, nil
}

// MagicK8L1 tags the lane-codec container: a recipe plus a "class" patch
// list and six multiplexed sub-lane patch lists.
var MagicK8L1 = [4]byte{'K', '8', 'L', '1'}

const VersionK8L1 = 1

// Sub-lane IDs are fixed at 1..6, pinned in this order: kind, case,
// letter, digit, punct, raw. ClassPatch (the top-level field, not a
// lane) carries the per-position class decision that routes a
// correction to one of these six lanes. Drift in this order silently
// breaks determinism across encoder/decoder versions, so it is pinned
// here and by a round-trip test rather than left to chance (see
// DESIGN.md).
const (
	LaneKind   = 1
	LaneCase   = 2
	LaneLetter = 3
	LaneDigit  = 4
	LanePunct  = 5
	LaneRaw    = 6
)

// LaneOrder is the fixed emission-consumption order sub-lanes are
// multiplexed in.
var LaneOrder = [6]int{LaneKind, LaneCase, LaneLetter, LaneDigit, LanePunct, LaneRaw}

// K8L1Container bundles an embedded recipe with per-lane patch lists
// against a shared budget of max ticks.
type K8L1Container struct {
	MaxTicks    uint64
	RecipeBytes []byte
	ClassPatch  stream.PatchList
	Lanes       map[int]stream.PatchList // keyed by LaneKind..LaneRaw
}

// Encode serializes the container: magic, version, varint(max ticks),
// len-prefixed recipe, the class patch list, then each of the six
// sub-lanes in LaneOrder (len-prefixed encoded patch lists; an absent
// lane encodes as a zero-length patch list).
func (c K8L1Container) Encode() []byte {
	buf := make([]byte, 0, 64+len(c.RecipeBytes))
	buf = append(buf, MagicK8L1[:]...)
	buf = append(buf, VersionK8L1)
	buf = stream.PutUvarint(buf, c.MaxTicks)
	buf = stream.PutUvarint(buf, uint64(len(c.RecipeBytes)))
	buf = append(buf, c.RecipeBytes...)
	buf = appendLenPrefixed(buf, c.ClassPatch.Encode())
	for _, id := range LaneOrder {
		pl := c.Lanes[id]
		buf = appendLenPrefixed(buf, pl.Encode())
	}
	return buf
}

// DecodeK8L1 is the inverse of K8L1Container.Encode.
func DecodeK8L1(data []byte) (K8L1Container, error) {
	if len(data) < 5 || [4]byte(data[:4]) != MagicK8L1 {
		return K8L1Container{}, errs.New(errs.Format, errs.ErrBadMagic, "not a K8L1 lane container")
	}
	rest := data[5:]

	maxTicks, n, err := stream.GetUvarint(rest)
	if err != nil {
		return K8L1Container{}, err
	}
	rest = rest[n:]

	recipeLen, n, err := stream.GetUvarint(rest)
	if err != nil {
		return K8L1Container{}, err
	}
	rest = rest[n:]
	if uint64(len(rest)) < recipeLen {
		return K8L1Container{}, errs.New(errs.Truncation, errs.ErrTruncated, "truncated K8L1 recipe section")
	}
	recipeBytes := append([]byte(nil), rest[:recipeLen]...)
	rest = rest[recipeLen:]

	classBytes, rest, err := readLenPrefixed(rest)
	if err != nil {
		return K8L1Container{}, err
	}
	classPatch, _, err := stream.DecodePatchList(classBytes)
	if err != nil {
		return K8L1Container{}, err
	}

	lanes := make(map[int]stream.PatchList, len(LaneOrder))
	for _, id := range LaneOrder {
		laneBytes, next, err := readLenPrefixed(rest)
		if err != nil {
			return K8L1Container{}, err
		}
		rest = next
		pl, _, err := stream.DecodePatchList(laneBytes)
		if err != nil {
			return K8L1Container{}, err
		}
		lanes[id] = pl
	}

	return K8L1Container{
		MaxTicks:    maxTicks,
		RecipeBytes: recipeBytes,
		ClassPatch:  classPatch,
		Lanes:       lanes,
	}, nil
}
