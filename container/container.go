// Package container implements the external container formats the codec
// serializes into: K8B1 (a self-contained blob: recon params, recipe,
// timing map, and residual), K8P2 (a length-prefixed byte pair), ARKM1
// (a recursive Merkle root over K8B1 blobs), ARK1 (a recipe-embedded
// payload wrapper), and K8L1 (a lane-multiplexed patch container).
package container

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/ark8-project/ark8/endian"
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/internal/pool"
)

var (
	MagicK8B1  = [4]byte{'K', '8', 'B', '1'}
	MagicK8P2  = [4]byte{'K', '8', 'P', '2'}
	MagicARKM1 = [5]byte{'A', 'R', 'K', 'M', '1'}
)

const (
	VersionK8B1  = 1
	VersionK8P2  = 1
	VersionARKM1 = 1
)

// ReconParams is the minimal set of parameters a decoder needs to
// reconstruct a K8B1 blob's original bytes, beyond the recipe itself.
// ByteLaw/ApplyMode serve the byte-pipeline codec; BitsPerEmission
// through BitSmoothShift serve the bit-field codec; ChunkSize and
// ResidualMode are shared by whichever codec's timing map needs them
// (a TM1 map records only offsets, not the chunk width each one
// anchors).
type ReconParams struct {
	MaxTicks        uint64
	MapSeed         uint64
	BitsPerEmission uint8
	BitMapping      uint8
	BitTau          uint32
	BitSmoothShift  uint8
	ResidualMode    uint8
	ByteLaw         uint8
	ApplyMode       uint8
	ChunkSize       uint32
}

func (r ReconParams) encode(buf []byte) []byte {
	buf = appendU64(buf, r.MaxTicks)
	buf = appendU64(buf, r.MapSeed)
	buf = append(buf, r.BitsPerEmission, r.BitMapping)
	buf = appendU32(buf, r.BitTau)
	buf = append(buf, r.BitSmoothShift, r.ResidualMode, r.ByteLaw, r.ApplyMode)
	buf = appendU32(buf, r.ChunkSize)
	return buf
}

func decodeReconParams(data []byte) (ReconParams, []byte, error) {
	if len(data) < 30 {
		return ReconParams{}, nil, errs.New(errs.Truncation, errs.ErrTruncated, "truncated ReconParams")
	}
	var r ReconParams
	r.MaxTicks = binary.LittleEndian.Uint64(data[0:8])
	r.MapSeed = binary.LittleEndian.Uint64(data[8:16])
	r.BitsPerEmission = data[16]
	r.BitMapping = data[17]
	r.BitTau = binary.LittleEndian.Uint32(data[18:22])
	r.BitSmoothShift = data[22]
	r.ResidualMode = data[23]
	r.ByteLaw = data[24]
	r.ApplyMode = data[25]
	r.ChunkSize = binary.LittleEndian.Uint32(data[26:30])
	return r, data[30:], nil
}

// K8B1Blob is a self-contained, checksummed bundle of a recipe, a timing
// map, and a residual byte stream.
type K8B1Blob struct {
	Recon    ReconParams
	Recipe   []byte
	TimeMap  []byte
	Residual []byte
}

// Encode serializes the blob. The Merkle driver calls this once per node
// while building a tree, so the payload scratch buffer is pooled rather
// than allocated fresh on every call.
func (b K8B1Blob) Encode() []byte {
	bb := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(bb)

	bb.Grow(64 + len(b.Recipe) + len(b.TimeMap) + len(b.Residual))
	bb.B = b.Recon.encode(bb.B)
	bb.B = appendLenPrefixed(bb.B, b.Recipe)
	bb.B = appendLenPrefixed(bb.B, b.TimeMap)
	bb.B = appendLenPrefixed(bb.B, b.Residual)
	payload := bb.B

	buf := make([]byte, 0, 9+len(payload)+4)
	buf = append(buf, MagicK8B1[:]...)
	buf = append(buf, VersionK8B1)
	buf = appendU32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	buf = appendU32(buf, crc32.ChecksumIEEE(payload))
	return buf
}

// DecodeK8B1 parses a K8B1Blob, verifying its CRC32.
func DecodeK8B1(data []byte) (K8B1Blob, error) {
	if len(data) < 9 || [4]byte(data[:4]) != MagicK8B1 {
		return K8B1Blob{}, errs.New(errs.Format, errs.ErrBadMagic, "not a K8B1 blob")
	}
	payloadLen := binary.LittleEndian.Uint32(data[5:9])
	if uint32(len(data)) < 9+payloadLen+4 {
		return K8B1Blob{}, errs.New(errs.Truncation, errs.ErrTruncated, "truncated K8B1 blob")
	}
	payload := data[9 : 9+payloadLen]
	sum := binary.LittleEndian.Uint32(data[9+payloadLen : 9+payloadLen+4])
	if sum != crc32.ChecksumIEEE(payload) {
		return K8B1Blob{}, errs.New(errs.Format, errs.ErrChecksum, "K8B1 crc32 mismatch")
	}

	recon, rest, err := decodeReconParams(payload)
	if err != nil {
		return K8B1Blob{}, err
	}
	recipe, rest, err := readLenPrefixed(rest)
	if err != nil {
		return K8B1Blob{}, err
	}
	timeMap, rest, err := readLenPrefixed(rest)
	if err != nil {
		return K8B1Blob{}, err
	}
	residual, _, err := readLenPrefixed(rest)
	if err != nil {
		return K8B1Blob{}, err
	}

	return K8B1Blob{Recon: recon, Recipe: recipe, TimeMap: timeMap, Residual: residual}, nil
}

// K8P2Pair bundles two length-prefixed byte strings with a trailing
// CRC32, used to pack a Merkle node's two children.
type K8P2Pair struct {
	A []byte
	B []byte
}

// Encode serializes the pair. body is a transient checksum scratch buffer
// that scales with the pair's children (a Merkle node's full blob bytes),
// so it is pooled rather than freshly allocated on every node.
func (p K8P2Pair) Encode() []byte {
	header := make([]byte, 0, 13)
	header = append(header, MagicK8P2[:]...)
	header = append(header, VersionK8P2)
	header = appendU32(header, uint32(len(p.A)))
	header = appendU32(header, uint32(len(p.B)))

	bb := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(bb)
	bb.Grow(8 + len(p.A) + len(p.B))
	bb.B = append(bb.B, header[5:]...)
	bb.B = append(bb.B, p.A...)
	bb.B = append(bb.B, p.B...)
	body := bb.B

	buf := make([]byte, 0, len(header)+len(p.A)+len(p.B)+4)
	buf = append(buf, header...)
	buf = append(buf, p.A...)
	buf = append(buf, p.B...)
	buf = appendU32(buf, crc32.ChecksumIEEE(body))
	return buf
}

// DecodeK8P2 parses a K8P2Pair, verifying its CRC32.
func DecodeK8P2(data []byte) (K8P2Pair, error) {
	if len(data) < 13 || [4]byte(data[:4]) != MagicK8P2 {
		return K8P2Pair{}, errs.New(errs.Format, errs.ErrBadMagic, "not a K8P2 pair")
	}
	lenA := binary.LittleEndian.Uint32(data[5:9])
	lenB := binary.LittleEndian.Uint32(data[9:13])
	need := 13 + uint64(lenA) + uint64(lenB) + 4
	if uint64(len(data)) < need {
		return K8P2Pair{}, errs.New(errs.Truncation, errs.ErrTruncated, "truncated K8P2 pair")
	}

	body := data[5 : 13+lenA+lenB]
	sum := binary.LittleEndian.Uint32(data[13+lenA+lenB : need])
	if sum != crc32.ChecksumIEEE(body) {
		return K8P2Pair{}, errs.New(errs.Format, errs.ErrChecksum, "K8P2 crc32 mismatch")
	}

	a := append([]byte(nil), data[13:13+lenA]...)
	b := append([]byte(nil), data[13+lenA:13+lenA+lenB]...)
	return K8P2Pair{A: a, B: b}, nil
}

// ARKM1Root is the root of a recursive Merkle structure of K8B1 blobs.
type ARKM1Root struct {
	OriginalLen uint64
	ChunkBytes  uint32
	LeafCount   uint32
	RootBlob    []byte // K8B1-encoded bytes
}

// Encode serializes the root.
func (r ARKM1Root) Encode() []byte {
	buf := make([]byte, 0, 26+len(r.RootBlob)+4)
	buf = append(buf, MagicARKM1[:]...)
	buf = append(buf, VersionARKM1)
	buf = appendU64(buf, r.OriginalLen)
	buf = appendU32(buf, r.ChunkBytes)
	buf = appendU32(buf, r.LeafCount)
	buf = appendLenPrefixed(buf, r.RootBlob)
	buf = appendU32(buf, crc32.ChecksumIEEE(buf[5:]))
	return buf
}

// DecodeARKM1 parses an ARKM1Root, verifying its CRC32.
func DecodeARKM1(data []byte) (ARKM1Root, error) {
	if len(data) < 6 || [5]byte(data[:5]) != MagicARKM1 {
		return ARKM1Root{}, errs.New(errs.Format, errs.ErrBadMagic, "not an ARKM1 root")
	}
	if len(data) < 22 {
		return ARKM1Root{}, errs.New(errs.Truncation, errs.ErrTruncated, "truncated ARKM1 root")
	}
	rest := data[6:]
	originalLen := binary.LittleEndian.Uint64(rest[0:8])
	chunkBytes := binary.LittleEndian.Uint32(rest[8:12])
	leafCount := binary.LittleEndian.Uint32(rest[12:16])
	rootBlob, _, err := readLenPrefixed(rest[16:])
	if err != nil {
		return ARKM1Root{}, err
	}

	bodyLen := len(data) - 4
	sum := binary.LittleEndian.Uint32(data[bodyLen:])
	if sum != crc32.ChecksumIEEE(data[5:bodyLen]) {
		return ARKM1Root{}, errs.New(errs.Format, errs.ErrChecksum, "ARKM1 crc32 mismatch")
	}

	return ARKM1Root{OriginalLen: originalLen, ChunkBytes: chunkBytes, LeafCount: leafCount, RootBlob: rootBlob}, nil
}

var le = endian.GetLittleEndianEngine()

func appendU32(buf []byte, v uint32) []byte {
	return le.AppendUint32(buf, v)
}

func appendU64(buf []byte, v uint64) []byte {
	return le.AppendUint64(buf, v)
}

func appendLenPrefixed(buf, data []byte) []byte {
	buf = appendU32(buf, uint32(len(data)))
	return append(buf, data...)
}

func readLenPrefixed(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, errs.New(errs.Truncation, errs.ErrTruncated, "truncated length prefix")
	}
	n := binary.LittleEndian.Uint32(data[:4])
	if uint32(len(data)-4) < n {
		return nil, nil, errs.New(errs.Truncation, errs.ErrTruncated, "truncated length-prefixed field")
	}
	return data[4 : 4+n], data[4+n:], nil
}
