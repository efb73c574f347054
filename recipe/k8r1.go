package recipe

import (
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"

	"github.com/ark8-project/ark8/endian"
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/internal/hash"
	"github.com/ark8-project/ark8/scalar"
)

// MagicK8R1 is the 4-byte magic every binary recipe starts with.
var MagicK8R1 = [4]byte{'K', '8', 'R', '1'}

const waveEncodedSize = 20 // k_phi,k_t,k_time,phase (4 u32) + amp (i32)

// packFlags combines the alphabet and reset mode into K8R1's flags word:
// low byte alphabet, high byte reset mode.
func packFlags(alphabet Alphabet, reset ResetMode) uint16 {
	return uint16(alphabet) | uint16(reset)<<8
}

func unpackFlags(flags uint16) (Alphabet, ResetMode) {
	return Alphabet(flags & 0xFF), ResetMode(flags >> 8)
}

// encodePayload writes every K8R1 field up to and including the wave
// table, gating the clamp/quant/shift sections on r.Version exactly as
// the reference format does.
func encodePayload(r Recipe) []byte {
	buf := make([]byte, 0, 64+len(r.Waves)*waveEncodedSize)
	buf = append(buf, MagicK8R1[:]...)
	buf = appendU16(buf, r.Version)
	buf = appendU16(buf, packFlags(r.Alphabet, r.ResetMode))
	buf = appendU64(buf, r.Seed)

	buf = appendU32(buf, r.Free.PhiA0.Uint32())
	buf = appendU32(buf, r.Free.PhiC0.Uint32())
	buf = appendU32(buf, r.Free.VA.Uint32())
	buf = appendU32(buf, r.Free.VC.Uint32())
	buf = appendU32(buf, r.Free.Epsilon.Uint32())

	buf = appendU32(buf, r.Lock.VL.Uint32())
	buf = appendU32(buf, r.Lock.Delta.Uint32())
	buf = appendU32(buf, r.Lock.TStep.Uint32())

	if r.Version >= versionWithFieldClamp {
		buf = appendI64(buf, r.Clamp.Min)
		buf = appendI64(buf, r.Clamp.Max)
	}
	if r.Version >= versionWithQuant {
		buf = appendI64(buf, r.QuantMin)
		buf = appendI64(buf, r.QuantMax)
	}
	if r.Version >= versionWithQuantShift {
		buf = appendI64(buf, r.QuantShift)
	}

	buf = appendU16(buf, uint16(len(r.Waves)))
	for _, w := range r.Waves {
		buf = appendU32(buf, w.KPhi)
		buf = appendU32(buf, w.KT)
		buf = appendU32(buf, w.KTime)
		buf = appendU32(buf, w.Phase)
		buf = appendI32(buf, w.Amp)
	}
	return buf
}

// Encode serializes r into its K8R1 binary form: the payload, a CRC32
// checksum over that payload, and a 16-byte identity fingerprint trailer
// over payload+checksum.
func Encode(r Recipe) ([]byte, error) {
	if len(r.Waves) > 0xFFFF {
		return nil, errs.New(errs.Validation, errs.ErrInvalidRecipe, "too many waves to encode")
	}
	payload := encodePayload(r)
	sum := crc32.ChecksumIEEE(payload)
	withSum := appendU32(payload, sum)
	fp := hash.Fingerprint128(withSum)
	return append(withSum, fp[:]...), nil
}

// Decode parses a K8R1 binary recipe, verifying its CRC32 and identity
// trailer.
func Decode(data []byte) (Recipe, error) {
	p := &parser{buf: data}

	var magic [4]byte
	if err := p.readExact(magic[:]); err != nil {
		return Recipe{}, err
	}
	if magic != MagicK8R1 {
		return Recipe{}, errs.New(errs.Format, errs.ErrBadMagic, "not a K8R1 recipe")
	}

	var r Recipe
	version, err := p.readU16()
	if err != nil {
		return Recipe{}, err
	}
	r.Version = version

	flags, err := p.readU16()
	if err != nil {
		return Recipe{}, err
	}
	r.Alphabet, r.ResetMode = unpackFlags(flags)
	if r.Alphabet != AlphabetN16 {
		return Recipe{}, errs.New(errs.Format, errs.ErrUnknownEnum, "K8R1 unknown alphabet")
	}
	if r.ResetMode != ResetFromLockstep && r.ResetMode != ResetHoldAandC {
		return Recipe{}, errs.New(errs.Format, errs.ErrUnknownEnum, "K8R1 unknown reset mode")
	}

	if r.Seed, err = p.readU64(); err != nil {
		return Recipe{}, err
	}

	var phiA0, phiC0, va, vc, epsilon, vl, delta, tStep uint32
	for _, dst := range []*uint32{&phiA0, &phiC0, &va, &vc, &epsilon, &vl, &delta, &tStep} {
		v, err := p.readU32()
		if err != nil {
			return Recipe{}, err
		}
		*dst = v
	}
	r.Free = FreeOrbitParams{
		PhiA0:   scalar.Turn(phiA0),
		PhiC0:   scalar.Turn(phiC0),
		VA:      scalar.Turn(va),
		VC:      scalar.Turn(vc),
		Epsilon: scalar.Turn(epsilon),
	}
	r.Lock = LockstepParams{
		VL:    scalar.Turn(vl),
		Delta: scalar.Turn(delta),
		TStep: scalar.Unit(tStep),
	}

	if r.Version >= versionWithFieldClamp {
		min, err := p.readI64()
		if err != nil {
			return Recipe{}, err
		}
		max, err := p.readI64()
		if err != nil {
			return Recipe{}, err
		}
		r.Clamp = field.Clamp{Min: min, Max: max}
	}
	if r.Version >= versionWithQuant {
		if r.QuantMin, err = p.readI64(); err != nil {
			return Recipe{}, err
		}
		if r.QuantMax, err = p.readI64(); err != nil {
			return Recipe{}, err
		}
	} else {
		r.QuantMin, r.QuantMax = r.Clamp.Min, r.Clamp.Max
	}
	if r.Version >= versionWithQuantShift {
		if r.QuantShift, err = p.readI64(); err != nil {
			return Recipe{}, err
		}
	}

	wavesLen, err := p.readU16()
	if err != nil {
		return Recipe{}, err
	}
	r.Waves = make([]field.Wave, 0, wavesLen)
	for i := uint16(0); i < wavesLen; i++ {
		var w field.Wave
		if w.KPhi, err = p.readU32(); err != nil {
			return Recipe{}, err
		}
		if w.KT, err = p.readU32(); err != nil {
			return Recipe{}, err
		}
		if w.KTime, err = p.readU32(); err != nil {
			return Recipe{}, err
		}
		if w.Phase, err = p.readU32(); err != nil {
			return Recipe{}, err
		}
		if w.Amp, err = p.readI32(); err != nil {
			return Recipe{}, err
		}
		r.Waves = append(r.Waves, w)
	}

	payloadLen := len(data) - len(p.buf)
	payload := data[:payloadLen]

	sum, err := p.readU32()
	if err != nil {
		return Recipe{}, err
	}
	if sum != crc32.ChecksumIEEE(payload) {
		return Recipe{}, errs.New(errs.Format, errs.ErrChecksum, "K8R1 crc32 mismatch")
	}

	withSum := data[:payloadLen+4]
	var trailer [16]byte
	if err := p.readExact(trailer[:]); err != nil {
		return Recipe{}, err
	}
	if hash.Fingerprint128(withSum) != trailer {
		return Recipe{}, errs.New(errs.Format, errs.ErrIdentity, "K8R1 identity fingerprint mismatch")
	}

	r.Rgb = DefaultRgbRecipe()
	return r, nil
}

// RecipeID16 returns the 16-byte identity fingerprint of r, independent
// of any particular encoded buffer.
func RecipeID16(r Recipe) ([16]byte, error) {
	encoded, err := Encode(r)
	if err != nil {
		return [16]byte{}, err
	}
	var id [16]byte
	copy(id[:], encoded[len(encoded)-16:])
	return id, nil
}

// RecipeIDHex is RecipeID16 rendered as lowercase hex.
func RecipeIDHex(r Recipe) (string, error) {
	id, err := RecipeID16(r)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:]), nil
}

var le = endian.GetLittleEndianEngine()

func appendU16(buf []byte, v uint16) []byte {
	return le.AppendUint16(buf, v)
}

func appendU32(buf []byte, v uint32) []byte {
	return le.AppendUint32(buf, v)
}

func appendI32(buf []byte, v int32) []byte {
	return appendU32(buf, uint32(v))
}

func appendU64(buf []byte, v uint64) []byte {
	return le.AppendUint64(buf, v)
}

func appendI64(buf []byte, v int64) []byte {
	return appendU64(buf, uint64(v))
}

type parser struct {
	buf []byte
}

func (p *parser) readExact(dst []byte) error {
	if len(p.buf) < len(dst) {
		return errs.New(errs.Truncation, errs.ErrTruncated, "unexpected end of recipe buffer")
	}
	copy(dst, p.buf[:len(dst)])
	p.buf = p.buf[len(dst):]
	return nil
}

func (p *parser) readU16() (uint16, error) {
	var b [2]byte
	if err := p.readExact(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (p *parser) readU32() (uint32, error) {
	var b [4]byte
	if err := p.readExact(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (p *parser) readI32() (int32, error) {
	v, err := p.readU32()
	return int32(v), err
}

func (p *parser) readU64() (uint64, error) {
	var b [8]byte
	if err := p.readExact(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (p *parser) readI64() (int64, error) {
	v, err := p.readU64()
	return int64(v), err
}
