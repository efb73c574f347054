package recipe

import (
	"hash/crc32"
	"strings"

	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/scalar"
)

// ark1sPrefix is the literal prefix every textual recipe key carries.
const ark1sPrefix = "ARK1S:"

// ark1sFormatVersion versions the textual key's own framing, independent
// of the recipe's own Version field.
const ark1sFormatVersion = 0

const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// EncodeKey renders r as an ARK1S textual key: the same fields as K8R1
// (minus the unencoded RGB sub-recipe) Crockford-base32 encoded with a
// CRC32 trailer, so the key round-trips the entire recipe rather than a
// reduced summary of it.
func EncodeKey(r Recipe) (string, error) {
	if len(r.Waves) > 0xFFFF {
		return "", errs.New(errs.Validation, errs.ErrInvalidRecipe, "too many waves to encode")
	}

	buf := make([]byte, 0, 96+len(r.Waves)*waveEncodedSize)
	buf = append(buf, ark1sFormatVersion)
	buf = appendU16(buf, r.Version)
	buf = append(buf, byte(r.Alphabet))
	buf = append(buf, byte(r.ResetMode))
	buf = appendU64(buf, r.Seed)

	buf = appendU32(buf, r.Free.PhiA0.Uint32())
	buf = appendU32(buf, r.Free.PhiC0.Uint32())
	buf = appendU32(buf, r.Free.VA.Uint32())
	buf = appendU32(buf, r.Free.VC.Uint32())
	buf = appendU32(buf, r.Free.Epsilon.Uint32())

	buf = appendU32(buf, r.Lock.VL.Uint32())
	buf = appendU32(buf, r.Lock.Delta.Uint32())
	buf = appendU32(buf, r.Lock.TStep.Uint32())

	buf = appendI64(buf, r.Clamp.Min)
	buf = appendI64(buf, r.Clamp.Max)
	buf = appendI64(buf, r.QuantMin)
	buf = appendI64(buf, r.QuantMax)
	buf = appendI64(buf, r.QuantShift)

	buf = appendU16(buf, uint16(len(r.Waves)))
	for _, w := range r.Waves {
		buf = appendU32(buf, w.KPhi)
		buf = appendU32(buf, w.KT)
		buf = appendU32(buf, w.KTime)
		buf = appendU32(buf, w.Phase)
		buf = appendI32(buf, w.Amp)
	}

	sum := crc32.ChecksumIEEE(buf)
	buf = appendU32(buf, sum)

	return ark1sPrefix + crock32Encode(buf), nil
}

// DecodeKey parses an ARK1S textual key back into a Recipe.
func DecodeKey(key string) (Recipe, error) {
	if !strings.HasPrefix(key, ark1sPrefix) {
		return Recipe{}, errs.New(errs.Format, errs.ErrBadMagic, "missing ARK1S: prefix")
	}
	data, err := crock32Decode(key[len(ark1sPrefix):])
	if err != nil {
		return Recipe{}, err
	}

	p := &parser{buf: data}
	formatVersion, err := p.readU8()
	if err != nil {
		return Recipe{}, err
	}
	if formatVersion != ark1sFormatVersion {
		return Recipe{}, errs.New(errs.Format, errs.ErrBadVersion, "unsupported ARK1S format version")
	}

	var r Recipe
	if r.Version, err = p.readU16(); err != nil {
		return Recipe{}, err
	}
	alphabet, err := p.readU8()
	if err != nil {
		return Recipe{}, err
	}
	r.Alphabet = Alphabet(alphabet)
	resetMode, err := p.readU8()
	if err != nil {
		return Recipe{}, err
	}
	r.ResetMode = ResetMode(resetMode)

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

	clampMin, err := p.readI64()
	if err != nil {
		return Recipe{}, err
	}
	clampMax, err := p.readI64()
	if err != nil {
		return Recipe{}, err
	}
	r.Clamp = field.Clamp{Min: clampMin, Max: clampMax}

	if r.QuantMin, err = p.readI64(); err != nil {
		return Recipe{}, err
	}
	if r.QuantMax, err = p.readI64(); err != nil {
		return Recipe{}, err
	}
	if r.QuantShift, err = p.readI64(); err != nil {
		return Recipe{}, err
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
		return Recipe{}, errs.New(errs.Format, errs.ErrChecksum, "ARK1S crc32 mismatch")
	}

	r.Rgb = DefaultRgbRecipe()
	return r, nil
}

func (p *parser) readU8() (byte, error) {
	var b [1]byte
	if err := p.readExact(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func crock32Encode(data []byte) string {
	var sb strings.Builder
	sb.Grow((len(data)*8 + 4) / 5)

	var acc uint64
	var bits uint
	for _, b := range data {
		acc = (acc << 8) | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			idx := (acc >> bits) & 0x1F
			sb.WriteByte(crockfordAlphabet[idx])
		}
	}
	if bits > 0 {
		idx := (acc << (5 - bits)) & 0x1F
		sb.WriteByte(crockfordAlphabet[idx])
	}
	return sb.String()
}

var crockfordValue = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(crockfordAlphabet); i++ {
		table[crockfordAlphabet[i]] = int8(i)
	}
	// Crockford's own spec treats these as visually ambiguous aliases;
	// accept them on decode even though EncodeKey never emits them.
	table['O'] = 0
	table['o'] = 0
	table['I'] = 1
	table['i'] = 1
	table['L'] = 1
	table['l'] = 1
	for i := 0; i < len(crockfordAlphabet); i++ {
		c := crockfordAlphabet[i]
		if c >= 'A' && c <= 'Z' {
			table[c-'A'+'a'] = int8(i)
		}
	}
	return table
}()

func crock32Decode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)*5/8+1)
	var acc uint64
	var bits uint
	for i := 0; i < len(s); i++ {
		v := crockfordValue[s[i]]
		if v < 0 {
			return nil, errs.New(errs.Format, errs.ErrBadEncoding, "invalid Crockford base32 character")
		}
		acc = (acc << 5) | uint64(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(acc>>bits))
		}
	}
	return out, nil
}
