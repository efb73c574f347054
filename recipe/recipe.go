// Package recipe defines the binary-stable Recipe description that seeds
// a cadence engine and field model, along with its K8R1 binary encoding,
// ARK1S textual key, and 128-bit identity fingerprint.
package recipe

import (
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/scalar"
)

// Alphabet selects the quantizer's symbol alphabet. Only N16 is defined
// today; the flag byte leaves room for future alphabets.
type Alphabet uint8

const (
	AlphabetN16 Alphabet = iota
)

// ResetMode selects how a completed lockstep cycle reseeds free orbit.
type ResetMode uint8

const (
	ResetFromLockstep ResetMode = iota
	ResetHoldAandC
)

// FreeOrbitParams is the free-orbit section of a recipe.
type FreeOrbitParams struct {
	PhiA0   scalar.Turn
	PhiC0   scalar.Turn
	VA      scalar.Turn
	VC      scalar.Turn
	Epsilon scalar.Turn
}

// LockstepParams is the lockstep section of a recipe.
type LockstepParams struct {
	VL    scalar.Turn
	Delta scalar.Turn
	TStep scalar.Unit
}

// RgbBackend selects how the optional RGB sub-recipe renders emissions.
// Never encoded into K8R1/ARK1S and never part of the identity
// fingerprint: RGB-backend execution is out of scope for this codec.
type RgbBackend uint8

const (
	RgbBackendCoupledAdder RgbBackend = 1
)

// RgbAltMode selects the alternate-channel behavior of the RGB backend.
type RgbAltMode uint8

const (
	RgbAltModeParity RgbAltMode = 1
)

// RgbRecipe is the optional, unencoded RGB-emission sub-recipe. It is
// carried on Recipe as a convenience for callers that drive an
// RGB-emission backend, but plays no part in K8R1/ARK1S or identity.
type RgbRecipe struct {
	Backend RgbBackend
	AltMode RgbAltMode
	BaseA   [3]uint8
	BaseC   [3]uint8
	GStep   uint8
	PScale  uint8
}

// DefaultRgbRecipe returns the reference RGB sub-recipe.
func DefaultRgbRecipe() RgbRecipe {
	return RgbRecipe{
		Backend: RgbBackendCoupledAdder,
		AltMode: RgbAltModeParity,
		BaseA:   [3]uint8{255, 0, 0},
		BaseC:   [3]uint8{0, 255, 255},
		GStep:   2,
		PScale:  2,
	}
}

// Recipe is the complete, deterministic description of one cadence run:
// its engine parameters, field model, clamp, and quantizer bounds.
type Recipe struct {
	Version   uint16
	Seed      uint64
	Alphabet  Alphabet
	ResetMode ResetMode
	Free      FreeOrbitParams
	Lock      LockstepParams
	Waves     []field.Wave
	Clamp     field.Clamp
	QuantMin  int64
	QuantMax  int64
	QuantShift int64
	Rgb       RgbRecipe
}

// These version thresholds gate which optional sections K8R1 writes.
const (
	versionWithQuant      = 2
	versionWithFieldClamp = 3
	versionWithQuantShift = 4
)

// Default returns the reference golden recipe: the fixed set of
// constants every conformance fixture in this codec is built from.
func Default() Recipe {
	return Recipe{
		Version:   4,
		Seed:      0xD1CEBA5EF00DCAFE,
		Alphabet:  AlphabetN16,
		ResetMode: ResetFromLockstep,
		Free: FreeOrbitParams{
			PhiA0:   scalar.TurnFromFrac(0, 1),
			PhiC0:   scalar.TurnFromFrac(1, 7),
			VA:      scalar.TurnFromFrac(1, 997),
			VC:      scalar.TurnFromFrac(1, 1009),
			Epsilon: scalar.TurnFromFrac(1, 4096),
		},
		Lock: LockstepParams{
			VL:    scalar.TurnFromFrac(1, 256),
			Delta: scalar.TurnFromFrac(1, 2),
			TStep: scalar.UnitFromFrac(1, 128),
		},
		Waves: []field.Wave{
			{KPhi: 2, KT: 3, KTime: 1, Phase: 0x13579BDF, Amp: 3200},
			{KPhi: 3, KT: 5, KTime: 2, Phase: 0x2468ACED, Amp: 2600},
			{KPhi: 4, KT: 2, KTime: 3, Phase: 0x0BADF00D, Amp: -2100},
			{KPhi: 1, KT: 1, KTime: 13, Phase: 0xC001D00D, Amp: 900},
			{KPhi: 6, KT: 7, KTime: 5, Phase: 0xA5A55A5A, Amp: -1700},
		},
		Clamp: field.Clamp{
			Min: -147_728_900,
			Max: 80_783_500,
		},
		QuantMin:   -147_728_900,
		QuantMax:   80_783_500,
		QuantShift: 7_141_012,
		Rgb:        DefaultRgbRecipe(),
	}
}

// EngineParams projects the recipe's engine-relevant fields into a
// cadence.Params-shaped tuple (kept here, not in cadence, to avoid an
// import cycle; cadence.Params has identical field names).
func (r Recipe) EngineParams() (va, vc, epsilon, vl, delta scalar.Turn, tStep scalar.Unit, holdAandC bool) {
	return r.Free.VA, r.Free.VC, r.Free.Epsilon, r.Lock.VL, r.Lock.Delta, r.Lock.TStep, r.ResetMode == ResetHoldAandC
}

// FieldModel builds the field.Model this recipe describes.
func (r Recipe) FieldModel() field.Model {
	return field.Model{Waves: r.Waves, Clamp: r.Clamp}
}
