package cadence

import (
	"github.com/ark8-project/ark8/errs"
	"github.com/ark8-project/ark8/field"
	"github.com/ark8-project/ark8/scalar"
)

// Params is the set of velocities and thresholds that drive one cadence
// engine. These come directly from a recipe's free-orbit and lockstep
// sections.
type Params struct {
	VA        scalar.Turn // free-orbit phi_a angular velocity
	VC        scalar.Turn // free-orbit phi_c angular velocity
	Epsilon   scalar.Turn // alignment threshold
	VL        scalar.Turn // lockstep phase velocity
	Delta     scalar.Turn // lockstep exit split
	TStep     scalar.Unit // lockstep unit-counter step
	HoldAandC bool        // reset_mode: restore pre_lock unchanged instead of splitting phi_l
}

// Engine is the deterministic cadence state machine. Zero value is not
// usable; construct with NewEngine.
type Engine struct {
	Params Params
	Mode   Mode
	Tick   uint32
}

// NewEngine starts an engine in free orbit with the given initial phases.
func NewEngine(params Params, phiA0, phiC0 scalar.Turn) *Engine {
	return &Engine{
		Params: params,
		Mode:   Mode{Kind: ModeFreeOrbit, Free: FreeOrbitState{PhiA: phiA0, PhiC: phiC0}},
	}
}

// Emission is one field sample pair's driving coordinates, produced
// whenever a lockstep cycle completes: the lockstep phase at top-of-cycle
// plus the wall-time tick it completed on.
type Emission struct {
	PhiL scalar.Turn
	Time uint32
}

// QuantParams are the quantizer bounds (and label-only shift) a recipe
// uses to map clamped field samples into the 16-bin alphabet.
type QuantParams struct {
	Min, Max, Shift int64
}

// Step advances the engine by exactly one tick. It returns the emission
// and true when a lockstep cycle completed on this tick, or the zero
// Emission and false otherwise.
func (e *Engine) Step() (Emission, bool) {
	e.Tick++

	switch e.Mode.Kind {
	case ModeLockstep:
		next := e.Mode.Lock.tick(e.Params.VL, e.Params.TStep)
		if next.T.IsMax() {
			emission := Emission{PhiL: next.PhiL, Time: e.Tick}
			nextFree := resetFromLockstep(next, e.Params.Delta)
			if e.Params.HoldAandC {
				nextFree = next.PreLock
			}
			e.Mode = Mode{Kind: ModeFreeOrbit, Free: nextFree}
			return emission, true
		}
		e.Mode = Mode{Kind: ModeLockstep, Lock: next}
		return Emission{}, false

	default: // ModeFreeOrbit
		wasAligned := e.Mode.Free.aligned(e.Params.Epsilon)
		next := e.Mode.Free.tick(e.Params.VA, e.Params.VC)
		nowAligned := next.aligned(e.Params.Epsilon)
		if !wasAligned && nowAligned {
			e.Mode = Mode{Kind: ModeLockstep, Lock: enterLockstep(next, next.PhiA)}
		} else {
			e.Mode = Mode{Kind: ModeFreeOrbit, Free: next}
		}
		return Emission{}, false
	}
}

// tokenFromEmission takes the two field samples required at
// top-of-lockstep (phi_l and phi_l+delta, both at t=Unit::MAX) and
// quantizes each into a 4-bit symbol, producing the emitted PairToken.
func tokenFromEmission(em Emission, model field.Model, delta scalar.Turn, quant QuantParams) PairToken {
	rawA := model.Eval(em.PhiL.Uint32(), scalar.MaxUnit.Uint32(), em.Time)
	rawC := model.Eval(em.PhiL.Add(delta).Uint32(), scalar.MaxUnit.Uint32(), em.Time)
	min, max := ShiftedBounds(quant.Min, quant.Max, quant.Shift)
	return PairToken{
		A: uint8(Quantize(rawA, min, max)),
		C: uint8(Quantize(rawC, min, max)),
	}
}

// StepWithField advances the engine one tick and, if a lockstep cycle
// completed, evaluates the field model at both of the emission's driving
// coordinates and quantizes them into the emitted token.
func (e *Engine) StepWithField(model field.Model, quant QuantParams) (PairToken, bool) {
	em, ok := e.Step()
	if !ok {
		return PairToken{}, false
	}
	return tokenFromEmission(em, model, e.Params.Delta, quant), true
}

// RunEmissions drives the engine until count tokens have been produced, or
// maxTicks ticks have elapsed without reaching count (maxTicks == 0 means
// unbounded). Exhausting the tick budget returns a retryable Capacity
// error alongside whatever tokens were collected.
func (e *Engine) RunEmissions(model field.Model, quant QuantParams, count int, maxTicks uint64) ([]PairToken, error) {
	tokens := make([]PairToken, 0, count)
	var ticks uint64

	for len(tokens) < count {
		if maxTicks > 0 && ticks >= maxTicks {
			return tokens, errs.New(errs.Capacity, errs.ErrTickBudget, "exceeded max ticks before reaching requested emission count")
		}
		tok, ok := e.StepWithField(model, quant)
		ticks++
		if ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}
