// Package cadence implements the two-mode cadence engine: a free-orbit
// pair of counter-rotating phases that locks into a fixed-length
// lockstep cycle on alignment, emitting one sample per completed cycle.
package cadence

import "github.com/ark8-project/ark8/scalar"

// FreeOrbitState holds the two counter-rotating phases of free orbit.
type FreeOrbitState struct {
	PhiA scalar.Turn
	PhiC scalar.Turn
}

func (fo FreeOrbitState) tick(vA, vC scalar.Turn) FreeOrbitState {
	return FreeOrbitState{PhiA: fo.PhiA.Add(vA), PhiC: fo.PhiC.Sub(vC)}
}

// aligned reports whether the two phases have drifted within epsilon of
// one another.
func (fo FreeOrbitState) aligned(epsilon scalar.Turn) bool {
	return fo.PhiA.Dist(fo.PhiC) <= epsilon
}

// LockstepState holds the lockstep phase and elapsed unit counter, plus
// the free-orbit state it was entered from (restored unchanged when a
// HoldAandC reset ends the lockstep).
type LockstepState struct {
	PreLock FreeOrbitState
	PhiL    scalar.Turn
	T       scalar.Unit
}

func enterLockstep(preLock FreeOrbitState, phiL scalar.Turn) LockstepState {
	return LockstepState{PreLock: preLock, PhiL: phiL, T: 0}
}

func (ls LockstepState) tick(vL scalar.Turn, tStep scalar.Unit) LockstepState {
	return LockstepState{
		PreLock: ls.PreLock,
		PhiL:    ls.PhiL.Add(vL),
		T:       ls.T.SaturatingAdd(tStep),
	}
}

// resetFromLockstep derives the next free-orbit state once a lockstep
// cycle completes: phi_a resumes exactly where the lockstep phase ended,
// phi_c resumes delta ahead of it.
func resetFromLockstep(ls LockstepState, delta scalar.Turn) FreeOrbitState {
	return FreeOrbitState{PhiA: ls.PhiL, PhiC: ls.PhiL.Add(delta)}
}

// ModeKind tags which branch of Mode is live.
type ModeKind uint8

const (
	ModeFreeOrbit ModeKind = iota
	ModeLockstep
)

// Mode is the cadence engine's tagged-union state: exactly one of Free or
// Lock is meaningful, selected by Kind.
type Mode struct {
	Kind ModeKind
	Free FreeOrbitState
	Lock LockstepState
}
