// Package lawgen implements the law-driven index generators: closed-form
// and jump-walk formulas that derive a chunk's fit offset directly,
// without scanning a window of candidates.
package lawgen

import (
	"github.com/ark8-project/ark8/internal/splitmix"
	"github.com/ark8-project/ark8/scalar"
)

// ChunkKFromLaw derives a deterministic per-chunk additive key from a law
// seed and chunk index, masked to the caller's alphabet width.
func ChunkKFromLaw(lawSeed uint64, chunkIndex uint64, mask byte) byte {
	x := lawSeed ^ chunkIndex*0xD6E8FEB86659FD93
	return byte(splitmix.Mix64(x)) & mask
}

func lawJumpU64(lawSeed, index uint64, phaseA, phaseC, dist uint32, locked bool, pitch uint32, maxJump, lockDiv uint64) uint64 {
	x := lawSeed ^ index ^ uint64(phaseA)<<32 ^ uint64(phaseC) ^ uint64(dist)<<16 ^ uint64(pitch)
	if locked {
		x ^= 0x1
	} else {
		x ^= 0x2
	}
	mixed := splitmix.Mix64(x)

	bound := maxJump
	if locked && lockDiv > 0 {
		bound = maxJump / lockDiv
	}
	if bound < 1 {
		bound = 1
	}
	return mixed%bound + 1
}

// JumpWalkParams configures the jump-walk offset generator.
type JumpWalkParams struct {
	VA      scalar.Turn
	VC      scalar.Turn
	Epsilon scalar.Turn
	VL      scalar.Turn
	LawSeed uint64
	Pitch   uint32
	MaxJump uint64
	LockDiv uint64
}

// JumpWalkOffset advances a free-orbit-like phase pair for count steps,
// summing a deterministic per-step jump, and returns that sum modulo
// windowLen as the single fit offset for the whole run.
func JumpWalkOffset(p JumpWalkParams, count int, windowLen uint64) uint64 {
	if windowLen == 0 {
		return 0
	}

	var phaseA, phaseC, phaseL scalar.Turn
	var sum uint64
	for i := 0; i < count; i++ {
		phaseA = phaseA.Add(p.VA)
		phaseC = phaseC.Sub(p.VC)
		dist := phaseA.Dist(phaseC)
		locked := dist <= p.Epsilon
		if locked {
			phaseL = phaseL.Add(p.VL)
		} else {
			phaseL = phaseA
		}
		_ = phaseL // tracked for parity with the cadence engine's reset semantics

		jump := lawJumpU64(p.LawSeed, uint64(i), phaseA.Uint32(), phaseC.Uint32(), dist.Uint32(), locked, p.Pitch, p.MaxJump, p.LockDiv)
		sum += jump
	}
	return sum % windowLen
}

// triWaveI64 folds k into a centered, symmetric triangle value of the
// given period and phase offset.
func triWaveI64(k, period uint64, phi int64) int64 {
	if period == 0 {
		return 0
	}
	u := (int64(k) + phi) % int64(period)
	if u < 0 {
		u += int64(period)
	}
	half := int64(period) - u
	m := u
	if half < m {
		m = half
	}
	return m - int64(period)/4
}

// ClosedFormParams is the polynomial-plus-two-triangle model
// ClosedFormStartOffset evaluates.
type ClosedFormParams struct {
	B, A, C int64
	G1, G2  int64
	P1, P2  uint64
	Phi1    int64
	Phi2    int64
}

// ClosedFormStartOffset evaluates the closed-form start-offset polynomial
// for chunk k, modulo windowLen.
func ClosedFormStartOffset(p ClosedFormParams, k uint64, windowLen uint64) uint64 {
	if windowLen == 0 {
		return 0
	}
	kk := int64(k)
	term := p.B + p.A*kk + p.C*kk*(kk-1)/2 +
		p.G1*triWaveI64(k, p.P1, p.Phi1) +
		p.G2*triWaveI64(k, p.P2, p.Phi2)

	m := int64(windowLen)
	r := term % m
	if r < 0 {
		r += m
	}
	return uint64(r)
}
