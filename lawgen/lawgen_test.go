package lawgen

import (
	"testing"

	"github.com/ark8-project/ark8/scalar"
	"github.com/stretchr/testify/assert"
)

func TestChunkKFromLawDeterministic(t *testing.T) {
	a := ChunkKFromLaw(42, 7, 0xFF)
	b := ChunkKFromLaw(42, 7, 0xFF)
	assert.Equal(t, a, b)

	c := ChunkKFromLaw(42, 8, 0xFF)
	assert.NotEqual(t, a, c)
}

func TestChunkKFromLawRespectsMask(t *testing.T) {
	for i := uint64(0); i < 100; i++ {
		k := ChunkKFromLaw(99, i, 0x0F)
		assert.LessOrEqual(t, k, byte(0x0F))
	}
}

func TestJumpWalkOffsetDeterministicAndBounded(t *testing.T) {
	params := JumpWalkParams{
		VA:      scalar.TurnFromFrac(1, 997),
		VC:      scalar.TurnFromFrac(1, 1009),
		Epsilon: scalar.TurnFromFrac(1, 4096),
		VL:      scalar.TurnFromFrac(1, 256),
		LawSeed: 0xABCD,
		Pitch:   3,
		MaxJump: 64,
		LockDiv: 4,
	}
	a := JumpWalkOffset(params, 256, 4096)
	b := JumpWalkOffset(params, 256, 4096)
	assert.Equal(t, a, b)
	assert.Less(t, a, uint64(4096))
}

func TestClosedFormStartOffsetBounded(t *testing.T) {
	params := ClosedFormParams{B: 10, A: 3, C: 1, G1: 5, G2: 2, P1: 17, P2: 31, Phi1: 2, Phi2: -4}
	for k := uint64(0); k < 200; k++ {
		off := ClosedFormStartOffset(params, k, 1000)
		assert.Less(t, off, uint64(1000))
	}
}

func TestClosedFormStartOffsetDeterministic(t *testing.T) {
	params := ClosedFormParams{B: 1, A: 2, C: 1, G1: 1, G2: 1, P1: 5, P2: 9, Phi1: 1, Phi2: 2}
	a := ClosedFormStartOffset(params, 42, 500)
	b := ClosedFormStartOffset(params, 42, 500)
	assert.Equal(t, a, b)
}
