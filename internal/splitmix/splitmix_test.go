package splitmix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMix64Deterministic(t *testing.T) {
	assert.Equal(t, Mix64(42), Mix64(42))
}

func TestMix64DiffersOnInput(t *testing.T) {
	assert.NotEqual(t, Mix64(1), Mix64(2))
}

func TestMix64AvalanchesOnOneBitFlip(t *testing.T) {
	a := Mix64(0x1234567890ABCDEF)
	b := Mix64(0x1234567890ABCDEE)
	diff := a ^ b
	bits := 0
	for diff != 0 {
		bits += int(diff & 1)
		diff >>= 1
	}
	assert.Greater(t, bits, 16)
}
