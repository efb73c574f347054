package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriU32Bounds(t *testing.T) {
	assert.Equal(t, int32(-32768), triU32(0))
	assert.Equal(t, int32(-1), triU32(0x7FFF7FFF))
	assert.Equal(t, int32(-1), triU32(0x80000000))
	assert.Equal(t, int32(-32768), triU32(0xFFFF7FFF))
}

func TestEvalWaveDeterministic(t *testing.T) {
	w := Wave{KPhi: 2, KT: 3, KTime: 1, Phase: 0x13579BDF, Amp: 3200}
	a := EvalWave(w, 7, 11, 13)
	b := EvalWave(w, 7, 11, 13)
	require.Equal(t, a, b)

	c := EvalWave(w, 7+0x8000, 11, 13)
	assert.NotEqual(t, a, c, "changing phi should usually change the sample")
}

func TestEvalClamp(t *testing.T) {
	m := Model{
		Waves: []Wave{{KPhi: 1, KT: 1, KTime: 1, Phase: 0, Amp: 1 << 20}},
		Clamp: Clamp{Min: -100, Max: 100},
	}
	for phi := uint32(0); phi < 5; phi++ {
		v := m.Eval(phi, 1, 1)
		assert.GreaterOrEqual(t, v, m.Clamp.Min)
		assert.LessOrEqual(t, v, m.Clamp.Max)
	}
}

func TestEvalRawSaturates(t *testing.T) {
	waves := make([]Wave, 0, 4)
	for i := 0; i < 4; i++ {
		waves = append(waves, Wave{KPhi: 1, Phase: 0x80000000, Amp: 1<<31 - 1})
	}
	raw := EvalRaw(waves, 0, 0, 0)
	assert.LessOrEqual(t, raw, int64(4)*32767*int64(1<<31-1))
}
