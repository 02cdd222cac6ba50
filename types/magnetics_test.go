package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelType(t *testing.T) {
	mt, err := ParseModelType(" Vector ")
	require.NoError(t, err)
	assert.Equal(t, Vector, mt)
	assert.Equal(t, 3, mt.ParamsPerCell())
	mt, err = ParseModelType("susceptibility")
	require.NoError(t, err)
	assert.Equal(t, 1, mt.ParamsPerCell())
	assert.Equal(t, "susceptibility", mt.String())
	_, err = ParseModelType("density")
	assert.Error(t, err)
	bad := ModelType(7)
	assert.False(t, bad.IsValid())
	assert.Equal(t, 0, bad.ParamsPerCell())
	assert.Equal(t, "ModelType(7)", bad.String())
}

func TestComponent(t *testing.T) {
	for c := TMI; c < NumComponents; c++ {
		parsed, err := ParseComponent(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	c, err := ParseComponent("BZY")
	require.NoError(t, err)
	assert.Equal(t, Byz, c)
	_, err = ParseComponent("amplitude")
	assert.Error(t, err)
	assert.False(t, TMI.IsGradient())
	assert.False(t, Bz.IsGradient())
	assert.True(t, Bxz.IsGradient())
	assert.Equal(t, "nT/m", Byy.Units())
	assert.Equal(t, "nT", TMI.Units())
	i, j := Bxz.GradientIndices()
	assert.Equal(t, [2]int{0, 2}, [2]int{i, j})
	assert.Panics(t, func() { Bx.GradientIndices() })
	assert.False(t, NumComponents.IsValid())
}
