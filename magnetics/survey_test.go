package magnetics

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomag/types"
)

func lineOfLocations(n int, z float64) (locs [][3]float64) {
	for i := 0; i < n; i++ {
		locs = append(locs, [3]float64{float64(i) - 0.5*float64(n-1), 0, z})
	}
	return
}

func verticalField(t *testing.T) InducingField {
	f, err := NewInducingField(50000, 90, 0)
	require.NoError(t, err)
	return f
}

func TestSurveyVnD(t *testing.T) {
	var (
		locs = lineOfLocations(5, 10)
		mask = []bool{true, false, true, true, false}
	)
	rx1, err := PointReceiver(locs, types.TMI)
	require.NoError(t, err)
	rx2, err := NewReceiver(locs, ComponentMask{types.Bx, MaskSubset(mask)})
	require.NoError(t, err)
	s, err := NewSurvey(NewSourceField(verticalField(t), rx1, rx2))
	require.NoError(t, err)
	assert.Equal(t, 5, s.NRx())
	assert.Equal(t, []int{5, 3}, s.VnD())
	assert.Equal(t, 8, s.ND())

	want := []DataBlock{
		{Receiver: 0, Component: types.TMI, Offset: 0, Locations: []int{0, 1, 2, 3, 4}},
		{Receiver: 1, Component: types.Bx, Offset: 5, Locations: []int{0, 2, 3}},
	}
	if diff := cmp.Diff(want, s.Blocks()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	{ // Callers can not corrupt the cache
		vnD := s.VnD()
		vnD[0] = 99
		assert.Equal(t, []int{5, 3}, s.VnD())
		mask[0] = false
		assert.Equal(t, 3, s.VnD()[1])
		blocks := s.Blocks()
		blocks[1].Locations[0] = 4
		blocks[0].Offset = 7
		if diff := cmp.Diff(want, s.Blocks()); diff != "" {
			t.Errorf("blocks changed through a returned copy (-want +got):\n%s", diff)
		}
	}
}

func TestSurveyComponentOrder(t *testing.T) {
	locs := lineOfLocations(4, 2)
	rx, err := NewReceiver(locs,
		ComponentMask{types.Bzz, MaskAll()},
		ComponentMask{types.TMI, MaskSubset([]bool{false, true, false, false})},
		ComponentMask{types.Bx, MaskAll()},
	)
	require.NoError(t, err)
	s, err := NewSurvey(NewSourceField(verticalField(t), rx))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 4}, s.VnD())
	var (
		total  int
		blocks = s.Blocks()
	)
	for i, n := range s.VnD() {
		assert.Equal(t, total, blocks[i].Offset)
		total += n
	}
	assert.Equal(t, total, s.ND())
	assert.Equal(t, []types.Component{types.Bzz, types.TMI, types.Bx},
		[]types.Component{blocks[0].Component, blocks[1].Component, blocks[2].Component})
	assert.Equal(t, 3, len(s.Components()))
}

func TestSurveyInvalidate(t *testing.T) {
	locs := lineOfLocations(3, 1)
	rx1, _ := PointReceiver(locs, types.TMI)
	sf := NewSourceField(verticalField(t), rx1)
	s, err := NewSurvey(sf)
	require.NoError(t, err)
	assert.Equal(t, 3, s.ND())
	rx2, _ := PointReceiver(locs, types.Bx, types.By)
	sf.ReceiverList = append(sf.ReceiverList, rx2)
	// The layout is cached until invalidated
	assert.Equal(t, 3, s.ND())
	gen := s.Generation()
	require.NoError(t, s.Invalidate())
	assert.Equal(t, gen+1, s.Generation())
	assert.Equal(t, []int{3, 3, 3}, s.VnD())
	assert.Equal(t, 9, s.ND())

	rx3, _ := PointReceiver(lineOfLocations(2, 1), types.Bz)
	sf.ReceiverList = append(sf.ReceiverList, rx3)
	assert.True(t, errors.Is(s.Invalidate(), ErrDimension))
	// A rejected layout keeps the generation
	assert.Equal(t, gen+1, s.Generation())
}

func TestSurveyErrors(t *testing.T) {
	locs := lineOfLocations(3, 1)
	field := verticalField(t)
	{ // Empty receiver list
		_, err := NewSurvey(NewSourceField(field))
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = NewSurvey(nil)
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = NewSurvey(NewSourceField(field, nil))
		assert.True(t, errors.Is(err, ErrConfiguration))
	}
	{ // Mask length disagrees with the locations
		_, err := NewReceiver(locs, ComponentMask{types.Bx, MaskSubset([]bool{true, false})})
		assert.True(t, errors.Is(err, ErrDimension))
	}
	{ // Duplicate and unknown components, no locations, no components
		_, err := PointReceiver(locs, types.Bx, types.Bx)
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = PointReceiver(locs, types.NumComponents)
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = PointReceiver(nil, types.Bx)
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = PointReceiver(locs)
		assert.True(t, errors.Is(err, ErrConfiguration))
	}
	{ // A receiver measuring everywhere must have nRx locations
		rx1, _ := PointReceiver(locs, types.TMI)
		rx2, _ := PointReceiver(lineOfLocations(5, 1), types.TMI)
		_, err := NewSurvey(NewSourceField(field, rx1, rx2))
		assert.True(t, errors.Is(err, ErrDimension))
		// A subset mask is counted on its own receiver
		rx3, _ := NewReceiver(lineOfLocations(5, 1), ComponentMask{types.Bz, MaskSubset([]bool{true, true, false, false, false})})
		s, err := NewSurvey(NewSourceField(field, rx1, rx3))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2}, s.VnD())
	}
	{ // Inducing field parameters
		for _, f := range []InducingField{{0, 90, 0}, {-1, 90, 0}, {50000, math.NaN(), 0}, {50000, 0, math.Inf(-1)}} {
			_, err := NewInducingField(f.Intensity, f.Inclination, f.Declination)
			assert.True(t, errors.Is(err, ErrConfiguration), "%v", f)
			rx, _ := PointReceiver(locs, types.TMI)
			_, err = NewSurvey(NewSourceField(f, rx))
			assert.True(t, errors.Is(err, ErrConfiguration), "%v", f)
		}
	}
}

func TestInducingField(t *testing.T) {
	f := verticalField(t)
	assert.Equal(t, [3]float64{0, 0, -1}, f.Direction())
	assert.InDelta(t, 50000/(4*math.Pi), f.KernelScale(), 1.e-12)
	assert.Contains(t, f.String(), "50000.00")
}

func TestMask(t *testing.T) {
	m := MaskAll()
	assert.True(t, m.IsAll())
	assert.Nil(t, m.Flags())
	assert.Equal(t, 4, m.Count(4))
	assert.Equal(t, []int{0, 1, 2, 3}, m.Indices(4))
	var zero Mask
	assert.True(t, zero.IsAll())
	m = MaskSubset([]bool{false, true, true})
	assert.False(t, m.IsAll())
	assert.Equal(t, 2, m.Count(3))
	assert.Equal(t, []int{1, 2}, m.Indices(3))
	assert.Equal(t, []bool{false, true, true}, m.Flags())
}
