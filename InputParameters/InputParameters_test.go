package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomag/magnetics"
	"github.com/notargets/gomag/types"
)

func TestDeckParse(t *testing.T) {
	var deck Deck
	require.NoError(t, deck.Parse([]byte(ExampleDeck)))
	assert.Equal(t, "Sphere under a TMI grid", deck.Title)
	assert.Equal(t, 90., deck.InducingField.Inclination)
	assert.Equal(t, [3]int{20, 20, 10}, deck.Mesh.Shape)
	require.NotNil(t, deck.Mesh.SurfaceElevation)
	assert.Equal(t, 0., *deck.Mesh.SurfaceElevation)
	require.Len(t, deck.Receivers, 1)
	assert.Equal(t, 21, deck.Receivers[0].Grid.NX)
	assert.Equal(t, []string{"tmi", "bz"}, deck.Receivers[0].Components)
	require.Len(t, deck.Model.Spheres, 1)
	assert.Equal(t, 25., deck.Model.Spheres[0].Radius)
	deck.Print()
}

func TestDeckBuild(t *testing.T) {
	var (
		dir   = t.TempDir()
		input = []byte(`
Title: Two receivers
InducingField: {Intensity: 52000, Inclination: 65, Declination: 25}
ModelType: vector
ForwardOnly: true
ParallelDegree: 2
Mesh:
  Center: [0, 0, 0]
  Shape: [4, 4, 4]
  CellSize: [1, 1, 1]
  SurfaceElevation: 1
Receivers:
  - Locations: [[0, 0, 3], [1, 0, 3], [2, 0, 3]]
    Components: [TMI, bxx]
  - LocationsFile: locs.csv
    Components: [bx, bz]
    Masks:
      bz: [true, false, true]
Model:
  Background: 0.001
  Blocks:
    - {Min: [-2, -2, -2], Max: [0, 0, 0], Susceptibility: 0.05, Remanence: [0.01, 0, -0.02]}
`)
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "locs.csv"), []byte("x,y,z\n0,1,3\n1,1,3\n2,1,3\n"), 0644))
	var deck Deck
	require.NoError(t, deck.Parse(input))
	p, err := deck.Build(dir)
	require.NoError(t, err)
	assert.Equal(t, types.Vector, p.ModelType)
	assert.True(t, p.ForwardOnly)
	assert.Equal(t, 2, p.ParallelDegree)
	assert.Equal(t, 64, len(p.Cells))
	// The top layer spans z in [1, 2], its centers are above the surface
	var nC int
	for _, a := range p.ActiveMask {
		if a {
			nC++
		}
	}
	assert.Equal(t, 48, nC)
	assert.Equal(t, 3*nC, len(p.Model))
	require.Len(t, p.Remanence, nC)
	assert.Equal(t, []int{3, 3, 3, 2}, p.Survey.VnD())
	assert.Equal(t, [3]float64{1, 1, 3}, p.Survey.Receiver(1).Locations[1])

	// Cell 0 is centered at (-1.5, -1.5, -1.5), inside the block
	field, _ := deck.Field()
	dir3 := field.Direction()
	assert.InDelta(t, 0.05*dir3[0]+0.01, p.Model[0], 1.e-15)
	assert.InDelta(t, 0.05*dir3[2]-0.02, p.Model[2*nC], 1.e-15)
	// Cell 3 is centered at (1.5, -1.5, -1.5), background
	assert.InDelta(t, 0.001*dir3[1], p.Model[nC+3], 1.e-15)

	sim, err := magnetics.NewSimulation(p.Survey, p.Cells, p.ActiveMask, p.ModelType, p.ForwardOnly, p.ParallelDegree)
	require.NoError(t, err)
	d, err := sim.Predict(p.Model)
	require.NoError(t, err)
	assert.Len(t, d, p.Survey.ND())
}

func TestDeckSusceptibilityIgnoresRemanence(t *testing.T) {
	var deck Deck
	require.NoError(t, deck.Parse([]byte(ExampleDeck)))
	deck.Model.Spheres[0].Remanence = &[3]float64{0, 0, 1}
	p, err := deck.Build(".")
	require.NoError(t, err)
	assert.Equal(t, types.Susceptibility, p.ModelType)
	assert.Equal(t, 4000, len(p.ActiveMask))
	assert.Len(t, p.Model, 4000)
	assert.Len(t, p.Remanence, 4000)
	var inside int
	for _, chi := range p.Model {
		if chi == 0.01 {
			inside++
		}
	}
	assert.Greater(t, inside, 0)
	assert.Equal(t, 2*441, p.Survey.ND())
}

func TestDeckErrors(t *testing.T) {
	base := func() Deck {
		var deck Deck
		require.NoError(t, deck.Parse([]byte(ExampleDeck)))
		return deck
	}
	{
		deck := base()
		deck.ModelType = "density"
		_, err := deck.Build(".")
		assert.Error(t, err)
	}
	{
		deck := base()
		deck.InducingField.Intensity = 0
		_, err := deck.Build(".")
		assert.ErrorIs(t, err, magnetics.ErrConfiguration)
	}
	{
		deck := base()
		deck.Receivers[0].Locations = [][3]float64{{0, 0, 1}}
		_, err := deck.Build(".")
		assert.Error(t, err)
	}
	{
		deck := base()
		deck.Receivers[0].Masks = map[string][]bool{"bxx": {true}}
		_, err := deck.Build(".")
		assert.Error(t, err)
	}
	{
		deck := base()
		deck.Receivers[0].Masks = map[string][]bool{"bz": {true, false}}
		_, err := deck.Build(".")
		assert.ErrorIs(t, err, magnetics.ErrDimension)
	}
	{ // Two spellings of one component
		deck := base()
		deck.Receivers[0].Components = []string{"tmi", "bxy"}
		flags := make([]bool, 441)
		deck.Receivers[0].Masks = map[string][]bool{"bxy": flags, "BYX": flags}
		for i := 0; i < 10; i++ {
			_, err := deck.Build(".")
			require.Error(t, err)
			assert.Contains(t, err.Error(), `masks "BYX" and "bxy" both select component bxy`)
		}
		delete(deck.Receivers[0].Masks, "BYX")
		flags[3] = true
		p, err := deck.Build(".")
		require.NoError(t, err)
		assert.Equal(t, []int{441, 1}, p.Survey.VnD())
	}
	{
		deck := base()
		deck.Receivers = nil
		_, err := deck.Build(".")
		assert.Error(t, err)
	}
	{
		deck := base()
		deck.Receivers[0].Grid = nil
		deck.Receivers[0].LocationsFile = "missing.csv"
		_, err := deck.Build(t.TempDir())
		assert.ErrorIs(t, err, os.ErrNotExist)
	}
	{
		deck := base()
		elevation := -1000.
		deck.Mesh.SurfaceElevation = &elevation
		_, err := deck.Build(".")
		assert.ErrorIs(t, err, magnetics.ErrConfiguration)
	}
}

func TestGridLocations(t *testing.T) {
	g := GridParameters{XMin: -1, XMax: 1, YMin: 0, YMax: 0, NX: 3, NY: 1, Height: 2}
	locs, err := g.Locations()
	require.NoError(t, err)
	assert.Equal(t, [][3]float64{{-1, 0, 2}, {0, 0, 2}, {1, 0, 2}}, locs)
	g.NY = 0
	_, err = g.Locations()
	assert.Error(t, err)
}
