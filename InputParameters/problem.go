package InputParameters

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/notargets/gomag/magnetics"
	"github.com/notargets/gomag/mesh"
	"github.com/notargets/gomag/types"
	"github.com/notargets/gomag/utils"
)

// LocationRecord is a row of a receiver locations CSV file
type LocationRecord struct {
	X float64 `csv:"x"`
	Y float64 `csv:"y"`
	Z float64 `csv:"z"`
}

// Problem is a deck converted into the values the simulation consumes
type Problem struct {
	Title          string
	Survey         *magnetics.Survey
	Mesh           *mesh.TensorMesh
	Cells          []mesh.Cell
	ActiveMask     []bool
	ModelType      types.ModelType
	ForwardOnly    bool
	ParallelDegree int
	Model          []float64    // Over the active cells, nC or 3nC
	Remanence      [][3]float64 // Per active cell, nil when no body carries remanence
}

/*
Build converts the deck. Relative receiver location files are read from baseDir. Susceptibility
models ignore remanence, vector models fold it into the effective susceptibility.
*/
func (d *Deck) Build(baseDir string) (p *Problem, err error) {
	p = &Problem{
		Title:          d.Title,
		ForwardOnly:    d.ForwardOnly,
		ParallelDegree: d.ParallelDegree,
	}
	if p.ModelType, err = types.ParseModelType(d.modelTypeName()); err != nil {
		return nil, err
	}
	var field magnetics.InducingField
	if field, err = d.Field(); err != nil {
		return nil, err
	}
	if p.Mesh, err = mesh.NewUniformTensorMesh(d.Mesh.Center, d.Mesh.Shape, d.Mesh.CellSize); err != nil {
		return nil, err
	}
	p.Cells = p.Mesh.Cells()
	p.ActiveMask = d.ActiveMask(p.Cells)
	var source *magnetics.SourceField
	if source, err = d.SourceField(field, baseDir); err != nil {
		return nil, err
	}
	if p.Survey, err = magnetics.NewSurvey(source); err != nil {
		return nil, err
	}
	var (
		active *magnetics.ActiveCells
		chi    []float64
	)
	if active, err = magnetics.NewActiveCells(p.ActiveMask); err != nil {
		return nil, err
	}
	chi, p.Remanence = d.Model.Paint(p.Cells, active.Indices())
	switch p.ModelType {
	case types.Susceptibility:
		p.Model = chi
	case types.Vector:
		if p.Model, err = magnetics.EffectiveSusceptibility(chi, p.Remanence, field); err != nil {
			return nil, err
		}
	}
	return
}

func (d *Deck) Field() (magnetics.InducingField, error) {
	f := d.InducingField
	return magnetics.NewInducingField(f.Intensity, f.Inclination, f.Declination)
}

// ActiveMask keeps the cells below the surface, all cells when no surface is given
func (d *Deck) ActiveMask(cells []mesh.Cell) (mask []bool) {
	if d.Mesh.SurfaceElevation == nil {
		mask = make([]bool, len(cells))
		for i := range mask {
			mask[i] = true
		}
		return
	}
	return mesh.ActiveBelow(cells, *d.Mesh.SurfaceElevation)
}

func (d *Deck) SourceField(field magnetics.InducingField, baseDir string) (sf *magnetics.SourceField, err error) {
	if len(d.Receivers) == 0 {
		err = fmt.Errorf("deck has no receivers")
		return
	}
	receivers := make([]*magnetics.Receiver, len(d.Receivers))
	for i, rp := range d.Receivers {
		if receivers[i], err = rp.Receiver(baseDir); err != nil {
			err = fmt.Errorf("receivers[%d]: %w", i, err)
			return
		}
	}
	sf = magnetics.NewSourceField(field, receivers...)
	return
}

func (rp ReceiverParameters) Receiver(baseDir string) (rx *magnetics.Receiver, err error) {
	var locs [][3]float64
	if locs, err = rp.locations(baseDir); err != nil {
		return
	}
	var masks map[types.Component][]bool
	if masks, err = rp.parseMasks(); err != nil {
		return
	}
	cms := make([]magnetics.ComponentMask, len(rp.Components))
	for i, name := range rp.Components {
		if cms[i].Component, err = types.ParseComponent(name); err != nil {
			return
		}
		cms[i].Mask = magnetics.MaskAll()
		if flags, ok := masks[cms[i].Component]; ok {
			cms[i].Mask = magnetics.MaskSubset(flags)
			delete(masks, cms[i].Component)
		}
	}
	for c := range masks {
		err = fmt.Errorf("mask given for %v, which is not among the components %v", c, rp.Components)
		return
	}
	return magnetics.NewReceiver(locs, cms...)
}

// parseMasks keys the masks by component, two spellings of one component (bxy, byx) are an error
func (rp ReceiverParameters) parseMasks() (masks map[types.Component][]bool, err error) {
	names := make([]string, 0, len(rp.Masks))
	for name := range rp.Masks {
		names = append(names, name)
	}
	sort.Strings(names)
	masks = make(map[types.Component][]bool, len(names))
	spelling := make(map[types.Component]string, len(names))
	for _, name := range names {
		var c types.Component
		if c, err = types.ParseComponent(name); err != nil {
			return nil, err
		}
		if prev, dup := spelling[c]; dup {
			return nil, fmt.Errorf("masks %q and %q both select component %v", prev, name, c)
		}
		spelling[c] = name
		masks[c] = rp.Masks[name]
	}
	return
}

func (rp ReceiverParameters) locations(baseDir string) (locs [][3]float64, err error) {
	var nSources int
	for _, set := range []bool{rp.Grid != nil, len(rp.Locations) != 0, rp.LocationsFile != ""} {
		if set {
			nSources++
		}
	}
	if nSources != 1 {
		err = fmt.Errorf("receiver locations need exactly one of Grid, Locations or LocationsFile, have %d", nSources)
		return
	}
	switch {
	case rp.Grid != nil:
		locs, err = rp.Grid.Locations()
	case rp.LocationsFile != "":
		path := rp.LocationsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		locs, err = ReadLocations(path)
	default:
		locs = rp.Locations
	}
	return
}

// Locations are ordered with x varying fastest
func (g *GridParameters) Locations() (locs [][3]float64, err error) {
	if g.NX < 1 || g.NY < 1 {
		err = fmt.Errorf("receiver grid needs at least one point per axis, have %d x %d", g.NX, g.NY)
		return
	}
	step := func(min, max float64, n int) float64 {
		if n == 1 {
			return 0
		}
		return (max - min) / float64(n-1)
	}
	dx, dy := step(g.XMin, g.XMax, g.NX), step(g.YMin, g.YMax, g.NY)
	locs = make([][3]float64, 0, g.NX*g.NY)
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			locs = append(locs, [3]float64{g.XMin + float64(i)*dx, g.YMin + float64(j)*dy, g.Height})
		}
	}
	return
}

func ReadLocations(path string) (locs [][3]float64, err error) {
	var (
		f       *os.File
		records []*LocationRecord
	)
	if f, err = os.Open(path); err != nil {
		return
	}
	defer f.Close()
	if err = gocsv.UnmarshalFile(f, &records); err != nil {
		err = fmt.Errorf("reading receiver locations from %s: %w", path, err)
		return
	}
	locs = make([][3]float64, len(records))
	for i, r := range records {
		locs[i] = [3]float64{r.X, r.Y, r.Z}
	}
	return
}

/*
Paint evaluates the model over the active cells, in column order. A cell belongs to a body when
its center does. The remanence is nil unless a body carries one.
*/
func (mp ModelParameters) Paint(cells []mesh.Cell, active []int) (chi []float64, rem [][3]float64) {
	chi = utils.ConstArray(len(active), mp.Background)
	var hasRem bool
	for _, s := range mp.Spheres {
		hasRem = hasRem || s.Remanence != nil
	}
	for _, b := range mp.Blocks {
		hasRem = hasRem || b.Remanence != nil
	}
	if hasRem {
		rem = make([][3]float64, len(active))
	}
	paint := func(j int, sus float64, r *[3]float64) {
		chi[j] = sus
		if hasRem {
			rem[j] = [3]float64{}
			if r != nil {
				rem[j] = *r
			}
		}
	}
	for j, i := range active {
		ctr := cells[i].Center()
		for _, s := range mp.Spheres {
			var r2 float64
			for d := 0; d < 3; d++ {
				r2 += (ctr[d] - s.Center[d]) * (ctr[d] - s.Center[d])
			}
			if math.Sqrt(r2) <= s.Radius {
				paint(j, s.Susceptibility, s.Remanence)
			}
		}
		for _, b := range mp.Blocks {
			inside := true
			for d := 0; d < 3; d++ {
				inside = inside && ctr[d] >= b.Min[d] && ctr[d] <= b.Max[d]
			}
			if inside {
				paint(j, b.Susceptibility, b.Remanence)
			}
		}
	}
	return
}
