package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
)

type FieldParameters struct {
	Intensity   float64 `json:"Intensity"`   // nT
	Inclination float64 `json:"Inclination"` // degrees, positive down
	Declination float64 `json:"Declination"` // degrees, clockwise from north
}

// MeshParameters describe a uniform tensor mesh, cells above SurfaceElevation are inactive (air)
type MeshParameters struct {
	Center           [3]float64 `json:"Center"`
	Shape            [3]int     `json:"Shape"`
	CellSize         [3]float64 `json:"CellSize"`
	SurfaceElevation *float64   `json:"SurfaceElevation,omitempty"`
}

type GridParameters struct {
	XMin   float64 `json:"XMin"`
	XMax   float64 `json:"XMax"`
	YMin   float64 `json:"YMin"`
	YMax   float64 `json:"YMax"`
	NX     int     `json:"NX"`
	NY     int     `json:"NY"`
	Height float64 `json:"Height"`
}

/*
ReceiverParameters takes its locations from exactly one of a grid, an explicit list or a CSV file
with x,y,z columns. Masks restrict a component to the flagged locations.
*/
type ReceiverParameters struct {
	Grid          *GridParameters   `json:"Grid,omitempty"`
	Locations     [][3]float64      `json:"Locations,omitempty"`
	LocationsFile string            `json:"LocationsFile,omitempty"`
	Components    []string          `json:"Components"`
	Masks         map[string][]bool `json:"Masks,omitempty"`
}

// Remanence is in susceptibility units, the remanent magnetization divided by the inducing intensity
type SphereParameters struct {
	Center         [3]float64  `json:"Center"`
	Radius         float64     `json:"Radius"`
	Susceptibility float64     `json:"Susceptibility"`
	Remanence      *[3]float64 `json:"Remanence,omitempty"`
}

type BlockParameters struct {
	Min            [3]float64  `json:"Min"`
	Max            [3]float64  `json:"Max"`
	Susceptibility float64     `json:"Susceptibility"`
	Remanence      *[3]float64 `json:"Remanence,omitempty"`
}

// ModelParameters paint bodies over a background, later bodies overwrite earlier ones
type ModelParameters struct {
	Background float64            `json:"Background"`
	Spheres    []SphereParameters `json:"Spheres,omitempty"`
	Blocks     []BlockParameters  `json:"Blocks,omitempty"`
}

// Deck holds the parameters obtained from the YAML input file
type Deck struct {
	Title          string               `json:"Title"`
	InducingField  FieldParameters      `json:"InducingField"`
	ModelType      string               `json:"ModelType"`
	ForwardOnly    bool                 `json:"ForwardOnly"`
	ParallelDegree int                  `json:"ParallelDegree"`
	Mesh           MeshParameters       `json:"Mesh"`
	Receivers      []ReceiverParameters `json:"Receivers"`
	Model          ModelParameters      `json:"Model"`
}

func (d *Deck) Parse(data []byte) error {
	return yaml.Unmarshal(data, d)
}

func (d *Deck) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", d.Title)
	fmt.Printf("%10.2f\t\t= Inducing Intensity [nT]\n", d.InducingField.Intensity)
	fmt.Printf("%10.2f\t\t= Inclination [deg]\n", d.InducingField.Inclination)
	fmt.Printf("%10.2f\t\t= Declination [deg]\n", d.InducingField.Declination)
	fmt.Printf("[%s]\t= Model Type\n", d.modelTypeName())
	fmt.Printf("[%v]\t\t\t= Forward Only\n", d.ForwardOnly)
	fmt.Printf("%v x %v\t= Mesh Shape x Cell Size\n", d.Mesh.Shape, d.Mesh.CellSize)
	if d.Mesh.SurfaceElevation != nil {
		fmt.Printf("%10.2f\t\t= Surface Elevation\n", *d.Mesh.SurfaceElevation)
	}
	for i, rx := range d.Receivers {
		fmt.Printf("Receivers[%d] = %s, %s\n", i, rx.source(), strings.Join(rx.Components, ","))
		keys := make([]string, 0, len(rx.Masks))
		for k := range rx.Masks {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("\tMasks[%s] = %v\n", key, rx.Masks[key])
		}
	}
	fmt.Printf("%8.5f\t\t= Background Susceptibility\n", d.Model.Background)
	fmt.Printf("[%d, %d]\t\t\t= Spheres, Blocks\n", len(d.Model.Spheres), len(d.Model.Blocks))
}

func (d *Deck) modelTypeName() string {
	if d.ModelType == "" {
		return "susceptibility"
	}
	return d.ModelType
}

func (rx ReceiverParameters) source() string {
	switch {
	case rx.Grid != nil:
		return fmt.Sprintf("grid %d x %d at height %v", rx.Grid.NX, rx.Grid.NY, rx.Grid.Height)
	case rx.LocationsFile != "":
		return "file " + rx.LocationsFile
	default:
		return fmt.Sprintf("%d locations", len(rx.Locations))
	}
}

const ExampleDeck = `
########################################
Title: "Sphere under a TMI grid"
InducingField:
  Intensity: 50000
  Inclination: 90
  Declination: 0
ModelType: susceptibility # or vector
ForwardOnly: false
Mesh:
  Center: [0, 0, -50]
  Shape: [20, 20, 10]
  CellSize: [10, 10, 10]
  SurfaceElevation: 0
Receivers:
  - Grid: {XMin: -100, XMax: 100, YMin: -100, YMax: 100, NX: 21, NY: 21, Height: 5}
    Components: [tmi, bz]
Model:
  Background: 0
  Spheres:
    - {Center: [0, 0, -50], Radius: 25, Susceptibility: 0.01}
########################################
`
