package types

import (
	"fmt"
	"strings"
)

// ModelType selects how a model vector is interpreted, one or three parameters per active cell
type ModelType uint8

const (
	Susceptibility ModelType = iota
	Vector
)

var ModelTypeNameMap = map[string]ModelType{
	"susceptibility": Susceptibility,
	"scalar":         Susceptibility,
	"vector":         Vector,
	"mvi":            Vector,
}

func (mt ModelType) String() string {
	switch mt {
	case Susceptibility:
		return "susceptibility"
	case Vector:
		return "vector"
	}
	return fmt.Sprintf("ModelType(%d)", uint8(mt))
}

func (mt ModelType) IsValid() bool {
	return mt == Susceptibility || mt == Vector
}

// ParamsPerCell is 1 for susceptibility models and 3 for vector models, 0 if invalid
func (mt ModelType) ParamsPerCell() int {
	switch mt {
	case Susceptibility:
		return 1
	case Vector:
		return 3
	}
	return 0
}

func ParseModelType(name string) (mt ModelType, err error) {
	var ok bool
	if mt, ok = ModelTypeNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown model type %q", name)
	}
	return
}

// Component is one measured quantity: total field, a field component or a field gradient
type Component uint8

const (
	TMI Component = iota
	Bx
	By
	Bz
	Bxx
	Bxy
	Bxz
	Byy
	Byz
	Bzz
	NumComponents
)

var componentNames = [...]string{"tmi", "bx", "by", "bz", "bxx", "bxy", "bxz", "byy", "byz", "bzz"}

var ComponentNameMap = map[string]Component{
	"tmi": TMI,
	"bx":  Bx, "by": By, "bz": Bz,
	"bxx": Bxx, "bxy": Bxy, "bxz": Bxz,
	"byx": Bxy, "byy": Byy, "byz": Byz,
	"bzx": Bxz, "bzy": Byz, "bzz": Bzz,
}

func (c Component) String() string {
	if c < NumComponents {
		return componentNames[c]
	}
	return fmt.Sprintf("Component(%d)", uint8(c))
}

func (c Component) IsValid() bool { return c < NumComponents }

// IsGradient is true for the spatial derivatives of the field, reported in nT/m
func (c Component) IsGradient() bool { return c >= Bxx && c < NumComponents }

// GradientIndices returns (i, j) of the gradient component dB_i/dx_j
func (c Component) GradientIndices() (i, j int) {
	switch c {
	case Bxx:
		return 0, 0
	case Bxy:
		return 0, 1
	case Bxz:
		return 0, 2
	case Byy:
		return 1, 1
	case Byz:
		return 1, 2
	case Bzz:
		return 2, 2
	}
	panic(fmt.Errorf("%v is not a gradient component", c))
}

func (c Component) Units() string {
	if c.IsGradient() {
		return "nT/m"
	}
	return "nT"
}

func ParseComponent(name string) (c Component, err error) {
	var ok bool
	if c, ok = ComponentNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown component %q", name)
	}
	return
}
