package magnetics

import (
	"fmt"
	"math"

	"github.com/notargets/gomag/utils"
)

// InducingField is the ambient earth field: intensity in nT, inclination and declination in degrees
type InducingField struct {
	Intensity   float64
	Inclination float64
	Declination float64
}

func NewInducingField(intensity, inclination, declination float64) (f InducingField, err error) {
	if !utils.IsFinite(intensity, inclination, declination) {
		err = fmt.Errorf("inducing field parameters must be set, have (%v, %v, %v): %w",
			intensity, inclination, declination, ErrConfiguration)
		return
	}
	if intensity <= 0 {
		err = fmt.Errorf("inducing field intensity must be positive, have %v nT: %w", intensity, ErrConfiguration)
		return
	}
	f = InducingField{Intensity: intensity, Inclination: inclination, Declination: declination}
	return
}

// Direction is the unit vector of the field in (east, north, up) coordinates
func (f InducingField) Direction() [3]float64 {
	return utils.DipAzimuthToCartesian(f.Inclination, f.Declination)
}

// KernelScale converts the prism kernel sums into nT for a unit effective susceptibility
func (f InducingField) KernelScale() float64 {
	return f.Intensity / (4 * math.Pi)
}

func (f InducingField) String() string {
	return fmt.Sprintf("B0 = %8.2f nT, I = %6.2f deg, D = %6.2f deg", f.Intensity, f.Inclination, f.Declination)
}
