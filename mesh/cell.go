package mesh

import (
	"fmt"
	"math"
)

// Cell is an axis aligned rectangular prism, Origin is its minimum corner
type Cell struct {
	Origin [3]float64
	Size   [3]float64
}

func NewCellFromCenter(center, size [3]float64) (c Cell) {
	c.Size = size
	for i := 0; i < 3; i++ {
		c.Origin[i] = center[i] - 0.5*size[i]
	}
	return
}

func (c Cell) Center() (ctr [3]float64) {
	for i := 0; i < 3; i++ {
		ctr[i] = c.Origin[i] + 0.5*c.Size[i]
	}
	return
}

// Bounds returns the minimum and maximum corners
func (c Cell) Bounds() (lo, hi [3]float64) {
	for i := 0; i < 3; i++ {
		lo[i] = c.Origin[i]
		hi[i] = c.Origin[i] + c.Size[i]
	}
	return
}

func (c Cell) Volume() float64 {
	return c.Size[0] * c.Size[1] * c.Size[2]
}

// MaxExtent is the largest edge length, used to scale tolerances
func (c Cell) MaxExtent() float64 {
	return math.Max(c.Size[0], math.Max(c.Size[1], c.Size[2]))
}

// Validate reports cells with zero volume or non finite geometry
func (c Cell) Validate() error {
	for i := 0; i < 3; i++ {
		if math.IsNaN(c.Origin[i]) || math.IsInf(c.Origin[i], 0) ||
			math.IsNaN(c.Size[i]) || math.IsInf(c.Size[i], 0) {
			return fmt.Errorf("non finite cell geometry origin=%v size=%v", c.Origin, c.Size)
		}
		if c.Size[i] <= 0 {
			return fmt.Errorf("zero volume cell, size=%v", c.Size)
		}
	}
	return nil
}

// Contains is true for points inside or on the surface of the cell
func (c Cell) Contains(p [3]float64) bool {
	lo, hi := c.Bounds()
	for i := 0; i < 3; i++ {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}
