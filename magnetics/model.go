package magnetics

import "fmt"

/*
EffectiveSusceptibility builds a vector model from induced and remanent parts: cell j gets
chi[j] along the inducing direction plus remanence[j], which is expressed in susceptibility
units (remanent magnetization over the inducing intensity). The result is laid out in x, y, z
blocks of length nC. A nil remanence means induced only.
*/
func EffectiveSusceptibility(chi []float64, remanence [][3]float64, field InducingField) (model []float64, err error) {
	nC := len(chi)
	if remanence != nil && len(remanence) != nC {
		err = fmt.Errorf("remanence has %d cells, susceptibility has %d: %w", len(remanence), nC, ErrDimension)
		return
	}
	dir := field.Direction()
	model = make([]float64, 3*nC)
	for j := 0; j < nC; j++ {
		for b := 0; b < 3; b++ {
			model[j+b*nC] = chi[j] * dir[b]
			if remanence != nil {
				model[j+b*nC] += remanence[j][b]
			}
		}
	}
	return
}

// VectorBlocks splits a vector model into its per cell 3-vectors
func VectorBlocks(model []float64) (m [][3]float64, err error) {
	if len(model)%3 != 0 {
		err = fmt.Errorf("vector model length %d is not a multiple of 3: %w", len(model), ErrDimension)
		return
	}
	nC := len(model) / 3
	m = make([][3]float64, nC)
	for j := 0; j < nC; j++ {
		m[j] = [3]float64{model[j], model[j+nC], model[j+2*nC]}
	}
	return
}
