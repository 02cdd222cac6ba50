package magnetics

import (
	"fmt"

	"github.com/notargets/gomag/utils"
)

/*
ActiveCells maps between a reduced model over the active cells and the full mesh. Column j of
the sensitivity operator belongs to mesh cell Indices()[j]. Vector models are three such blocks
(x, y then z), each projected with the same mask.
*/
type ActiveCells struct {
	mask    []bool
	indices []int
	inject  utils.CSR // nTotal x nC, one unit entry per active cell
}

func NewActiveCells(mask []bool) (ac *ActiveCells, err error) {
	if len(mask) == 0 {
		err = fmt.Errorf("active cell mask is empty: %w", ErrConfiguration)
		return
	}
	ac = &ActiveCells{mask: make([]bool, len(mask))}
	copy(ac.mask, mask)
	for i, active := range mask {
		if active {
			ac.indices = append(ac.indices, i)
		}
	}
	if len(ac.indices) == 0 {
		err = fmt.Errorf("no active cells among %d: %w", len(mask), ErrConfiguration)
		return nil, err
	}
	P := utils.NewDOK(len(mask), len(ac.indices))
	for j, i := range ac.indices {
		P.Set(i, j, 1)
	}
	P.SetReadOnly("InjectActiveCells")
	ac.inject = P.ToCSR()
	return
}

func (ac *ActiveCells) NC() int { return len(ac.indices) }

func (ac *ActiveCells) NTotal() int { return len(ac.mask) }

// Indices are the mesh indices of the active cells, in column order
func (ac *ActiveCells) Indices() []int {
	ind := make([]int, len(ac.indices))
	copy(ind, ac.indices)
	return ind
}

func (ac *ActiveCells) Mask() []bool {
	m := make([]bool, len(ac.mask))
	copy(m, ac.mask)
	return m
}

// blocks returns how many cell blocks a vector of length n holds against a block size
func blocks(n, blockSize int) (nb int, err error) {
	switch n {
	case blockSize:
		nb = 1
	case 3 * blockSize:
		nb = 3
	default:
		err = fmt.Errorf("vector of length %d is neither %d nor %d: %w", n, blockSize, 3*blockSize, ErrDimension)
	}
	return
}

// Expand injects a reduced model of length nC or 3nC into the full mesh, inactive cells get fill
func (ac *ActiveCells) Expand(reduced []float64, fill float64) (full []float64, err error) {
	var (
		nC, nTotal = ac.NC(), ac.NTotal()
		nb         int
	)
	if nb, err = blocks(len(reduced), nC); err != nil {
		return
	}
	full = make([]float64, nb*nTotal)
	for b := 0; b < nb; b++ {
		fb := full[b*nTotal : (b+1)*nTotal]
		ac.inject.MulVecTo(fb, false, reduced[b*nC:(b+1)*nC])
		for i, active := range ac.mask {
			if !active {
				fb[i] = fill
			}
		}
	}
	return
}

// Reduce gathers the active cells from a full mesh vector of length nTotal or 3nTotal
func (ac *ActiveCells) Reduce(full []float64) (reduced []float64, err error) {
	var (
		nC, nTotal = ac.NC(), ac.NTotal()
		nb         int
	)
	if nb, err = blocks(len(full), nTotal); err != nil {
		return
	}
	reduced = make([]float64, nb*nC)
	for b := 0; b < nb; b++ {
		ac.inject.MulVecTo(reduced[b*nC:(b+1)*nC], true, full[b*nTotal:(b+1)*nTotal])
	}
	return
}
