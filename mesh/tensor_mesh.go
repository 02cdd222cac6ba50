package mesh

import (
	"fmt"
)

/*
TensorMesh is a rectilinear mesh described by its origin and the cell widths along each axis.
Cells are numbered with x varying fastest, then y, then z.
*/
type TensorMesh struct {
	Origin     [3]float64
	Hx, Hy, Hz []float64
}

func NewTensorMesh(origin [3]float64, hx, hy, hz []float64) (tm *TensorMesh, err error) {
	for d, h := range [][]float64{hx, hy, hz} {
		if len(h) == 0 {
			err = fmt.Errorf("tensor mesh needs at least one cell along axis %d", d)
			return
		}
		for _, w := range h {
			if w <= 0 {
				err = fmt.Errorf("tensor mesh has a non positive width %v along axis %d", w, d)
				return
			}
		}
	}
	tm = &TensorMesh{Origin: origin, Hx: hx, Hy: hy, Hz: hz}
	return
}

// NewUniformTensorMesh builds n[0] x n[1] x n[2] cells of size h centered on center
func NewUniformTensorMesh(center [3]float64, n [3]int, h [3]float64) (tm *TensorMesh, err error) {
	var (
		widths [3][]float64
		origin [3]float64
	)
	for d := 0; d < 3; d++ {
		if n[d] < 1 {
			err = fmt.Errorf("tensor mesh needs at least one cell along axis %d, have %d", d, n[d])
			return
		}
		widths[d] = make([]float64, n[d])
		for i := range widths[d] {
			widths[d][i] = h[d]
		}
		origin[d] = center[d] - 0.5*float64(n[d])*h[d]
	}
	return NewTensorMesh(origin, widths[0], widths[1], widths[2])
}

func (tm *TensorMesh) Shape() [3]int {
	return [3]int{len(tm.Hx), len(tm.Hy), len(tm.Hz)}
}

func (tm *TensorMesh) NumCells() int {
	return len(tm.Hx) * len(tm.Hy) * len(tm.Hz)
}

// Cells returns the prisms of the mesh in mesh order
func (tm *TensorMesh) Cells() (cells []Cell) {
	var (
		nx, ny, nz = len(tm.Hx), len(tm.Hy), len(tm.Hz)
		x0         = edges(tm.Origin[0], tm.Hx)
		y0         = edges(tm.Origin[1], tm.Hy)
		z0         = edges(tm.Origin[2], tm.Hz)
	)
	cells = make([]Cell, 0, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				cells = append(cells, Cell{
					Origin: [3]float64{x0[i], y0[j], z0[k]},
					Size:   [3]float64{tm.Hx[i], tm.Hy[j], tm.Hz[k]},
				})
			}
		}
	}
	return
}

func edges(origin float64, h []float64) (e []float64) {
	e = make([]float64, len(h)+1)
	e[0] = origin
	for i, w := range h {
		e[i+1] = e[i] + w
	}
	return
}

// ActiveBelow marks cells whose center lies below a flat surface at the given elevation
func ActiveBelow(cells []Cell, elevation float64) (active []bool) {
	active = make([]bool, len(cells))
	for i, c := range cells {
		active[i] = c.Center()[2] < elevation
	}
	return
}
