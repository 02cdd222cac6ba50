package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v\n", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }

// Chainable methods (extended)
func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m *Matrix) SetWritable() Matrix {
	m.readOnly = false
	return *m
}

func (m Matrix) IsReadOnly() bool { return m.readOnly }

// Data returns the row-major backing store, shared with the receiver
func (m Matrix) Data() []float64 {
	return m.M.RawMatrix().Data
}

// RowView returns row i of the backing store for in-place assembly
func (m Matrix) RowView(i int) []float64 { // Changes receiver
	m.checkWritable()
	return m.M.RawRowView(i)
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) MulVec(x []float64) (y []float64) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: matrix has %d columns, vector has length %d", nc, len(x)))
	}
	y = make([]float64, nr)
	if nr == 0 || nc == 0 {
		return
	}
	mat.NewVecDense(nr, y).MulVec(m.M, mat.NewVecDense(nc, x))
	return
}

func (m Matrix) TransMulVec(x []float64) (y []float64) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nr {
		panic(fmt.Errorf("dimension mismatch: matrix has %d rows, vector has length %d", nr, len(x)))
	}
	y = make([]float64, nc)
	if nr == 0 || nc == 0 {
		return
	}
	mat.NewVecDense(nc, y).MulVec(m.M.T(), mat.NewVecDense(nr, x))
	return
}

// SizeBytes is the storage needed for an nr x nc float64 matrix
func SizeBytes(nr, nc int) uint64 {
	return uint64(nr) * uint64(nc) * 8
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
