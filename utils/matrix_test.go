package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix(t *testing.T) {
	{ // Row-major storage and matrix vector products
		A := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		nr, nc := A.Dims()
		assert.Equal(t, 2, nr)
		assert.Equal(t, 3, nc)
		assert.Equal(t, 6., A.At(1, 2))
		assert.Equal(t, []float64{14, 32}, A.MulVec([]float64{1, 2, 3}))
		assert.Equal(t, []float64{9, 12, 15}, A.TransMulVec([]float64{1, 2}))
	}
	{ // Row views write through to the matrix
		A := NewMatrix(2, 2)
		row := A.RowView(1)
		row[0], row[1] = 7, 8
		assert.Equal(t, []float64{0, 0, 7, 8}, A.Data())
		A.Set(0, 1, 3)
		assert.Equal(t, 3., A.At(0, 1))
	}
	{ // Read only matrices refuse writes
		A := NewMatrix(1, 1)
		A.SetReadOnly("A")
		assert.True(t, A.IsReadOnly())
		assert.Panics(t, func() { A.Set(0, 0, 1) })
		A.SetWritable()
		assert.NotPanics(t, func() { A.Set(0, 0, 1) })
	}
	{ // Mismatched allocations and products panic
		assert.Panics(t, func() { NewMatrix(2, 2, []float64{1, 2, 3}) })
		A := NewMatrix(2, 2)
		assert.Panics(t, func() { A.MulVec([]float64{1}) })
	}
	require.Equal(t, uint64(8*6), SizeBytes(2, 3))
}
