package magnetics

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notargets/gomag/mesh"
	"github.com/notargets/gomag/types"
	"github.com/notargets/gomag/utils"
)

// Operator is the sensitivity map between a model over the active cells and the data vector
type Operator interface {
	Dims() (nD, nP int)
	Apply(model []float64) (data []float64, err error)
	ApplyTranspose(data []float64) (model []float64, err error)
}

// sensitivity holds what both operator strategies need to evaluate kernel entries
type sensitivity struct {
	cells     []mesh.Cell // Active cells in column order
	dir       [3]float64
	scale     float64
	modelType types.ModelType
	stations  []station
	nD        int
	procLimit int
	logger    *zap.Logger
}

func (ks *sensitivity) NC() int { return len(ks.cells) }

func (ks *sensitivity) NP() int { return len(ks.cells) * ks.modelType.ParamsPerCell() }

/*
entries are the operator values of one cell for one component. Susceptibility models have one
column per cell, magnetized along the inducing field. Vector models have three, at columns
j, j+nC and j+2nC.
*/
func (ks *sensitivity) entries(pk PrismKernel, c types.Component) (vals [3]float64, n int) {
	row := pk.Row(c, ks.dir)
	switch ks.modelType {
	case types.Susceptibility:
		vals[0], n = ks.scale*utils.Dot3(row, ks.dir), 1
	case types.Vector:
		for b := 0; b < 3; b++ {
			vals[b] = ks.scale * row[b]
		}
		n = 3
	default:
		panic(fmt.Errorf("unhandled model type %v", ks.modelType))
	}
	return
}

func (ks *sensitivity) kernel(j int, st station) (pk PrismKernel, err error) {
	if pk, err = NewPrismKernel(ks.cells[j], st.Location); err != nil {
		err = fmt.Errorf("active cell %d: %w", j, err)
	}
	return
}

func checkLength(what string, n, want int) error {
	if n != want {
		return fmt.Errorf("%s has length %d, want %d: %w", what, n, want, ErrDimension)
	}
	return nil
}

// DenseOperator is the materialized nD x nP sensitivity matrix
type DenseOperator struct {
	G utils.Matrix
}

func newDenseOperator(ks *sensitivity) (op *DenseOperator, err error) {
	var (
		nC, nP = ks.NC(), ks.NP()
		start  = time.Now()
		np     int
	)
	ks.logger.Info("assembling sensitivity matrix",
		zap.Int("nD", ks.nD), zap.Int("nP", nP),
		zap.Uint64("bytes", utils.SizeBytes(ks.nD, nP)))
	G := utils.NewMatrix(ks.nD, nP)
	np, err = runPartitioned(ks.procLimit, len(ks.stations), func(_, kMin, kMax int) error {
		for _, st := range ks.stations[kMin:kMax] {
			for j := 0; j < nC; j++ {
				pk, err := ks.kernel(j, st)
				if err != nil {
					return err
				}
				for _, sr := range st.Rows {
					vals, n := ks.entries(pk, sr.Component)
					row := G.RowView(sr.Row)
					for b := 0; b < n; b++ {
						row[j+b*nC] = vals[b]
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	G.SetReadOnly("G")
	ks.logger.Info("sensitivity matrix assembled",
		zap.Int("parallelDegree", np),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("memory", utils.GetMemUsage()))
	op = &DenseOperator{G: G}
	return
}

func (op *DenseOperator) Dims() (nD, nP int) { return op.G.Dims() }

func (op *DenseOperator) Apply(model []float64) (data []float64, err error) {
	nD, nP := op.Dims()
	if err = checkLength("model", len(model), nP); err != nil {
		return
	}
	if nD == 0 {
		return []float64{}, nil
	}
	data = op.G.MulVec(model)
	return
}

func (op *DenseOperator) ApplyTranspose(data []float64) (model []float64, err error) {
	nD, _ := op.Dims()
	if err = checkLength("data", len(data), nD); err != nil {
		return
	}
	model = op.G.TransMulVec(data)
	return
}

/*
LazyOperator never stores the matrix. Every Apply recomputes the kernels, using O(nD + nP)
memory. Each datum is summed over the cells in column order by a single worker, so results do
not depend on the parallel degree.
*/
type LazyOperator struct {
	ks *sensitivity
}

func newLazyOperator(ks *sensitivity) *LazyOperator { return &LazyOperator{ks: ks} }

func (op *LazyOperator) Dims() (nD, nP int) { return op.ks.nD, op.ks.NP() }

func (op *LazyOperator) Apply(model []float64) (data []float64, err error) {
	var (
		ks     = op.ks
		nC, nP = ks.NC(), ks.NP()
	)
	if err = checkLength("model", len(model), nP); err != nil {
		return
	}
	data = make([]float64, ks.nD)
	_, err = runPartitioned(ks.procLimit, len(ks.stations), func(_, kMin, kMax int) error {
		var acc []float64
		for _, st := range ks.stations[kMin:kMax] {
			acc = append(acc[:0], make([]float64, len(st.Rows))...)
			for j := 0; j < nC; j++ {
				pk, err := ks.kernel(j, st)
				if err != nil {
					return err
				}
				for r, sr := range st.Rows {
					vals, n := ks.entries(pk, sr.Component)
					for b := 0; b < n; b++ {
						acc[r] += vals[b] * model[j+b*nC]
					}
				}
			}
			for r, sr := range st.Rows {
				data[sr.Row] = acc[r]
			}
		}
		return nil
	})
	if err != nil {
		data = nil
	}
	return
}

// ApplyTranspose shards over cells, each worker owns the model entries of its cells
func (op *LazyOperator) ApplyTranspose(data []float64) (model []float64, err error) {
	var (
		ks = op.ks
		nC = ks.NC()
	)
	if err = checkLength("data", len(data), ks.nD); err != nil {
		return
	}
	model = make([]float64, ks.NP())
	_, err = runPartitioned(ks.procLimit, nC, func(_, kMin, kMax int) error {
		for j := kMin; j < kMax; j++ {
			for _, st := range ks.stations {
				pk, err := ks.kernel(j, st)
				if err != nil {
					return err
				}
				for _, sr := range st.Rows {
					vals, n := ks.entries(pk, sr.Component)
					for b := 0; b < n; b++ {
						model[j+b*nC] += vals[b] * data[sr.Row]
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		model = nil
	}
	return
}
