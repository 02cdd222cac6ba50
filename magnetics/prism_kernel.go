package magnetics

import (
	"fmt"
	"math"

	"github.com/notargets/gomag/mesh"
	"github.com/notargets/gomag/types"
	"github.com/notargets/gomag/utils"
)

/*
PrismKernel holds the closed form derivatives of the Newtonian potential U of a rectangular
prism, taken with respect to the observation point:

	T[i][j]    = d2U/dxi dxj
	G[i][j][k] = d3U/dxi dxj dxk

A uniformly magnetized prism with effective susceptibility m produces, per unit inducing
intensity, the anomalous field B_i = Sum_k T[i][k] m_k / 4Pi and gradient dB_i/dx_j =
Sum_k G[i][j][k] m_k / 4Pi. Both tensors are symmetric, and their traces vanish outside the prism.
*/
type PrismKernel struct {
	T [3][3]float64
	G [3][3][3]float64
}

/*
NewPrismKernel sums the contribution of the eight prism corners with alternating sign.
Coordinate offsets smaller than a tolerance scaled to the cell are snapped to zero, and the
removable singularities of the formulas are replaced by their limits, so that observation
points on faces, edges and corners of the prism still give finite values.
*/
func NewPrismKernel(cell mesh.Cell, obs [3]float64) (pk PrismKernel, err error) {
	if err = cell.Validate(); err != nil {
		err = fmt.Errorf("%v: %w", err, ErrGeometry)
		return
	}
	if !utils.IsFinite(obs[0], obs[1], obs[2]) {
		err = fmt.Errorf("non finite observation location %v: %w", obs, ErrGeometry)
		return
	}
	var (
		lo, hi = cell.Bounds()
		tol    = utils.NODETOL * cell.MaxExtent()
		tol2   = tol * tol
		// Mixed third derivatives, the remaining ones follow from Laplace's equation
		uxxy, uxyy, uxxz, uxzz, uyyz, uyzz, uxyz float64
	)
	offset := func(corner, o float64) float64 {
		d := corner - o
		if math.Abs(d) < tol {
			d = 0
		}
		return d
	}
	for a := 0; a < 2; a++ {
		x, sa := offset(lo[0], obs[0]), -1.
		if a == 1 {
			x, sa = offset(hi[0], obs[0]), 1.
		}
		for b := 0; b < 2; b++ {
			y, sb := offset(lo[1], obs[1]), -1.
			if b == 1 {
				y, sb = offset(hi[1], obs[1]), 1.
			}
			for c := 0; c < 2; c++ {
				z, sc := offset(lo[2], obs[2]), -1.
				if c == 1 {
					z, sc = offset(hi[2], obs[2]), 1.
				}
				var (
					sgn        = sa * sb * sc
					x2, y2, z2 = x * x, y * y, z * z
					R          = math.Sqrt(x2 + y2 + z2)
					ix         = invRPlus(x, R, y2+z2, tol2)
					iy         = invRPlus(y, R, x2+z2, tol2)
					iz         = invRPlus(z, R, x2+y2, tol2)
				)
				pk.T[0][0] -= sgn * atanRatio(y*z, x*R)
				pk.T[1][1] -= sgn * atanRatio(x*z, y*R)
				pk.T[2][2] -= sgn * atanRatio(x*y, z*R)
				pk.T[0][1] += sgn * logRPlus(z, R, x2+y2, tol2)
				pk.T[0][2] += sgn * logRPlus(y, R, x2+z2, tol2)
				pk.T[1][2] += sgn * logRPlus(x, R, y2+z2, tol2)

				uxxy -= sgn * x * iz
				uxyy -= sgn * y * iz
				uxxz -= sgn * x * iy
				uxzz -= sgn * z * iy
				uyyz -= sgn * y * ix
				uyzz -= sgn * z * ix
				if R != 0 {
					uxyz -= sgn / R
				}
			}
		}
	}
	pk.T[1][0], pk.T[2][0], pk.T[2][1] = pk.T[0][1], pk.T[0][2], pk.T[1][2]

	var (
		uxxx = -(uxyy + uxzz)
		uyyy = -(uxxy + uyzz)
		uzzz = -(uxxz + uyyz)
	)
	pk.setThird(0, 0, 0, uxxx)
	pk.setThird(1, 1, 1, uyyy)
	pk.setThird(2, 2, 2, uzzz)
	pk.setThird(0, 0, 1, uxxy)
	pk.setThird(0, 1, 1, uxyy)
	pk.setThird(0, 0, 2, uxxz)
	pk.setThird(0, 2, 2, uxzz)
	pk.setThird(1, 1, 2, uyyz)
	pk.setThird(1, 2, 2, uyzz)
	pk.setThird(0, 1, 2, uxyz)
	return
}

// setThird fills every permutation of (i, j, k)
func (pk *PrismKernel) setThird(i, j, k int, val float64) {
	pk.G[i][j][k], pk.G[i][k][j] = val, val
	pk.G[j][i][k], pk.G[j][k][i] = val, val
	pk.G[k][i][j], pk.G[k][j][i] = val, val
}

/*
Row returns the response of component c to a unit effective susceptibility along x, y and z.
The factor B0/4Pi is applied by the caller. TMI projects the field rows onto dir, the unit
vector of the inducing field.
*/
func (pk PrismKernel) Row(c types.Component, dir [3]float64) (row [3]float64) {
	switch c {
	case types.TMI:
		for i := 0; i < 3; i++ {
			for k := 0; k < 3; k++ {
				row[k] += dir[i] * pk.T[i][k]
			}
		}
	case types.Bx, types.By, types.Bz:
		row = pk.T[int(c-types.Bx)]
	case types.Bxx, types.Bxy, types.Bxz, types.Byy, types.Byz, types.Bzz:
		i, j := c.GradientIndices()
		row = pk.G[i][j]
	default:
		panic(fmt.Errorf("unknown component %v", c))
	}
	return
}

// Trace of the second derivative tensor: 0 outside the prism, -4Pi inside
func (pk PrismKernel) Trace() float64 {
	return pk.T[0][0] + pk.T[1][1] + pk.T[2][2]
}

// atanRatio is atan(num/den) with the zero denominator mapped to the mean of both one sided limits
func atanRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return math.Atan(num / den)
}

/*
logRPlus evaluates ln(c + R). For negative c the sum cancels catastrophically, so it uses
ln(c+R) = ln(rho2) - ln(R-c), where rho2 is the squared distance in the other two axes. When rho2
vanishes the ln(rho2) term is dropped, it cancels between the paired corners of the prism.
*/
func logRPlus(c, R, rho2, tol2 float64) float64 {
	if c >= 0 {
		if s := c + R; s != 0 {
			return math.Log(s)
		}
		return 0
	}
	if rho2 < tol2 {
		return -math.Log(R - c)
	}
	return math.Log(rho2) - math.Log(R-c)
}

// invRPlus evaluates 1/(R(c+R)) with the same rewrite as logRPlus for negative c
func invRPlus(c, R, rho2, tol2 float64) float64 {
	if c >= 0 {
		if s := R * (c + R); s != 0 {
			return 1 / s
		}
		return 0
	}
	if rho2 < tol2 {
		return 0
	}
	return (R - c) / (R * rho2)
}
