package utils

import (
	"math"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180. }

/*
DipAzimuthToCartesian converts a (dip, azimuth) pair in degrees into a unit vector in
(x=east, y=north, z=up) coordinates. Dip is positive downward and azimuth is measured
clockwise from north, so (90, 0) points straight down.
*/
func DipAzimuthToCartesian(dip, azimuth float64) (u [3]float64) {
	var (
		inc = Deg2Rad(dip)
		dec = Deg2Rad(azimuth)
	)
	u[0] = math.Cos(inc) * math.Sin(dec)
	u[1] = math.Cos(inc) * math.Cos(dec)
	u[2] = -math.Sin(inc)
	// Clean up the round off from cos(pi/2) so a vertical field is exactly vertical
	for i := range u {
		if math.Abs(u[i]) < NODETOL {
			u[i] = 0
		}
	}
	return
}

func Dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
