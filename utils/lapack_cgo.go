//go:build cgo && netlib

package utils

/*
#cgo CFLAGS: -march=native -mavx -mavx2
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
#include <cblas.h>
#include <lapacke.h>
*/
import "C"

import (
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Dense sensitivity products go through gemv, route them to OpenBLAS when built with -tags netlib
func init() {
	blas64.Use(netblas.Implementation{})
	BLASImplementation = "netlib"
}
