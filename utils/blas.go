package utils

// BLASImplementation names the BLAS backing dense matrix products
var BLASImplementation = "gonum"
