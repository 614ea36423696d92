package kkt

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Norm returns the Euclidean norm of a residual or decision vector. This
// and the helpers below are thin floats wrappers over flat KKT buffers.
func Norm(v []float64) float64 { return floats.Norm(v, 2) }

// AddScaledTo performs dst = y + alpha*s element-wise and returns dst.
func AddScaledTo(dst, y []float64, alpha float64, s []float64) []float64 {
	return floats.AddScaledTo(dst, y, alpha, s)
}

// SubTo performs dst = a - b element-wise and returns dst.
func SubTo(dst, a, b []float64) []float64 {
	floats.SubTo(dst, a, b)
	return dst
}

// HasNonFinite reports whether v contains a NaN or +-Inf component.
func HasNonFinite(v []float64) bool {
	if floats.HasNaN(v) {
		return true
	}
	for _, x := range v {
		if math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
