package kkt

import "math"

// FB evaluates the Fischer-Burmeister reformulation of a complementarity
// pair (a>=0, b>=0, a*b=0):
//
//	FB(a,b;epsFB) = a + b - sqrt(a^2 + b^2 + epsFB)
//
// epsFB != 0 keeps the square root differentiable at the origin, at the
// cost of FB(a,b;epsFB) == 0 only approximating (rather than exactly
// implying) complementarity. With epsFB == 0, FB(a,b;0) == 0 if and only
// if a>=0, b>=0, and a*b==0.
func FB(a, b, epsFB float64) float64 {
	return a + b - math.Sqrt(a*a+b*b+epsFB)
}

// boundPair computes the smoothed-complementarity inputs (a,b) for a
// single bounded control component.
//
//	a = (umax-u)(u-umin) + mu^2
//	b = v^2
//
// a>=0 encodes u within [umin,umax]; b>=0 is automatic. Driving FB(a,b)
// to zero drives the pair to the complementarity boundary, with mu^2 and
// v^2 acting as slack that let the smoothed system stay feasible off the
// constraint boundary.
func boundPair(u, umin, umax, v, mu float64) (a, b float64) {
	a = (umax-u)*(u-umin) + mu*mu
	b = v * v
	return a, b
}

// dAdU is the partial derivative of boundPair's a with respect to u,
// used to augment the control-stationarity row at bounded indices (see
// Residual.Eval and the FB-augmentation policy recorded in DESIGN.md).
func dAdU(u, umin, umax float64) float64 {
	return umax + umin - 2*u
}
