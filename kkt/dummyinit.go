package kkt

import "math"

// DummyMuResult holds the (v,mu) pair solved for one bounded control
// index at arming time.
type DummyMuResult struct {
	V, Mu float64
	// Infeasible reports that the initial control u violated its bound
	// before the dummy/slack pair was solved for, triggering the
	// clamp-and-warn policy (see DESIGN.md's resolution of the
	// corresponding Open Question).
	Infeasible bool
}

// SolveDummyMu solves, for a single bounded control component, the 2x2
// nonlinear system
//
//	FB(a,b;epsFB) = 0,   a = (umax-u)(u-umin) + mu^2,   b = v^2
//	2*v*mu - w = 0
//
// by Newton iteration on (v,mu), so that F is already near zero for this
// block at arming time (see the solver facade's init_dummy_mu). If u is
// already infeasible ((umax-u)(u-umin) < 0), the geometric term is
// clamped to epsInit>0 rather than left negative, and Infeasible is
// reported so the caller can surface a warning.
func SolveDummyMu(u, umin, umax, w, epsFB, epsInit float64) DummyMuResult {
	aU := (umax - u) * (u - umin)
	infeasible := aU < 0
	if infeasible {
		aU = epsInit
	}

	seed := math.Sqrt(math.Max(epsInit, math.Abs(w)/2+math.Abs(aU)))
	v, mu := seed, seed
	if w < 0 {
		mu = -mu
	}

	for iter := 0; iter < 50; iter++ {
		a := aU + mu*mu
		b := v * v
		s := math.Sqrt(a*a + b*b + epsFB)
		r1 := FB(a, b, epsFB)
		r2 := 2*v*mu - w
		if math.Abs(r1) < 1e-14 && math.Abs(r2) < 1e-14 {
			break
		}
		dFBda := 1 - a/s
		dFBdb := 1 - b/s
		j11, j12 := dFBdb*2*v, dFBda*2*mu // d(r1)/d(v,mu)
		j21, j22 := 2*mu, 2*v            // d(r2)/d(v,mu)
		det := j11*j22 - j12*j21
		if math.Abs(det) < 1e-300 {
			break
		}
		dv := (j22*r1 - j12*r2) / det
		dmu := (j11*r2 - j21*r1) / det
		v -= dv
		mu -= dmu
	}
	return DummyMuResult{V: v, Mu: mu, Infeasible: infeasible}
}
