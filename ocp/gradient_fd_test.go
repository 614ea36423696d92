package ocp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
)

// TestCartpoleHGradientsMatchFiniteDifference checks Cartpole's analytic
// Hamiltonian gradients (EvalHX, EvalHU) against gonum's finite-difference
// Gradient, the way kkt/residual_fd_test.go does for its toy fixture. The
// Hamiltonian is H(x,u) = L(x,u) + lambda^T f(x,u), with L taken from the
// stage-cost gradient EvalHX already hardcodes (sum Q[k]*0.1*(x[k]-XRef[k])^2
// plus R*u^2) and f from EvalF itself, so this also exercises the
// thetadot-dependence of xddot/thetaddot that a hand-derived partial could
// miss.
func TestCartpoleHGradientsMatchFiniteDifference(t *testing.T) {
	c := NewCartpole()
	lambda := []float64{0.3, -0.6, 1.1, -0.4}
	x := []float64{0.2, 2.4, -0.3, 0.7}
	u := []float64{1.5}

	hamiltonian := func(v []float64) float64 {
		xx, uu := v[:4], v[4:]
		l := c.R * uu[0] * uu[0]
		for k := range xx {
			l += c.Q[k] * 0.1 * (xx[k] - c.XRef[k]) * (xx[k] - c.XRef[k])
		}
		dx := make([]float64, 4)
		c.EvalF(0, xx, uu, dx)
		h := l
		for i := range lambda {
			h += lambda[i] * dx[i]
		}
		return h
	}

	grad := make([]float64, 5)
	fd.Gradient(grad, hamiltonian, append(append([]float64{}, x...), u...), nil)

	hx := make([]float64, 4)
	c.EvalHX(0, x, u, lambda, hx)
	for k := range hx {
		if math.Abs(hx[k]-grad[k]) > 1e-5 {
			t.Errorf("EvalHX[%d] = %g, finite-difference dH/dx[%d] = %g", k, hx[k], k, grad[k])
		}
	}

	hu := make([]float64, 1)
	c.EvalHU(0, x, u, lambda, hu)
	if math.Abs(hu[0]-grad[4]) > 1e-5 {
		t.Errorf("EvalHU = %g, finite-difference dH/du = %g", hu[0], grad[4])
	}
}

// TestHexacopterHGradientsMatchFiniteDifference mirrors the Cartpole check
// above for the 12-state, 6-input rigid-body model.
func TestHexacopterHGradientsMatchFiniteDifference(t *testing.T) {
	h := NewHexacopter(nil)
	h.ZRef = 1.2
	lambda := []float64{0.1, -0.2, 0.3, -0.4, 0.5, -0.6, 0.7, -0.8, 0.9, -1.0, 1.1, -1.2}
	x := []float64{0.1, -0.2, 0.3, 0.4, -0.5, 0.6, 0.12, -0.08, 0.25, 0.05, -0.04, 0.03}
	u := []float64{1.2, 1.1, 0.9, 1.0, 1.3, 0.8}

	hamiltonian := func(v []float64) float64 {
		xx, uu := v[:12], v[12:]
		ref := [12]float64{}
		ref[2] = h.ZRef
		l := 0.0
		for i := range uu {
			l += h.R * uu[i] * uu[i]
		}
		for k := range xx {
			l += h.Q[k] * 0.1 * (xx[k] - ref[k]) * (xx[k] - ref[k])
		}
		dx := make([]float64, 12)
		h.EvalF(0, xx, uu, dx)
		hv := l
		for i := range lambda {
			hv += lambda[i] * dx[i]
		}
		return hv
	}

	grad := make([]float64, 18)
	fd.Gradient(grad, hamiltonian, append(append([]float64{}, x...), u...), nil)

	hx := make([]float64, 12)
	h.EvalHX(0, x, u, lambda, hx)
	for k := range hx {
		if math.Abs(hx[k]-grad[k]) > 1e-5 {
			t.Errorf("EvalHX[%d] = %g, finite-difference dH/dx[%d] = %g", k, hx[k], k, grad[k])
		}
	}

	hu := make([]float64, 6)
	h.EvalHU(0, x, u, lambda, hu)
	for i := range hu {
		if math.Abs(hu[i]-grad[12+i]) > 1e-5 {
			t.Errorf("EvalHU[%d] = %g, finite-difference dH/du[%d] = %g", i, hu[i], i, grad[12+i])
		}
	}
}
