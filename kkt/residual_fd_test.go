package kkt

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/nmpc-go/cgmres/ocp"
)

// TestEvalHGradientsMatchFiniteDifference checks an OCP's analytic
// Hamiltonian gradients (EvalHX, EvalHU) against gonum's finite-difference
// Gradient. The "system" is the scalar Hamiltonian H=0.5*(u^2+x^2)+lambda*u
// of scalarIntegrator, which has closed-form partials simple enough to
// double as a regression fixture for the residual's own H_x/H_u calls.
func TestEvalHGradientsMatchFiniteDifference(t *testing.T) {
	p := ocp.Problem(scalarIntegrator{})
	lambda := []float64{0.7}
	x, uc := 1.3, 0.4

	hamiltonian := func(v []float64) float64 {
		xx, uu := v[0], v[1]
		return 0.5*(uu*uu+xx*xx) + lambda[0]*uu
	}

	grad := make([]float64, 2)
	fd.Gradient(grad, hamiltonian, []float64{x, uc}, nil)

	hx := make([]float64, 1)
	p.EvalHX(0, []float64{x}, []float64{uc}, lambda, hx)
	if math.Abs(hx[0]-grad[0]) > 1e-6 {
		t.Errorf("EvalHX = %g, finite-difference dH/dx = %g", hx[0], grad[0])
	}

	hu := make([]float64, 1)
	p.EvalHU(0, []float64{x}, []float64{uc}, lambda, hu)
	if math.Abs(hu[0]-grad[1]) > 1e-6 {
		t.Errorf("EvalHU = %g, finite-difference dH/du = %g", hu[0], grad[1])
	}
}
