package kkt

import (
	"errors"
	"math"
	"testing"

	"github.com/nmpc-go/cgmres/cgmreserr"
	"github.com/nmpc-go/cgmres/ocp"
)

// scalarIntegrator is a minimal OCP fixture: nx=1, nu=1, one bounded
// control index, dynamics xdot=u, stage cost 0.5*(u^2+x^2), terminal cost
// 0.5*x^2. Its Hamiltonian gradients are simple enough to hand-verify.
type scalarIntegrator struct{}

func (scalarIntegrator) Dims() ocp.Dims { return ocp.Dims{Nx: 1, Nu: 1, Nc: 0, Nh: 0, Nub: 1} }
func (scalarIntegrator) BoundedIndices() []int { return []int{0} }
func (scalarIntegrator) Bounds() (umin, umax []float64) {
	return []float64{-1}, []float64{1}
}
func (scalarIntegrator) DummyWeight() []float64 { return []float64{1} }
func (scalarIntegrator) Synchronize()           {}
func (scalarIntegrator) EvalF(t float64, x, u, dx []float64) {
	dx[0] = u[0]
}
func (scalarIntegrator) EvalPhiX(t float64, x, phix []float64) {
	phix[0] = x[0]
}
func (scalarIntegrator) EvalHX(t float64, x, uc, lambda, hx []float64) {
	hx[0] = x[0]
}
func (scalarIntegrator) EvalHU(t float64, x, uc, lambda, hu []float64) {
	hu[0] = uc[0] + lambda[0]
}

func newTestResidual(t *testing.T, n int) *Residual {
	t.Helper()
	r, err := NewResidual(scalarIntegrator{}, n, 1e-8)
	if err != nil {
		t.Fatalf("NewResidual: %v", err)
	}
	return r
}

func TestResidualDimensionalConsistency(t *testing.T) {
	r := newTestResidual(t, 3)
	dst := make([]float64, r.Layout.Dim()+1)
	U := make([]float64, r.Layout.Dim())
	x0 := []float64{0}
	if err := r.Eval(dst, 0, 0.1, x0, U); !errors.Is(err, cgmreserr.ErrUsage) {
		t.Errorf("wrong-length dst should be a usage error, got %v", err)
	}
}

func TestStateRolloutZeroControl(t *testing.T) {
	n := 4
	r := newTestResidual(t, n)
	U := make([]float64, r.Layout.Dim())
	// leave u=0, v=0.1 (>0 per the invariant), mu=0 for every stage.
	for i := 0; i < n; i++ {
		v := r.Layout.VBlock(U, i)
		for j := range v {
			v[j] = 0.1
		}
	}
	x0 := []float64{1.0}
	dst := make([]float64, r.Layout.Dim())
	if err := r.Eval(dst, 0, 0.1, x0, U); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	states := r.States()
	for i := 0; i <= n; i++ {
		if math.Abs(states[i][0]-1.0) > 1e-12 {
			t.Errorf("x[%d] = %g, want 1.0 (u=0 holds state constant)", i, states[i][0])
		}
	}
}

func TestTerminalCostateEqualsPhiX(t *testing.T) {
	n := 2
	r := newTestResidual(t, n)
	U := make([]float64, r.Layout.Dim())
	for i := 0; i < n; i++ {
		v := r.Layout.VBlock(U, i)
		for j := range v {
			v[j] = 0.1
		}
	}
	x0 := []float64{2.0}
	dst := make([]float64, r.Layout.Dim())
	if err := r.Eval(dst, 0, 0.25, x0, U); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	states, costates := r.States(), r.Costates()
	want := states[n][0] // phix(t,x) = x for scalarIntegrator
	if math.Abs(costates[n][0]-want) > 1e-12 {
		t.Errorf("lambda[N] = %g, want phi_x(t_N,x_N) = %g", costates[n][0], want)
	}
}

func TestResidualRejectsMismatchedX0(t *testing.T) {
	r := newTestResidual(t, 2)
	U := make([]float64, r.Layout.Dim())
	dst := make([]float64, r.Layout.Dim())
	if err := r.Eval(dst, 0, 0.1, []float64{0, 0}, U); !errors.Is(err, cgmreserr.ErrUsage) {
		t.Errorf("wrong-length x0 should be a usage error, got %v", err)
	}
}

func TestResidualDetectsNonFinite(t *testing.T) {
	n := 1
	r := newTestResidual(t, n)
	U := make([]float64, r.Layout.Dim())
	v := r.Layout.VBlock(U, 0)
	v[0] = math.Inf(1)
	dst := make([]float64, r.Layout.Dim())
	if err := r.Eval(dst, 0, 0.1, []float64{0}, U); !errors.Is(err, cgmreserr.ErrNumerical) {
		t.Errorf("non-finite decision vector should yield a numerical failure, got %v", err)
	}
}
