package kkt

import (
	"math"
	"testing"
)

func TestZeroHorizonReducesToSingleStage(t *testing.T) {
	z, err := NewZeroHorizon(scalarIntegrator{}, 1e-8)
	if err != nil {
		t.Fatalf("NewZeroHorizon: %v", err)
	}
	l := z.Layout()
	if l.N != 1 {
		t.Fatalf("ZeroHorizon layout N = %d, want 1", l.N)
	}
	uc := make([]float64, l.Dim())
	v := l.VBlock(uc, 0)
	v[0] = 0.1
	dst := make([]float64, l.Dim())
	if err := z.Eval(dst, 0, []float64{3.0}, uc); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	// With dtau=0 the state never advances: x_1==x_0, so lambda==phi_x(t,x_0)==x_0.
	costates := z.r.Costates()
	if math.Abs(costates[1][0]-3.0) > 1e-12 {
		t.Errorf("ZeroHorizon costate = %g, want 3.0", costates[1][0])
	}
}
