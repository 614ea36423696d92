package kkt

import (
	"math"
	"testing"
)

func TestSolveDummyMuAtInteriorPoint(t *testing.T) {
	r := SolveDummyMu(0, -1, 1, 2.0, 1e-8, 1e-6)
	a, b := boundPair(0, -1, 1, r.V, r.Mu)
	if fb := FB(a, b, 1e-8); math.Abs(fb) > 1e-8 {
		t.Errorf("FB residual = %g, want ~0", fb)
	}
	if residual := 2*r.V*r.Mu - 2.0; math.Abs(residual) > 1e-6 {
		t.Errorf("2*v*mu-w = %g, want ~0", residual)
	}
	if r.Infeasible {
		t.Errorf("u=0 within [-1,1] should not be reported infeasible")
	}
}

func TestSolveDummyMuAtUpperBound(t *testing.T) {
	r := SolveDummyMu(1.0, -1, 1, 1.0, 1e-8, 1e-6)
	if fb := FB((1-1.0)*(1.0-(-1))+r.Mu*r.Mu, r.V*r.V, 1e-8); math.Abs(fb) > 1e-12 {
		t.Errorf("FB at bound = %g, want < 1e-12", fb)
	}
	if residual := 2*r.V*r.Mu - 1.0; math.Abs(residual) > 1e-6 {
		t.Errorf("2*v*mu-w = %g, want ~0", residual)
	}
}

func TestSolveDummyMuInfeasibleControl(t *testing.T) {
	r := SolveDummyMu(5.0, -1, 1, 1.0, 1e-8, 1e-6)
	if !r.Infeasible {
		t.Errorf("u=5 outside [-1,1] should be reported infeasible")
	}
}
