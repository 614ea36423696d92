package krylov

import (
	"math"
	"testing"
)

// linearResidual builds a ResidualFunc computing dst = A*u for a small
// dense symmetric positive-definite A, so the finite-difference operator
// approximates A almost exactly (F is already linear).
func linearResidual(a [][]float64) ResidualFunc {
	n := len(a)
	return func(dst, u []float64) error {
		for i := 0; i < n; i++ {
			var sum float64
			for j := 0; j < n; j++ {
				sum += a[i][j] * u[j]
			}
			dst[i] = sum
		}
		return nil
	}
}

func TestSolveConvergesOnSPDSystem(t *testing.T) {
	a := [][]float64{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 2},
	}
	f := linearResidual(a)
	base := []float64{0, 0, 0}
	fBase := []float64{0, 0, 0}
	b := []float64{1, 2, 3}

	res, err := Solve(f, base, fBase, b, Options{KMax: 3, Eps: 1e-6, Tolerance: 1e-10})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Breakdown {
		t.Fatalf("unexpected breakdown on a well-conditioned 3x3 system")
	}

	// Residual b - A*delta should be small.
	var resid [3]float64
	for i := range resid {
		var sum float64
		for j := range res.Delta {
			sum += a[i][j] * res.Delta[j]
		}
		resid[i] = b[i] - sum
	}
	norm := math.Sqrt(resid[0]*resid[0] + resid[1]*resid[1] + resid[2]*resid[2])
	if norm > 1e-4 {
		t.Errorf("||b-A*delta|| = %g, want small (GMRES(k_max) on a rank<=k_max SPD system)", norm)
	}
}

func TestSolveDeterministic(t *testing.T) {
	a := [][]float64{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 2},
	}
	f := linearResidual(a)
	base := []float64{0, 0, 0}
	fBase := []float64{0, 0, 0}
	b := []float64{1, 2, 3}

	r1, err := Solve(f, base, fBase, b, Options{KMax: 3, Eps: 1e-6})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	r2, err := Solve(f, base, fBase, b, Options{KMax: 3, Eps: 1e-6})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i := range r1.Delta {
		if math.Abs(r1.Delta[i]-r2.Delta[i]) > 1e-12 {
			t.Errorf("Solve not deterministic at index %d: %g vs %g", i, r1.Delta[i], r2.Delta[i])
		}
	}
}

func TestSolveRejectsBadOptions(t *testing.T) {
	f := linearResidual([][]float64{{1}})
	if _, err := Solve(f, []float64{0}, []float64{0}, []float64{1}, Options{KMax: 0, Eps: 1e-8}); err == nil {
		t.Error("KMax<=0 should be an error")
	}
	if _, err := Solve(f, []float64{0}, []float64{0}, []float64{1}, Options{KMax: 1, Eps: 0}); err == nil {
		t.Error("Eps<=0 should be an error")
	}
}

func TestSolveSurfacesResidualFailure(t *testing.T) {
	wantErr := errSentinel{}
	failing := func(dst, u []float64) error {
		return wantErr
	}
	_, err := Solve(failing, []float64{0}, []float64{0}, []float64{1}, Options{KMax: 1, Eps: 1e-6})
	if err == nil {
		t.Fatal("Solve should surface a residual-evaluation failure from inside the matrix-free operator")
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "residual evaluation failed" }
