package krylov

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFDOperatorApproximatesLinearMap(t *testing.T) {
	a := [][]float64{{2, 0}, {0, 3}}
	f := linearResidual(a)
	base := []float64{0, 0}
	fBase := []float64{0, 0}
	op := NewFDOperator(f, base, fBase, 1e-6)

	x := mat.NewVecDense(2, []float64{1, 1})
	dst := mat.NewVecDense(2, nil)
	op.MulVecTo(dst, false, x)

	if math.Abs(dst.AtVec(0)-2) > 1e-4 {
		t.Errorf("A*[1,1] row 0 = %g, want ~2", dst.AtVec(0))
	}
	if math.Abs(dst.AtVec(1)-3) > 1e-4 {
		t.Errorf("A*[1,1] row 1 = %g, want ~3", dst.AtVec(1))
	}
	if op.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", op.LastError())
	}
}

func TestFDOperatorPanicsOnTranspose(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MulVecTo(trans=true) should panic")
		}
	}()
	op := NewFDOperator(linearResidual([][]float64{{1}}), []float64{0}, []float64{0}, 1e-6)
	op.MulVecTo(mat.NewVecDense(1, nil), true, mat.NewVecDense(1, []float64{1}))
}
