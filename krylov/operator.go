// Package krylov implements the matrix-free GMRES(k_max) solve used by the
// C/GMRES continuation stepper.
//
// Rather than hand-roll Arnoldi orthonormalization and Givens-rotation
// least squares, this package drives gonum.org/v1/gonum/linsolve's GMRES
// method and supplies the one piece linsolve needs from the caller: a
// MulVecToer that evaluates the finite-difference directional derivative
// of a residual function instead of multiplying a stored matrix.
package krylov

import "gonum.org/v1/gonum/mat"

// ResidualFunc evaluates a residual F at decision vector u, writing the
// result into dst. It is the shape both kkt.Residual.Eval (with t, dtau,
// x0 closed over) and the C/GMRES stepper's finite-difference predictor
// conform to.
type ResidualFunc func(dst, u []float64) error

// FDOperator is a MulVecToer (gonum.org/v1/gonum/linsolve's matrix
// abstraction) that approximates a Jacobian-vector product by a forward
// finite difference of a user residual around a fixed base point:
//
//	A*v ~= (F(base+eps*v) - Fbase) / eps
//
// No Jacobian is ever formed; the only per-call cost is one extra
// residual evaluation.
type FDOperator struct {
	F     ResidualFunc
	Base  []float64 // the point the directional derivative is taken around (the current decision vector in the stepper)
	FBase []float64 // F(Base), precomputed once per GMRES solve
	Eps   float64

	// err captures the last residual evaluation failure so MulVecTo (which
	// has no error return, per the linsolve.MulVecToer interface) can
	// surface it after the solve via LastError.
	err error

	// scratch, reused across calls; never reallocated mid-solve.
	pert []float64
	fpt  []float64
}

// NewFDOperator builds an operator around base/fBase with the given
// finite-difference step. It allocates its scratch buffers once.
func NewFDOperator(f ResidualFunc, base, fBase []float64, eps float64) *FDOperator {
	n := len(base)
	return &FDOperator{
		F:     f,
		Base:  base,
		FBase: fBase,
		Eps:   eps,
		pert:  make([]float64, n),
		fpt:   make([]float64, n),
	}
}

// MulVecTo implements linsolve.MulVecToer. A is never actually symmetric
// or even linear — it is a local linearization of F — so Trans is
// rejected; GMRES never requires the transpose.
func (op *FDOperator) MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector) {
	if trans {
		panic("krylov: FDOperator does not support transpose multiplication")
	}
	n := len(op.Base)
	for i := 0; i < n; i++ {
		op.pert[i] = op.Base[i] + op.Eps*x.AtVec(i)
	}
	if err := op.F(op.fpt, op.pert); err != nil {
		op.err = err
		// Leave dst at zero; the caller checks LastError after the solve
		// and aborts before trusting a poisoned result.
		dst.Zero()
		return
	}
	for i := 0; i < n; i++ {
		dst.SetVec(i, (op.fpt[i]-op.FBase[i])/op.Eps)
	}
}

// LastError returns the last residual-evaluation error seen by MulVecTo,
// if any.
func (op *FDOperator) LastError() error { return op.err }
