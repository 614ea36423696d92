package krylov

import (
	"errors"
	"fmt"

	"github.com/nmpc-go/cgmres/cgmreserr"
	"gonum.org/v1/gonum/linsolve"
	"gonum.org/v1/gonum/mat"
)

// Options configures a single matrix-free GMRES(k_max) solve.
type Options struct {
	// KMax is the Krylov subspace dimension. Restricted small (typically
	// <=10) per the continuation law's real-time budget.
	KMax int
	// Eps is the finite-difference step used by the directional
	// derivative A*v ~= (F(base+eps*v)-F(base))/eps.
	Eps float64
	// Tolerance is the relative residual tolerance passed to gonum's
	// linsolve.Settings. Zero selects linsolve's own default (1e-8).
	Tolerance float64
}

// Result is the outcome of one matrix-free GMRES(k_max) solve.
type Result struct {
	Delta        []float64
	Iterations   int
	ResidualNorm float64
	// Breakdown reports that the Arnoldi process collapsed before
	// completing its k_max-dimensional build (H[j+1,j] fell below the
	// floor gonum's implementation uses), and that Delta is the best
	// partial solution rather than one built from a full basis. Running
	// out of the k_max dimensions themselves without reaching tolerance
	// is the algorithm's ordinary truncation, not a breakdown, and is not
	// reported here.
	Breakdown bool
}

// Solve runs matrix-free GMRES(k_max) for A*delta=b, warm-started at
// delta=0, where A*v is the finite-difference directional derivative of f
// around (base,fBase) (see FDOperator). Arnoldi orthonormalization,
// Hessenberg reduction, and the Givens-rotation least squares solve are
// all performed by gonum.org/v1/gonum/linsolve's GMRES method; this
// function only wires the domain-specific matrix-free operator to it and
// translates the result into the stepper's vocabulary.
func Solve(f ResidualFunc, base, fBase, b []float64, opts Options) (Result, error) {
	n := len(b)
	if opts.KMax <= 0 {
		return Result{}, fmt.Errorf("%w: krylov: KMax must be > 0, got %d", cgmreserr.ErrConfig, opts.KMax)
	}
	if opts.Eps <= 0 {
		return Result{}, fmt.Errorf("%w: krylov: Eps must be > 0, got %g", cgmreserr.ErrConfig, opts.Eps)
	}
	kMax := opts.KMax
	if kMax > n {
		kMax = n
	}

	op := NewFDOperator(f, base, fBase, opts.Eps)
	bVec := mat.NewVecDense(n, append([]float64(nil), b...))

	// MaxIterations counts restart cycles, each a fresh kMax-dimensional
	// Arnoldi build (iterative.go's iterate() loop): a single truncated
	// GMRES(k_max) pass is exactly one cycle, not kMax of them.
	method := &linsolve.GMRES{Restart: kMax}
	settings := &linsolve.Settings{MaxIterations: 1}
	if opts.Tolerance > 0 {
		settings.Tolerance = opts.Tolerance
	}

	res, err := linsolve.Iterative(op, bVec, method, settings)
	if op.LastError() != nil {
		// A residual evaluation failed (non-finite F): this is a
		// numerical failure, not a degraded-but-usable breakdown.
		return Result{}, fmt.Errorf("%w: krylov: residual evaluation failed: %w", cgmreserr.ErrNumerical, op.LastError())
	}

	result := Result{
		Iterations:   res.Stats.Iterations,
		ResidualNorm: res.ResidualNorm,
	}
	if res.X != nil {
		result.Delta = append([]float64(nil), res.X.RawVector().Data...)
	}

	if err != nil {
		var breakdown *linsolve.BreakdownError
		if errors.As(err, &breakdown) {
			result.Breakdown = true
			return result, nil
		}
		if errors.Is(err, linsolve.ErrIterationLimit) {
			// The single k_max-dimensional pass ran out of dimensions
			// before reaching tolerance. That is the expected outcome of
			// restricting the Krylov subspace at all; Delta is still the
			// best solution that pass produced.
			return result, nil
		}
		return Result{}, fmt.Errorf("%w: krylov: %s", cgmreserr.ErrNumerical, err)
	}
	return result, nil
}
