// Package cgmreserr defines the error kinds returned by the solver facade
// and its supporting packages.
//
// Four kinds are distinguished: configuration errors and usage errors are
// raised at construction or arming time and never inside update(); numerical
// failures poison a running solver; convergence warnings are informational
// and never surface as an error.
package cgmreserr

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the kind of failure. Wrap with fmt.Errorf's
// %w verb so callers can still errors.Is against these.
var (
	// ErrConfig marks an invalid configuration: bad dimensions, T_f<=0,
	// k_max<=0, and similar. Raised at construction or arming, never in
	// update().
	ErrConfig = errors.New("cgmres: configuration error")

	// ErrUsage marks a caller protocol violation: update() called before
	// arming, mismatched input lengths, or a call made to a poisoned
	// solver.
	ErrUsage = errors.New("cgmres: usage error")

	// ErrNumerical marks a non-finite residual or Krylov basis vector
	// encountered inside update(). The solver that returns this is
	// poisoned until explicitly re-armed.
	ErrNumerical = errors.New("cgmres: numerical failure")
)

// ConvergenceWarning reports that the zero-horizon initializer did not
// reach its opterr tolerance within max_iter iterations. It is returned
// as information alongside a result, never through the error return, so a
// single slow sample cannot interrupt closed-loop control.
type ConvergenceWarning struct {
	Iterations int
	OptErr     float64
	Tolerance  float64
}

func (w *ConvergenceWarning) String() string {
	if w == nil {
		return "cgmres: no convergence warning"
	}
	return fmt.Sprintf("cgmres: initializer did not converge after %d iterations (opterr=%g, tol=%g)",
		w.Iterations, w.OptErr, w.Tolerance)
}

// GMRESBreakdown reports that the matrix-free Krylov solve broke down
// before reaching k_max and that the best partial solution was used
// instead, per the degraded-iteration policy of the continuation stepper.
type GMRESBreakdown struct {
	Iteration int
	Value     float64
}

func (w *GMRESBreakdown) String() string {
	if w == nil {
		return "cgmres: no GMRES breakdown"
	}
	return fmt.Sprintf("cgmres: GMRES breakdown at iteration %d (value=%g); using best partial solution",
		w.Iteration, w.Value)
}

// StabilityWarning reports that zeta*h >= 2, the implied-but-unchecked
// stability condition on the continuation law's gain and sampling period.
// It is returned alongside a constructed Solver, never through the error
// return, since the solver is still usable — just outside its documented
// stable region.
type StabilityWarning struct {
	Zeta         float64
	SamplingTime float64
}

func (w *StabilityWarning) String() string {
	if w == nil {
		return "cgmres: no stability warning"
	}
	return fmt.Sprintf("cgmres: zeta*h=%g >= 2 violates the implied stability condition (zeta=%g, h=%g)",
		w.Zeta*w.SamplingTime, w.Zeta, w.SamplingTime)
}
