package cgmres

import (
	"fmt"

	"github.com/nmpc-go/cgmres/cgmreserr"
)

// Config modifies Solver behaviour: the continuation law's gain and step,
// the matrix-free Jacobian-vector finite-difference step, the zero-horizon
// initializer's iteration budget, and logging verbosity. Set once at
// construction via New; never mutated inside update().
type Config struct {
	// SamplingTime is the continuation step h: the time increment used to
	// predict x' and to integrate U.
	SamplingTime float64 `yaml:"sampling_time"`
	// Zeta is the stabilization gain zeta; the residual decays at rate
	// zeta along the closed-loop trajectory.
	Zeta float64 `yaml:"zeta"`
	// FiniteDifferenceEpsilon is the step used by the matrix-free
	// Jacobian-vector operator (in both Update and Solve), and also the
	// Fischer-Burmeister smoothing parameter epsFB. The b-vector time
	// difference in Update divides by SamplingTime, not by this value.
	// Typical value 1e-8.
	FiniteDifferenceEpsilon float64 `yaml:"finite_difference_epsilon"`
	// MaxIter bounds the zero-horizon initializer's Newton iterations.
	MaxIter int `yaml:"max_iter"`
	// OptErrTol is the initializer's convergence threshold on ||F||.
	OptErrTol float64 `yaml:"opterr_tol"`
	// VerboseLevel is the requested logging detail: 0 silent, 1 per-sample
	// summary, 2 per-iteration. The Solver itself does not read it;
	// cmd/cgmressim registers a LoggingObserver (one line per Update) when
	// it is >= 1, and level 2 produces no per-iteration output.
	VerboseLevel int `yaml:"verbose_level"`
	// KMax is the Krylov subspace dimension used by every GMRES solve.
	KMax int `yaml:"k_max"`
}

// Validate reports a configuration error for any field outside its
// documented domain. Runs at New, never inside update().
func (c Config) Validate() error {
	if c.SamplingTime <= 0 {
		return fmt.Errorf("%w: cgmres: SamplingTime must be > 0, got %g", cgmreserr.ErrConfig, c.SamplingTime)
	}
	if c.Zeta <= 0 {
		return fmt.Errorf("%w: cgmres: Zeta must be > 0, got %g", cgmreserr.ErrConfig, c.Zeta)
	}
	if c.FiniteDifferenceEpsilon <= 0 || c.FiniteDifferenceEpsilon >= 1 {
		return fmt.Errorf("%w: cgmres: FiniteDifferenceEpsilon must be in (0,1), got %g", cgmreserr.ErrConfig, c.FiniteDifferenceEpsilon)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("%w: cgmres: MaxIter must be > 0, got %d", cgmreserr.ErrConfig, c.MaxIter)
	}
	if c.OptErrTol <= 0 {
		return fmt.Errorf("%w: cgmres: OptErrTol must be > 0, got %g", cgmreserr.ErrConfig, c.OptErrTol)
	}
	if c.KMax <= 0 {
		return fmt.Errorf("%w: cgmres: KMax must be > 0, got %d", cgmreserr.ErrConfig, c.KMax)
	}
	return nil
}

// stabilityWarning reports a StabilityWarning when zeta*h >= 2, the
// implied-but-unchecked condition named in the design notes' open
// questions. Callers decide what to do with it (typically: log and
// proceed); it is never returned as an error.
func (c Config) stabilityWarning() *cgmreserr.StabilityWarning {
	if c.Zeta*c.SamplingTime >= 2 {
		return &cgmreserr.StabilityWarning{Zeta: c.Zeta, SamplingTime: c.SamplingTime}
	}
	return nil
}
