// Package horizon implements the MPC prediction-horizon schedule T(t).
package horizon

import (
	"fmt"
	"math"

	"github.com/nmpc-go/cgmres/cgmreserr"
)

// dlamchE is the machine epsilon. For IEEE this is 2^-53.
const dlamchE = 1.0 / (1 << 53)

// Schedule maps wall time t to a prediction horizon length T(t).
//
// With growth rate Alpha > 0, T grows from 0 at Anchor into its nominal
// length TFinal as t increases, avoiding an ill-posed initial problem.
// With Alpha == 0, T is constant at TFinal.
type Schedule struct {
	// TFinal is the nominal (asymptotic) horizon length. Must be > 0.
	TFinal float64
	// Alpha is the growth rate. Zero means a constant horizon.
	Alpha float64
	// Anchor is the wall-clock time at which growth starts (T(Anchor)==0
	// when Alpha>0).
	Anchor float64
}

// New validates and returns a Schedule.
func New(tFinal, alpha, anchor float64) (Schedule, error) {
	s := Schedule{TFinal: tFinal, Alpha: alpha, Anchor: anchor}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Validate reports a configuration error if TFinal<=0 or Alpha<0.
func (s Schedule) Validate() error {
	if s.TFinal <= 0 {
		return fmt.Errorf("%w: horizon TFinal must be > 0, got %g", cgmreserr.ErrConfig, s.TFinal)
	}
	if s.Alpha < 0 {
		return fmt.Errorf("%w: horizon Alpha must be >= 0, got %g", cgmreserr.ErrConfig, s.Alpha)
	}
	return nil
}

// T returns the horizon length at time t. T is monotone non-decreasing,
// bounded above by TFinal, and equals 0 at t==Anchor when Alpha>0.
func (s Schedule) T(t float64) float64 {
	if s.Alpha <= 0 {
		return s.TFinal
	}
	return s.TFinal * (1 - math.Exp(-s.Alpha*(t-s.Anchor)))
}

// Dtau returns the per-stage step Delta-tau = T(t)/N for an N-stage
// horizon. Warns (by returning a non-nil error wrapping ErrConfig) if the
// step would be numerically indistinguishable from the previous floating
// point value, mirroring the machine-epsilon guard used throughout this
// module's dependency pack for degenerate step sizes.
func (s Schedule) Dtau(t float64, n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: horizon stage count must be >= 1, got %d", cgmreserr.ErrConfig, n)
	}
	dtau := s.T(t) / float64(n)
	if dtau < 0 {
		return 0, fmt.Errorf("%w: negative horizon step at t=%g", cgmreserr.ErrConfig, t)
	}
	if dtau != 0 && dtau <= 2*dlamchE {
		return dtau, fmt.Errorf("%w: horizon step %e at t=%g is smaller than 2*eps", cgmreserr.ErrConfig, dtau, t)
	}
	return dtau, nil
}
