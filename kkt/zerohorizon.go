package kkt

import "github.com/nmpc-go/cgmres/ocp"

// ZeroHorizon is the degenerate N=1, dtau=0 residual used by the
// initializer: with a single stage and no horizon step, the forward
// roll-out is a no-op (x_1==x_0) and the terminal costate reduces to
// lambda == phi_x(t, x_0). It shares Residual's machinery rather than
// duplicating it, since plugging N=1 and dtau=0 into the general
// multiple-shooting residual already produces exactly this degenerate
// system.
type ZeroHorizon struct {
	r *Residual
}

// NewZeroHorizon builds the single-stage residual used to bootstrap U.
func NewZeroHorizon(p ocp.Problem, epsFB float64) (*ZeroHorizon, error) {
	r, err := NewResidual(p, 1, epsFB)
	if err != nil {
		return nil, err
	}
	return &ZeroHorizon{r: r}, nil
}

// Layout is the single-stage decision vector layout (dimension nuc+2*nub).
func (z *ZeroHorizon) Layout() Layout { return z.r.Layout }

// Eval computes F(uc; t, x0) into dst, len(dst)==Layout().Dim().
func (z *ZeroHorizon) Eval(dst []float64, t float64, x0, uc []float64) error {
	return z.r.Eval(dst, t, 0, x0, uc)
}
