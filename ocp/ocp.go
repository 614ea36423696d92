// Package ocp defines the contract the solver core consumes: dimensions,
// bound metadata, and the dynamics/cost evaluators of a user-supplied
// optimal control problem. The core never implements an OCP itself — it
// is an external collaborator, held by the solver facade as a read-mostly
// reference (see cgmres.Solver).
package ocp

import (
	"fmt"

	"github.com/nmpc-go/cgmres/cgmreserr"
)

// Dims holds the compile-time-fixed sizes of an OCP.
type Dims struct {
	Nx  int // state dimension
	Nu  int // control dimension
	Nc  int // equality constraint (Lagrange multiplier) dimension
	Nh  int // inequality constraint count (informational; folded into Nub below)
	Nub int // number of bounded control components
}

// Nuc is the combined control+equality-multiplier width used by the
// Hamiltonian gradient evaluators.
func (d Dims) Nuc() int { return d.Nu + d.Nc }

// Problem is the external OCP collaborator. All evaluator methods must be
// pure apart from Synchronize's documented mutation, and must write their
// output into the caller-supplied destination slice without retaining it,
// so the solver core can call them from its allocation-free hot path.
type Problem interface {
	// Dims returns the problem's fixed dimensions.
	Dims() Dims

	// BoundedIndices returns, for each of the Nub bounded control slots,
	// the index into the Nu-length control vector it bounds.
	BoundedIndices() []int
	// Bounds returns the lower and upper bound for each of the Nub
	// bounded control slots, in BoundedIndices order.
	Bounds() (umin, umax []float64)
	// DummyWeight returns the Fischer-Burmeister auxiliary cost weight
	// w_j for each of the Nub bounded control slots.
	DummyWeight() []float64

	// Synchronize is called once per update(), before the KKT residual
	// is evaluated, giving the OCP a chance to refresh externally held
	// references (e.g. a moving reference trajectory). It is the only
	// method allowed to mutate OCP-held state.
	Synchronize()

	// EvalF writes the state derivative f(t,x,u) into dx. len(dx)==Nx.
	EvalF(t float64, x, u, dx []float64)
	// EvalPhiX writes the terminal cost gradient phi_x(t,x) into phix.
	// len(phix)==Nx.
	EvalPhiX(t float64, x, phix []float64)
	// EvalHX writes the Hamiltonian's state gradient H_x(t,x,uc,lambda)
	// into hx. len(hx)==Nx.
	EvalHX(t float64, x, uc, lambda, hx []float64)
	// EvalHU writes the Hamiltonian's control+multiplier gradient
	// H_u(t,x,uc,lambda) into hu. len(hu)==Nuc().
	EvalHU(t float64, x, uc, lambda, hu []float64)
}

// Validate checks the dimensional consistency of p's bound metadata. It
// is a programmer-error detector meant to run once at arming time, never
// inside the hot loop (per the solver's failure semantics).
func Validate(p Problem) error {
	d := p.Dims()
	if d.Nx <= 0 {
		return fmt.Errorf("%w: ocp: Nx must be > 0, got %d", cgmreserr.ErrConfig, d.Nx)
	}
	if d.Nu <= 0 {
		return fmt.Errorf("%w: ocp: Nu must be > 0, got %d", cgmreserr.ErrConfig, d.Nu)
	}
	if d.Nc < 0 {
		return fmt.Errorf("%w: ocp: Nc must be >= 0, got %d", cgmreserr.ErrConfig, d.Nc)
	}
	if d.Nub < 0 {
		return fmt.Errorf("%w: ocp: Nub must be >= 0, got %d", cgmreserr.ErrConfig, d.Nub)
	}
	idx := p.BoundedIndices()
	if len(idx) != d.Nub {
		return fmt.Errorf("%w: ocp: len(BoundedIndices())=%d, want Nub=%d", cgmreserr.ErrConfig, len(idx), d.Nub)
	}
	for _, i := range idx {
		if i < 0 || i >= d.Nu {
			return fmt.Errorf("%w: ocp: bounded index %d out of range [0,%d)", cgmreserr.ErrConfig, i, d.Nu)
		}
	}
	umin, umax := p.Bounds()
	if len(umin) != d.Nub || len(umax) != d.Nub {
		return fmt.Errorf("%w: ocp: len(Bounds())=(%d,%d), want Nub=%d", cgmreserr.ErrConfig, len(umin), len(umax), d.Nub)
	}
	for j := range umin {
		if umin[j] >= umax[j] {
			return fmt.Errorf("%w: ocp: bound %d has umin=%g >= umax=%g", cgmreserr.ErrConfig, j, umin[j], umax[j])
		}
	}
	w := p.DummyWeight()
	if len(w) != d.Nub {
		return fmt.Errorf("%w: ocp: len(DummyWeight())=%d, want Nub=%d", cgmreserr.ErrConfig, len(w), d.Nub)
	}
	return nil
}
