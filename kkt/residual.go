package kkt

import (
	"fmt"

	"github.com/nmpc-go/cgmres/cgmreserr"
	"github.com/nmpc-go/cgmres/ocp"
)

// Residual evaluates the multiple-shooting KKT residual F(U; t, x0) of a
// single OCP. All workspace is allocated once by NewResidual; Eval never
// allocates, so it is safe to call from a hard-real-time update() loop.
type Residual struct {
	Layout  Layout
	Problem ocp.Problem
	EpsFB   float64

	ubIdx  []int
	umin   []float64
	umax   []float64
	weight []float64

	// trajectories, length N+1, each Nx wide. x[0] is always the current
	// plant state; lambda[N] is always the terminal costate phi_x.
	x      [][]float64
	lambda [][]float64

	nu int // plain control width, Nuc == nu+nc

	// per-stage scratch, reused every stage of every Eval call.
	dx []float64
	hx []float64
	hu []float64
}

// NewResidual builds a Residual for the given problem and horizon stage
// count n. epsFB is the Fischer-Burmeister smoothing parameter and must
// be > 0.
func NewResidual(p ocp.Problem, n int, epsFB float64) (*Residual, error) {
	if err := ocp.Validate(p); err != nil {
		return nil, err
	}
	if epsFB <= 0 {
		return nil, fmt.Errorf("%w: kkt: epsFB must be > 0, got %g", cgmreserr.ErrConfig, epsFB)
	}
	d := p.Dims()
	layout, err := NewLayout(d, n)
	if err != nil {
		return nil, err
	}
	idx := append([]int(nil), p.BoundedIndices()...)
	umin, umax := p.Bounds()
	umin, umax = append([]float64(nil), umin...), append([]float64(nil), umax...)
	w := append([]float64(nil), p.DummyWeight()...)

	r := &Residual{
		Layout:  layout,
		Problem: p,
		EpsFB:   epsFB,
		ubIdx:   idx,
		umin:    umin,
		umax:    umax,
		weight:  w,
		x:       make([][]float64, n+1),
		lambda:  make([][]float64, n+1),
		nu:      d.Nu,
		dx:      make([]float64, d.Nx),
		hx:      make([]float64, d.Nx),
		hu:      make([]float64, layout.Nuc),
	}
	for i := range r.x {
		r.x[i] = make([]float64, d.Nx)
		r.lambda[i] = make([]float64, d.Nx)
	}
	return r, nil
}

// States returns the most recently computed state trajectory, x[0..N].
// The returned slices alias internal storage and are invalidated by the
// next Eval call.
func (r *Residual) States() [][]float64 { return r.x }

// Costates returns the most recently computed costate trajectory,
// lambda[0..N]. Aliases internal storage; invalidated by the next Eval.
func (r *Residual) Costates() [][]float64 { return r.lambda }

// Eval computes F(U; t, x0, dtau) into dst, which must have length
// Layout.Dim(). dtau is the per-stage horizon step T(t)/N (zero is valid
// and produces the degenerate zero-horizon residual used by the
// initializer). Eval also refreshes the internal state/costate
// trajectories (see States/Costates).
func (r *Residual) Eval(dst []float64, t, dtau float64, x0 []float64, U []float64) error {
	l := r.Layout
	if len(dst) != l.Dim() {
		return fmt.Errorf("%w: kkt: dst has length %d, want %d", cgmreserr.ErrUsage, len(dst), l.Dim())
	}
	if len(U) != l.Dim() {
		return fmt.Errorf("%w: kkt: U has length %d, want %d", cgmreserr.ErrUsage, len(U), l.Dim())
	}
	if len(x0) != l.Nx {
		return fmt.Errorf("%w: kkt: x0 has length %d, want %d", cgmreserr.ErrUsage, len(x0), l.Nx)
	}

	copy(r.x[0], x0)

	// Forward state roll-out by forward Euler: x_{i+1} = x_i + dtau*f(t_i,x_i,u_i).
	for i := 0; i < l.N; i++ {
		ti := t + float64(i)*dtau
		uc := l.UBlock(U, i)
		r.Problem.EvalF(ti, r.x[i], uc[:r.nu], r.dx)
		nextX := r.x[i+1]
		for k := range nextX {
			nextX[k] = r.x[i][k] + dtau*r.dx[k]
		}
	}

	// Terminal costate: lambda_N == phi_x(t_N, x_N).
	tN := t + float64(l.N)*dtau
	r.Problem.EvalPhiX(tN, r.x[l.N], r.lambda[l.N])

	// Backward costate roll-out: lambda_i = lambda_{i+1} + dtau*H_x(t_i,x_i,uc_i,lambda_{i+1}).
	for i := l.N - 1; i >= 0; i-- {
		ti := t + float64(i)*dtau
		uc := l.UBlock(U, i)
		r.Problem.EvalHX(ti, r.x[i], uc, r.lambda[i+1], r.hx)
		cur := r.lambda[i]
		next := r.lambda[i+1]
		for k := range cur {
			cur[k] = next[k] + dtau*r.hx[k]
		}
	}

	// Compose per-stage residual blocks.
	for i := 0; i < l.N; i++ {
		ti := t + float64(i)*dtau
		uc := l.UBlock(U, i)
		v := l.VBlock(U, i)
		mu := l.MuBlock(U, i)

		r.Problem.EvalHU(ti, r.x[i], uc, r.lambda[i+1], r.hu)
		fu := l.UBlock(dst, i)
		copy(fu, r.hu)
		for j, uIdx := range r.ubIdx {
			fu[uIdx] += mu[j] * dAdU(uc[uIdx], r.umin[j], r.umax[j])
		}

		fv := l.VBlock(dst, i)
		for j := range fv {
			fv[j] = 2*v[j]*mu[j] - r.weight[j]
		}

		fmu := l.MuBlock(dst, i)
		for j, uIdx := range r.ubIdx {
			a, b := boundPair(uc[uIdx], r.umin[j], r.umax[j], v[j], mu[j])
			fmu[j] = FB(a, b, r.EpsFB)
		}
	}

	if HasNonFinite(dst) {
		return fmt.Errorf("%w: kkt: residual contains NaN/Inf", cgmreserr.ErrNumerical)
	}
	return nil
}
