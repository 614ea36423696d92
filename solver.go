// Package cgmres is the C/GMRES nonlinear MPC solver facade: it drives an
// OCP's KKT residual and a matrix-free GMRES(k_max) solve through the
// continuation law, exposing a set_uc -> solve -> init_x_lmd ->
// init_dummy_mu -> update arming sequence.
package cgmres

import (
	"fmt"

	"github.com/nmpc-go/cgmres/cgmreserr"
	"github.com/nmpc-go/cgmres/horizon"
	"github.com/nmpc-go/cgmres/kkt"
	"github.com/nmpc-go/cgmres/krylov"
	"github.com/nmpc-go/cgmres/ocp"
)

// epsInit floors the Fischer-Burmeister geometric term when an initial
// control is already out of bounds (see kkt.SolveDummyMu and DESIGN.md).
const epsInit = 1e-6

// Solver is a single C/GMRES instance. It owns the decision vector, the
// trajectory buffers inside its residuals, and all GMRES workspace; none
// of it is shared across instances, so independent Solvers run safely in
// parallel.
type Solver struct {
	cfg   Config
	sched horizon.Schedule
	prob  ocp.Problem
	dims  ocp.Dims
	n     int

	zero *kkt.ZeroHorizon
	res  *kkt.Residual

	ubIdx  []int
	umin   []float64
	umax   []float64
	weight []float64
	epsFB  float64

	// initializer state
	haveSeed  bool
	ucSeed    []float64
	ucOpt     []float64
	initIters int
	initErr   float64

	// armed state
	U         []float64
	x         []float64
	t         float64
	xLmdReady bool
	armed     bool
	poisoned  bool

	// update() scratch, preallocated once.
	fCur, fNext, b, diff, xPred, dx []float64

	logger    *Logger
	observers []Observer

	lastResidualNorm float64
	lastIterations   int
}

// New constructs a Solver for problem over an N-stage horizon. The
// returned StabilityWarning is non-nil when zeta*SamplingTime >= 2 (the
// implied-but-unchecked stability condition of the design notes); it is
// informational, the Solver is still usable.
func New(problem ocp.Problem, n int, cfg Config, sched horizon.Schedule) (*Solver, *cgmreserr.StabilityWarning, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := sched.Validate(); err != nil {
		return nil, nil, err
	}
	if n < 1 {
		return nil, nil, fmt.Errorf("%w: cgmres: horizon stage count N must be >= 1, got %d", cgmreserr.ErrConfig, n)
	}

	epsFB := cfg.FiniteDifferenceEpsilon

	zero, err := kkt.NewZeroHorizon(problem, epsFB)
	if err != nil {
		return nil, nil, err
	}
	res, err := kkt.NewResidual(problem, n, epsFB)
	if err != nil {
		return nil, nil, err
	}

	dims := problem.Dims()
	idx := append([]int(nil), problem.BoundedIndices()...)
	umin, umax := problem.Bounds()
	umin, umax = append([]float64(nil), umin...), append([]float64(nil), umax...)
	weight := append([]float64(nil), problem.DummyWeight()...)

	s := &Solver{
		cfg:    cfg,
		sched:  sched,
		prob:   problem,
		dims:   dims,
		n:      n,
		zero:   zero,
		res:    res,
		ubIdx:  idx,
		umin:   umin,
		umax:   umax,
		weight: weight,
		epsFB:  epsFB,

		ucSeed: make([]float64, zero.Layout().Dim()),
		U:      make([]float64, res.Layout.Dim()),
		x:      make([]float64, dims.Nx),

		fCur:  make([]float64, res.Layout.Dim()),
		fNext: make([]float64, res.Layout.Dim()),
		b:     make([]float64, res.Layout.Dim()),
		diff:  make([]float64, res.Layout.Dim()),
		xPred: make([]float64, dims.Nx),
		dx:    make([]float64, dims.Nx),

		logger: NewLogger(nil),
	}
	return s, cfg.stabilityWarning(), nil
}

// AddObserver registers an observer to be notified after every update().
func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Logger returns the Solver's accumulating logger.
func (s *Solver) Logger() *Logger { return s.logger }

// SetUC seeds the zero-horizon initializer's control guess. u0 has length
// Nu (the plain control dimension); the initializer's equality multiplier,
// dummy, and slack components start from zero.
func (s *Solver) SetUC(u0 []float64) error {
	if len(u0) != s.dims.Nu {
		return fmt.Errorf("%w: cgmres: SetUC: u0 has length %d, want Nu=%d", cgmreserr.ErrUsage, len(u0), s.dims.Nu)
	}
	for i := range s.ucSeed {
		s.ucSeed[i] = 0
	}
	copy(s.ucSeed[:s.dims.Nu], u0)
	s.haveSeed = true
	return nil
}

// Solve runs the zero-horizon Newton-C/GMRES initializer at (t, x0),
// starting from the SetUC seed. It returns a ConvergenceWarning,
// never an error, if opterr_tol was not reached within max_iter: the
// caller may still proceed with the best available decision.
func (s *Solver) Solve(t float64, x0 []float64) (*cgmreserr.ConvergenceWarning, error) {
	if !s.haveSeed {
		return nil, fmt.Errorf("%w: cgmres: Solve called before SetUC", cgmreserr.ErrUsage)
	}
	if len(x0) != s.dims.Nx {
		return nil, fmt.Errorf("%w: cgmres: Solve: x0 has length %d, want Nx=%d", cgmreserr.ErrUsage, len(x0), s.dims.Nx)
	}

	uc := append([]float64(nil), s.ucSeed...)
	f := make([]float64, len(uc))
	b := make([]float64, len(uc))

	residualFunc := func(dst, u []float64) error {
		return s.zero.Eval(dst, t, x0, u)
	}

	var optErr float64
	iter := 0
	for ; iter < s.cfg.MaxIter; iter++ {
		if err := s.zero.Eval(f, t, x0, uc); err != nil {
			return nil, err
		}
		optErr = kkt.Norm(f)
		if optErr < s.cfg.OptErrTol {
			break
		}
		for i := range b {
			b[i] = -f[i]
		}
		result, err := krylov.Solve(residualFunc, uc, f, b, krylov.Options{
			KMax: s.cfg.KMax,
			Eps:  s.cfg.FiniteDifferenceEpsilon,
		})
		if err != nil {
			return nil, err
		}
		for i := range uc {
			uc[i] += result.Delta[i]
		}
	}

	s.ucOpt = uc
	s.initIters = iter
	s.initErr = optErr
	if optErr >= s.cfg.OptErrTol {
		return &cgmreserr.ConvergenceWarning{Iterations: iter, OptErr: optErr, Tolerance: s.cfg.OptErrTol}, nil
	}
	return nil, nil
}

// UcOpt returns the last decision produced by Solve.
func (s *Solver) UcOpt() []float64 { return append([]float64(nil), s.ucOpt...) }

// InitXLmd rolls out the initial multiple-shooting decision vector: every
// stage's control block starts at the converged zero-horizon decision, and
// the current state is recorded as x_0. The state/costate trajectories
// themselves are rebuilt lazily the first time the multiple-shooting
// residual is evaluated (Residual.Eval always recomputes them).
func (s *Solver) InitXLmd(t float64, x0 []float64) error {
	if s.ucOpt == nil {
		return fmt.Errorf("%w: cgmres: InitXLmd called before Solve", cgmreserr.ErrUsage)
	}
	if len(x0) != s.dims.Nx {
		return fmt.Errorf("%w: cgmres: InitXLmd: x0 has length %d, want Nx=%d", cgmreserr.ErrUsage, len(x0), s.dims.Nx)
	}
	l := s.res.Layout
	for i := 0; i < l.N; i++ {
		copy(l.UBlock(s.U, i), s.ucOpt[:l.Nuc])
	}
	s.t = t
	copy(s.x, x0)
	s.xLmdReady = true
	return nil
}

// InitDummyMu seeds every stage's dummy input v and slack multiplier mu by
// solving the 2x2 complementarity system for each bounded control index,
// so that F is already near zero for those blocks at arming time. A
// successful call arms the Solver (or re-arms it after a numerical
// failure poisoned it).
func (s *Solver) InitDummyMu() error {
	if !s.xLmdReady {
		return fmt.Errorf("%w: cgmres: InitDummyMu called before InitXLmd", cgmreserr.ErrUsage)
	}
	l := s.res.Layout
	for i := 0; i < l.N; i++ {
		uc := l.UBlock(s.U, i)
		v := l.VBlock(s.U, i)
		mu := l.MuBlock(s.U, i)
		for j, uIdx := range s.ubIdx {
			r := kkt.SolveDummyMu(uc[uIdx], s.umin[j], s.umax[j], s.weight[j], s.epsFB, epsInit)
			v[j], mu[j] = r.V, r.Mu
			if r.Infeasible {
				s.logger.Logf("init_dummy_mu: stage %d bound %d: initial control infeasible, clamped\n", i, j)
			}
		}
	}
	s.armed = true
	s.poisoned = false
	return nil
}

// Update performs one C/GMRES continuation step: it synchronizes the
// OCP, predicts the next state, solves the matrix-free
// GMRES(k_max) system for the time derivative of U, integrates U forward
// by SamplingTime, and returns the control to apply now (stage 0's plain
// control block).
//
// A non-finite residual poisons the Solver: every subsequent Update call
// fails with ErrUsage until InitDummyMu is called again. A GMRESBreakdown
// is returned alongside a result, never through the error return, when
// the matrix-free Krylov solve collapsed before exhausting k_max — Delta
// is still the best partial correction available and is applied as usual.
func (s *Solver) Update(t float64, x []float64) ([]float64, *cgmreserr.GMRESBreakdown, error) {
	if !s.armed {
		return nil, nil, fmt.Errorf("%w: cgmres: Update called before arming (SetUC/Solve/InitXLmd/InitDummyMu)", cgmreserr.ErrUsage)
	}
	if s.poisoned {
		return nil, nil, fmt.Errorf("%w: cgmres: solver poisoned by a prior numerical failure; call InitDummyMu to re-arm", cgmreserr.ErrUsage)
	}
	if len(x) != s.dims.Nx {
		return nil, nil, fmt.Errorf("%w: cgmres: Update: x has length %d, want Nx=%d", cgmreserr.ErrUsage, len(x), s.dims.Nx)
	}

	s.prob.Synchronize()

	h := s.cfg.SamplingTime
	l := s.res.Layout

	dtauCur, err := s.sched.Dtau(t, l.N)
	if err != nil {
		s.poisoned = true
		return nil, nil, fmt.Errorf("%w: cgmres: Update: %s", cgmreserr.ErrNumerical, err)
	}
	if err := s.res.Eval(s.fCur, t, dtauCur, x, s.U); err != nil {
		s.poisoned = true
		s.notify(t, true, false, 0)
		return nil, nil, err
	}

	u0 := l.UBlock(s.U, 0)[:s.dims.Nu]
	s.prob.EvalF(t, x, u0, s.dx)
	for i := range s.xPred {
		s.xPred[i] = x[i] + h*s.dx[i]
	}

	dtauNext, err := s.sched.Dtau(t+h, l.N)
	if err != nil {
		s.poisoned = true
		return nil, nil, fmt.Errorf("%w: cgmres: Update: %s", cgmreserr.ErrNumerical, err)
	}
	if err := s.res.Eval(s.fNext, t+h, dtauNext, s.xPred, s.U); err != nil {
		s.poisoned = true
		s.notify(t, true, false, 0)
		return nil, nil, err
	}

	// b = -zeta*fCur - (fNext-fCur)/h
	for i := range s.b {
		s.b[i] = 0
	}
	kkt.SubTo(s.diff, s.fNext, s.fCur)
	kkt.AddScaledTo(s.b, s.b, -s.cfg.Zeta, s.fCur)
	kkt.AddScaledTo(s.b, s.b, -1/h, s.diff)

	residualFunc := func(dst, u []float64) error {
		return s.res.Eval(dst, t+h, dtauNext, s.xPred, u)
	}
	result, err := krylov.Solve(residualFunc, s.U, s.fNext, s.b, krylov.Options{
		KMax: s.cfg.KMax,
		Eps:  s.cfg.FiniteDifferenceEpsilon,
	})
	if err != nil {
		s.poisoned = true
		s.notify(t, true, false, 0)
		return nil, nil, err
	}

	kkt.AddScaledTo(s.U, s.U, h, result.Delta)

	s.lastResidualNorm = kkt.Norm(s.fCur)
	s.lastIterations = result.Iterations
	s.notify(t, false, result.Breakdown, result.Iterations)

	var breakdown *cgmreserr.GMRESBreakdown
	if result.Breakdown {
		breakdown = &cgmreserr.GMRESBreakdown{Iteration: result.Iterations, Value: result.ResidualNorm}
	}

	out := append([]float64(nil), l.UBlock(s.U, 0)[:s.dims.Nu]...)
	return out, breakdown, nil
}

func (s *Solver) notify(t float64, poisoned, breakdown bool, iters int) {
	if len(s.observers) == 0 {
		return
	}
	sample := Sample{
		Time:         t,
		ResidualNorm: s.lastResidualNorm,
		GMRESIters:   iters,
		Breakdown:    breakdown,
		Poisoned:     poisoned,
	}
	for _, o := range s.observers {
		o.Observe(sample)
	}
}

// UOpt returns the N stage controls of the current decision vector (each
// of length Nu), index 0 is what Update last returned to apply now.
func (s *Solver) UOpt() [][]float64 {
	l := s.res.Layout
	out := make([][]float64, l.N)
	for i := range out {
		out[i] = append([]float64(nil), l.UBlock(s.U, i)[:s.dims.Nu]...)
	}
	return out
}

// LastResidualNorm returns ||F_cur|| from the most recent Update call.
func (s *Solver) LastResidualNorm() float64 { return s.lastResidualNorm }

// Poisoned reports whether a numerical failure poisoned the Solver.
func (s *Solver) Poisoned() bool { return s.poisoned }
