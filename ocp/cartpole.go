package ocp

import "math"

// Cartpole is the swing-up optimal control problem of the end-to-end
// scenario: a cart of mass M on a rail carrying a pole of mass m and
// length l, actuated by a single horizontal force bounded to [-15,15].
// State is (cart position, pole angle, cart velocity, pole angular
// velocity); the pole angle is measured from the downward equilibrium, so
// swing-up drives it toward pi.
type Cartpole struct {
	Mass, PoleMass, Length, Gravity float64

	// XRef is the target state (cart position, pole angle, cart
	// velocity, pole angular velocity) tracked by the terminal and stage
	// costs below.
	XRef [4]float64
	// Q is the diagonal terminal-cost weight on (x-XRef).
	Q [4]float64
	// R is the stage-cost weight on the control.
	R float64

	uMin, uMax float64
}

// NewCartpole returns a Cartpole with the parameters and bounds of the
// swing-up scenario.
func NewCartpole() *Cartpole {
	return &Cartpole{
		Mass:     1.0,
		PoleMass: 0.1,
		Length:   0.5,
		Gravity:  9.81,
		XRef:     [4]float64{0, math.Pi, 0, 0},
		Q:        [4]float64{1, 10, 0.1, 0.1},
		R:        0.05,
		uMin:     -15,
		uMax:     15,
	}
}

func (c *Cartpole) Dims() Dims { return Dims{Nx: 4, Nu: 1, Nc: 0, Nh: 0, Nub: 1} }

func (c *Cartpole) BoundedIndices() []int { return []int{0} }

func (c *Cartpole) Bounds() (umin, umax []float64) {
	return []float64{c.uMin}, []float64{c.uMax}
}

func (c *Cartpole) DummyWeight() []float64 { return []float64{1.0} }

func (c *Cartpole) Synchronize() {}

// EvalF writes the cart-pole dynamics, standard inverted-pendulum-on-cart
// equations in (x, theta, xdot, thetadot) form.
func (c *Cartpole) EvalF(t float64, x, u, dx []float64) {
	_ = t
	theta, xdot, thetadot := x[1], x[2], x[3]
	force := u[0]
	sinT, cosT := math.Sin(theta), math.Cos(theta)
	totalMass := c.Mass + c.PoleMass
	num := force + c.PoleMass*c.Length*thetadot*thetadot*sinT
	denom := totalMass - c.PoleMass*cosT*cosT
	xddot := (num - c.PoleMass*c.Gravity*sinT*cosT) / denom
	thetaddot := (c.Gravity*sinT - cosT*xddot) / c.Length

	dx[0] = xdot
	dx[1] = thetadot
	dx[2] = xddot
	dx[3] = thetaddot
}

// EvalPhiX writes the gradient of the quadratic terminal cost
// sum_k Q[k]*(x[k]-XRef[k])^2.
func (c *Cartpole) EvalPhiX(t float64, x, phix []float64) {
	_ = t
	for k := range phix {
		phix[k] = 2 * c.Q[k] * (x[k] - c.XRef[k])
	}
}

// EvalHX writes dH/dx = dL/dx + lambda^T df/dx, the state-tracking stage
// cost gradient plus the costate's pull through the pendulum dynamics'
// state-dependence (linearized about the current trajectory point via
// direct partials of EvalF).
func (c *Cartpole) EvalHX(t float64, x, uc, lambda, hx []float64) {
	_ = t
	for k := range hx {
		hx[k] = 2 * c.Q[k] * 0.1 * (x[k] - c.XRef[k])
	}
	theta, thetadot := x[1], x[3]
	force := uc[0]
	sinT, cosT := math.Sin(theta), math.Cos(theta)
	totalMass := c.Mass + c.PoleMass
	denom := totalMass - c.PoleMass*cosT*cosT
	ddenomDtheta := 2 * c.PoleMass * cosT * sinT
	num := force + c.PoleMass*c.Length*thetadot*thetadot*sinT
	dnumDtheta := c.PoleMass * c.Length * thetadot * thetadot * cosT
	xddot := (num - c.PoleMass*c.Gravity*sinT*cosT) / denom
	dxddotDtheta := (dnumDtheta-c.PoleMass*c.Gravity*(cosT*cosT-sinT*sinT))/denom -
		xddot*ddenomDtheta/denom
	dthetaddotDtheta := (c.Gravity*cosT + sinT*xddot - cosT*dxddotDtheta) / c.Length
	dxddotDthetadot := 2 * c.PoleMass * c.Length * thetadot * sinT / denom
	dthetaddotDthetadot := -cosT * dxddotDthetadot / c.Length

	hx[1] += lambda[2]*dxddotDtheta + lambda[3]*dthetaddotDtheta
	hx[2] += lambda[0]
	hx[3] += lambda[1] + lambda[2]*dxddotDthetadot + lambda[3]*dthetaddotDthetadot
}

// EvalHU writes dH/du = dL/du + lambda^T df/du.
func (c *Cartpole) EvalHU(t float64, x, uc, lambda, hu []float64) {
	_ = t
	theta, cosT := x[1], math.Cos(x[1])
	totalMass := c.Mass + c.PoleMass
	denom := totalMass - c.PoleMass*cosT*cosT
	dxddotDu := 1 / denom
	dthetaddotDu := -cosT * dxddotDu / c.Length
	_ = theta
	hu[0] = 2*c.R*uc[0] + lambda[2]*dxddotDu + lambda[3]*dthetaddotDu
}
