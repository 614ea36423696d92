package ocp

import "math"

// Hexacopter is the hover-and-track optimal control problem of the
// end-to-end scenario: six upward-facing rotors at 60-degree spacing
// around a rigid body, state (position, velocity, euler angles, body
// rates), each rotor thrust bounded to [0.144, 6.0] N.
//
// The attitude kinematics use the small-angle approximation
// (phi_dot,theta_dot,psi_dot) = (p,q,r), valid near hover; this keeps the
// analytic gradients tractable while remaining a genuine 12-state,
// 6-input nonlinear system (the mixing from six thrusts to total thrust
// and three torques, and the trig-coupled translational acceleration, are
// both exact).
type Hexacopter struct {
	Mass               float64
	Ixx, Iyy, Izz      float64
	ArmLength          float64
	DragCoeff          float64
	Gravity            float64

	uMin, uMax float64

	// Clock is set by the caller to the current sample time before every
	// Update call; Synchronize reads it to advance ZRef, the externally
	// held climb reference this OCP tracks.
	Clock     *float64
	ClimbRate float64
	ZRef      float64

	motorAngle [6]float64
	motorSign  [6]float64

	Q [12]float64
	R float64
}

// NewHexacopter returns a Hexacopter with the parameters and bounds of
// the hover+track scenario.
func NewHexacopter(clock *float64) *Hexacopter {
	h := &Hexacopter{
		Mass:      1.5,
		Ixx:       0.02,
		Iyy:       0.02,
		Izz:       0.04,
		ArmLength: 0.25,
		DragCoeff: 0.01,
		Gravity:   9.81,
		uMin:      0.144,
		uMax:      6.0,
		Clock:     clock,
		ClimbRate: 0.25,
		Q:         [12]float64{1, 1, 5, 0.1, 0.1, 0.5, 1, 1, 1, 0.1, 0.1, 0.1},
		R:         0.01,
	}
	for i := 0; i < 6; i++ {
		h.motorAngle[i] = float64(i) * math.Pi / 3
		if i%2 == 0 {
			h.motorSign[i] = 1
		} else {
			h.motorSign[i] = -1
		}
	}
	return h
}

func (h *Hexacopter) Dims() Dims { return Dims{Nx: 12, Nu: 6, Nc: 0, Nh: 0, Nub: 6} }

func (h *Hexacopter) BoundedIndices() []int { return []int{0, 1, 2, 3, 4, 5} }

func (h *Hexacopter) Bounds() (umin, umax []float64) {
	umin, umax = make([]float64, 6), make([]float64, 6)
	for i := range umin {
		umin[i], umax[i] = h.uMin, h.uMax
	}
	return umin, umax
}

func (h *Hexacopter) DummyWeight() []float64 {
	w := make([]float64, 6)
	for i := range w {
		w[i] = 1.0
	}
	return w
}

// Synchronize advances ZRef along the tracked climb ramp. It is the only
// method allowed to mutate OCP state.
func (h *Hexacopter) Synchronize() {
	if h.Clock != nil {
		h.ZRef = h.ClimbRate * *h.Clock
	}
}

// mixing returns total thrust and the three body-frame torques produced
// by the six rotor thrusts u.
func (h *Hexacopter) mixing(u []float64) (thrust, tauX, tauY, tauZ float64) {
	for i := 0; i < 6; i++ {
		thrust += u[i]
		tauX += h.ArmLength * u[i] * math.Sin(h.motorAngle[i])
		tauY -= h.ArmLength * u[i] * math.Cos(h.motorAngle[i])
		tauZ += h.motorSign[i] * h.DragCoeff * u[i]
	}
	return
}

// EvalF writes the 12-state rigid-body dynamics.
func (h *Hexacopter) EvalF(t float64, x, u, dx []float64) {
	_ = t
	phi, theta, psi := x[6], x[7], x[8]
	p, q, r := x[9], x[10], x[11]
	thrust, tauX, tauY, tauZ := h.mixing(u)

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
	sinPsi, cosPsi := math.Sin(psi), math.Cos(psi)

	dx[0], dx[1], dx[2] = x[3], x[4], x[5]

	accel := thrust / h.Mass
	dx[3] = accel * (cosPhi*sinTheta*cosPsi + sinPhi*sinPsi)
	dx[4] = accel * (cosPhi*sinTheta*sinPsi - sinPhi*cosPsi)
	dx[5] = accel*cosPhi*cosTheta - h.Gravity

	dx[6], dx[7], dx[8] = p, q, r

	dx[9] = tauX / h.Ixx
	dx[10] = tauY / h.Iyy
	dx[11] = tauZ / h.Izz
}

// EvalPhiX writes the gradient of the quadratic terminal cost tracking
// (0,0,ZRef,0,...,0).
func (h *Hexacopter) EvalPhiX(t float64, x, phix []float64) {
	_ = t
	ref := [12]float64{}
	ref[2] = h.ZRef
	for k := range phix {
		phix[k] = 2 * h.Q[k] * (x[k] - ref[k])
	}
}

// EvalHX writes dH/dx = dL/dx + lambda^T df/dx. The stage cost tracks the
// same reference as EvalPhiX; the dynamics partials cover the
// trig-coupled translational acceleration's dependence on attitude and
// the trivial position/attitude kinematic rows.
func (h *Hexacopter) EvalHX(t float64, x, uc, lambda, hx []float64) {
	_ = t
	ref := [12]float64{}
	ref[2] = h.ZRef
	for k := range hx {
		hx[k] = 2 * h.Q[k] * 0.1 * (x[k] - ref[k])
	}
	phi, theta, psi := x[6], x[7], x[8]
	thrust, _, _, _ := h.mixing(uc)
	accel := thrust / h.Mass

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
	sinPsi, cosPsi := math.Sin(psi), math.Cos(psi)

	// d(ax,ay,az)/dphi
	daxDphi := accel * (-sinPhi*sinTheta*cosPsi + cosPhi*sinPsi)
	dayDphi := accel * (-sinPhi*sinTheta*sinPsi - cosPhi*cosPsi)
	dazDphi := -accel * sinPhi * cosTheta
	// d(ax,ay,az)/dtheta
	daxDtheta := accel * cosPhi * cosTheta * cosPsi
	dayDtheta := accel * cosPhi * cosTheta * sinPsi
	dazDtheta := -accel * cosPhi * sinTheta
	// d(ax,ay,az)/dpsi
	daxDpsi := accel * (-cosPhi*sinTheta*sinPsi + sinPhi*cosPsi)
	dayDpsi := accel * (cosPhi*sinTheta*cosPsi + sinPhi*sinPsi)

	hx[3] += lambda[0]
	hx[4] += lambda[1]
	hx[5] += lambda[2]
	hx[6] += lambda[3]*daxDphi + lambda[4]*dayDphi + lambda[5]*dazDphi
	hx[7] += lambda[3]*daxDtheta + lambda[4]*dayDtheta + lambda[5]*dazDtheta
	hx[8] += lambda[3]*daxDpsi + lambda[4]*dayDpsi
	hx[9] += lambda[6]
	hx[10] += lambda[7]
	hx[11] += lambda[8]
}

// EvalHU writes dH/du = dL/du + lambda^T df/du, propagating the costate
// through the thrust/torque mixing into each of the six rotor channels.
func (h *Hexacopter) EvalHU(t float64, x, uc, lambda, hu []float64) {
	_ = t
	phi, theta, psi := x[6], x[7], x[8]
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
	sinPsi, cosPsi := math.Sin(psi), math.Cos(psi)

	dAxDthrust := (cosPhi*sinTheta*cosPsi + sinPhi*sinPsi) / h.Mass
	dAyDthrust := (cosPhi*sinTheta*sinPsi - sinPhi*cosPsi) / h.Mass
	dAzDthrust := (cosPhi * cosTheta) / h.Mass

	for i := 0; i < 6; i++ {
		dThrustDu := 1.0
		dTauXDu := h.ArmLength * math.Sin(h.motorAngle[i])
		dTauYDu := -h.ArmLength * math.Cos(h.motorAngle[i])
		dTauZDu := h.motorSign[i] * h.DragCoeff

		hu[i] = 2*h.R*uc[i] +
			lambda[3]*dAxDthrust*dThrustDu +
			lambda[4]*dAyDthrust*dThrustDu +
			lambda[5]*dAzDthrust*dThrustDu +
			lambda[9]*dTauXDu/h.Ixx +
			lambda[10]*dTauYDu/h.Iyy +
			lambda[11]*dTauZDu/h.Izz
	}
}
