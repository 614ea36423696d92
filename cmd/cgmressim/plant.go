package main

import "github.com/nmpc-go/cgmres/ocp"

// stepPlant advances x by one forward-Euler step of problem's dynamics
// under control u. The solver core never simulates a plant itself; this
// is the driver a CLI or test harness supplies around it.
func stepPlant(p ocp.Problem, t, dt float64, x, u, dx []float64) []float64 {
	p.EvalF(t, x, u, dx)
	next := make([]float64, len(x))
	for i := range next {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}
