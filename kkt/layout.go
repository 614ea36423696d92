// Package kkt implements the multiple-shooting Karush-Kuhn-Tucker residual
// F(U; t, x) at the center of the C/GMRES continuation law: it rolls out
// state and costate trajectories across N stages and composes the
// Hamiltonian-gradient, dummy-stationarity, and Fischer-Burmeister
// complementarity blocks into one flat residual vector.
//
// The decision vector U is a fixed-stride flat buffer rather than a
// symbol-addressed map: the solver's real-time budget forbids the map
// lookups and per-call allocation that symbol addressing would need.
package kkt

import (
	"fmt"

	"github.com/nmpc-go/cgmres/cgmreserr"
	"github.com/nmpc-go/cgmres/ocp"
)

// Layout describes the fixed stride of the flattened decision vector U.
// Per stage i the blocks are ordered (u_i, v_i, mu_i): u_i is the nuc-wide
// control+equality-multiplier block, v_i is the nub-wide dummy-input
// block, and mu_i is the nub-wide slack-multiplier block.
type Layout struct {
	N   int // horizon stages
	Nx  int // state dimension
	Nuc int // control + equality-multiplier width
	Nub int // bounded-control count
}

// NewLayout builds a Layout from an OCP's dimensions and a stage count.
func NewLayout(d ocp.Dims, n int) (Layout, error) {
	l := Layout{N: n, Nx: d.Nx, Nuc: d.Nuc(), Nub: d.Nub}
	if n < 1 {
		return Layout{}, fmt.Errorf("%w: kkt: horizon stage count N must be >= 1, got %d", cgmreserr.ErrConfig, n)
	}
	return l, nil
}

// MStage is the per-stage unknown count nuc + 2*nub.
func (l Layout) MStage() int { return l.Nuc + 2*l.Nub }

// Dim is the total decision vector length N*MStage.
func (l Layout) Dim() int { return l.N * l.MStage() }

func (l Layout) stageOffset(i int) int { return i * l.MStage() }

// UOffset, VOffset, MuOffset return the starting index of stage i's u, v,
// and mu blocks within a flat decision vector.
func (l Layout) UOffset(i int) int  { return l.stageOffset(i) }
func (l Layout) VOffset(i int) int  { return l.stageOffset(i) + l.Nuc }
func (l Layout) MuOffset(i int) int { return l.stageOffset(i) + l.Nuc + l.Nub }

// UBlock, VBlock, MuBlock slice the stage-i blocks out of a flat decision
// (or residual) vector of length Dim(). The returned slices alias U.
func (l Layout) UBlock(U []float64, i int) []float64 {
	o := l.UOffset(i)
	return U[o : o+l.Nuc]
}
func (l Layout) VBlock(U []float64, i int) []float64 {
	o := l.VOffset(i)
	return U[o : o+l.Nub]
}
func (l Layout) MuBlock(U []float64, i int) []float64 {
	o := l.MuOffset(i)
	return U[o : o+l.Nub]
}
