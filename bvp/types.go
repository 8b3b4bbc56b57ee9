// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import "github.com/cpmech/gosl/utl"

// Status codes returned in Result.Status.
const (
	StatusConverged int = iota // 0: converged to the requested tolerance
	StatusMaxNodes             // 1: exceeded the maximum mesh nodes
	StatusSingular             // 2: a singular Jacobian was encountered
)

// Mesh is the strictly increasing sequence of nodes a solve runs on. Solve
// works on a copy of it, which the mesh controller grows by inserting nodes
// (never removing them); the caller's Mesh is left unchanged.
type Mesh struct {
	X []float64 // nodes, length m, strictly increasing
	H []float64 // derived widths, length m-1: H[i] = X[i+1]-X[i]
}

// NewMesh builds a Mesh from a node slice, computing widths.
func NewMesh(x []float64) *Mesh {
	m := &Mesh{X: append([]float64(nil), x...)}
	m.refreshWidths()
	return m
}

// LinspaceMesh is a convenience constructor for a uniform initial mesh.
func LinspaceMesh(a, b float64, m int) *Mesh {
	return NewMesh(utl.LinSpace(a, b, m))
}

func (m *Mesh) refreshWidths() {
	m.H = make([]float64, len(m.X)-1)
	for i := range m.H {
		m.H[i] = m.X[i+1] - m.X[i]
	}
}

// Len returns the number of mesh nodes.
func (m *Mesh) Len() int { return len(m.X) }

// RHSFunc evaluates f(x, y, p) -> n x len(x) (or q(x,y,p) -> nq x len(x)).
// Columns of the result align with columns of y and entries of x.
type RHSFunc[T Number] func(x []float64, y *Matrix[T], p []T) *Matrix[T]

// BCFunc evaluates bc(ya, qa, yb, qb, p) -> length n+nq+k.
type BCFunc[T Number] func(ya, qa, yb, qb, p []T) []T

// RHSJacFunc returns the analytic df/dy (n x n x len(x)) and df/dp
// (n x k x len(x), nil when k==0) of f or q.
type RHSJacFunc[T Number] func(x []float64, y *Matrix[T], p []T) (dfdy, dfdp *Tensor3[T])

// BCJacFunc returns the analytic boundary-condition Jacobian blocks, each
// (n+nq+k) rows by the stated number of columns; qa/qb blocks are nil when
// nq==0.
type BCJacFunc[T Number] func(ya, qa, yb, qb, p []T) (dya, dqa, dyb, dqb, dp *Matrix[T])

// Problem bundles the user-supplied callables and problem dimensions. F and
// BC are mandatory; everything else is optional and its presence is treated
// as a capability (hasFJac, hasQJac, hasBCJac) that the assembler checks
// each time it builds the Jacobian.
type Problem[T Number] struct {
	N, NQ, K int // state dim, quadrature dim, parameter dim

	F  RHSFunc[T] // required
	Q  RHSFunc[T] // required iff NQ > 0
	BC BCFunc[T]  // required

	FJac  RHSJacFunc[T] // optional: analytic df/dy, df/dp
	QJac  RHSJacFunc[T] // optional: analytic dq/dy, dq/dp
	BCJac BCJacFunc[T]  // optional: analytic bc Jacobian

	S *Matrix[T] // optional n x n singular-term matrix
}

// hasFJac/hasQJac/hasBCJac report the capability set the assembler
// dispatches on.
func (p *Problem[T]) hasFJac() bool  { return p.FJac != nil }
func (p *Problem[T]) hasQJac() bool  { return p.QJac != nil }
func (p *Problem[T]) hasBCJac() bool { return p.BCJac != nil }

// Options configures a solve. Zero values fall back to the documented
// defaults inside Solve.
type Options[T Number] struct {
	Y0 *Matrix[T] // initial guess, n x m
	Q0 *Matrix[T] // initial guess, nq x m (may be nil iff nq==0)
	P0 []T        // initial guess, length k (may be empty)

	Tol      float64 // default 1e-3, floored at 100*epsMach
	MaxNodes int     // default 1000
	Verbose  int     // 0, 1 or 2
}

// Result is the driver's return record.
type Result[T Number] struct {
	Sol *Spline[T] // piecewise-cubic evaluator

	P []T // parameters (empty when k==0)

	X  []float64  // final mesh
	Y  *Matrix[T] // values at mesh, n x m
	Q  *Matrix[T] // quadrature values at mesh, nq x m
	YP *Matrix[T] // derivative (f-hat) values at mesh, n x m

	RMSResiduals []float64 // length m-1; nil when Status is StatusSingular

	NIter   int
	Status  int
	Message string
	Success bool
}
