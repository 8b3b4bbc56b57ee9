// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import "github.com/cpmech/gosl/io"

// defaultTol and defaultMaxNodes are Options' zero-value fallbacks.
const (
	defaultTol      = 1e-3
	defaultMaxNodes = 1000
)

// Solve runs the collocation solver to convergence (or to one of the
// documented non-convergence outcomes) starting from mesh and the initial
// guess in opts. It validates its input eagerly: any *ValidationError return
// means iteration never started; a nil error with
// Result.Success == false means iteration ran but hit a mesh-node limit or a
// singular Jacobian, both reported through Result.Status rather than as a Go
// error.
func Solve[T Number](mesh *Mesh, prob *Problem[T], opts Options[T]) (*Result[T], error) {
	if err := validate(mesh, prob, opts); err != nil {
		return nil, err
	}

	tol := opts.Tol
	if tol == 0 {
		tol = defaultTol
	}
	if tol < 100*epsMach {
		tol = 100 * epsMach
		if opts.Verbose > 0 {
			io.Pf("warning: tolerance clamped to %g (100 * machine epsilon)\n", tol)
		}
	}
	maxNodes := opts.MaxNodes
	if maxNodes == 0 {
		maxNodes = defaultMaxNodes
	}

	proj := newProjectors(prob.S)
	w := newWrapper(prob, mesh.X[0], proj)
	var b *Matrix[T]
	if proj != nil {
		b = proj.B
	}

	x := append([]float64(nil), mesh.X...)
	h := append([]float64(nil), mesh.H...)
	y := opts.Y0.Clone()
	var q *Matrix[T]
	if prob.NQ > 0 {
		q = opts.Q0.Clone()
	}
	p := append([]T(nil), opts.P0...)

	if opts.Verbose > 0 {
		io.Pf("\n%4s%12s%8s\n", "it", "nodes", "status")
	}

	var (
		nIter   int
		outcome newtonOutcome[T]
		mo      meshOutcome[T]
	)
	for {
		outcome = solveNewton(prob, w, x, h, y, q, p, b, tol, opts.Verbose)
		if outcome.Singular {
			sol := newSpline(x, h, outcome.Y, outcome.StY.F)
			return &Result[T]{
				Sol: sol, P: outcome.P, X: x, Y: outcome.Y, Q: outcome.Q, YP: outcome.StY.F,
				NIter: nIter, Status: StatusSingular, Success: false,
				Message: "singular Jacobian encountered",
			}, nil
		}

		mo = refineMesh(w, x, h, outcome.Y, outcome.Q, outcome.P, outcome.StY, outcome.StQ, tol, maxNodes)
		nIter++
		if opts.Verbose > 0 {
			io.Pf("%4d%12d%8d\n", nIter, len(mo.X), mo.Status)
		}

		if mo.Status != -1 {
			break
		}
		x, h, y, q = mo.X, mo.H, mo.Y, mo.Q
	}

	sol := newSpline(x, h, outcome.Y, outcome.StY.F)
	res := &Result[T]{
		Sol: sol, P: outcome.P, X: x, Y: outcome.Y, Q: outcome.Q, YP: outcome.StY.F,
		RMSResiduals: mo.RMSResiduals,
		NIter:        nIter,
		Status:       mo.Status,
		Success:      mo.Status == StatusConverged,
	}
	switch mo.Status {
	case StatusConverged:
		res.Message = "converged"
	case StatusMaxNodes:
		res.Message = io.Sf("exceeded maximum mesh nodes (%d)", maxNodes)
	}
	return res, nil
}

// validate checks the caller's input eagerly, before any iteration.
func validate[T Number](mesh *Mesh, prob *Problem[T], opts Options[T]) error {
	m := len(mesh.X)
	if m < 2 {
		return validationErrorf("mesh must have at least two nodes; got %d", m)
	}
	for i := 0; i+1 < m; i++ {
		if !(mesh.X[i] < mesh.X[i+1]) {
			return validationErrorf("mesh must be strictly increasing; X[%d]=%v, X[%d]=%v", i, mesh.X[i], i+1, mesh.X[i+1])
		}
	}
	if prob.F == nil || prob.BC == nil {
		return validationErrorf("Problem.F and Problem.BC are required")
	}
	if prob.NQ > 0 && prob.Q == nil {
		return validationErrorf("Problem.Q is required when NQ = %d > 0", prob.NQ)
	}
	if opts.Y0 == nil || opts.Y0.Rows != prob.N || opts.Y0.Cols != m {
		return validationErrorf("Y0 must be %d x %d; got %v", prob.N, m, dims(opts.Y0))
	}
	if prob.NQ > 0 {
		if opts.Q0 == nil || opts.Q0.Rows != prob.NQ || opts.Q0.Cols != m {
			return validationErrorf("Q0 must be %d x %d; got %v", prob.NQ, m, dims(opts.Q0))
		}
	}
	if len(opts.P0) != prob.K {
		return validationErrorf("P0 must have length %d; got %d", prob.K, len(opts.P0))
	}
	if opts.Verbose < 0 || opts.Verbose > 2 {
		return validationErrorf("Verbose must be 0, 1 or 2; got %d", opts.Verbose)
	}
	if prob.S != nil && (prob.S.Rows != prob.N || prob.S.Cols != prob.N) {
		return validationErrorf("S must be %d x %d; got %v", prob.N, prob.N, dims(prob.S))
	}
	return nil
}

func dims[T Number](m *Matrix[T]) string {
	if m == nil {
		return "nil"
	}
	return io.Sf("%dx%d", m.Rows, m.Cols)
}
