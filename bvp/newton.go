// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// Newton parameters, fixed by the algorithm. These are not configuration
// knobs: the damping strategy only works as a unit with these exact values.
const (
	maxNjev = 4
	maxIter = 8
	sigma   = 0.2
	tauStep = 0.5
	nTrial  = 4
)

// newtonOutcome is what solveNewton commits back to the driver: the
// accepted iterate, the collocation state it was evaluated at (reused by
// the mesh controller rather than recomputed), and whether the Jacobian
// factorization turned out to be singular.
type newtonOutcome[T Number] struct {
	Y, Q     *Matrix[T]
	P        []T
	StY, StQ *collocState[T]
	BCRes    []T
	Singular bool
}

// solveNewton is the damped, affine-invariant Newton iteration on the
// collocation system: scale-free merit Phi = ||J^-1 r||^2, Armijo
// backtracking line search, and frozen-Jacobian reuse whenever a full step
// (alpha=1) is accepted. A singular factorization is reported through the
// outcome's Singular flag, never raised; the driver turns it into a
// status-2 result.
func solveNewton[T Number](prob *Problem[T], w *wrapper[T], x, h []float64, y0, q0 *Matrix[T], p0 []T, b *Matrix[T], tol float64, verbose int) newtonOutcome[T] {
	n, nq, m := prob.N, prob.NQ, len(x)

	y := y0.Clone()
	// Project the left-endpoint column onto the regularity manifold S*y(a)=0
	// up front, before the first residual/Jacobian evaluation, so every outer
	// iteration is assembled from a state already on the manifold, not just
	// the updated iterates the line search below produces.
	if b != nil {
		copy(y.Col(0), matVec(b, y.Col(0)))
	}
	var q *Matrix[T]
	if nq > 0 {
		q = q0.Clone()
	}
	p := append([]T(nil), p0...)

	stY := collocate(w.f, x, h, y, p)
	var stQ *collocState[T]
	if nq > 0 {
		stQ = collocateQuad(w.q, x, h, q, y, stY.Vmid, p)
	}
	bcRes := evalBC(prob, y, q, p)
	res := buildResidual(stY, stQ, bcRes, nq)

	var fact factorization[T]
	var step []T
	var cost float64
	recomputeJac := true
	njev := 0

	for iter := 0; iter < maxIter; iter++ {
		if recomputeJac {
			if fact != nil {
				fact.free()
			}
			tri := assembleJacobian(prob, w, x, h, y, q, p, stY, stQ, bcRes)
			f, ok := factorize(tri)
			if !ok {
				return newtonOutcome[T]{Y: y, Q: q, P: p, StY: stY, StQ: stQ, BCRes: bcRes, Singular: true}
			}
			fact = f
			njev++
			step = fact.solve(res)
			cost = costOf(step)
		}

		dY := &Matrix[T]{Rows: n, Cols: m, Data: step[:n*m]}
		var dQ *Matrix[T]
		if nq > 0 {
			dQ = &Matrix[T]{Rows: nq, Cols: m, Data: step[n*m : n*m+nq*m]}
		}
		dP := step[n*m+nq*m:]

		alpha := 1.0
		var yNew, qNew *Matrix[T]
		var pNew []T
		var stYNew, stQNew *collocState[T]
		var bcResNew, resNew, stepNew []T
		var costNew float64

		for trial := 0; trial <= nTrial; trial++ {
			yNew = applyStep(y, dY, alpha)
			if b != nil {
				col0 := matVec(b, yNew.Col(0))
				copy(yNew.Col(0), col0)
			}
			if nq > 0 {
				qNew = applyStep(q, dQ, alpha)
			}
			pNew = applyStepVec(p, dP, alpha)

			stYNew = collocate(w.f, x, h, yNew, pNew)
			if nq > 0 {
				stQNew = collocateQuad(w.q, x, h, qNew, yNew, stYNew.Vmid, pNew)
			}
			bcResNew = evalBC(prob, yNew, qNew, pNew)
			resNew = buildResidual(stYNew, stQNew, bcResNew, nq)

			stepNew = fact.solve(resNew)
			costNew = costOf(stepNew)
			accepted := trial == nTrial || costNew < (1-2*alpha*sigma)*cost

			if verbose == 2 {
				if accepted {
					io.Pforan("  iter=%d trial=%d alpha=%.4f cost=%.3e (accepted)\n", iter, trial, alpha, costNew)
				} else {
					io.Pfcyan("  iter=%d trial=%d alpha=%.4f cost=%.3e (rejected, backtracking)\n", iter, trial, alpha, costNew)
				}
			}

			if accepted {
				break
			}
			alpha *= tauStep
		}

		y, q, p = yNew, qNew, pNew
		stY, stQ, bcRes, res = stYNew, stQNew, bcResNew, resNew

		if njev == maxNjev || convergedNewton(stY, bcRes, h, tol) {
			break
		}

		if alpha == 1 {
			recomputeJac = false
			cost, step = costNew, stepNew
		} else {
			recomputeJac = true
		}
	}

	if fact != nil {
		fact.free()
	}
	return newtonOutcome[T]{Y: y, Q: q, P: p, StY: stY, StQ: stQ, BCRes: bcRes, Singular: false}
}

// convergedNewton applies the componentwise convergence tolerances:
// tau_r = (2/3)*h*0.05*tol against |R_col| <= tau_r*(1+|F_mid|), tau_bc =
// 0.05*tol against |R_bc|. The literal constants (about 1.5 orders below
// tol) are kept exactly for numerical reproducibility.
func convergedNewton[T Number](stY *collocState[T], bcRes []T, h []float64, tol float64) bool {
	tauBc := 0.05 * tol
	for _, r := range bcRes {
		if absVal(r) > tauBc {
			return false
		}
	}
	mm := len(h)
	n := stY.Rcol.Rows
	for i := 0; i < mm; i++ {
		tauR := (2.0 / 3.0) * h[i] * 0.05 * tol
		for r := 0; r < n; r++ {
			if absVal(stY.Rcol.Get(r, i)) > tauR*(1+absVal(stY.Fmid.Get(r, i))) {
				return false
			}
		}
	}
	return true
}

func evalBC[T Number](prob *Problem[T], y, q *Matrix[T], p []T) []T {
	ya, yb := y.Col(0), y.Col(y.Cols-1)
	var qa, qb []T
	if prob.NQ > 0 {
		qa, qb = q.Col(0), q.Col(q.Cols-1)
	}
	return prob.BC(ya, qa, yb, qb, p)
}

func buildResidual[T Number](stY, stQ *collocState[T], bcRes []T, nq int) []T {
	total := len(stY.Rcol.Data) + len(bcRes)
	if nq > 0 {
		total += len(stQ.Rcol.Data)
	}
	res := make([]T, 0, total)
	res = append(res, stY.Rcol.Data...)
	if nq > 0 {
		res = append(res, stQ.Rcol.Data...)
	}
	res = append(res, bcRes...)
	return res
}

// costOf computes ||v||^2, the scale-free Newton merit Phi. The
// real dtype routes this through la.VecDot (num.NlSolver computes its own
// merit the same way: o.φ = 0.5*la.VecDot(o.fx, o.fx)); la.VecDot is
// float64-only, so the complex128 dtype keeps a hand-rolled sum of |x|^2.
func costOf[T Number](v []T) float64 {
	if !isComplex[T]() {
		lv := la.NewVector(len(v))
		for i, x := range v {
			lv[i] = any(x).(float64)
		}
		return la.VecDot(lv, lv)
	}
	s := 0.0
	for _, x := range v {
		s += normSq(x)
	}
	return s
}

func applyStep[T Number](y *Matrix[T], d *Matrix[T], alpha float64) *Matrix[T] {
	out := y.Clone()
	af := fromFloat[T](alpha)
	for idx := range out.Data {
		out.Data[idx] -= af * d.Data[idx]
	}
	return out
}

func applyStepVec[T Number](p []T, d []T, alpha float64) []T {
	out := append([]T(nil), p...)
	af := fromFloat[T](alpha)
	for i := range out {
		out[i] -= af * d[i]
	}
	return out
}
