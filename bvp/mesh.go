// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import "math"

// lobatto5Frac is sqrt(3/7), the offset (as a fraction of the half-interval)
// of the two interior points of 5-point Lobatto quadrature used for the
// per-interval RMS residual estimate.
var lobatto5Frac = math.Sqrt(3.0 / 7.0)

// meshOutcome is what the mesh controller (component C5) reports back to
// the driver after one Newton solve: either termination (converged or
// node-budget exhausted) or a refined mesh and resampled state to continue
// the outer loop on.
type meshOutcome[T Number] struct {
	Status       int // -1: continue: refined mesh below; 0 or 1: terminal
	X, H         []float64
	Y, Q         *Matrix[T]
	RMSResiduals []float64
}

// refineMesh estimates per-interval RMS residuals via 5-point Lobatto
// quadrature, classifies intervals for one-node insertion (residual in the
// (tol, 100*tol) band, node at the midpoint) or two-node insertion (residual
// at or above 100*tol, nodes at 1/3 and 2/3), and either reports termination
// or returns the refined mesh with state resampled from the cubic-spline
// reconstructions of Y and Q.
func refineMesh[T Number](w *wrapper[T], x, h []float64, y, q *Matrix[T], p []T, stY, stQ *collocState[T], tol float64, maxNodes int) meshOutcome[T] {
	var nq int
	if q != nil {
		nq = q.Rows
	}
	mm := len(h)

	ySpline := newSpline(x, h, y, stY.F)
	var qSpline *Spline[T]
	if nq > 0 {
		qSpline = newSpline(x, h, q, stQ.F)
	}

	rms := make([]float64, mm)
	insert1 := make([]bool, mm)
	insert2 := make([]bool, mm)
	newNodes := 0

	for i := 0; i < mm; i++ {
		xmid := x[i] + 0.5*h[i]
		half := 0.5 * h[i] * lobatto5Frac
		x1, x2 := xmid-half, xmid+half

		y1, yp1 := ySpline.Eval(x1)
		y2, yp2 := ySpline.Eval(x2)
		f1 := w.f([]float64{x1}, colMatrix(y1), p).Col(0)
		f2 := w.f([]float64{x2}, colMatrix(y2), p).Col(0)

		r1 := relResidual(yp1, f1)
		r2 := relResidual(yp2, f2)

		rmidCol := stY.Rcol.Col(i)
		invH := fromFloat[T](1.5 / h[i])
		rmid := make([]T, len(rmidCol))
		for r := range rmidCol {
			rmid[r] = invH * rmidCol[r]
		}

		rms[i] = math.Sqrt(0.5 * (32.0 / 45.0 * sumSq(rmid) + 49.0/90.0*(sumSq(r1)+sumSq(r2))))

		switch {
		case rms[i] >= 100*tol:
			insert2[i] = true
			newNodes += 2
		case rms[i] > tol:
			insert1[i] = true
			newNodes++
		}
	}

	if newNodes == 0 {
		return meshOutcome[T]{Status: StatusConverged, X: x, H: h, Y: y, Q: q, RMSResiduals: rms}
	}
	if len(x)+newNodes > maxNodes {
		return meshOutcome[T]{Status: StatusMaxNodes, X: x, H: h, Y: y, Q: q, RMSResiduals: rms}
	}

	newX := make([]float64, 0, len(x)+newNodes)
	newX = append(newX, x[0])
	for i := 0; i < mm; i++ {
		switch {
		case insert2[i]:
			newX = append(newX, x[i]+h[i]/3, x[i]+2*h[i]/3)
		case insert1[i]:
			newX = append(newX, x[i]+0.5*h[i])
		}
		newX = append(newX, x[i+1])
	}

	n := y.Rows
	newY := NewMatrix[T](n, len(newX))
	var newQ *Matrix[T]
	if nq > 0 {
		newQ = NewMatrix[T](nq, len(newX))
	}
	oldCol := 0
	for j, xq := range newX {
		if oldCol < len(x) && x[oldCol] == xq {
			copy(newY.Col(j), y.Col(oldCol))
			if nq > 0 {
				copy(newQ.Col(j), q.Col(oldCol))
			}
			oldCol++
			continue
		}
		yv, _ := ySpline.Eval(xq)
		copy(newY.Col(j), yv)
		if nq > 0 {
			qv, _ := qSpline.Eval(xq)
			copy(newQ.Col(j), qv)
		}
	}

	newH := make([]float64, len(newX)-1)
	for i := range newH {
		newH[i] = newX[i+1] - newX[i]
	}

	return meshOutcome[T]{Status: -1, X: newX, H: newH, Y: newY, Q: newQ}
}

// relResidual computes (yp - fhat)/(1+|fhat|) elementwise, the relative
// residual probed at the Lobatto quadrature points.
func relResidual[T Number](yp, fhat []T) []T {
	out := make([]T, len(yp))
	for r := range yp {
		denom := fromFloat[T](1 + absVal(fhat[r]))
		out[r] = (yp[r] - fhat[r]) / denom
	}
	return out
}

func sumSq[T Number](v []T) float64 {
	s := 0.0
	for _, x := range v {
		s += normSq(x)
	}
	return s
}

// colMatrix wraps a length-n slice as an n x 1 column-major Matrix with no
// copy, for one-off evaluations of rhs callables at a single point.
func colMatrix[T Number](v []T) *Matrix[T] {
	return &Matrix[T]{Rows: len(v), Cols: 1, Data: v}
}
