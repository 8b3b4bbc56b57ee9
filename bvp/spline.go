// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Spline is the piecewise cubic C¹ Hermite interpolant of the solution: on
// [X[i], X[i+1]] it reproduces (Y[:,i], F[:,i]) and (Y[:,i+1], F[:,i+1])
// exactly, matching both value and first derivative at the nodes. Used both
// for final output (Result.Sol) and internally by the mesh controller to
// probe residuals between nodes. Structurally parallel to gm.BezierQuad: a
// small closed-form polynomial evaluator over control data.
type Spline[T Number] struct {

	// input
	X    []float64  // nodes, length m
	Y, F *Matrix[T] // values and derivatives (= f-hat) at nodes, n x m

	// auxiliary
	c0, c1 *Matrix[T] // cubic/quadratic coefficients per segment, n x (m-1)
}

// newSpline builds a Spline from node values Y, derivatives F and widths H.
// Per segment: slope = dY/H, t = (F_i + F_{i+1} - 2 slope)/H, c0 = t/H,
// c1 = (slope - F_i)/H - t; the linear and constant coefficients are just
// F and Y at the left node of each segment, so they are read directly
// rather than duplicated.
func newSpline[T Number](x, h []float64, y, f *Matrix[T]) *Spline[T] {
	n, m := y.Rows, y.Cols
	mm := m - 1
	c0 := NewMatrix[T](n, mm)
	c1 := NewMatrix[T](n, mm)
	two := fromFloat[T](2)
	for i := 0; i < mm; i++ {
		invH := fromFloat[T](1 / h[i])
		for r := 0; r < n; r++ {
			slope := (y.Get(r, i+1) - y.Get(r, i)) * invH
			t := (f.Get(r, i) + f.Get(r, i+1) - two*slope) * invH
			c0.Set(r, i, t*invH)
			c1.Set(r, i, (slope-f.Get(r, i))*invH-t)
		}
	}
	return &Spline[T]{X: append([]float64(nil), x...), Y: y, F: f, c0: c0, c1: c1}
}

// segment returns the index i such that X[i] <= xq <= X[i+1], clamped to the
// valid range for xq outside [X[0], X[len(X)-1]] by round-off.
func (o *Spline[T]) segment(xq float64) int {
	i := sort.SearchFloat64s(o.X, xq)
	switch {
	case i == 0:
		return 0
	case i >= len(o.X)-1:
		return len(o.X) - 2
	case o.X[i] == xq:
		return i
	default:
		return i - 1
	}
}

// Eval returns the interpolated value and first derivative at xq.
func (o *Spline[T]) Eval(xq float64) (yv, yp []T) {
	if len(o.X) < 2 {
		chk.Panic("Eval: spline must be built from at least two nodes")
	}
	i := o.segment(xq)
	dx := fromFloat[T](xq - o.X[i])
	n := o.Y.Rows
	yv = make([]T, n)
	yp = make([]T, n)
	two := fromFloat[T](2)
	three := fromFloat[T](3)
	for r := 0; r < n; r++ {
		c0, c1, c2, c3 := o.c0.Get(r, i), o.c1.Get(r, i), o.F.Get(r, i), o.Y.Get(r, i)
		yv[r] = ((c0*dx+c1)*dx+c2)*dx + c3
		yp[r] = (three*c0*dx+two*c1)*dx + c2
	}
	return yv, yp
}
