// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// TestCollocLinear checks that the Lobatto IIIA collocation residual is
// exactly zero (to round-off) when the true solution is an affine function
// of x, since the method reproduces polynomials up to cubic degree exactly.
func TestCollocLinear(tst *testing.T) {
	chk.PrintTitle("Colloc01. collocation residual vanishes for an affine solution")

	c := []float64{2.0, -3.0}
	rhs := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](2, len(x))
		for j := range x {
			out.Set(0, j, c[0])
			out.Set(1, j, c[1])
		}
		return out
	}

	x := []float64{0.0, 0.5, 1.2, 2.0}
	h := make([]float64, len(x)-1)
	for i := range h {
		h[i] = x[i+1] - x[i]
	}
	y0 := []float64{1.0, -1.0}
	y := NewMatrix[float64](2, len(x))
	for j, xj := range x {
		y.Set(0, j, y0[0]+c[0]*xj)
		y.Set(1, j, y0[1]+c[1]*xj)
	}

	st := collocate[float64](rhs, x, h, y, nil)
	for i := 0; i < len(h); i++ {
		for r := 0; r < 2; r++ {
			if v := math.Abs(st.Rcol.Get(r, i)); v > 1e-12 {
				tst.Fatalf("Rcol[%d,%d] = %v, want ~0", r, i, v)
			}
		}
	}
}

// TestCollocQuadFollowsY checks that collocateQuad accumulates q along the Y
// channel's own trajectory: for q(x,y,p)=y[0] (a pure copy of the first state
// row) and an affine y1(x)=x, Q should satisfy Q' = x, i.e. Q(x)=x^2/2 + c.
func TestCollocQuadFollowsY(tst *testing.T) {
	chk.PrintTitle("Colloc02. quadrature channel tracks the Y trajectory")

	fRhs := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](1, len(x))
		for j := range x {
			out.Set(0, j, 1.0) // y1' = 1 => y1(x) = x
		}
		return out
	}
	qRhs := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](1, len(x))
		for j := range x {
			out.Set(0, j, y.Get(0, j)) // q' = y1
		}
		return out
	}

	x := []float64{0.0, 1.0, 2.0}
	h := []float64{1.0, 1.0}
	y := NewMatrix[float64](1, 3)
	for j, xj := range x {
		y.Set(0, j, xj)
	}
	stY := collocate[float64](fRhs, x, h, y, nil)

	q := NewMatrix[float64](1, 3)
	for j, xj := range x {
		q.Set(0, j, 0.5*xj*xj)
	}
	stQ := collocateQuad[float64](qRhs, x, h, q, y, stY.Vmid, nil)
	for i := 0; i < 2; i++ {
		if v := math.Abs(stQ.Rcol.Get(0, i)); v > 1e-12 {
			tst.Fatalf("quad Rcol[%d] = %v, want ~0", i, v)
		}
	}
}
