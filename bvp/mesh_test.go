// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// flatRHS is f(x,y,p)=0, so the true solution is any constant: the
// collocation residual for a constant Y is exactly zero everywhere, driving
// every interval's estimated RMS residual to zero and exercising the
// "nothing to insert" branch of refineMesh.
func flatRHS(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
	return NewMatrix[float64](y.Rows, len(x))
}

// TestMeshIdempotentWhenConverged checks that running the mesh controller
// with nothing to insert returns X unchanged and reports convergence.
func TestMeshIdempotentWhenConverged(tst *testing.T) {
	chk.PrintTitle("Mesh01. idempotent on an already-converged mesh")

	x := []float64{0.0, 0.5, 1.0, 1.5, 2.0}
	h := []float64{0.5, 0.5, 0.5, 0.5}
	y := NewMatrix[float64](1, 5)
	for j := range x {
		y.Set(0, j, 3.0)
	}
	w := &wrapper[float64]{prob: &Problem[float64]{N: 1, F: flatRHS}, a: x[0]}
	stY := collocate[float64](w.f, x, h, y, nil)

	out := refineMesh[float64](w, x, h, y, nil, nil, stY, nil, 1e-3, 1000)
	if out.Status != StatusConverged {
		tst.Fatalf("Status = %d, want StatusConverged", out.Status)
	}
	if len(out.X) != len(x) {
		tst.Fatalf("len(X) = %d, want %d (no nodes inserted)", len(out.X), len(x))
	}
	for i := range x {
		if out.X[i] != x[i] {
			tst.Fatalf("X[%d] = %v, want %v (mesh must be unchanged)", i, out.X[i], x[i])
		}
	}
}

// TestMeshRespectsNodeBudget checks that refineMesh reports StatusMaxNodes,
// not a refined mesh, when honoring the requested insertions would exceed
// maxNodes.
func TestMeshRespectsNodeBudget(tst *testing.T) {
	chk.PrintTitle("Mesh02. node-budget exhaustion")

	// a steep, large-magnitude rhs (1e6*x^2) against a zero Y drives every
	// interval's estimated residual
	// above the 100*tol threshold, forcing two-node insertion everywhere.
	sharp := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](1, len(x))
		for j, xj := range x {
			out.Set(0, j, 1e6*xj*xj)
		}
		return out
	}
	x := []float64{0.0, 0.5, 1.0, 1.5, 2.0}
	h := []float64{0.5, 0.5, 0.5, 0.5}
	y := NewMatrix[float64](1, 5)
	w := &wrapper[float64]{prob: &Problem[float64]{N: 1, F: sharp}, a: x[0]}
	stY := collocate[float64](w.f, x, h, y, nil)

	out := refineMesh[float64](w, x, h, y, nil, nil, stY, nil, 1e-6, 5)
	if out.Status != StatusMaxNodes {
		tst.Fatalf("Status = %d, want StatusMaxNodes", out.Status)
	}
	if len(out.X) != len(x) {
		tst.Fatalf("on budget exhaustion the reported mesh must be the last one tried, got len %d", len(out.X))
	}
}
