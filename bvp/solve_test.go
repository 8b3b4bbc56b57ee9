// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// TestSolveLinearConstant solves y'=A*y with A=[[0,1],[-1,0]], y1(0)=1,
// y2(pi/2)=-1. The exact solution is y(x)=(cos x, -sin x).
func TestSolveLinearConstant(tst *testing.T) {
	chk.PrintTitle("SolveE2E01. linear constant-coefficient system")

	f := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](2, len(x))
		for j := range x {
			out.Set(0, j, y.Get(1, j))
			out.Set(1, j, -y.Get(0, j))
		}
		return out
	}
	bc := func(ya, qa, yb, qb, p []float64) []float64 {
		return []float64{ya[0] - 1, yb[1] + 1}
	}

	mesh := NewMesh(utl.LinSpace(0, math.Pi/2, 5))
	y0 := NewMatrix[float64](2, mesh.Len())
	y0.Set(0, 0, 1)
	y0.Set(1, mesh.Len()-1, -1)

	prob := &Problem[float64]{N: 2, F: f, BC: bc}
	res, err := Solve[float64](mesh, prob, Options[float64]{Y0: y0})
	if err != nil {
		tst.Fatalf("Solve returned error: %v", err)
	}
	if res.Status != StatusConverged {
		tst.Fatalf("Status = %d (%s), want StatusConverged", res.Status, res.Message)
	}
	for _, rms := range res.RMSResiduals {
		if rms > 1e-3 {
			tst.Fatalf("rms residual %v exceeds tol 1e-3", rms)
		}
	}

	yv, _ := res.Sol.Eval(math.Pi / 4)
	wantY0, wantY1 := math.Cos(math.Pi/4), -math.Sin(math.Pi/4)
	if math.Abs(yv[0]-wantY0) > 1e-3 {
		tst.Fatalf("sol(pi/4)[0] = %v, want %v", yv[0], wantY0)
	}
	if math.Abs(yv[1]-wantY1) > 1e-3 {
		tst.Fatalf("sol(pi/4)[1] = %v, want %v", yv[1], wantY1)
	}
}

// TestSolveSturmLiouville solves the eigenvalue problem y''+k^2 y=0,
// y(0)=y(1)=0, y'(0)=k, with k an unknown parameter solved for alongside y.
// The nontrivial solution branch has k = 2*pi.
func TestSolveSturmLiouville(tst *testing.T) {
	chk.PrintTitle("SolveE2E02. Sturm-Liouville unknown-parameter eigenvalue")

	f := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](2, len(x))
		k := p[0]
		for j := range x {
			out.Set(0, j, y.Get(1, j))
			out.Set(1, j, -k*k*y.Get(0, j))
		}
		return out
	}
	bc := func(ya, qa, yb, qb, p []float64) []float64 {
		return []float64{ya[0], yb[0], ya[1] - p[0]}
	}

	mesh := NewMesh(utl.LinSpace(0, 1, 5))
	y0 := NewMatrix[float64](2, mesh.Len())
	y0.Set(0, 1, 1)
	y0.Set(0, 3, -1)

	prob := &Problem[float64]{N: 2, K: 1, F: f, BC: bc}
	res, err := Solve[float64](mesh, prob, Options[float64]{Y0: y0, P0: []float64{6}, Tol: 1e-5})
	if err != nil {
		tst.Fatalf("Solve returned error: %v", err)
	}
	if res.Status != StatusConverged {
		tst.Fatalf("Status = %d (%s), want StatusConverged", res.Status, res.Message)
	}
	if math.Abs(res.P[0]-2*math.Pi) > 1e-4 {
		tst.Fatalf("p = %v, want ~2*pi = %v", res.P[0], 2*math.Pi)
	}
}

// TestSolveSingularLeftEndpoint solves a manufactured
// problem with a singular term S=diag(0,-1) at the left endpoint. The true
// solution y1(x)=x, y2(x)=x^2 satisfies y2'=-y2/x+3x for x>0, and the
// regularity condition S*y(0)=0 (i.e. y2(0)=0) holds by construction.
func TestSolveSingularLeftEndpoint(tst *testing.T) {
	chk.PrintTitle("SolveE2E03. singular left-endpoint term")

	f := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](2, len(x))
		for j, xj := range x {
			out.Set(0, j, 1.0)
			out.Set(1, j, 3*xj)
		}
		return out
	}
	bc := func(ya, qa, yb, qb, p []float64) []float64 {
		return []float64{ya[0], yb[1] - 1}
	}
	s := NewMatrix[float64](2, 2)
	s.Set(1, 1, -1.0)

	mesh := NewMesh(utl.LinSpace(0, 1, 5))
	y0 := NewMatrix[float64](2, mesh.Len())

	prob := &Problem[float64]{N: 2, F: f, BC: bc, S: s}
	res, err := Solve[float64](mesh, prob, Options[float64]{Y0: y0})
	if err != nil {
		tst.Fatalf("Solve returned error: %v", err)
	}
	if res.Status != StatusConverged {
		tst.Fatalf("Status = %d (%s), want StatusConverged", res.Status, res.Message)
	}
	for _, rms := range res.RMSResiduals {
		if rms > 1e-3 {
			tst.Fatalf("rms residual %v exceeds tol", rms)
		}
	}
	sy := matVec(s, res.Y.Col(0))
	for i, v := range sy {
		if math.Abs(v) > 1e-8 {
			tst.Fatalf("(S*Y[:,0])[%d] = %v, want ~0 (regularity condition)", i, v)
		}
	}
}

// TestSolveSingularJacobian checks that a rank-deficient
// boundary condition (the same residual written twice, never constraining
// the second state) must make the collocation system singular and report
// status=2 on the first Newton step.
func TestSolveSingularJacobian(tst *testing.T) {
	chk.PrintTitle("SolveE2E04. rank-deficient boundary condition")

	f := func(x []float64, y *Matrix[float64], p []float64) *Matrix[float64] {
		out := NewMatrix[float64](2, len(x))
		for j := range x {
			out.Set(0, j, y.Get(1, j))
			out.Set(1, j, 0)
		}
		return out
	}
	bc := func(ya, qa, yb, qb, p []float64) []float64 {
		return []float64{ya[0] - 1, ya[0] - 1} // duplicate: y2(0) is never pinned down
	}

	mesh := NewMesh(utl.LinSpace(0, 1, 4))
	y0 := NewMatrix[float64](2, mesh.Len())

	prob := &Problem[float64]{N: 2, F: f, BC: bc}
	res, err := Solve[float64](mesh, prob, Options[float64]{Y0: y0})
	if err != nil {
		tst.Fatalf("Solve returned error: %v", err)
	}
	if res.Status != StatusSingular {
		tst.Fatalf("Status = %d (%s), want StatusSingular", res.Status, res.Message)
	}
	if res.Success {
		tst.Fatal("Success must be false on a singular-Jacobian outcome")
	}
}
