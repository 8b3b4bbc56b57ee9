// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// TestProjectorsRankOneS checks the singular-term projectors for a
// rank-one S = diag(0, -1): S+ = S (idempotent up to sign for a diagonal
// +-1/0 matrix), B = I - S+S should zero out the row/col where S acts and
// leave the other alone, and D = (I-S)+ should be diag(1, 1/2).
func TestProjectorsRankOneS(tst *testing.T) {
	chk.PrintTitle("Pseudo01. projectors for a diagonal singular term")

	s := NewMatrix[float64](2, 2)
	s.Set(1, 1, -1.0)

	proj := newProjectors[float64](s)
	if proj == nil {
		tst.Fatal("newProjectors returned nil for a non-nil S")
	}

	wantB := []float64{1, 0, 0, 0} // diag(1,0), column-major
	for i, v := range wantB {
		if math.Abs(proj.B.Data[i]-v) > 1e-10 {
			tst.Fatalf("B.Data[%d] = %v, want %v", i, proj.B.Data[i], v)
		}
	}

	if math.Abs(proj.D.Get(0, 0)-1.0) > 1e-10 {
		tst.Fatalf("D[0,0] = %v, want 1", proj.D.Get(0, 0))
	}
	if math.Abs(proj.D.Get(1, 1)-0.5) > 1e-10 {
		tst.Fatalf("D[1,1] = %v, want 0.5", proj.D.Get(1, 1))
	}
}

// TestPseudoInverseNonSymmetric pins down the orientation of the SVD-based
// pseudoinverse on a matrix that is not its own transpose: for the nilpotent
// N = [[0,1],[0,0]], N+ = N^T = [[0,0],[1,0]].
func TestPseudoInverseNonSymmetric(tst *testing.T) {
	chk.PrintTitle("Pseudo03. pseudoinverse of a non-symmetric matrix")

	n := NewMatrix[float64](2, 2)
	n.Set(0, 1, 1.0)

	pinv := pseudoInverse(n)
	want := [][]float64{{0, 0}, {1, 0}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(pinv.Get(i, j)-want[i][j]) > 1e-12 {
				tst.Fatalf("pinv[%d,%d] = %v, want %v", i, j, pinv.Get(i, j), want[i][j])
			}
		}
	}
}

// TestProjectorsNilWhenNoS checks that newProjectors is a documented no-op
// when the problem carries no singular term.
func TestProjectorsNilWhenNoS(tst *testing.T) {
	chk.PrintTitle("Pseudo02. nil S yields nil projectors")
	if newProjectors[float64](nil) != nil {
		tst.Fatal("newProjectors(nil) must return nil")
	}
}
