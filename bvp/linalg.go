// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Matrix is a dense rows x cols array stored column-major, matching the
// unknown-vector ordering (vec(Y) in column-major order): column j is
// contiguous, so Col returns a slice view with no copy.
type Matrix[T Number] struct {
	Rows, Cols int
	Data       []T
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix[T Number](rows, cols int) *Matrix[T] {
	return &Matrix[T]{Rows: rows, Cols: cols, Data: make([]T, rows*cols)}
}

// Get returns element (i,j).
func (m *Matrix[T]) Get(i, j int) T { return m.Data[i+j*m.Rows] }

// Set assigns element (i,j).
func (m *Matrix[T]) Set(i, j int, v T) { m.Data[i+j*m.Rows] = v }

// Col returns a mutable view of column j (no copy).
func (m *Matrix[T]) Col(j int) []T {
	return m.Data[j*m.Rows : j*m.Rows+m.Rows]
}

// Clone returns a deep copy.
func (m *Matrix[T]) Clone() *Matrix[T] {
	o := NewMatrix[T](m.Rows, m.Cols)
	copy(o.Data, m.Data)
	return o
}

// Tensor3 is a rows x cols x depth array stored with each depth-slab
// contiguous (column-major within the slab), so Slab(k) returns a Matrix
// view with no copy. Used for per-node/per-midpoint n x n and n x k
// Jacobian blocks (depth = number of mesh nodes or midpoints).
type Tensor3[T Number] struct {
	Rows, Cols, Depth int
	Data              []T
}

// NewTensor3 allocates a zeroed rows x cols x depth tensor.
func NewTensor3[T Number](rows, cols, depth int) *Tensor3[T] {
	return &Tensor3[T]{Rows: rows, Cols: cols, Depth: depth, Data: make([]T, rows*cols*depth)}
}

// Slab returns a view of the k-th rows x cols slice.
func (t *Tensor3[T]) Slab(k int) *Matrix[T] {
	n := t.Rows * t.Cols
	return &Matrix[T]{Rows: t.Rows, Cols: t.Cols, Data: t.Data[k*n : k*n+n]}
}

// matVec computes A*x for a dense rows x cols matrix and length-cols vector.
// The real (float64) dtype dispatches to gosl/la's dense Matrix/MatVecMul;
// la has no complex dense mat-vec, so the complex128 dtype keeps a
// hand-rolled loop.
func matVec[T Number](a *Matrix[T], x []T) []T {
	chk.IntAssert(len(x), a.Cols)
	if !isComplex[T]() {
		return matVecReal(a, x)
	}
	out := make([]T, a.Rows)
	for j := 0; j < a.Cols; j++ {
		xj := x[j]
		if xj == 0 {
			continue
		}
		col := a.Col(j)
		for i := 0; i < a.Rows; i++ {
			out[i] += col[i] * xj
		}
	}
	return out
}

// matVecReal adapts the generic Matrix[T]/[]T contract onto la.Matrix and
// la.Vector the way realFactorizationAdapter (sparse.go) adapts sysTriplet
// onto la.Triplet: convert in, call the float64-only gosl routine, convert
// the result back to T.
func matVecReal[T Number](a *Matrix[T], x []T) []T {
	am := la.NewMatrix(a.Rows, a.Cols)
	for j := 0; j < a.Cols; j++ {
		for i := 0; i < a.Rows; i++ {
			am.Set(i, j, any(a.Get(i, j)).(float64))
		}
	}
	xv := la.NewVector(len(x))
	for i, v := range x {
		xv[i] = any(v).(float64)
	}
	ov := la.NewVector(a.Rows)
	la.MatVecMul(ov, 1, am, xv)
	out := make([]T, a.Rows)
	for i, v := range ov {
		out[i] = any(v).(T)
	}
	return out
}

// matMul computes A*B for dense matrices one column of B at a time, so every
// multiply, real or complex, routes through matVec's dispatch above. For
// the small per-node/per-midpoint n x n blocks this solver works with,
// a column-by-column mat-vec product is the simplest way to reuse
// la.MatVecMul for the real dtype without a dense mat-mat routine.
func matMul[T Number](a, b *Matrix[T]) *Matrix[T] {
	chk.IntAssert(a.Cols, b.Rows)
	out := NewMatrix[T](a.Rows, b.Cols)
	for j := 0; j < b.Cols; j++ {
		copy(out.Col(j), matVec(a, b.Col(j)))
	}
	return out
}

// identity returns the n x n identity matrix.
func identity[T Number](n int) *Matrix[T] {
	m := NewMatrix[T](n, n)
	one := fromFloat[T](1)
	for i := 0; i < n; i++ {
		m.Set(i, i, one)
	}
	return m
}
