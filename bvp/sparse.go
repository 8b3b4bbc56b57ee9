// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"github.com/cpmech/gosl/la"
)

// sysTriplet accumulates the (row, col, value) assembly of the full
// collocation Jacobian (component C3's output) before it is handed to a
// factorization backend, the same row/col/value shape num.NlSolver feeds
// into its own la.Triplet.
type sysTriplet[T Number] struct {
	N        int
	Row, Col []int
	Val      []T
}

func newSysTriplet[T Number](n, nnzGuess int) *sysTriplet[T] {
	return &sysTriplet[T]{
		N:   n,
		Row: make([]int, 0, nnzGuess),
		Col: make([]int, 0, nnzGuess),
		Val: make([]T, 0, nnzGuess),
	}
}

func (t *sysTriplet[T]) put(i, j int, v T) {
	t.Row = append(t.Row, i)
	t.Col = append(t.Col, j)
	t.Val = append(t.Val, v)
}

// putBlock copies a dense block into the triplet at offset (i0, j0). A nil
// block (an absent optional Jacobian piece, e.g. nq==0 or k==0) is a no-op.
func (t *sysTriplet[T]) putBlock(i0, j0 int, b *Matrix[T]) {
	if b == nil {
		return
	}
	for j := 0; j < b.Cols; j++ {
		col := b.Col(j)
		for i := 0; i < b.Rows; i++ {
			t.put(i0+i, j0+j, col[i])
		}
	}
}

// factorization is the interface the damped Newton loop (newton.go) drives:
// solve against the frozen factorization as many times as the line search
// needs, then release it before the next outer iteration so steady-state
// memory stays bounded by one set of LU factors.
type factorization[T Number] interface {
	solve(rhs []T) []T
	free()
}

// factorize dispatches to the real gosl/Umfpack backend or the complex dense
// fallback depending on dtype, which is resolved once per solve and never
// mixed within a run. Returns ok=false when the matrix is singular.
func factorize[T Number](t *sysTriplet[T]) (factorization[T], bool) {
	if isComplex[T]() {
		return factorizeComplex(t)
	}
	return factorizeReal(t)
}

// realFactorizer wraps github.com/cpmech/gosl/la's Umfpack binding, the
// same sparse LU num.NlSolver.Solve uses for its own sparse branch. gosl's
// Umfpack.Fact/Solve report failure by panicking (chk.Panic) rather than
// returning a Go error, so factorizeReal recovers the panic and turns it
// into the ok=false path the Newton loop treats as terminal; the underlying
// library offers no narrower error channel.
type realFactorizer struct {
	solver la.SparseSolver
	n      int
}

func factorizeReal[T Number](t *sysTriplet[T]) (factorization[T], bool) {
	var tri la.Triplet
	tri.Init(t.N, t.N, len(t.Val))
	for i := range t.Val {
		tri.Put(t.Row[i], t.Col[i], any(t.Val[i]).(float64))
	}

	f := &realFactorizer{n: t.N}
	ok := true
	func() {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		f.solver = la.NewSparseSolver("umfpack")
		f.solver.Init(&tri, &la.SpArgs{Symmetric: false, Verbose: false})
		f.solver.Fact()
	}()
	if !ok {
		return nil, false
	}
	return realFactorizationAdapter[T]{f}, true
}

// realFactorizationAdapter converts between the generic []T contract the
// Newton loop uses and the float64-only gosl solver underneath.
type realFactorizationAdapter[T Number] struct {
	f *realFactorizer
}

func (a realFactorizationAdapter[T]) solve(rhs []T) []T {
	b := make([]float64, len(rhs))
	for i, v := range rhs {
		b[i] = any(v).(float64)
	}
	x := la.NewVector(a.f.n)
	var panicked bool
	func() {
		defer func() {
			if recover() != nil {
				panicked = true
			}
		}()
		a.f.solver.Solve(x, b, false)
	}()
	if panicked {
		return nil
	}
	out := make([]T, len(x))
	for i, v := range x {
		out[i] = any(v).(T)
	}
	return out
}

func (a realFactorizationAdapter[T]) free() { a.f.solver.Free() }

// complexFactorizer is the dense partial-pivot LU fallback for complex128
// dtype; neither gosl nor gonum ships a complex sparse direct solver, so
// this one piece is hand-rolled over stdlib complex arithmetic.
type complexFactorizer struct {
	n    int
	lu   []complex128 // n*n, column-major, combined L (unit diag implied) and U
	piv  []int
	fail bool
}

func factorizeComplex[T Number](t *sysTriplet[T]) (factorization[T], bool) {
	n := t.N
	a := make([]complex128, n*n)
	for i := range t.Val {
		a[t.Row[i]+t.Col[i]*n] += any(t.Val[i]).(complex128)
	}
	piv := make([]int, n)
	for i := range piv {
		piv[i] = i
	}
	for k := 0; k < n; k++ {
		p, best := k, cAbsSq(a[k+k*n])
		for i := k + 1; i < n; i++ {
			if v := cAbsSq(a[i+k*n]); v > best {
				p, best = i, v
			}
		}
		if best == 0 {
			return nil, false
		}
		if p != k {
			for j := 0; j < n; j++ {
				a[k+j*n], a[p+j*n] = a[p+j*n], a[k+j*n]
			}
			piv[k], piv[p] = piv[p], piv[k]
		}
		pivotVal := a[k+k*n]
		for i := k + 1; i < n; i++ {
			factor := a[i+k*n] / pivotVal
			a[i+k*n] = factor
			if factor == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				a[i+j*n] -= factor * a[k+j*n]
			}
		}
	}
	return complexFactorizationAdapter[T]{&complexFactorizer{n: n, lu: a, piv: piv}}, true
}

// cAbsSq returns |z|^2, not |z|: squared magnitude is all partial pivoting
// needs when comparing candidate pivots, and it skips a sqrt per candidate.
func cAbsSq(z complex128) float64 {
	re, im := real(z), imag(z)
	return re*re + im*im
}

func (f *complexFactorizer) solveComplex(rhs []complex128) []complex128 {
	n := f.n
	x := make([]complex128, n)
	for i, p := range f.piv {
		x[i] = rhs[p]
	}
	for i := 1; i < n; i++ {
		var sum complex128
		for j := 0; j < i; j++ {
			sum += f.lu[i+j*n] * x[j]
		}
		x[i] -= sum
	}
	for i := n - 1; i >= 0; i-- {
		var sum complex128
		for j := i + 1; j < n; j++ {
			sum += f.lu[i+j*n] * x[j]
		}
		x[i] = (x[i] - sum) / f.lu[i+i*n]
	}
	return x
}

type complexFactorizationAdapter[T Number] struct {
	f *complexFactorizer
}

func (a complexFactorizationAdapter[T]) solve(rhs []T) []T {
	in := make([]complex128, len(rhs))
	for i, v := range rhs {
		in[i] = any(v).(complex128)
	}
	out := a.f.solveComplex(in)
	result := make([]T, len(out))
	for i, v := range out {
		result[i] = any(v).(T)
	}
	return result
}

func (a complexFactorizationAdapter[T]) free() {}
