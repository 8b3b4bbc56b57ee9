// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"gonum.org/v1/gonum/mat"
)

// pseudoInverse computes the Moore-Penrose pseudoinverse of a (square)
// matrix via SVD. gosl/la exposes no SVD or pseudoinverse routine, so this
// one step is wired to gonum.org/v1/gonum/mat instead.
//
// gonum's SVD is real-only, so for complex128 dtype S is lifted to its
// standard real embedding
//
//	[ Re(S)  -Im(S) ]
//	[ Im(S)   Re(S) ]
//
// gonum's real SVD is applied to that 2n x 2n matrix, and the pseudoinverse
// is read back out of the corresponding blocks of the result, a standard
// technique for running real-only numerical routines on complex data.
func pseudoInverse[T Number](s *Matrix[T]) *Matrix[T] {
	n := s.Rows
	if isComplex[T]() {
		re := NewMatrix[float64](n, n)
		im := NewMatrix[float64](n, n)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				c := any(s.Get(i, j)).(complex128)
				re.Set(i, j, real(c))
				im.Set(i, j, imag(c))
			}
		}
		block := NewMatrix[float64](2*n, 2*n)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				block.Set(i, j, re.Get(i, j))
				block.Set(i, j+n, -im.Get(i, j))
				block.Set(i+n, j, im.Get(i, j))
				block.Set(i+n, j+n, re.Get(i, j))
			}
		}
		pinvBlock := realPseudoInverse(block)
		out := NewMatrix[T](n, n)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				out.Set(i, j, any(complex(pinvBlock.Get(i, j), pinvBlock.Get(i+n, j))).(T))
			}
		}
		return out
	}

	real64 := NewMatrix[float64](n, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			real64.Set(i, j, any(s.Get(i, j)).(float64))
		}
	}
	pinv := realPseudoInverse(real64)
	out := NewMatrix[T](n, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			out.Set(i, j, any(pinv.Get(i, j)).(T))
		}
	}
	return out
}

// realPseudoInverse computes V*Sigma^+*U^T from a full SVD.
func realPseudoInverse(a *Matrix[float64]) *Matrix[float64] {
	n := a.Rows
	dense := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			dense.Set(i, j, a.Get(i, j))
		}
	}
	var svd mat.SVD
	ok := svd.Factorize(dense, mat.SVDFull)
	if !ok {
		return NewMatrix[float64](n, n) // SVD did not converge: the zero matrix is returned
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// a = u*sigma*v^T, so a+ = v*sigma+*u^T
	tol := float64(n) * epsMach * maxFloat(values)
	out := NewMatrix[float64](n, n)
	for k, sv := range values {
		if sv <= tol {
			continue
		}
		inv := 1.0 / sv
		for j := 0; j < n; j++ {
			ujk := u.At(j, k)
			if ujk == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				out.Data[i+j*n] += v.At(i, k) * inv * ujk
			}
		}
	}
	return out
}

func maxFloat(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
