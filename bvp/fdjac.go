// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import "math"

// sqrtEps is the forward-difference step scale.
var sqrtEps = math.Sqrt(epsMach)

// estimateRHSJac estimates d(rhs)/dy and d(rhs)/dp of an (x,y,p)->out
// callable by forward differences, using the Dekker-style reproducible step
// h_i = (x_i+h) - x_i so that the actual floating-point increment (not the
// nominal one) is used in the divided difference. y may
// have a different row count than out (q's Jacobian is (nq,n,m), not
// (n,n,m)); dp is nil when p is empty.
func estimateRHSJac[T Number](rhs RHSFunc[T], x []float64, y *Matrix[T], p []T, out0 *Matrix[T]) (dy, dp *Tensor3[T]) {
	n, m := y.Rows, y.Cols
	outRows := out0.Rows

	dy = NewTensor3[T](outRows, n, m)
	yPert := y.Clone()
	for i := 0; i < n; i++ {
		hInv := make([]T, m)
		for c := 0; c < m; c++ {
			yic := y.Get(i, c)
			step := fromFloat[T](sqrtEps * (1 + absVal(yic)))
			bumped := yic + step
			yPert.Set(i, c, bumped)
			hInv[c] = fromFloat[T](1) / (bumped - yic)
		}
		outNew := rhs(x, yPert, p)
		for c := 0; c < m; c++ {
			slab := dy.Slab(c)
			inv := hInv[c]
			for r := 0; r < outRows; r++ {
				slab.Set(r, i, (outNew.Get(r, c)-out0.Get(r, c))*inv)
			}
			yPert.Set(i, c, y.Get(i, c))
		}
	}

	k := len(p)
	if k == 0 {
		return dy, nil
	}
	dp = NewTensor3[T](outRows, k, m)
	pPert := append([]T(nil), p...)
	for i := 0; i < k; i++ {
		pi := p[i]
		step := fromFloat[T](sqrtEps * (1 + absVal(pi)))
		bumped := pi + step
		pPert[i] = bumped
		inv := fromFloat[T](1) / (bumped - pi)
		outNew := rhs(x, y, pPert)
		for c := 0; c < m; c++ {
			slab := dp.Slab(c)
			for r := 0; r < outRows; r++ {
				slab.Set(r, i, (outNew.Get(r, c)-out0.Get(r, c))*inv)
			}
		}
		pPert[i] = pi
	}
	return dy, dp
}

// estimateBCJac estimates the boundary-condition Jacobian blocks by forward
// differences. Columns of each block follow the input index (ya_i, qa_i, ...)
// and rows follow the residual index, matching the shapes an analytic BCJac
// callback must return. dqa/dqb are nil when nq==0; dp is nil when k==0.
func estimateBCJac[T Number](bc BCFunc[T], ya, qa, yb, qb, p []T, bc0 []T) (dya, dqa, dyb, dqb, dp *Matrix[T]) {
	total := len(bc0)
	n, nq, k := len(ya), len(qa), len(p)

	dya = NewMatrix[T](total, n)
	{
		yaP := append([]T(nil), ya...)
		for i := 0; i < n; i++ {
			vi := yaP[i]
			step := fromFloat[T](sqrtEps * (1 + absVal(vi)))
			bumped := vi + step
			yaP[i] = bumped
			inv := fromFloat[T](1) / (bumped - vi)
			res := bc(yaP, qa, yb, qb, p)
			col := dya.Col(i)
			for r := 0; r < total; r++ {
				col[r] = (res[r] - bc0[r]) * inv
			}
			yaP[i] = vi
		}
	}

	if nq > 0 {
		dqa = NewMatrix[T](total, nq)
		qaP := append([]T(nil), qa...)
		for i := 0; i < nq; i++ {
			vi := qaP[i]
			step := fromFloat[T](sqrtEps * (1 + absVal(vi)))
			bumped := vi + step
			qaP[i] = bumped
			inv := fromFloat[T](1) / (bumped - vi)
			res := bc(ya, qaP, yb, qb, p)
			col := dqa.Col(i)
			for r := 0; r < total; r++ {
				col[r] = (res[r] - bc0[r]) * inv
			}
			qaP[i] = vi
		}
	}

	dyb = NewMatrix[T](total, n)
	{
		ybP := append([]T(nil), yb...)
		for i := 0; i < n; i++ {
			vi := ybP[i]
			step := fromFloat[T](sqrtEps * (1 + absVal(vi)))
			bumped := vi + step
			ybP[i] = bumped
			inv := fromFloat[T](1) / (bumped - vi)
			res := bc(ya, qa, ybP, qb, p)
			col := dyb.Col(i)
			for r := 0; r < total; r++ {
				col[r] = (res[r] - bc0[r]) * inv
			}
			ybP[i] = vi
		}
	}

	if nq > 0 {
		dqb = NewMatrix[T](total, nq)
		qbP := append([]T(nil), qb...)
		for i := 0; i < nq; i++ {
			vi := qbP[i]
			step := fromFloat[T](sqrtEps * (1 + absVal(vi)))
			bumped := vi + step
			qbP[i] = bumped
			inv := fromFloat[T](1) / (bumped - vi)
			res := bc(ya, qa, yb, qbP, p)
			col := dqb.Col(i)
			for r := 0; r < total; r++ {
				col[r] = (res[r] - bc0[r]) * inv
			}
			qbP[i] = vi
		}
	}

	if k > 0 {
		dp = NewMatrix[T](total, k)
		pP := append([]T(nil), p...)
		for i := 0; i < k; i++ {
			vi := pP[i]
			step := fromFloat[T](sqrtEps * (1 + absVal(vi)))
			bumped := vi + step
			pP[i] = bumped
			inv := fromFloat[T](1) / (bumped - vi)
			res := bc(ya, qa, yb, qb, pP)
			col := dp.Col(i)
			for r := 0; r < total; r++ {
				col[r] = (res[r] - bc0[r]) * inv
			}
			pP[i] = vi
		}
	}

	return dya, dqa, dyb, dqb, dp
}
