// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

// collocState holds everything the collocation evaluator (component C2)
// produces for one state channel (Y or Q) on the current mesh: the midpoint
// values, the rhs at nodes and midpoints, and the collocation residual.
//
//	F     = rhs(X, V, P)                                          rows x m
//	Vmid  = 0.5*(V[:,1:]+V[:,:-1]) - (H/8)*(F[:,1:]-F[:,:-1])       rows x (m-1)
//	Fmid  = rhs(Xmid, Vmid, P)                                      rows x (m-1)
//	Rcol  = V[:,1:]-V[:,:-1] - (H/6)*(F[:,:-1]+F[:,1:]+4*Fmid)      rows x (m-1)
//
// This is the Lobatto IIIA matching: the cubic Hermite interpolant through
// the node values with derivatives F reproduces the rhs at the interval
// midpoints when Rcol = 0. Shared between the Y channel (rhs = f-hat) and
// the Q channel (rhs = q).
type collocState[T Number] struct {
	F, Vmid, Fmid, Rcol *Matrix[T]
}

// collocate evaluates one state channel's collocation data on mesh with
// widths h, current values v (rows x m) and parameters p.
func collocate[T Number](rhs RHSFunc[T], x []float64, h []float64, v *Matrix[T], p []T) *collocState[T] {
	rows, m := v.Rows, v.Cols
	mm := m - 1

	f := rhs(x, v, p)

	xmid := make([]float64, mm)
	for i := 0; i < mm; i++ {
		xmid[i] = x[i] + 0.5*h[i]
	}

	vmid := NewMatrix[T](rows, mm)
	for i := 0; i < mm; i++ {
		hi := fromFloat[T](h[i] / 8)
		vL, vR := v.Col(i), v.Col(i+1)
		fL, fR := f.Col(i), f.Col(i+1)
		col := vmid.Col(i)
		half := fromFloat[T](0.5)
		for r := 0; r < rows; r++ {
			col[r] = half*(vR[r]+vL[r]) - hi*(fR[r]-fL[r])
		}
	}

	fmid := rhs(xmid, vmid, p)

	rcol := NewMatrix[T](rows, mm)
	for i := 0; i < mm; i++ {
		hi6 := fromFloat[T](h[i] / 6)
		vL, vR := v.Col(i), v.Col(i+1)
		fL, fR := f.Col(i), f.Col(i+1)
		fm := fmid.Col(i)
		col := rcol.Col(i)
		four := fromFloat[T](4)
		for r := 0; r < rows; r++ {
			col[r] = vR[r] - vL[r] - hi6*(fL[r]+fR[r]+four*fm[r])
		}
	}

	return &collocState[T]{F: f, Vmid: vmid, Fmid: fmid, Rcol: rcol}
}

// collocateQuad is collocate's counterpart for the quadrature channel: q has
// no self-dependence (its signature is q(x,y,p), never q(x,q,p)), so unlike
// collocate the state being differenced (qv) and the state fed to the rhs
// (y, ymid) are different matrices. ymid is the Y channel's own midpoint
// grid, already produced by collocate and passed in rather than recomputed.
func collocateQuad[T Number](qrhs RHSFunc[T], x []float64, h []float64, qv, y, ymid *Matrix[T], p []T) *collocState[T] {
	rows, m := qv.Rows, qv.Cols
	mm := m - 1

	fq := qrhs(x, y, p)

	xmid := make([]float64, mm)
	for i := 0; i < mm; i++ {
		xmid[i] = x[i] + 0.5*h[i]
	}

	fqmid := qrhs(xmid, ymid, p)

	rcol := NewMatrix[T](rows, mm)
	for i := 0; i < mm; i++ {
		hi6 := fromFloat[T](h[i] / 6)
		qL, qR := qv.Col(i), qv.Col(i+1)
		fL, fR := fq.Col(i), fq.Col(i+1)
		fm := fqmid.Col(i)
		col := rcol.Col(i)
		four := fromFloat[T](4)
		for r := 0; r < rows; r++ {
			col[r] = qR[r] - qL[r] - hi6*(fL[r]+fR[r]+four*fm[r])
		}
	}

	return &collocState[T]{F: fq, Vmid: ymid, Fmid: fqmid, Rcol: rcol}
}
