// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

// sysLayout computes the row/column offsets of the sparse system Jacobian
// from the problem dimensions; assembleJacobian builds one each time it is
// called. Its row order (Y collocation rows, then Q collocation rows, then
// boundary-condition rows) is the order buildResidual (newton.go) uses to
// concatenate the residual vector.
type sysLayout struct {
	n, nq, k, m int
	mm          int // m - 1
	nUnknowns   int // n*m + nq*m + k
}

func newSysLayout(n, nq, k, m int) sysLayout {
	return sysLayout{n: n, nq: nq, k: k, m: m, mm: m - 1, nUnknowns: n*m + nq*m + k}
}

func (s sysLayout) colY(i int) int { return i * s.n }
func (s sysLayout) colQ(i int) int { return s.n*s.m + i*s.nq }
func (s sysLayout) colP() int { return s.n*s.m + s.nq*s.m }

func (s sysLayout) rowY(i int) int { return i * s.n }
func (s sysLayout) rowQ(i int) int { return s.n*s.mm + i*s.nq }
func (s sysLayout) rowBC() int { return s.n*s.mm + s.nq*s.mm }

// blockDiagY / blockOffY assemble the n x n collocation-residual-vs-Y blocks
// against the current and midpoint df/dy:
//
//	diag i: -I - (H_i/6)(df/dy_i + 2 df/dy_mid) - (H_i^2/12) df/dy_mid df/dy_i
//	off  i: +I - (H_i/6)(df/dy_{i+1} + 2 df/dy_mid) + (H_i^2/12) df/dy_mid df/dy_{i+1}
func blockDiagY[T Number](hi float64, dfdy, dfdyMid *Matrix[T]) *Matrix[T] {
	n := dfdy.Rows
	out := identity[T](n)
	c1 := fromFloat[T](hi / 6)
	two := fromFloat[T](2)
	for idx := range out.Data {
		out.Data[idx] = -out.Data[idx] - c1*(dfdy.Data[idx]+two*dfdyMid.Data[idx])
	}
	prod := matMul(dfdyMid, dfdy)
	c2 := fromFloat[T](hi * hi / 12)
	for idx := range out.Data {
		out.Data[idx] -= c2 * prod.Data[idx]
	}
	return out
}

func blockOffY[T Number](hi float64, dfdyNext, dfdyMid *Matrix[T]) *Matrix[T] {
	n := dfdyNext.Rows
	out := identity[T](n)
	c1 := fromFloat[T](hi / 6)
	two := fromFloat[T](2)
	for idx := range out.Data {
		out.Data[idx] = out.Data[idx] - c1*(dfdyNext.Data[idx]+two*dfdyMid.Data[idx])
	}
	prod := matMul(dfdyMid, dfdyNext)
	c2 := fromFloat[T](hi * hi / 12)
	for idx := range out.Data {
		out.Data[idx] += c2 * prod.Data[idx]
	}
	return out
}

// blockDiagQY / blockOffQY are blockDiagY / blockOffY's quadrature-channel
// counterparts. Unlike Y, q's rhs argument is Y, not Q, so the Q-collocation
// row block carries no identity term against the Y columns at all; the
// identity only shows up between Q's own columns (see assembleJacobian).
// Both blocks follow from the same Y_mid chain rule that produces
// blockDiagY/blockOffY, just without the differenced-state term: Y_mid
// depends on df/dy through f, never through q, which is why the second-order
// term pairs dq/dy_mid with F's own df/dy.
func blockDiagQY[T Number](hi float64, dqdy, dqdyMid, dfdy *Matrix[T]) *Matrix[T] {
	out := NewMatrix[T](dqdy.Rows, dqdy.Cols)
	c1 := fromFloat[T](hi / 6)
	two := fromFloat[T](2)
	for idx := range out.Data {
		out.Data[idx] = -c1 * (dqdy.Data[idx] + two*dqdyMid.Data[idx])
	}
	prod := matMul(dqdyMid, dfdy)
	c2 := fromFloat[T](hi * hi / 12)
	for idx := range out.Data {
		out.Data[idx] -= c2 * prod.Data[idx]
	}
	return out
}

func blockOffQY[T Number](hi float64, dqdyNext, dqdyMid, dfdyNext *Matrix[T]) *Matrix[T] {
	out := NewMatrix[T](dqdyNext.Rows, dqdyNext.Cols)
	c1 := fromFloat[T](hi / 6)
	two := fromFloat[T](2)
	for idx := range out.Data {
		out.Data[idx] = -c1 * (dqdyNext.Data[idx] + two*dqdyMid.Data[idx])
	}
	prod := matMul(dqdyMid, dfdyNext)
	c2 := fromFloat[T](hi * hi / 12)
	for idx := range out.Data {
		out.Data[idx] += c2 * prod.Data[idx]
	}
	return out
}

// blockP assembles a collocation-residual-vs-P block for either channel:
// after the midpoint adjustment dp_mid <- dp_mid + (H/8) dy_mid (dp_i -
// dp_{i+1}), the block is -(H/6)(dp_i + dp_{i+1} + 4 dp_mid).
// dpSelf/dpSelfMid/yMidJacSelf belong
// to the channel being assembled (f for Y's rows, q for Q's rows); dpF_i,
// dpF_ip1 are always F's own df/dp, since Y_mid's P-dependence is always
// routed through f, never q.
func blockP[T Number](hi float64, dpSelfI, dpSelfIp1, dpSelfMid, yMidJacSelf, dpFI, dpFIp1 *Matrix[T]) *Matrix[T] {
	rows, k := dpSelfI.Rows, dpSelfI.Cols
	diff := NewMatrix[T](dpFI.Rows, k)
	for idx := range diff.Data {
		diff.Data[idx] = dpFI.Data[idx] - dpFIp1.Data[idx]
	}
	prod := matMul(yMidJacSelf, diff)
	c := fromFloat[T](hi / 8)
	adj := NewMatrix[T](rows, k)
	for idx := range adj.Data {
		adj.Data[idx] = dpSelfMid.Data[idx] + c*prod.Data[idx]
	}
	out := NewMatrix[T](rows, k)
	c2 := fromFloat[T](hi / 6)
	four := fromFloat[T](4)
	for idx := range out.Data {
		out.Data[idx] = -c2 * (dpSelfI.Data[idx] + dpSelfIp1.Data[idx] + four*adj.Data[idx])
	}
	return out
}

// assembleJacobian computes every per-node/per-midpoint Jacobian (analytic
// callback when the problem supplies one, forward differences otherwise)
// and assembles the square sparse system Jacobian as a (row, col, value)
// triplet.
func assembleJacobian[T Number](prob *Problem[T], w *wrapper[T], x, h []float64, y, q *Matrix[T], p []T, stY, stQ *collocState[T], bc0 []T) *sysTriplet[T] {
	n, nq, k, m := prob.N, prob.NQ, prob.K, len(x)
	mm := m - 1
	lay := newSysLayout(n, nq, k, m)

	xmid := make([]float64, mm)
	for i := 0; i < mm; i++ {
		xmid[i] = x[i] + 0.5*h[i]
	}

	var dfdy, dfdp, dfdyMid, dfdpMid *Tensor3[T]
	if prob.hasFJac() {
		dfdy, dfdp = w.fJac(x, y, p)
		dfdyMid, dfdpMid = w.fJac(xmid, stY.Vmid, p)
	} else {
		dfdy, dfdp = estimateRHSJac[T](w.f, x, y, p, stY.F)
		dfdyMid, dfdpMid = estimateRHSJac[T](w.f, xmid, stY.Vmid, p, stY.Fmid)
	}

	var dqdy, dqdp, dqdyMid, dqdpMid *Tensor3[T]
	if nq > 0 {
		if prob.hasQJac() {
			dqdy, dqdp = w.qJac(x, y, p)
			dqdyMid, dqdpMid = w.qJac(xmid, stY.Vmid, p)
		} else {
			dqdy, dqdp = estimateRHSJac[T](w.q, x, y, p, stQ.F)
			dqdyMid, dqdpMid = estimateRHSJac[T](w.q, xmid, stY.Vmid, p, stQ.Fmid)
		}
	}

	ya, yb := y.Col(0), y.Col(m-1)
	var qa, qb []T
	if nq > 0 {
		qa, qb = q.Col(0), q.Col(m-1)
	}
	var dbcDya, dbcDqa, dbcDyb, dbcDqb, dbcDp *Matrix[T]
	if prob.hasBCJac() {
		dbcDya, dbcDqa, dbcDyb, dbcDqb, dbcDp = prob.BCJac(ya, qa, yb, qb, p)
	} else {
		dbcDya, dbcDqa, dbcDyb, dbcDqb, dbcDp = estimateBCJac[T](prob.BC, ya, qa, yb, qb, p, bc0)
	}

	nnzGuess := mm*(2*n*n+k*n) + mm*(2*nq*n+2*nq*nq+nq*k) + (n+nq+k)*(n+nq+k)
	tri := newSysTriplet[T](lay.nUnknowns, nnzGuess)

	// The Q-channel's d/dQ block is -I/I on every interval regardless of i,
	// so both are built once outside the loop rather than reallocated per
	// interval.
	var negIdentityNQ, posIdentityNQ *Matrix[T]
	if nq > 0 {
		posIdentityNQ = identity[T](nq)
		negIdentityNQ = posIdentityNQ.Clone()
		for idx := range negIdentityNQ.Data {
			negIdentityNQ.Data[idx] = -negIdentityNQ.Data[idx]
		}
	}

	for i := 0; i < mm; i++ {
		hi := h[i]
		dfdyI, dfdyIp1 := dfdy.Slab(i), dfdy.Slab(i+1)
		dfdyMidI := dfdyMid.Slab(i)

		tri.putBlock(lay.rowY(i), lay.colY(i), blockDiagY(hi, dfdyI, dfdyMidI))
		tri.putBlock(lay.rowY(i), lay.colY(i+1), blockOffY(hi, dfdyIp1, dfdyMidI))

		if k > 0 {
			dfdpI, dfdpIp1 := dfdp.Slab(i), dfdp.Slab(i+1)
			dfdpMidI := dfdpMid.Slab(i)
			pBlockY := blockP(hi, dfdpI, dfdpIp1, dfdpMidI, dfdyMidI, dfdpI, dfdpIp1)
			tri.putBlock(lay.rowY(i), lay.colP(), pBlockY)
		}

		if nq > 0 {
			dqdyI, dqdyIp1 := dqdy.Slab(i), dqdy.Slab(i+1)
			dqdyMidI := dqdyMid.Slab(i)

			tri.putBlock(lay.rowQ(i), lay.colY(i), blockDiagQY(hi, dqdyI, dqdyMidI, dfdyI))
			tri.putBlock(lay.rowQ(i), lay.colY(i+1), blockOffQY(hi, dqdyIp1, dqdyMidI, dfdyIp1))

			tri.putBlock(lay.rowQ(i), lay.colQ(i), negIdentityNQ)
			tri.putBlock(lay.rowQ(i), lay.colQ(i+1), posIdentityNQ)

			if k > 0 {
				dqdpI, dqdpIp1 := dqdp.Slab(i), dqdp.Slab(i+1)
				dqdpMidI := dqdpMid.Slab(i)
				dfdpI, dfdpIp1 := dfdp.Slab(i), dfdp.Slab(i+1)
				pBlockQ := blockP(hi, dqdpI, dqdpIp1, dqdpMidI, dqdyMidI, dfdpI, dfdpIp1)
				tri.putBlock(lay.rowQ(i), lay.colP(), pBlockQ)
			}
		}
	}

	tri.putBlock(lay.rowBC(), lay.colY(0), dbcDya)
	tri.putBlock(lay.rowBC(), lay.colY(m-1), dbcDyb)
	if nq > 0 {
		tri.putBlock(lay.rowBC(), lay.colQ(0), dbcDqa)
		tri.putBlock(lay.rowBC(), lay.colQ(m-1), dbcDqb)
	}
	if k > 0 {
		tri.putBlock(lay.rowBC(), lay.colP(), dbcDp)
	}

	return tri
}
