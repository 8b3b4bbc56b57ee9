// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

// projectors holds the two constants derived once from a singular-term
// matrix S: B = I - S+S projects onto the regularity constraint S*y(a)=0,
// D = (I-S)+ replaces f at x=a. S+ is the Moore-Penrose pseudoinverse.
type projectors[T Number] struct {
	S, B, D *Matrix[T]
}

// newProjectors derives B and D from S, or returns nil when no singular term
// is configured.
func newProjectors[T Number](s *Matrix[T]) *projectors[T] {
	if s == nil {
		return nil
	}
	n := s.Rows
	sPlus := pseudoInverse(s)
	sPlusS := matMul(sPlus, s)
	b := identity[T](n)
	for idx := range b.Data {
		b.Data[idx] -= sPlusS.Data[idx]
	}
	imS := identity[T](n)
	for idx := range imS.Data {
		imS.Data[idx] -= s.Data[idx]
	}
	d := pseudoInverse(imS)
	return &projectors[T]{S: s, B: b, D: d}
}

// wrapper presents f-hat(x,y,p) = f(x,y,p) + (S y)/(x-a), f-hat(a,y,p) =
// D f(a,y,p), folding the singular term into one uniform callable. When
// proj is nil it is a thin pass-through.
type wrapper[T Number] struct {
	prob *Problem[T]
	a    float64
	proj *projectors[T]
}

func newWrapper[T Number](prob *Problem[T], a float64, proj *projectors[T]) *wrapper[T] {
	return &wrapper[T]{prob: prob, a: a, proj: proj}
}

// f evaluates the wrapped right-hand side over the columns of y at x.
func (w *wrapper[T]) f(x []float64, y *Matrix[T], p []T) *Matrix[T] {
	out := w.prob.F(x, y, p)
	if w.proj == nil {
		return out
	}
	for j, xj := range x {
		col := out.Col(j)
		if xj == w.a {
			dv := matVec(w.proj.D, col)
			copy(col, dv)
			continue
		}
		sv := matVec(w.proj.S, y.Col(j))
		inv := fromFloat[T](1.0 / (xj - w.a))
		for i := range col {
			col[i] += sv[i] * inv
		}
	}
	return out
}

// q evaluates the (unmodified: quadrature states never carry the singular
// term) quadrature right-hand side.
func (w *wrapper[T]) q(x []float64, y *Matrix[T], p []T) *Matrix[T] {
	if w.prob.Q == nil {
		return NewMatrix[T](0, len(x))
	}
	return w.prob.Q(x, y, p)
}

// qJac evaluates dq/dy and dq/dp unmodified (q never carries the singular
// term, see q above).
func (w *wrapper[T]) qJac(x []float64, y *Matrix[T], p []T) (dqdy, dqdp *Tensor3[T]) {
	return w.prob.QJac(x, y, p)
}

// fJac evaluates df-hat/dy and df-hat/dp, adding S/(x-a) pointwise to df/dy
// and left-multiplying by D at x=a.
func (w *wrapper[T]) fJac(x []float64, y *Matrix[T], p []T) (dfdy, dfdp *Tensor3[T]) {
	dfdy, dfdp = w.prob.FJac(x, y, p)
	if w.proj == nil {
		return
	}
	n := dfdy.Rows
	for k, xk := range x {
		slab := dfdy.Slab(k)
		if xk == w.a {
			prod := matMul(w.proj.D, slab)
			copy(slab.Data, prod.Data)
			if dfdp != nil {
				pslab := dfdp.Slab(k)
				pprod := matMul(w.proj.D, pslab)
				copy(pslab.Data, pprod.Data)
			}
			continue
		}
		inv := fromFloat[T](1.0 / (xk - w.a))
		for j := 0; j < n; j++ {
			col := slab.Col(j)
			scol := w.proj.S.Col(j)
			for i := 0; i < n; i++ {
				col[i] += scol[i] * inv
			}
		}
	}
	return
}
