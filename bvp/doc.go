// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bvp implements a fourth-order Lobatto IIIA collocation solver for
// two-point boundary value problems
//
//   y'(x) = f(x, y, p) + (S y)/(x-a),    a <= x <= b
//   bc(y(a), q(a), y(b), q(b), p) = 0
//
// on a non-uniform mesh, with optional unknown parameters p, optional
// quadrature states q, and an optional singular term at the left endpoint.
//
// The mesh is refined by estimating the per-interval RMS residual with a
// 5-point Lobatto quadrature rule and inserting one or two nodes where the
// estimate exceeds the requested tolerance. Each mesh carries its own
// nonlinear collocation system, solved by a damped, affine-invariant Newton
// iteration with periodic Jacobian freezing over a sparse LU factorization.
//
// Construction of the initial guess, continuation strategies and the
// symbolic setup of f/q/bc are left to the caller; this package is the hard
// numerical core only.
package bvp
