// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import (
	"math"
	"math/cmplx"
)

// Number is the element type a solve runs on. It is resolved once, from the
// caller's initial guess, and never mixed within a single solve.
type Number interface {
	~float64 | ~complex128
}

// epsMach is the machine epsilon of the underlying float64 component, used
// for both real and complex dtypes (finite differences always perturb along
// the real axis).
const epsMach = 2.220446049250313e-16

// fromFloat lifts a real scalar into T (zero imaginary part when T is
// complex128).
func fromFloat[T Number](v float64) T {
	var z T
	switch any(z).(type) {
	case float64:
		return any(v).(T)
	case complex128:
		return any(complex(v, 0)).(T)
	default:
		panic("bvp: unsupported element type")
	}
}

// absVal returns the magnitude of a real or complex scalar.
func absVal[T Number](x T) float64 {
	switch v := any(x).(type) {
	case float64:
		return math.Abs(v)
	case complex128:
		return cmplx.Abs(v)
	default:
		panic("bvp: unsupported element type")
	}
}

// normSq returns x*conj(x), real for both dtypes, as the RMS residual
// estimate requires.
func normSq[T Number](x T) float64 {
	switch v := any(x).(type) {
	case float64:
		return v * v
	case complex128:
		return real(v * cmplx.Conj(v))
	default:
		panic("bvp: unsupported element type")
	}
}

// isComplex reports whether T is the complex128 dtype.
func isComplex[T Number]() bool {
	var z T
	_, ok := any(z).(complex128)
	return ok
}
