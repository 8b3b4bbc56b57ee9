// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvp

import "github.com/cpmech/gosl/io"

// ValidationError reports a problem with the caller's input, detected before
// any iteration begins. Numerical non-convergence (status 1 or 2) is never
// reported this way; it travels through Result instead.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: io.Sf(format, args...)}
}
