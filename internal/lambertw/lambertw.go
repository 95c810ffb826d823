// Package lambertw evaluates the principal branch of the Lambert W function,
// the inverse of w·exp(w), for complex arguments.
package lambertw

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrNoConvergence is returned when Halley iteration fails to settle.
var ErrNoConvergence = errors.New("lambertw: halley iteration did not converge")

const (
	maxIter = 100
	tol     = 1e-14
)

// branchPoint is -1/e, where the principal and k=-1 branches meet.
var branchPoint = complex(-1/math.E, 0)

// W0 returns the principal-branch value W₀(z).
//
// Real arguments at or above -1/e yield real results with a zero imaginary
// part; anything else is generally complex.
func W0(z complex128) (complex128, error) {
	switch {
	case cmplx.IsNaN(z):
		return cmplx.NaN(), nil
	case cmplx.IsInf(z):
		return cmplx.Inf(), nil
	case z == 0:
		return 0, nil
	case z == branchPoint:
		return -1, nil
	}

	w := initialGuess(z)
	for i := 0; i < maxIter; i++ {
		ew := cmplx.Exp(w)
		f := w*ew - z
		wp1 := w + 1
		denom := ew*wp1 - (w+2)*f/(2*wp1)
		if denom == 0 {
			break
		}
		dw := f / denom
		w -= dw
		if cmplx.Abs(dw) <= tol*(1+cmplx.Abs(w)) {
			return w, nil
		}
	}
	return w, ErrNoConvergence
}

func initialGuess(z complex128) complex128 {
	// Series about the branch point.
	if cmplx.Abs(z-branchPoint) < 0.3 {
		p := cmplx.Sqrt(2 * (math.E*z + 1))
		return -1 + p - p*p/3 + 11.0/72.0*p*p*p
	}

	// Padé approximant around the origin.
	re, im := real(z), math.Abs(imag(z))
	if re > -1 && re < 1.5 && im < 1 && -2.5*im-0.2 < re {
		return z * (3 + 6*z + z*z) / (3 + 9*z + 5*z*z)
	}

	// Asymptotic expansion.
	w := cmplx.Log(z)
	return w - cmplx.Log(w)
}
