// Package rootfind provides a bracketing scalar root finder shared by the
// ray-tracing packages.
package rootfind

import (
	"errors"
	"math"
)

// ErrBracket is returned when the supplied interval does not bracket a sign
// change of the function.
var ErrBracket = errors.New("rootfind: interval does not bracket a root")

// ErrMaxIterations is returned when the solver exhausts its iteration budget
// before reaching the requested tolerance.
var ErrMaxIterations = errors.New("rootfind: exceeded iteration budget")

// Brent finds a root of f on [a, b] using the Brent-Dekker method: bisection
// interleaved with secant and inverse quadratic steps, keeping the bracket
// valid at every iteration. It requires f(a) and f(b) to have opposite signs
// and returns the abscissa once the bracket width falls below tol. Endpoint
// roots are returned immediately. Non-finite function values at interior
// points force plain bisection steps, so integrands that blow up near a
// bracket edge still converge.
func Brent(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa := f(a)
	fb := f(b)

	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}

	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, ErrBracket
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, ErrBracket
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	d := b
	bisected := true

	for range maxIter {
		if fb == 0 || math.Abs(b-a) <= tol {
			return b, nil
		}

		var s float64
		interpolate := isFinite(fa) && isFinite(fb) && isFinite(fc)

		switch {
		case !interpolate:
			s = 0.5 * (a + b)
		case fa != fc && fb != fc:
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		default:
			// Secant step.
			s = b - fb*(b-a)/(fb-fa)
		}

		if interpolate && rejectStep(s, a, b, c, d, tol, bisected) {
			s = 0.5 * (a + b)
			bisected = true
		} else if interpolate {
			bisected = false
		} else {
			bisected = true
		}

		fs := f(s)
		if fs == 0 {
			return s, nil
		}

		d = c
		c, fc = b, fb

		if math.Signbit(fa) != math.Signbit(fs) {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return b, ErrMaxIterations
}

// rejectStep reports whether the interpolated step s must be replaced by a
// bisection step to preserve Brent's convergence guarantees.
func rejectStep(s, a, b, c, d, tol float64, bisected bool) bool {
	lo := (3*a + b) / 4
	hi := b
	if lo > hi {
		lo, hi = hi, lo
	}

	switch {
	case s <= lo || s >= hi:
		return true
	case bisected && math.Abs(s-b) >= math.Abs(b-c)/2:
		return true
	case !bisected && math.Abs(s-b) >= math.Abs(c-d)/2:
		return true
	case bisected && math.Abs(b-c) < tol:
		return true
	case !bisected && math.Abs(c-d) < tol:
		return true
	}

	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
