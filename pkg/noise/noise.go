// Package noise evaluates the Peterson (1993) New High/Low Noise Models
// (NHNM/NLNM) on an arbitrary period vector. The piecewise-linear
// coefficients below are carried over unchanged from the Peterson (1993)
// tables as used by the source implementation.
package noise

import "math"

// NHNM constants (Peterson, 1993). Ph has one more entry than Ah/Bh: it is
// the sentinel upper bound of the tabulated range.
var (
	ph = []float64{0.10, 0.22, 0.32, 0.80, 3.80, 4.60, 6.30, 7.90, 15.40, 20.00, 354.80, 100000.00}
	ah = []float64{-108.73, -150.34, -122.31, -116.85, -108.48, -74.66, 0.66, -93.37, 73.54, -151.52, -206.66}
	bh = []float64{-17.23, -80.50, -23.87, 32.51, 18.08, -32.95, -127.18, -22.42, -162.98, 10.01, 31.63}
)

// NLNM constants (Peterson, 1993).
var (
	pl = []float64{0.10, 0.17, 0.40, 0.80, 1.24, 2.40, 4.30, 5.00, 6.00, 10.00, 12.00, 15.60, 21.90,
		31.60, 45.00, 70.00, 101.00, 154.00, 328.00, 600.00, 10000.00, 100000.00}
	al = []float64{-162.36, -166.7, -170.00, -166.40, -168.60, -159.98, -141.10, -71.36, -97.26,
		-132.18, -205.27, -37.65, -114.37, -160.58, -187.50, -216.47, -185.00, -168.34,
		-217.43, -258.28, -346.88}
	bl = []float64{5.64, 0.00, -8.30, 28.90, 52.48, 29.81, 0.00, -99.77, -66.49, -31.57, 36.16,
		-104.33, -47.10, -16.28, 0.00, 15.70, 0.00, -7.61, 11.90, 26.60, 48.75}
)

// Evaluate returns NHNM, NLNM, and the indices of T for which both models
// are defined (i.e. T falls inside the tabulated range for both tables). T
// is a period vector in seconds, ordered arbitrarily; entries <= 0 or
// outside [0.1s, 100000s] never validate. The power grid parameter of the
// original routine carries no semantic weight and is intentionally absent
// from this signature (the function is pure over the period vector alone).
func Evaluate(T []float64) (nhnm, nlnm []float64, validIdx []int) {
	nhnm = make([]float64, len(T))
	nlnm = make([]float64, len(T))
	for i, period := range T {
		h, hOK := segment(ph, ah, bh, period)
		l, lOK := segment(pl, al, bl, period)
		if hOK {
			nhnm[i] = h
		}
		if lOK {
			nlnm[i] = l
		}
		if hOK && lOK {
			validIdx = append(validIdx, i)
		}
	}
	return nhnm, nlnm, validIdx
}

// segment finds the highest-indexed threshold strictly below period and
// evaluates A[idx] + B[idx]*log10(period). P has exactly one more entry
// than A/B (a sentinel upper bound); an index landing on that sentinel, or
// no threshold below period at all, means period is out of range.
func segment(P, A, B []float64, period float64) (float64, bool) {
	if period <= 0 {
		return 0, false
	}
	idx := -1
	for i, p := range P {
		if period > p {
			idx = i
		}
	}
	if idx < 0 || idx >= len(A) {
		return 0, false
	}
	return A[idx] + B[idx]*math.Log10(period), true
}
