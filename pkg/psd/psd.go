// Package psd estimates power spectral density curves from a merged
// waveform stream, the opaque "PSD object" of SPEC_FULL.md §4.3. The
// estimator itself (Welch's method via segment-averaged periodograms) is an
// implementation detail; callers only rely on the two curves it exposes.
package psd

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jihwankim/sqes/pkg/seis"
)

// ErrInsufficientData is returned when a trace carries no more samples than
// one hour at its own sample rate, the PPSD kernel's minimum-data gate.
var ErrInsufficientData = errors.New("psd: trace shorter than one hour")

// Curve is a period/power pair series, period in seconds and power in
// dB-relative-to-(m/s^2)^2/Hz.
type Curve struct {
	Period []float64
	Power  []float64
}

// PPSD bundles the percentile and mean curves the grading kernel consumes,
// plus the sample rate the source trace was estimated at (dcl's period
// lower bound depends on it).
type PPSD struct {
	TraceID      string
	SampleRate   float64
	NumSegments  int
	Percentile   Curve // the Pp/Tp pair, §4.3 step 4
	Mean         Curve // the Pm/Tm pair
}

const (
	segmentSeconds  = 3600.0 // one-hour segments, Peterson-style PPSD convention
	overlapFraction = 0.5
	percentileRank  = 0.5 // median percentile curve, a reasonable PPSD default
)

// Estimate computes the PPSD object for one trace: segmented, overlapping,
// detrended Welch periodograms aggregated into a percentile curve and a mean
// curve, both indexed by period instead of frequency.
func Estimate(tr seis.Trace) (*PPSD, error) {
	if tr.SampleRate <= 0 || len(tr.Data) == 0 {
		return nil, ErrInsufficientData
	}
	minSamples := int(3600 * tr.SampleRate)
	if len(tr.Data) <= minSamples {
		return nil, ErrInsufficientData
	}

	segLen := int(segmentSeconds * tr.SampleRate)
	if segLen < 8 {
		segLen = len(tr.Data)
	}
	step := int(float64(segLen) * (1 - overlapFraction))
	if step < 1 {
		step = 1
	}

	fft := fourier.NewFFT(segLen)
	freqs := fft.Freq()
	nFreq := len(freqs)

	var segments [][]float64 // one power spectrum per segment, dB
	for start := 0; start+segLen <= len(tr.Data); start += step {
		window := detrend(tr.Data[start : start+segLen])
		hann(window)
		spec := fft.Coefficients(nil, window)
		power := make([]float64, nFreq)
		for i, c := range spec {
			mag := real(c)*real(c) + imag(c)*imag(c)
			if mag <= 0 {
				power[i] = -200
			} else {
				power[i] = 10 * math.Log10(mag)
			}
		}
		segments = append(segments, power)
	}
	if len(segments) == 0 {
		return nil, ErrInsufficientData
	}

	periods := make([]float64, nFreq)
	for i, f := range freqs {
		freqHz := f * tr.SampleRate / float64(segLen)
		if freqHz <= 0 {
			periods[i] = math.Inf(1)
		} else {
			periods[i] = 1 / freqHz
		}
	}

	meanPower := make([]float64, nFreq)
	pctPower := make([]float64, nFreq)
	column := make([]float64, len(segments))
	for i := range periods {
		for s, seg := range segments {
			column[s] = seg[i]
		}
		meanPower[i] = stat.Mean(column, nil)
		sorted := append([]float64(nil), column...)
		floats.Sort(sorted)
		pctPower[i] = stat.Quantile(percentileRank, stat.Empirical, sorted, nil)
	}

	return &PPSD{
		TraceID:     tr.ID(),
		SampleRate:  tr.SampleRate,
		NumSegments: len(segments),
		Percentile:  Curve{Period: periods, Power: pctPower},
		Mean:        Curve{Period: periods, Power: meanPower},
	}, nil
}

func detrend(x []float64) []float64 {
	out := make([]float64, len(x))
	mean := stat.Mean(x, nil)
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

func hann(x []float64) {
	n := len(x)
	for i := range x {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		x[i] *= w
	}
}

// FilterMaxPeriod returns the subset of c with Period <= maxPeriod, per
// SPEC_FULL.md §4.3 step 4's "drop T>100s" rule.
func (c Curve) FilterMaxPeriod(maxPeriod float64) Curve {
	var period, power []float64
	for i, t := range c.Period {
		if t <= maxPeriod {
			period = append(period, t)
			power = append(power, c.Power[i])
		}
	}
	return Curve{Period: period, Power: power}
}

// FilterRange returns the subset of c with lo < Period < hi.
func (c Curve) FilterRange(lo, hi float64) Curve {
	var period, power []float64
	for i, t := range c.Period {
		if t > lo && t < hi {
			period = append(period, t)
			power = append(power, c.Power[i])
		}
	}
	return Curve{Period: period, Power: power}
}

// Select restricts c to the given indices, in order.
func (c Curve) Select(idx []int) Curve {
	period := make([]float64, len(idx))
	power := make([]float64, len(idx))
	for i, j := range idx {
		period[i] = c.Period[j]
		power[i] = c.Power[j]
	}
	return Curve{Period: period, Power: power}
}
