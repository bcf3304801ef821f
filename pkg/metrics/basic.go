// Package metrics implements the time-domain basic-metrics kernel
// (SPEC_FULL.md §4.2) and the spike-count engines it selects between.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jihwankim/sqes/pkg/seis"
	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// rmsCap and overflow (the ratio cap) mirror the source kernel's saturation ceilings, used to
// keep pathological streams from producing unbounded scores downstream.
const (
	rmsCap   = 99999.0
	overflow = 99999.0
)

// Basic is the output of computeBasic.
type Basic struct {
	RMS          float64
	RatioAmp     float64
	Availability float64
	NGap         int
	NOver        int
	NSpikes      int
}

// ComputeBasic implements SPEC_FULL.md §4.2's computeBasic operation over one
// channel's stream for the fixed acquisition window.
func ComputeBasic(s seis.Stream, window model.TimeWindow, engine SpikeEngine) Basic {
	return Basic{
		RMS:          rms(s),
		RatioAmp:     ratioAmp(s),
		Availability: availability(s, window),
		NGap:         countGapsOverlaps(s, true),
		NOver:        countGapsOverlaps(s, false),
		NSpikes:      countSpikes(s, engine),
	}
}

// rms is the arithmetic mean, across traces, of sqrt(mean((x-mean(x))^2)),
// using NaN-tolerant aggregates and skipping traces with zero samples.
func rms(s seis.Stream) float64 {
	var sum float64
	var n int
	for _, tr := range s {
		if len(tr.Data) == 0 {
			continue
		}
		mean := nanMean(tr.Data)
		var variance float64
		var cnt int
		for _, x := range tr.Data {
			if math.IsNaN(x) {
				continue
			}
			d := x - mean
			variance += d * d
			cnt++
		}
		if cnt == 0 {
			continue
		}
		variance /= float64(cnt)
		sum += math.Sqrt(variance)
		n++
	}
	if n == 0 {
		return 0
	}
	v := sum / float64(n)
	if v > rmsCap {
		return rmsCap
	}
	return v
}

func nanMean(x []float64) float64 {
	var sum float64
	var n int
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// streamExtremes returns the max and min sample value across all traces,
// ignoring NaNs, mirroring _calculate_stream_amplitude.
func streamExtremes(s seis.Stream) (max, min float64, ok bool) {
	max, min = math.Inf(-1), math.Inf(1)
	found := false
	for _, tr := range s {
		for _, v := range tr.Data {
			if math.IsNaN(v) {
				continue
			}
			if v > max {
				max = v
			}
			if v < min {
				min = v
			}
			found = true
		}
	}
	return max, min, found
}

// ratioAmp derives the amplitude ratio from the stream's absolute extremes:
// NaN inputs grade to 0, a zero extreme grades to 1, otherwise max/min of the
// absolute values, capped at overflow.
func ratioAmp(s seis.Stream) float64 {
	max, min, ok := streamExtremes(s)
	if !ok {
		return 0
	}
	ampMax, ampMin := math.Abs(max), math.Abs(min)
	if math.IsNaN(ampMax) || math.IsNaN(ampMin) {
		return 0
	}
	if ampMax == 0 || ampMin == 0 {
		return 1
	}
	hi, lo := ampMax, ampMin
	if hi < lo {
		hi, lo = lo, hi
	}
	r := hi / lo
	if r > overflow {
		return overflow
	}
	return r
}

// availability computes 100*(actual/total), capped at 100 and rounded to two
// decimals, over the fixed daily window per SPEC_FULL.md §9's resolution of
// the availability-denominator open question: total is always window.Duration,
// never the observed data span.
func availability(s seis.Stream, window model.TimeWindow) float64 {
	total := window.Duration().Seconds()
	if total <= 0 {
		return 0
	}
	start, end, ok := s.Span()
	if !ok {
		return 0
	}
	span := end.Sub(start).Seconds()
	var gapSum float64
	for _, g := range s.Gaps() {
		if g.Duration > 0 {
			gapSum += g.Duration.Seconds()
		}
	}
	actual := span - gapSum
	if actual < 0 {
		actual = 0
	}
	pct := 100 * (actual / total)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return math.Round(pct*100) / 100
}

// countGapsOverlaps counts inter-trace intervals: gaps when wantGaps and
// Duration>0, overlaps when !wantGaps and Duration<=0.
func countGapsOverlaps(s seis.Stream, wantGaps bool) int {
	n := 0
	for _, g := range s.Gaps() {
		isGap := g.Duration > 0
		if isGap == wantGaps {
			n++
		}
	}
	return n
}

// flatten concatenates every trace's samples into one NaN-free slice, used
// by the numerics helpers that need a plain vector (stat.Quantile and
// friends operate on sorted, NaN-free data).
func flatten(s seis.Stream) []float64 {
	var out []float64
	for _, tr := range s {
		for _, v := range tr.Data {
			if !math.IsNaN(v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// medianMAD returns the median and median absolute deviation of a window,
// ignoring NaNs. Used by both spike engines.
func medianMAD(window []float64) (median, mad float64) {
	clean := make([]float64, 0, len(window))
	for _, v := range window {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := append([]float64(nil), clean...)
	floats.Sort(sorted)
	median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	devs := make([]float64, len(sorted))
	for i, v := range sorted {
		devs[i] = math.Abs(v - median)
	}
	floats.Sort(devs)
	mad = stat.Quantile(0.5, stat.Empirical, devs, nil)
	return median, mad
}
