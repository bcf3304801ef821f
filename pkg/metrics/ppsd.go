package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jihwankim/sqes/pkg/noise"
	"github.com/jihwankim/sqes/pkg/plot"
	"github.com/jihwankim/sqes/pkg/psd"
	"github.com/jihwankim/sqes/pkg/seis"
)

// Band is a (lo, hi) period range in seconds for the per-band
// percentage-inside-model metric.
type Band struct {
	Lo, Hi float64
}

// Bands per SPEC_FULL.md §4.3 step 7.
var (
	BandLong  = Band{20, 900}
	BandMicro = Band{2, 25}
	BandShort = Band{0.1, 1}
)

const (
	ppsdMaxPeriod  = 100
	dcgBandLo      = 4
	dcgBandHi      = 8
	dcgThresholdDB = 5
)

// PPSD is the output of ComputePPSD.
type PPSD struct {
	PctH      float64
	PctL      float64
	BandLong  float64
	BandMicro float64
	BandShort float64
	DCG       int
	DCL       float64
}

// PPSDArtifacts carries optional output paths; empty strings suppress the
// corresponding artifact, per SPEC_FULL.md §4.3 steps 2-3.
type PPSDArtifacts struct {
	PlotPath string
	NpzPath  string
}

// ComputePPSD implements SPEC_FULL.md §4.3's computePPSD operation. It
// returns (nil, nil) wherever the spec calls for a null result (missing
// inventory, insufficient data, or an empty post-filter array), and a
// non-nil error only for unexpected internal failures.
func ComputePPSD(stream seis.Stream, inv *seis.Inventory, art PPSDArtifacts) (*PPSD, error) {
	if inv == nil || len(stream) == 0 {
		return nil, nil
	}

	merged := mergeStream(stream)
	var best *seis.Trace
	for i := range merged {
		tr := merged[i]
		if tr.SampleRate > 0 && float64(len(tr.Data)) > 3600*tr.SampleRate {
			best = &merged[i]
			break
		}
	}
	if best == nil {
		return nil, nil
	}

	est, err := psd.Estimate(*best)
	if err != nil {
		return nil, nil
	}

	if art.NpzPath != "" {
		path := fmt.Sprintf("%s_%s.npz", art.NpzPath, best.ID())
		if err := psd.Serialize(est, path); err != nil {
			return nil, fmt.Errorf("computePPSD: serialize %s: %w", path, err)
		}
	}
	if art.PlotPath != "" {
		if err := plot.PPSD(best.ID(), est, art.PlotPath); err != nil {
			return nil, fmt.Errorf("computePPSD: plot: %w", err)
		}
	}

	percentile := est.Percentile.FilterMaxPeriod(ppsdMaxPeriod)
	meanCurve := est.Mean.FilterMaxPeriod(ppsdMaxPeriod)
	if len(percentile.Period) == 0 {
		return nil, nil
	}

	nhnm, nlnm, idx := noise.Evaluate(percentile.Period)
	if len(idx) == 0 {
		return nil, nil
	}
	Tp := percentile.Select(idx)
	nhnmSel := selectFloats(nhnm, idx)
	nlnmSel := selectFloats(nlnm, idx)

	pctH := fractionAbove(Tp.Power, nhnmSel)
	pctL := fractionBelow(Tp.Power, nlnmSel)

	bandLong := bandPct(Tp, nhnmSel, nlnmSel, BandLong)
	bandMicro := bandPct(Tp, nhnmSel, nlnmSel, BandMicro)
	bandShort := bandPct(Tp, nhnmSel, nlnmSel, BandShort)

	dcg := computeDCG(Tp, nlnmSel)
	dcl := computeDCL(meanCurve, best.SampleRate)

	return &PPSD{
		PctH:      round2(pctH),
		PctL:      round2(pctL),
		BandLong:  round2(bandLong),
		BandMicro: round2(bandMicro),
		BandShort: round2(bandShort),
		DCG:       dcg,
		DCL:       dcl,
	}, nil
}

func mergeStream(s seis.Stream) seis.Stream {
	byID := map[string][]seis.Trace{}
	for _, tr := range s {
		byID[tr.ID()] = append(byID[tr.ID()], tr)
	}
	out := make(seis.Stream, 0, len(byID))
	for _, traces := range byID {
		sort.Slice(traces, func(i, j int) bool {
			return traces[i].StartTime.Before(traces[j].StartTime)
		})
		merged := traces[0]
		for _, t := range traces[1:] {
			merged.Data = append(merged.Data, t.Data...)
		}
		out = append(out, merged)
	}
	return out
}

func selectFloats(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}

func fractionAbove(p, model []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	n := 0
	for i := range p {
		if p[i] > model[i] {
			n++
		}
	}
	return 100 * float64(n) / float64(len(p))
}

func fractionBelow(p, model []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	n := 0
	for i := range p {
		if p[i] < model[i] {
			n++
		}
	}
	return 100 * float64(n) / float64(len(p))
}

// bandPct restricts Tp to (t0,t1) and reports the percentage of those
// samples falling inside [NLNM, NHNM], per SPEC_FULL.md §4.3 step 7.
func bandPct(Tp psd.Curve, nhnm, nlnm []float64, band Band) float64 {
	total := 0
	inside := 0
	for i, t := range Tp.Period {
		if !(t > band.Lo && t < band.Hi) {
			continue
		}
		total++
		if Tp.Power[i] >= nlnm[i] && Tp.Power[i] <= nhnm[i] {
			inside++
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(inside) / float64(total)
}

// computeDCG flags a dead channel when the 4-8s band mean(NLNM-P) exceeds
// dcgThresholdDB, per SPEC_FULL.md §4.3 step 8.
func computeDCG(Tp psd.Curve, nlnm []float64) int {
	var diffs []float64
	for i, t := range Tp.Period {
		if t >= dcgBandLo && t <= dcgBandHi {
			diffs = append(diffs, nlnm[i]-Tp.Power[i])
		}
	}
	if len(diffs) == 0 {
		return 0
	}
	if stat.Mean(diffs, nil) > dcgThresholdDB {
		return 1
	}
	return 0
}

// computeDCL fits a line to (log10(T), P) on the mean curve restricted to
// 4/fs < T < 100 and returns the fit RMSE, per SPEC_FULL.md §4.3 step 9.
func computeDCL(mean psd.Curve, fs float64) float64 {
	if fs <= 0 {
		return 0
	}
	lo := 4 / fs
	restricted := mean.FilterRange(lo, ppsdMaxPeriod)
	if len(restricted.Period) < 2 {
		return 0
	}
	x := make([]float64, len(restricted.Period))
	for i, t := range restricted.Period {
		x[i] = math.Log10(t)
	}
	y := restricted.Power
	alpha, beta := stat.LinearRegression(x, y, nil, false)

	var sumSq float64
	for i := range x {
		fit := alpha + beta*x[i]
		d := fit - y[i]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
