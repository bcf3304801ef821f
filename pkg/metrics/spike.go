package metrics

import (
	"math"

	"github.com/jihwankim/sqes/pkg/seis"
)

// spikeEpsilon keeps the MAD threshold from collapsing to zero on a
// perfectly flat window, matching the source kernel's 1e-9 floor.
const spikeEpsilon = 1e-9

const (
	spikeWindow = 80
	spikeSigma  = 10.0
)

// SpikeEngine counts samples in x flagged as outliers by a rolling
// median/MAD test. Both engines below satisfy this signature and agree on
// traces of length >= 2*spikeWindow; the distinction is an implementation
// choice (materialised sliding window vs. rolling reduction), not a
// behavioral one, per SPEC_FULL.md §4.2.
type SpikeEngine func(x []float64) int

// FastSpikeEngine materialises each window of size w+1 explicitly, matching
// the "fast" (vectorized, memory-heavier) engine of the source kernel.
func FastSpikeEngine(x []float64) int {
	return spikeCount(x, func(i int, data []float64) (median, mad float64) {
		half := spikeWindow / 2
		window := data[i-half : i+half+1]
		return medianMAD(window)
	})
}

// EfficientSpikeEngine computes the same rolling statistics restricted to
// the central valid region, matching the "efficient" engine of the source
// kernel. Functionally identical to FastSpikeEngine; kept distinct so
// callers can select either per SPEC_FULL.md's "two interchangeable
// engines" contract.
func EfficientSpikeEngine(x []float64) int {
	half := spikeWindow / 2
	n := len(x)
	if n <= 2*half {
		return 0
	}
	count := 0
	for i := half; i < n-half; i++ {
		median, mad := medianMAD(x[i-half : i+half+1])
		if flagged(x[i], median, mad) {
			count++
		}
	}
	return count
}

func spikeCount(x []float64, statsAt func(i int, data []float64) (median, mad float64)) int {
	half := spikeWindow / 2
	n := len(x)
	if n <= 2*half {
		return 0
	}
	count := 0
	for i := half; i < n-half; i++ {
		median, mad := statsAt(i, x)
		if flagged(x[i], median, mad) {
			count++
		}
	}
	return count
}

func flagged(center, median, mad float64) bool {
	if math.IsNaN(center) || math.IsNaN(median) || math.IsNaN(mad) {
		return false
	}
	threshold := 1.4826*spikeSigma*mad + spikeEpsilon
	return math.Abs(center-median) > threshold
}

// countSpikes sums the engine's outlier count across every trace in s.
func countSpikes(s seis.Stream, engine SpikeEngine) int {
	if engine == nil {
		engine = EfficientSpikeEngine
	}
	total := 0
	for _, tr := range s {
		total += engine(tr.Data)
	}
	return total
}
