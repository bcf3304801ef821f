package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/jihwankim/sqes/pkg/seis"
	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// TestComputeBasicScenario2 mirrors spec.md §8 scenario 2: a single trace
// [0,1,2,3,4,5] over a 24h window.
func TestComputeBasicScenario2(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 1, 0, time.UTC)
	tr := seis.Trace{
		Network: "IA", Station: "JAGI", Location: "00", Channel: "BHZ",
		SampleRate: 1, StartTime: start,
		Data: []float64{0, 1, 2, 3, 4, 5},
	}
	window := model.DayWindow(start)
	b := ComputeBasic(seis.Stream{tr}, window, EfficientSpikeEngine)

	if !closeTo(b.RMS, 1.71, 0.01) {
		t.Errorf("rms = %v, want ~1.71", b.RMS)
	}
	if b.RatioAmp != 1.0 {
		t.Errorf("ratioamp = %v, want 1.0 (ampMin=0 special case)", b.RatioAmp)
	}
	if b.NGap != 0 || b.NOver != 0 {
		t.Errorf("ngap=%d nover=%d, want 0,0 for single trace", b.NGap, b.NOver)
	}
	if b.NSpikes != 0 {
		t.Errorf("nSpikes = %d, want 0", b.NSpikes)
	}
	if b.Availability <= 0 || b.Availability > 1 {
		t.Errorf("availability = %v, want a small fraction of a percent", b.Availability)
	}
}

func TestAvailabilityCapsAt100(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	window := model.DayWindow(start)
	tr := seis.Trace{SampleRate: 1, StartTime: start, Data: make([]float64, 86400+10)}
	b := ComputeBasic(seis.Stream{tr}, window, EfficientSpikeEngine)
	if b.Availability != 100 {
		t.Errorf("availability = %v, want capped at 100", b.Availability)
	}
}

func TestEmptyStreamYieldsZeroedMetrics(t *testing.T) {
	window := model.DayWindow(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	b := ComputeBasic(seis.Stream{}, window, EfficientSpikeEngine)
	if b.RMS != 0 || b.Availability != 0 || b.RatioAmp != 0 {
		t.Errorf("empty stream metrics = %+v, want all zero", b)
	}
}

func TestRatioAmpInvariant(t *testing.T) {
	tr := seis.Trace{SampleRate: 1, Data: []float64{-10, 3, 7, -2}}
	r := ratioAmp(seis.Stream{tr})
	if r != 0 && r < 1.0 {
		t.Errorf("ratioamp = %v, want 0 or >= 1.0", r)
	}
}

func closeTo(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

var _ = math.NaN
