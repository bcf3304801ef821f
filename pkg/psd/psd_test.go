package psd

import (
	"math"
	"testing"
	"time"

	"github.com/jihwankim/sqes/pkg/seis"
)

func sineTrace(rate float64, hours float64) seis.Trace {
	n := int(rate * 3600 * hours)
	data := make([]float64, n)
	freq := 1.0 // Hz
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return seis.Trace{
		Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ",
		SampleRate: rate, StartTime: time.Now(), Data: data,
	}
}

func TestEstimateInsufficientData(t *testing.T) {
	tr := sineTrace(20, 0.1)
	if _, err := Estimate(tr); err != ErrInsufficientData {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEstimateEmptyTrace(t *testing.T) {
	if _, err := Estimate(seis.Trace{SampleRate: 20}); err != ErrInsufficientData {
		t.Fatalf("expected ErrInsufficientData for empty trace, got %v", err)
	}
}

func TestEstimateZeroSampleRate(t *testing.T) {
	tr := seis.Trace{Data: []float64{1, 2, 3}}
	if _, err := Estimate(tr); err != ErrInsufficientData {
		t.Fatalf("expected ErrInsufficientData for zero sample rate, got %v", err)
	}
}

func TestEstimateProducesMatchedLengthCurves(t *testing.T) {
	tr := sineTrace(20, 3)
	ppsd, err := Estimate(tr)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if ppsd.NumSegments == 0 {
		t.Fatal("expected at least one segment")
	}
	if len(ppsd.Mean.Period) != len(ppsd.Mean.Power) {
		t.Fatalf("mean curve length mismatch: %d periods, %d power", len(ppsd.Mean.Period), len(ppsd.Mean.Power))
	}
	if len(ppsd.Percentile.Period) != len(ppsd.Mean.Period) {
		t.Fatalf("percentile/mean curve length mismatch")
	}
	if ppsd.TraceID != tr.ID() {
		t.Fatalf("TraceID = %q, want %q", ppsd.TraceID, tr.ID())
	}
}

func TestCurveFilterMaxPeriod(t *testing.T) {
	c := Curve{Period: []float64{1, 10, 100, 1000}, Power: []float64{-1, -2, -3, -4}}
	filtered := c.FilterMaxPeriod(100)
	if len(filtered.Period) != 3 {
		t.Fatalf("expected 3 periods <= 100, got %d", len(filtered.Period))
	}
}

func TestCurveFilterRange(t *testing.T) {
	c := Curve{Period: []float64{1, 10, 100, 1000}, Power: []float64{-1, -2, -3, -4}}
	filtered := c.FilterRange(5, 500)
	if len(filtered.Period) != 2 {
		t.Fatalf("expected 2 periods in (5,500), got %d", len(filtered.Period))
	}
	if filtered.Period[0] != 10 || filtered.Period[1] != 100 {
		t.Fatalf("unexpected filtered periods: %v", filtered.Period)
	}
}

func TestCurveSelect(t *testing.T) {
	c := Curve{Period: []float64{1, 2, 3}, Power: []float64{-1, -2, -3}}
	sel := c.Select([]int{2, 0})
	if sel.Period[0] != 3 || sel.Period[1] != 1 {
		t.Fatalf("unexpected selection: %v", sel.Period)
	}
	if sel.Power[0] != -3 || sel.Power[1] != -1 {
		t.Fatalf("unexpected selection power: %v", sel.Power)
	}
}
