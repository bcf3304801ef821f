package seis

import (
	"testing"
	"time"
)

func mkTrace(station string, start time.Time, rate float64, n int) Trace {
	data := make([]float64, n)
	return Trace{Network: "IU", Station: station, Location: "00", Channel: "BHZ", SampleRate: rate, StartTime: start, Data: data}
}

func TestTraceID(t *testing.T) {
	tr := Trace{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	if got, want := tr.ID(), "IU.ANMO.00.BHZ"; got != want {
		t.Fatalf("ID() = %q, want %q", got, want)
	}
}

func TestTraceEndTime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := mkTrace("ANMO", start, 10, 101)
	if got, want := tr.EndTime(), start.Add(10*time.Second); !got.Equal(want) {
		t.Fatalf("EndTime() = %v, want %v", got, want)
	}
}

func TestTraceEndTimeEmpty(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := Trace{StartTime: start, SampleRate: 10}
	if got := tr.EndTime(); !got.Equal(start) {
		t.Fatalf("EndTime() on empty trace = %v, want %v", got, start)
	}
}

func TestStreamGaps(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// second trace is out of order in the slice to exercise the sort.
	second := mkTrace("ANMO", base.Add(20*time.Second), 10, 101)
	first := mkTrace("ANMO", base, 10, 101)
	s := Stream{second, first}

	gaps := s.Gaps()
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].Duration != 10*time.Second {
		t.Fatalf("gap duration = %v, want 10s", gaps[0].Duration)
	}
}

func TestStreamGapsOverlap(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := mkTrace("ANMO", base, 10, 101)
	second := mkTrace("ANMO", base.Add(5*time.Second), 10, 101)
	gaps := Stream{first, second}.Gaps()
	if len(gaps) != 1 || gaps[0].Duration >= 0 {
		t.Fatalf("expected a negative-duration overlap, got %+v", gaps)
	}
}

func TestStreamGapsSingleTrace(t *testing.T) {
	if got := (Stream{mkTrace("ANMO", time.Now(), 10, 5)}).Gaps(); got != nil {
		t.Fatalf("expected nil gaps for single-trace stream, got %v", got)
	}
}

func TestStreamSpan(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := mkTrace("ANMO", base, 10, 101)
	second := mkTrace("ANMO", base.Add(20*time.Second), 10, 101)
	start, end, ok := Stream{first, second}.Span()
	if !ok {
		t.Fatal("expected ok")
	}
	if !start.Equal(base) {
		t.Fatalf("start = %v, want %v", start, base)
	}
	if !end.Equal(second.EndTime()) {
		t.Fatalf("end = %v, want %v", end, second.EndTime())
	}
}

func TestStreamSpanEmpty(t *testing.T) {
	_, _, ok := Stream{}.Span()
	if ok {
		t.Fatal("expected ok=false for empty stream")
	}
}

func TestStreamNumSamples(t *testing.T) {
	s := Stream{mkTrace("ANMO", time.Now(), 10, 50), mkTrace("ANMO", time.Now(), 10, 25)}
	if got := s.NumSamples(); got != 75 {
		t.Fatalf("NumSamples() = %d, want 75", got)
	}
}

func TestStreamSampleRate(t *testing.T) {
	s := Stream{Trace{}, mkTrace("ANMO", time.Now(), 40, 1)}
	if got := s.SampleRate(); got != 40 {
		t.Fatalf("SampleRate() = %v, want 40", got)
	}
}

func TestStreamSampleRateAllUnsampled(t *testing.T) {
	if got := (Stream{Trace{}, Trace{}}).SampleRate(); got != 0 {
		t.Fatalf("SampleRate() = %v, want 0", got)
	}
}

func TestInventoryEpochAtExactMatch(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inv := Inventory{
		Network: "IU",
		Station: "ANMO",
		Epochs: []Epoch{
			{Location: "00", Channel: "BHZ", StartTime: base, EndTime: base.AddDate(1, 0, 0), SensitivityDB: 1.0},
			{Location: "00", Channel: "BHZ", StartTime: base.AddDate(1, 0, 0), SensitivityDB: 2.0},
		},
	}

	e, ok := inv.EpochAt("00", "BHZ", base.AddDate(0, 6, 0))
	if !ok || e.SensitivityDB != 1.0 {
		t.Fatalf("EpochAt mid-first-epoch = %+v, %v", e, ok)
	}

	e, ok = inv.EpochAt("00", "BHZ", base.AddDate(2, 0, 0))
	if !ok || e.SensitivityDB != 2.0 {
		t.Fatalf("EpochAt open-ended epoch = %+v, %v", e, ok)
	}
}

func TestInventoryEpochAtFallback(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inv := Inventory{
		Epochs: []Epoch{
			{Location: "00", Channel: "BHZ", StartTime: base, EndTime: base.AddDate(0, 1, 0)},
		},
	}
	// Query time before any epoch start: no covering epoch, fall back to the
	// last-seen epoch for the channel.
	e, ok := inv.EpochAt("00", "BHZ", base.AddDate(-1, 0, 0))
	if !ok || e.Location != "00" {
		t.Fatalf("EpochAt fallback = %+v, %v", e, ok)
	}
}

func TestInventoryEpochAtNoMatch(t *testing.T) {
	inv := Inventory{Epochs: []Epoch{{Location: "00", Channel: "BHZ", StartTime: time.Now()}}}
	_, ok := inv.EpochAt("10", "BHN", time.Now())
	if ok {
		t.Fatal("expected no match for unknown location/channel")
	}
}
