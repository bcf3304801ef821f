// Package seis holds the minimal in-process waveform and instrument-response
// representation the metrics kernels operate on: a structural stand-in for
// the Stream/Trace/Inventory types of the upstream seismology toolkit the
// data clients (pkg/clients) and PSD estimator (pkg/psd) are built against.
// Their exact shape is an implementation detail; spec.md treats waveform and
// response data as opaque payloads produced by the clients and consumed by
// the metrics kernels.
package seis

import "time"

// Trace is one continuous, single-channel time series.
type Trace struct {
	Network    string
	Station    string
	Location   string
	Channel    string // e.g. "BHZ"
	SampleRate float64
	StartTime  time.Time
	Data       []float64
}

// ID returns the NET.STA.LOC.CHAN identifier.
func (t Trace) ID() string {
	return t.Network + "." + t.Station + "." + t.Location + "." + t.Channel
}

// EndTime is the time of the last sample, derived from SampleRate.
func (t Trace) EndTime() time.Time {
	if len(t.Data) == 0 || t.SampleRate <= 0 {
		return t.StartTime
	}
	return t.StartTime.Add(time.Duration(float64(len(t.Data)-1) / t.SampleRate * float64(time.Second)))
}

// Stream is an ordered collection of traces, possibly spanning gaps and
// overlaps, for a single channel across the acquisition window.
type Stream []Trace

// Gap is one inter-trace interval: Duration > 0 is a genuine gap, Duration
// <= 0 is an overlap (the traces cover overlapping time spans).
type Gap struct {
	Duration time.Duration
}

// Gaps reports the inter-trace intervals between consecutive traces sorted
// by start time, mirroring the upstream toolkit's get_gaps() contract: one
// entry between every adjacent pair of traces in the same stream.
func (s Stream) Gaps() []Gap {
	if len(s) < 2 {
		return nil
	}
	sorted := make([]Trace, len(s))
	copy(sorted, s)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].StartTime.Before(sorted[j-1].StartTime); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	gaps := make([]Gap, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		delta := sorted[i].StartTime.Sub(sorted[i-1].EndTime())
		gaps = append(gaps, Gap{Duration: delta})
	}
	return gaps
}

// Span returns the earliest trace start time and latest trace end time.
func (s Stream) Span() (start, end time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = s[0].StartTime, s[0].EndTime()
	for _, tr := range s[1:] {
		if tr.StartTime.Before(start) {
			start = tr.StartTime
		}
		if tr.EndTime().After(end) {
			end = tr.EndTime()
		}
	}
	return start, end, true
}

// NumSamples returns the total number of samples across all traces.
func (s Stream) NumSamples() int {
	n := 0
	for _, tr := range s {
		n += len(tr.Data)
	}
	return n
}

// SampleRate returns the sample rate of the first trace carrying one, 0 if
// the stream is empty or every trace is unsampled.
func (s Stream) SampleRate() float64 {
	for _, tr := range s {
		if tr.SampleRate > 0 {
			return tr.SampleRate
		}
	}
	return 0
}

// Epoch is one instrument-response validity interval for a channel.
type Epoch struct {
	Location  string
	Channel   string
	StartTime time.Time
	EndTime   time.Time // zero value means open-ended
	// SensitivityDB is the overall instrument sensitivity used to reason
	// about dead-channel flags when no richer response detail is available.
	SensitivityDB float64
}

// Inventory is the response metadata for one station, possibly carrying
// several epochs for the same channel.
type Inventory struct {
	Network string
	Station string
	Epochs  []Epoch
}

// EpochAt returns the epoch covering at, restricted to (loc, chan), or the
// last listed epoch for (loc, chan) if none covers at — mirroring the local
// inventory client's epoch-then-fallback select contract (SPEC_FULL.md §4.4).
func (inv Inventory) EpochAt(loc, chan_ string, at time.Time) (Epoch, bool) {
	var fallback Epoch
	haveFallback := false
	for _, e := range inv.Epochs {
		if e.Location != loc || e.Channel != chan_ {
			continue
		}
		haveFallback = true
		fallback = e
		if !at.Before(e.StartTime) && (e.EndTime.IsZero() || at.Before(e.EndTime)) {
			return e, true
		}
	}
	return fallback, haveFallback
}
