// Package model holds the persisted and transient data shapes shared by the
// quality-evaluation pipeline: stations, per-channel detail rows, per-station
// analysis rows, and the threshold bundle consumed by the grading engine.
package model

import (
	"fmt"
	"time"
)

// Channel is a band/instrument prefix paired with a component code, e.g.
// prefix "BH" + component "Z" forms channel "BHZ".
type Channel struct {
	Prefix    string
	Component string
}

func (c Channel) String() string {
	return c.Prefix + c.Component
}

// prefixRank orders channel prefixes by the fixed preference SH < BH < HH <
// HN < other, per the station descriptor invariant.
var prefixRank = map[string]int{
	"SH": 0,
	"BH": 1,
	"HH": 2,
	"HN": 3,
}

// PrefixRank returns the sort rank of a two-letter channel prefix; unknown
// prefixes all share one rank after the known ones, so it does not order
// them among themselves.
func PrefixRank(prefix string) int {
	if r, ok := prefixRank[prefix]; ok {
		return r
	}
	return len(prefixRank)
}

// Station describes one seismic station and the channels it is expected to
// offer. Both ChannelPrefixes and ChannelComponents must be non-empty for the
// station to be processable; otherwise the worker emits three default rows.
type Station struct {
	Network           string
	Code              string
	Location          string
	Group             string
	ChannelPrefixes   []string
	ChannelComponents []string
}

// Processable reports whether the station carries enough catalog metadata to
// attempt real acquisition.
func (s Station) Processable() bool {
	return len(s.ChannelPrefixes) > 0 && len(s.ChannelComponents) > 0
}

// TimeWindow is a half-open [Start, End) interval, used as the fixed daily
// acquisition window and for PPSD sample-count gating.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Duration returns End-Start.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// DayWindow returns the fixed [00:00:00, 24:00:00) UTC window for the
// calendar day containing t.
func DayWindow(t time.Time) TimeWindow {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: start, End: start.Add(24 * time.Hour)}
}

// DetailRow is one per (station, date, channel component). Id is
// station_component_date, e.g. "JAGI.E.20260115".
type DetailRow struct {
	ID           string
	Station      string
	Date         time.Time
	Channel      string // single-character component: E, N, Z, 1, 2, ...
	RMS          float64
	RatioAmp     float64
	Availability float64
	NGap         int
	NOver        int
	NSpikes      int
	PctAbove     float64
	PctBelow     float64
	DCL          float64
	DCG          int
	BandPctLong  float64
	BandPctMicro float64
	BandPctShort float64
}

// DetailID builds the station_component_date identity for a detail row.
func DetailID(station, component string, date time.Time) string {
	return fmt.Sprintf("%s.%s.%s", station, component, date.Format("20060102"))
}

// DefaultDetailRow is the row emitted whenever acquisition or metric
// computation fails for a channel: availability 0, a single forced gap, and
// pctAbove saturated at 100 so the channel reads as entirely noisy/dead.
func DefaultDetailRow(station, component string, date time.Time) DetailRow {
	return DetailRow{
		ID:           DetailID(station, component, date),
		Station:      station,
		Date:         date,
		Channel:      component,
		RMS:          0,
		RatioAmp:     0,
		Availability: 0,
		NGap:         1,
		NOver:        0,
		NSpikes:      0,
		PctAbove:     100,
		PctBelow:     0,
		DCL:          0,
		DCG:          0,
		BandPctLong:  0,
		BandPctMicro: 0,
		BandPctShort: 0,
	}
}

// Classification is the station-level quality verdict vocabulary.
type Classification string

const (
	ClassBaik       Classification = "Baik"
	ClassCukupBaik  Classification = "Cukup Baik"
	ClassBuruk      Classification = "Buruk"
	ClassMati       Classification = "Mati"
)

// AnalysisRow is one per (station, date): the graded, human-readable result.
type AnalysisRow struct {
	Station        string
	Date           time.Time
	Score          float64
	Classification Classification
	Group          string
	Details        []string
}

// ScoringInput is the transient per-channel projection the grading engine
// consumes, derived from a DetailRow.
type ScoringInput struct {
	Component string
	RMS       float64
	RatioAmp  float64
	Avail     float64
	NGap      int
	NOver     int
	NSpikes   int
	PctAbove  float64
	PctBelow  float64
	DCL       float64
	DCG       int
}

// FromDetailRow projects a DetailRow into a ScoringInput.
func FromDetailRow(r DetailRow) ScoringInput {
	return ScoringInput{
		Component: r.Channel,
		RMS:       r.RMS,
		RatioAmp:  r.RatioAmp,
		Avail:     r.Availability,
		NGap:      r.NGap,
		NOver:     r.NOver,
		NSpikes:   r.NSpikes,
		PctAbove:  r.PctAbove,
		PctBelow:  r.PctBelow,
		DCL:       r.DCL,
		DCG:       r.DCG,
	}
}

// Thresholds bundles every tunable the grading engine consumes; see
// SPEC_FULL.md §6.2 [qc_thresholds] for the recognized keys and defaults.
type Thresholds struct {
	RMSLimit               float64
	RatioAmpLimit          float64
	GapLimit               float64
	OverlapLimit           float64
	SpikeLimit             float64
	RMSMargin              float64
	RatioAmpMargin         float64
	GapMargin              float64
	OverlapMargin          float64
	SpikeMargin            float64
	PctBelowWarn           float64
	PctAboveWarn           float64
	GapCountWarn           int
	OverlapCountWarn       int
	SpikeCountWarn         int
	AvailGood              float64
	AvailFair              float64
	AvailMinForNoiseCheck  float64
	DCLDead                float64
	RMSDamagedMax          float64
	FairMaxScore           float64
	PoorMaxScore           float64
	WeightNoise            float64
	WeightAvailability     float64
	WeightRMS              float64
	WeightRatioAmp         float64
	WeightGaps             float64
	WeightOverlaps         float64
	WeightSpikes           float64
}

// DefaultThresholds returns the defaults enumerated in SPEC_FULL.md §6.2.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RMSLimit:              5000,
		RatioAmpLimit:         1.01,
		GapLimit:              0.00274,
		OverlapLimit:          0,
		SpikeLimit:            0,
		RMSMargin:             7500,
		RatioAmpMargin:        2.02,
		GapMargin:             0.992,
		OverlapMargin:         1.25,
		SpikeMargin:           25,
		PctBelowWarn:          20,
		PctAboveWarn:          20,
		GapCountWarn:          5,
		OverlapCountWarn:      5,
		SpikeCountWarn:        25,
		AvailGood:             97,
		AvailFair:             60,
		AvailMinForNoiseCheck: 10,
		DCLDead:               2.25,
		RMSDamagedMax:         1.0,
		FairMaxScore:          89,
		PoorMaxScore:          59,
		WeightNoise:           0.35,
		WeightAvailability:    0.15,
		WeightRMS:             0.10,
		WeightRatioAmp:        0.10,
		WeightGaps:            0.10,
		WeightOverlaps:        0.10,
		WeightSpikes:          0.10,
	}
}

// Validate checks the weights-sum-to-1.0 invariant (tolerance 1e-3).
func (t Thresholds) Validate() error {
	sum := t.WeightNoise + t.WeightAvailability + t.WeightRMS + t.WeightRatioAmp +
		t.WeightGaps + t.WeightOverlaps + t.WeightSpikes
	if sum < 1.0-1e-3 || sum > 1.0+1e-3 {
		return fmt.Errorf("qc_thresholds: weights sum to %.6f, want 1.0 +/- 1e-3", sum)
	}
	return nil
}

// SourceOverride is one parsed record from source.cfg (SPEC_FULL.md §6.3).
type SourceOverride struct {
	Network        string
	Station        string
	WaveformType   string
	WaveformTag    string
	InventoryType  string
	InventoryTag   string
}
