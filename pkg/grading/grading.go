// Package grading implements the per-channel and per-station scoring engine
// of SPEC_FULL.md §4.7: the linear grade function, the per-channel botqc
// cascade, the seven ordered warning rules, and percentile_25 station
// aggregation with sentinel capping.
package grading

import (
	"fmt"
	"sort"

	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// sentinelScore marks a per-channel score as "unresponsive/damaged"; if it
// survives into the station's score multiset, the station score is capped
// at PoorMaxScore regardless of what percentile_25 alone would yield.
const sentinelScore = 1.0

// Grade implements SPEC_FULL.md §4.7.1: clamp(100 - 15*(v-limit)/margin, 0,
// 100). A negative margin inverts the direction, so that larger values
// grade higher.
func Grade(v, limit, margin float64) float64 {
	if margin == 0 {
		margin = 1e-9
	}
	g := 100 - 15*(v-limit)/margin
	if g < 0 {
		return 0
	}
	if g > 100 {
		return 100
	}
	return g
}

// ChannelResult is the per-channel outcome of Score: the botqc value and any
// warning strings it produced.
type ChannelResult struct {
	Component string
	Score     float64
	Warnings  []string
}

// Score computes botqc for one channel per SPEC_FULL.md §4.7's cascade.
func Score(in model.ScoringInput, t model.Thresholds) ChannelResult {
	c := in.Component

	if in.Avail <= 0 {
		return ChannelResult{Component: c, Score: 0, Warnings: []string{fmt.Sprintf("Komponen %s Mati", c)}}
	}
	if in.DCG == 1 || in.DCL <= t.DCLDead {
		return ChannelResult{Component: c, Score: 1, Warnings: []string{fmt.Sprintf("Komponen %s tidak merespon getaran", c)}}
	}
	if in.RMS > 0 && in.RMS < t.RMSDamagedMax {
		return ChannelResult{Component: c, Score: 1, Warnings: []string{fmt.Sprintf("Komponen %s Rusak", c)}}
	}

	avail := in.Avail
	ngap := in.NGap
	if avail >= 100 {
		ngap = 0
		avail = 100
	}

	var rmsGrade float64
	if in.RMS > t.RMSDamagedMax {
		rmsGrade = Grade(absf(in.RMS), t.RMSLimit, t.RMSMargin)
	}
	ratioampGrade := Grade(in.RatioAmp, t.RatioAmpLimit, t.RatioAmpMargin)
	ngapGrade := Grade(float64(ngap), t.GapLimit, t.GapMargin)
	noverGrade := Grade(float64(in.NOver), t.OverlapLimit, t.OverlapMargin)
	spikeGrade := Grade(float64(in.NSpikes), t.SpikeLimit, t.SpikeMargin)

	pctNoise := 100 - in.PctAbove - in.PctBelow

	score := t.WeightNoise*pctNoise + t.WeightAvailability*avail +
		t.WeightRMS*rmsGrade + t.WeightRatioAmp*ratioampGrade +
		t.WeightGaps*ngapGrade + t.WeightOverlaps*noverGrade +
		t.WeightSpikes*spikeGrade

	warnings := warningRules(in, avail, t)

	if len(warnings) > 0 {
		switch {
		case avail >= t.AvailFair && avail < t.AvailGood:
			if score > t.FairMaxScore {
				score = t.FairMaxScore
			}
		case avail > 0 && avail < t.AvailFair:
			if score > t.PoorMaxScore {
				score = t.PoorMaxScore
			}
		}
	}

	return ChannelResult{Component: c, Score: score, Warnings: warnings}
}

// warningRules evaluates the seven fixed-order rules of SPEC_FULL.md
// §4.7.2; every rule that matches fires, none are mutually exclusive.
func warningRules(in model.ScoringInput, avail float64, t model.Thresholds) []string {
	c := in.Component
	var w []string
	if in.PctBelow > t.PctBelowWarn {
		w = append(w, fmt.Sprintf("Cek metadata komponen %s", c))
	}
	if in.NGap > t.GapCountWarn {
		w = append(w, fmt.Sprintf("Terlalu banyak gap pada komponen %s", c))
	}
	if in.NOver > t.OverlapCountWarn {
		w = append(w, fmt.Sprintf("Terlalu banyak overlap pada komponen %s", c))
	}
	if in.PctAbove > t.PctAboveWarn && avail >= t.AvailMinForNoiseCheck {
		w = append(w, fmt.Sprintf("Noise tinggi di komponen %s", c))
	}
	if in.NSpikes > t.SpikeCountWarn {
		w = append(w, fmt.Sprintf("Spike berlebihan pada komponen %s", c))
	}
	if avail >= t.AvailFair && avail < t.AvailGood {
		w = append(w, fmt.Sprintf("Availability rendah pada komponen %s", c))
	}
	if avail > 0 && avail < t.AvailFair {
		w = append(w, fmt.Sprintf("Availability sangat rendah pada komponen %s", c))
	}
	return w
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// StationResult bundles the station-level score, classification, and the
// concatenated warning list of SPEC_FULL.md §4.7.
type StationResult struct {
	Score          float64
	Classification model.Classification
	Warnings       []string
}

// ScoreStation applies percentile_25 aggregation and sentinel capping over a
// station's per-channel results, then classifies the result.
func ScoreStation(channels []ChannelResult, t model.Thresholds) StationResult {
	if len(channels) == 0 {
		return StationResult{Score: 0, Classification: model.ClassMati}
	}

	scores := make([]float64, len(channels))
	hasSentinel := false
	var warnings []string
	for i, ch := range channels {
		scores[i] = ch.Score
		if ch.Score == sentinelScore {
			hasSentinel = true
		}
		warnings = append(warnings, ch.Warnings...)
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	// percentile_25 with linear interpolation between the two closest ranks
	// (numpy.percentile's default).
	pos := 0.25 * float64(len(sorted)-1)
	lo := int(pos)
	score := sorted[lo]
	if lo+1 < len(sorted) {
		score += (pos - float64(lo)) * (sorted[lo+1] - sorted[lo])
	}

	if hasSentinel && score > t.PoorMaxScore {
		score = t.PoorMaxScore
	}

	return StationResult{
		Score:          score,
		Classification: classify(score),
		Warnings:       warnings,
	}
}

func classify(score float64) model.Classification {
	switch {
	case score == 0:
		return model.ClassMati
	case score >= 90:
		return model.ClassBaik
	case score >= 60:
		return model.ClassCukupBaik
	default:
		return model.ClassBuruk
	}
}
