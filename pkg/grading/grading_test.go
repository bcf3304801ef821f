package grading

import (
	"testing"

	"github.com/jihwankim/sqes/pkg/sqes/model"
)

func TestGradeBoundaries(t *testing.T) {
	if g := Grade(100, 100, 10); g != 100 {
		t.Errorf("grade(L,L,M) = %v, want 100", g)
	}
	if g := Grade(110, 100, 10); g != 85 {
		t.Errorf("grade(L+M,L,M) = %v, want 85", g)
	}
	if g := Grade(100+(100.0/15.0)*10, 100, 10); g > 1e-9 {
		t.Errorf("grade at the zero boundary = %v, want ~0", g)
	}
	for _, v := range []float64{-1000, 0, 100, 100000} {
		g := Grade(v, 100, 10)
		if g < 0 || g > 100 {
			t.Errorf("grade(%v,...) = %v out of [0,100]", v, g)
		}
	}
}

func TestScoreAvailabilityZeroIsMati(t *testing.T) {
	th := model.DefaultThresholds()
	in := model.ScoringInput{Component: "Z", Avail: 0}
	r := Score(in, th)
	if r.Score != 0 {
		t.Fatalf("score = %v, want 0", r.Score)
	}
	if len(r.Warnings) != 1 || r.Warnings[0] != "Komponen Z Mati" {
		t.Fatalf("warnings = %v", r.Warnings)
	}
}

func TestScoreDeadChannelSentinel(t *testing.T) {
	th := model.DefaultThresholds()
	in := model.ScoringInput{Component: "N", Avail: 50, DCG: 1}
	r := Score(in, th)
	if r.Score != 1 {
		t.Fatalf("score = %v, want sentinel 1", r.Score)
	}
}

func TestScoreDamagedRMS(t *testing.T) {
	th := model.DefaultThresholds()
	in := model.ScoringInput{Component: "E", Avail: 80, RMS: 0.5, DCL: 10}
	r := Score(in, th)
	if r.Score != 1 {
		t.Fatalf("score = %v, want sentinel 1 for damaged rms", r.Score)
	}
}

// TestWarningRules exercises spec.md §8 scenario 4: avail=95, ngap=10,
// nover=2, nSpikes=30, pctAbove=25, pctBelow=5 should fire gaps, noise, and
// spikes warnings but not metadata, overlaps.
func TestWarningRulesScenario4(t *testing.T) {
	th := model.DefaultThresholds()
	in := model.ScoringInput{
		Component: "Z",
		Avail:     95,
		NGap:      10,
		NOver:     2,
		NSpikes:   30,
		PctAbove:  25,
		PctBelow:  5,
		RMS:       100,
		RatioAmp:  1.5,
		DCL:       8,
		DCG:       0,
	}
	r := Score(in, th)

	want := map[string]bool{
		"Cek metadata komponen Z":                 false,
		"Terlalu banyak gap pada komponen Z":       true,
		"Terlalu banyak overlap pada komponen Z":   false,
		"Noise tinggi di komponen Z":               true,
		"Spike berlebihan pada komponen Z":         true,
	}
	got := map[string]bool{}
	for _, w := range r.Warnings {
		got[w] = true
	}
	for msg, expect := range want {
		if got[msg] != expect {
			t.Errorf("warning %q fired=%v, want %v", msg, got[msg], expect)
		}
	}
}

func TestScoreStationSentinelCapsAtPoorMax(t *testing.T) {
	th := model.DefaultThresholds()
	channels := []ChannelResult{
		{Component: "E", Score: 92},
		{Component: "N", Score: 88},
		{Component: "Z", Score: 1.0},
	}
	r := ScoreStation(channels, th)
	if r.Score > th.PoorMaxScore {
		t.Fatalf("score = %v, want capped at <= %v", r.Score, th.PoorMaxScore)
	}
	if r.Classification != model.ClassBuruk {
		t.Fatalf("classification = %v, want Buruk", r.Classification)
	}
}

// TestScoreStationAllDeadIsMati mirrors spec.md §8 scenario 6.
func TestScoreStationAllDeadIsMati(t *testing.T) {
	th := model.DefaultThresholds()
	var channels []ChannelResult
	for _, c := range []string{"E", "N", "Z"} {
		in := model.ScoringInput{Component: c, Avail: 0}
		channels = append(channels, Score(in, th))
	}
	r := ScoreStation(channels, th)
	if r.Score != 0 {
		t.Fatalf("score = %v, want 0", r.Score)
	}
	if r.Classification != model.ClassMati {
		t.Fatalf("classification = %v, want Mati", r.Classification)
	}
	for _, c := range []string{"E", "N", "Z"} {
		found := false
		for _, w := range r.Warnings {
			if w == "Komponen "+c+" Mati" {
				found = true
			}
		}
		if !found {
			t.Errorf("missing warning for component %s", c)
		}
	}
}

func TestPercentile25BetweenMinAndMedian(t *testing.T) {
	th := model.DefaultThresholds()
	channels := []ChannelResult{{Score: 10}, {Score: 50}, {Score: 90}}
	r := ScoreStation(channels, th)
	if r.Score < 10 || r.Score > 50 {
		t.Fatalf("percentile_25 = %v, want within [min, median] = [10, 50]", r.Score)
	}
}
