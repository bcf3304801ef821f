package noise

import "testing"

func TestEvaluateCanonical(t *testing.T) {
	nhnm, nlnm, idx := Evaluate([]float64{1.0, 10.0})
	if len(idx) != 2 {
		t.Fatalf("expected both periods valid, got valid idx %v", idx)
	}
	wantNHNM := []float64{-116.85, -115.79}
	wantNLNM := []float64{-166.40, -163.75}
	for i := range wantNHNM {
		if !closeTo(nhnm[i], wantNHNM[i], 1e-2) {
			t.Errorf("NHNM[%d] = %v, want %v", i, nhnm[i], wantNHNM[i])
		}
		if !closeTo(nlnm[i], wantNLNM[i], 1e-2) {
			t.Errorf("NLNM[%d] = %v, want %v", i, nlnm[i], wantNLNM[i])
		}
	}
}

func TestEvaluateOutOfRange(t *testing.T) {
	_, _, idx := Evaluate([]float64{0.01, 200000})
	if len(idx) != 0 {
		t.Fatalf("expected no valid indices for out-of-range periods, got %v", idx)
	}
}

func TestEvaluateMixedRange(t *testing.T) {
	_, _, idx := Evaluate([]float64{0.01, 1.0, 200000})
	if len(idx) != 1 || idx[0] != 1 {
		t.Fatalf("expected only index 1 valid, got %v", idx)
	}
}

func closeTo(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
