package scrapers

import "testing"

func TestParseLatencyDuration(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantOK  bool
	}{
		{"0", 0, true},
		{"NA", 0, false},
		{"", 0, false},
		{"5m", 300, true},
		{"1h5m12s", 3912, true},
		{"1d", 86400, true},
		{"garbage", 0, false},
	}
	for _, c := range cases {
		got, ok := parseLatencyDuration(c.in)
		if ok != c.wantOK {
			t.Fatalf("parseLatencyDuration(%q) ok = %v, want %v", c.in, ok, c.wantOK)
		}
		if ok && got != c.want {
			t.Fatalf("parseLatencyDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPropStringMissingKey(t *testing.T) {
	props := map[string]any{"sta": "JAGI"}
	if got := propString(props, "sta"); got != "JAGI" {
		t.Fatalf("propString = %q, want JAGI", got)
	}
	if got := propString(props, "missing"); got != "" {
		t.Fatalf("propString(missing) = %q, want empty", got)
	}
}
