package plot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jihwankim/sqes/pkg/psd"
	"github.com/jihwankim/sqes/pkg/seis"
)

func TestSignalWritesPNG(t *testing.T) {
	tr := seis.Trace{
		Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ",
		SampleRate: 20, StartTime: time.Now(),
		Data: []float64{0, 1, 0, -1, 0, 1, 0, -1},
	}
	path := filepath.Join(t.TempDir(), "signal.png")

	if err := Signal(tr, path); err != nil {
		t.Fatalf("Signal: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty PNG output")
	}
}

func TestPPSDWritesPNG(t *testing.T) {
	curves := &psd.PPSD{
		TraceID:    "IU.ANMO.00.BHZ",
		SampleRate: 20,
		Percentile: psd.Curve{Period: []float64{1, 10, 100}, Power: []float64{-100, -110, -120}},
		Mean:       psd.Curve{Period: []float64{1, 10, 100}, Power: []float64{-105, -112, -118}},
	}
	path := filepath.Join(t.TempDir(), "ppsd.png")

	if err := PPSD(curves.TraceID, curves, path); err != nil {
		t.Fatalf("PPSD: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty PNG output")
	}
}
