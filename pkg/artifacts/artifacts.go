// Package artifacts writes the per-day, per-channel output files of
// SPEC_FULL.md §6.4: the exported waveform, the signal plot, the PSD plot,
// and (when requested) the serialized PPSD matrix. Directory creation
// follows the teacher's reporting.Storage pattern (MkdirAll once per base
// directory, predictable filenames, logged on write).
package artifacts

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jihwankim/sqes/pkg/plot"
	"github.com/jihwankim/sqes/pkg/seis"
)

// Dirs bundles the four configurable output roots of the [basic] config
// section. Any entry left empty suppresses that artifact.
type Dirs struct {
	MSEED  string
	Signal string
	PDF    string
	PSD    string
}

// Writer persists artifacts for one station/day under Dirs.
type Writer struct {
	Dirs Dirs
}

func dayDir(root string, date time.Time) string {
	return filepath.Join(root, date.Format("20060102"))
}

// WriteMSEED exports tr to <MSEED>/<D>/<code>_<comp>.mseed, encoded with the
// same little-endian (sampleRate, startUnixNanos, count, samples) layout
// pkg/clients/sds_waveform.go reads back — a stand-in for a real miniSEED
// writer, since the archive's own wire encoding is out of scope.
func (w *Writer) WriteMSEED(tr seis.Trace, code, component string, date time.Time) (string, error) {
	if w.Dirs.MSEED == "" {
		return "", nil
	}
	dir := dayDir(w.Dirs.MSEED, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("artifacts: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.mseed", code, component))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("artifacts: create %s: %w", path, err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, tr.SampleRate); err != nil {
		return "", err
	}
	if err := binary.Write(f, binary.LittleEndian, tr.StartTime.UnixNano()); err != nil {
		return "", err
	}
	if err := binary.Write(f, binary.LittleEndian, int64(len(tr.Data))); err != nil {
		return "", err
	}
	if err := binary.Write(f, binary.LittleEndian, tr.Data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSignalPlot renders tr to <Signal>/<D>/<code>_<comp>_signal.png.
func (w *Writer) WriteSignalPlot(tr seis.Trace, code, component string, date time.Time) (string, error) {
	if w.Dirs.Signal == "" {
		return "", nil
	}
	dir := dayDir(w.Dirs.Signal, date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("artifacts: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_signal.png", code, component))
	if err := plot.Signal(tr, path); err != nil {
		return "", fmt.Errorf("artifacts: signal plot: %w", err)
	}
	return path, nil
}

// PDFPlotPath returns the <PDF>/<D>/<code>_<comp>_PDF.png path ComputePPSD's
// PPSDArtifacts.PlotPath should carry, or "" when PDF plotting is disabled.
// ComputePPSD draws the curves directly; this only builds the destination.
func (w *Writer) PDFPlotPath(code, component string, date time.Time) string {
	if w.Dirs.PDF == "" {
		return ""
	}
	dir := dayDir(w.Dirs.PDF, date)
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, fmt.Sprintf("%s_%s_PDF.png", code, component))
}

// NpzPathPrefix returns the <PSD>/<D>/<code>_<comp> prefix ComputePPSD's
// psd.Serialize call appends "_<trace-id>.npz" to, or "" when PSD
// serialization (--ppsd) is not requested.
func (w *Writer) NpzPathPrefix(code, component string, date time.Time) string {
	if w.Dirs.PSD == "" {
		return ""
	}
	dir := dayDir(w.Dirs.PSD, date)
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, fmt.Sprintf("%s_%s", code, component))
}
