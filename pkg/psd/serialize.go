package psd

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// magic identifies the gzip'd binary matrix format this package writes in
// place of the upstream toolkit's .npz archive; the bytes themselves carry
// no cross-language meaning, only internal format versioning.
var magic = [4]byte{'s', 'q', 'z', '1'}

// Serialize writes p's percentile and mean curves to path, gzip-compressed,
// as the on-disk stand-in for the npz artifact of SPEC_FULL.md §6.4.
func Serialize(p *PPSD, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("psd: create %s: %w", path, err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()

	if _, err := gw.Write(magic[:]); err != nil {
		return err
	}
	if err := writeCurve(gw, p.Percentile); err != nil {
		return err
	}
	if err := writeCurve(gw, p.Mean); err != nil {
		return err
	}
	return nil
}

func writeCurve(w io.Writer, c Curve) error {
	if err := binary.Write(w, binary.LittleEndian, int64(len(c.Period))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.Period); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, c.Power)
}

// Deserialize reads a curve pair previously written by Serialize. No code
// path in this module calls it.
func Deserialize(path string) (percentile, mean Curve, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Curve{}, Curve{}, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return Curve{}, Curve{}, err
	}
	defer gr.Close()

	var got [4]byte
	if _, err := io.ReadFull(gr, got[:]); err != nil {
		return Curve{}, Curve{}, err
	}
	if got != magic {
		return Curve{}, Curve{}, fmt.Errorf("psd: %s: bad magic", path)
	}
	percentile, err = readCurve(gr)
	if err != nil {
		return Curve{}, Curve{}, err
	}
	mean, err = readCurve(gr)
	if err != nil {
		return Curve{}, Curve{}, err
	}
	return percentile, mean, nil
}

func readCurve(r io.Reader) (Curve, error) {
	var n int64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Curve{}, err
	}
	period := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, period); err != nil {
		return Curve{}, err
	}
	power := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, power); err != nil {
		return Curve{}, err
	}
	return Curve{Period: period, Power: power}, nil
}
