// Package plot renders the diagnostic PNG artifacts of SPEC_FULL.md §6.4:
// per-channel signal plots and PPSD curve plots, emitted during the
// PersistArtifacts and PPSDMetrics worker states.
package plot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jihwankim/sqes/pkg/psd"
	"github.com/jihwankim/sqes/pkg/seis"
)

// Signal renders one trace's waveform to a PNG at path.
func Signal(tr seis.Trace, path string) error {
	p := plot.New()
	p.Title.Text = tr.ID()
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "amplitude"

	pts := make(plotter.XYs, len(tr.Data))
	for i, v := range tr.Data {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plot: signal line for %s: %w", tr.ID(), err)
	}
	p.Add(line)

	return p.Save(8*vg.Inch, 3*vg.Inch, path)
}

// PPSD renders the percentile and mean PSD curves (log-period x-axis) to a
// PNG at path.
func PPSD(id string, curves *psd.PPSD, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("PPSD %s", id)
	p.X.Label.Text = "period (s)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{}
	p.Y.Label.Text = "power (dB)"

	pct := toXYs(curves.Percentile)
	mean := toXYs(curves.Mean)

	pctLine, err := plotter.NewLine(pct)
	if err != nil {
		return fmt.Errorf("plot: ppsd percentile line: %w", err)
	}
	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return fmt.Errorf("plot: ppsd mean line: %w", err)
	}
	meanLine.Color = plotter.DefaultLineStyle.Color

	p.Add(pctLine, meanLine)
	p.Legend.Add("percentile", pctLine)
	p.Legend.Add("mean", meanLine)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func toXYs(c psd.Curve) plotter.XYs {
	pts := make(plotter.XYs, 0, len(c.Period))
	for i, t := range c.Period {
		if t <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: t, Y: c.Power[i]})
	}
	return pts
}
