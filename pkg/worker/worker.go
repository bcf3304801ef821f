// Package worker implements the per-station state machine of
// SPEC_FULL.md §4.8: Waveforms -> Inventory -> PersistArtifacts ->
// BasicMetrics -> HighGapGate -> PPSDMetrics -> WriteDetail -> NextComponent
// -> ... -> Grade -> Done, modeled on the teacher's TestState enum/String()
// pattern in pkg/core/orchestrator/orchestrator.go (here: WorkerState).
package worker

import (
	"context"
	"time"

	"github.com/jihwankim/sqes/pkg/artifacts"
	"github.com/jihwankim/sqes/pkg/clients"
	"github.com/jihwankim/sqes/pkg/grading"
	"github.com/jihwankim/sqes/pkg/metrics"
	"github.com/jihwankim/sqes/pkg/reporting"
	"github.com/jihwankim/sqes/pkg/repository"
	"github.com/jihwankim/sqes/pkg/seis"
	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// WorkerState names one step of the per-component pipeline, mirroring the
// teacher's TestState enum.
type WorkerState int

const (
	StateWaveforms WorkerState = iota
	StateInventory
	StatePersistArtifacts
	StateBasicMetrics
	StateHighGapGate
	StatePPSDMetrics
	StateWriteDetail
	StateDone
)

func (s WorkerState) String() string {
	switch s {
	case StateWaveforms:
		return "Waveforms"
	case StateInventory:
		return "Inventory"
	case StatePersistArtifacts:
		return "PersistArtifacts"
	case StateBasicMetrics:
		return "BasicMetrics"
	case StateHighGapGate:
		return "HighGapGate"
	case StatePPSDMetrics:
		return "PPSDMetrics"
	case StateWriteDetail:
		return "WriteDetail"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Per-state timeouts, SPEC_FULL.md §4.8.
const (
	waveformsTimeout        = 600 * time.Second
	persistArtifactsTimeout = 180 * time.Second
	ppsdMetricsTimeout      = 1200 * time.Second
	highGapThreshold        = 2000
)

// Worker runs the state machine for one station on one day.
type Worker struct {
	Waveforms  clients.WaveformClient
	Inventory  clients.InventoryClient
	Repo       repository.Repository
	Artifacts  *artifacts.Writer
	Thresholds model.Thresholds
	SpikeEngine metrics.SpikeEngine
	WritePSD   bool
	WriteMSEED bool
	Logger     *reporting.Logger
}

// Result is everything Run produced for one station/day: the detail rows
// (one per entry of station.ChannelComponents, three in the typical case)
// and the derived analysis row.
type Result struct {
	Details  []model.DetailRow
	Analysis model.AnalysisRow
}

// Run executes the state machine for station over window, producing exactly
// len(station.ChannelComponents) detail rows (three, in the typical case)
// and one analysis row, persisting both through Repo.
func (w *Worker) Run(ctx context.Context, station model.Station, window model.TimeWindow) (Result, error) {
	log := w.Logger
	if log != nil {
		log = log.WithStation(station.Code)
	}

	if !station.Processable() {
		return w.allDefault(ctx, station, window, "No channels")
	}

	var details []model.DetailRow
	for _, component := range station.ChannelComponents {
		row := w.runComponent(ctx, station, window, component, log)
		details = append(details, row)
		if err := w.persistDetail(ctx, row); err != nil && log != nil {
			log.Error("insert detail failed", "component", component, "error", err.Error())
		}
	}

	analysis := w.grade(station, window.Start, details)
	if err := w.persistAnalysis(ctx, analysis); err != nil && log != nil {
		log.Error("insert analysis failed", "error", err.Error())
	}

	return Result{Details: details, Analysis: analysis}, nil
}

// runComponent drives one channel component through the full state machine,
// never returning an error: every failure path resolves to a (possibly
// partially-defaulted) DetailRow per SPEC_FULL.md §4.8's error-kind table.
func (w *Worker) runComponent(ctx context.Context, station model.Station, window model.TimeWindow, component string, log *reporting.Logger) model.DetailRow {
	state := StateWaveforms

	stream, ok := w.fetchWaveforms(ctx, station, window, component)
	if !ok {
		if log != nil {
			log.Warn("waveform fetch failed, using default row", "component", component, "state", state.String())
		}
		return model.DefaultDetailRow(station.Code, component, window.Start)
	}
	state = StateInventory

	inv, ok := w.fetchInventory(ctx, station, window, component)
	if !ok {
		if log != nil {
			log.Warn("inventory absent, using default row", "component", component, "state", state.String())
		}
		return model.DefaultDetailRow(station.Code, component, window.Start)
	}
	state = StatePersistArtifacts

	w.persistArtifacts(ctx, stream, station.Code, component, window.Start)
	state = StateBasicMetrics

	basic, ok := w.computeBasic(ctx, stream, window)
	if !ok {
		if log != nil {
			log.Warn("basic metrics failed, using default row", "component", component, "state", state.String())
		}
		return model.DefaultDetailRow(station.Code, component, window.Start)
	}
	state = StateHighGapGate

	row := model.DetailRow{
		ID:           model.DetailID(station.Code, component, window.Start),
		Station:      station.Code,
		Date:         window.Start,
		Channel:      component,
		RMS:          basic.RMS,
		RatioAmp:     basic.RatioAmp,
		Availability: basic.Availability,
		NGap:         basic.NGap,
		NOver:        basic.NOver,
		NSpikes:      basic.NSpikes,
		PctAbove:     100,
	}

	if basic.NGap > highGapThreshold {
		if log != nil {
			log.Info("high gap count, skipping PPSD", "component", component, "ngap", basic.NGap)
		}
		return row
	}
	state = StatePPSDMetrics

	ppsdResult, ok := w.computePPSD(ctx, stream, inv, station.Code, component, window.Start)
	if !ok {
		if log != nil {
			log.Warn("PPSD metrics failed, using default PPSD fields", "component", component, "state", state.String())
		}
		return row
	}

	row.PctAbove = ppsdResult.PctH
	row.PctBelow = ppsdResult.PctL
	row.DCL = ppsdResult.DCL
	row.DCG = ppsdResult.DCG
	row.BandPctLong = ppsdResult.BandLong
	row.BandPctMicro = ppsdResult.BandMicro
	row.BandPctShort = ppsdResult.BandShort
	return row
}

func (w *Worker) fetchWaveforms(ctx context.Context, station model.Station, window model.TimeWindow, component string) (seis.Stream, bool) {
	cctx, cancel := context.WithTimeout(ctx, waveformsTimeout)
	defer cancel()
	stream, err := w.Waveforms.GetWaveforms(cctx, station.Network, station.Code, station.Location, station.ChannelPrefixes, window.Start, window.End, component)
	if err != nil || len(stream) == 0 {
		return nil, false
	}
	return stream, true
}

func (w *Worker) fetchInventory(ctx context.Context, station model.Station, window model.TimeWindow, component string) (*seis.Inventory, bool) {
	channel := station.ChannelPrefixes[0] + component
	inv, err := w.Inventory.GetInventory(ctx, station.Network, station.Code, station.Location, channel, window.Start)
	if err != nil || inv == nil {
		return nil, false
	}
	return inv, true
}

// persistArtifacts writes mseed/signal-plot output for one component.
// SPEC_FULL.md §4.8 gives this state a 180s timeout; the writes themselves
// are synchronous local disk I/O with no cancellable suspension point, so
// they run in a goroutine and persistArtifacts waits at most
// persistArtifactsTimeout for them. Writes still running at the deadline
// finish in the background while the component moves on.
func (w *Worker) persistArtifacts(ctx context.Context, stream seis.Stream, code, component string, date time.Time) {
	if w.Artifacts == nil || len(stream) == 0 {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, persistArtifactsTimeout)
	defer cancel()

	tr := stream[0]
	done := make(chan struct{})
	go func() {
		defer close(done)
		if w.WriteMSEED {
			_, _ = w.Artifacts.WriteMSEED(tr, code, component, date)
		}
		_, _ = w.Artifacts.WriteSignalPlot(tr, code, component, date)
	}()
	select {
	case <-cctx.Done():
	case <-done:
	}
}

func (w *Worker) computeBasic(ctx context.Context, stream seis.Stream, window model.TimeWindow) (metrics.Basic, bool) {
	basic := metrics.ComputeBasic(stream, window, w.SpikeEngine)
	return basic, true
}

func (w *Worker) computePPSD(ctx context.Context, stream seis.Stream, inv *seis.Inventory, code, component string, date time.Time) (*metrics.PPSD, bool) {
	cctx, cancel := context.WithTimeout(ctx, ppsdMetricsTimeout)
	defer cancel()

	var art metrics.PPSDArtifacts
	if w.Artifacts != nil {
		art.PlotPath = w.Artifacts.PDFPlotPath(code, component, date)
		if w.WritePSD {
			art.NpzPath = w.Artifacts.NpzPathPrefix(code, component, date)
		}
	}

	type outcome struct {
		result *metrics.PPSD
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := metrics.ComputePPSD(stream, inv, art)
		done <- outcome{r, err}
	}()

	select {
	case <-cctx.Done():
		return nil, false
	case o := <-done:
		if o.err != nil || o.result == nil {
			return nil, false
		}
		return o.result, true
	}
}

func (w *Worker) persistDetail(ctx context.Context, row model.DetailRow) error {
	if w.Repo == nil {
		return nil
	}
	_ = w.Repo.DeleteDetail(ctx, row.ID, row.Date)
	return w.Repo.InsertDetail(ctx, row)
}

func (w *Worker) persistAnalysis(ctx context.Context, row model.AnalysisRow) error {
	if w.Repo == nil {
		return nil
	}
	_ = w.Repo.DeleteAnalysis(ctx, row.Station, row.Date)
	return w.Repo.InsertAnalysis(ctx, row)
}

// grade runs the grading engine over the three detail rows and builds the
// station-level analysis row, per spec.md §4.7/§4.8's final state.
func (w *Worker) grade(station model.Station, date time.Time, details []model.DetailRow) model.AnalysisRow {
	if len(details) == 0 {
		return model.AnalysisRow{
			Station: station.Code, Date: date,
			Score: 0, Classification: model.ClassMati, Group: station.Group,
			Details: []string{"Tidak ada data"},
		}
	}

	var channels []grading.ChannelResult
	for _, d := range details {
		in := model.FromDetailRow(d)
		channels = append(channels, grading.Score(in, w.Thresholds))
	}
	result := grading.ScoreStation(channels, w.Thresholds)

	return model.AnalysisRow{
		Station:        station.Code,
		Date:           date,
		Score:          result.Score,
		Classification: result.Classification,
		Group:          station.Group,
		Details:        result.Warnings,
	}
}

// allDefault handles the "no catalog metadata" invariant: three default rows
// with reason "No channels", still feeding one analysis row.
func (w *Worker) allDefault(ctx context.Context, station model.Station, window model.TimeWindow, reason string) (Result, error) {
	components := station.ChannelComponents
	if len(components) == 0 {
		components = []string{"Z", "N", "E"}
	}
	var details []model.DetailRow
	for _, c := range components {
		row := model.DefaultDetailRow(station.Code, c, window.Start)
		details = append(details, row)
		_ = w.persistDetail(ctx, row)
	}
	analysis := model.AnalysisRow{
		Station: station.Code, Date: window.Start,
		Score: 0, Classification: model.ClassMati, Group: station.Group,
		Details: []string{reason},
	}
	_ = w.persistAnalysis(ctx, analysis)
	return Result{Details: details, Analysis: analysis}, nil
}
