// Package orchestrator drives the date-range control loop of
// SPEC_FULL.md §4.9: per day, a bounded pool of station workers, a
// straggler pass, and a global completeness retry — generalized from the
// teacher's Orchestrator struct and its sync.WaitGroup fan-out in
// pkg/core/orchestrator/orchestrator.go from "one chaos test" to "one
// bounded pool of station workers per day."
package orchestrator

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/jihwankim/sqes/pkg/emergency"
	"github.com/jihwankim/sqes/pkg/grading"
	"github.com/jihwankim/sqes/pkg/reporting"
	"github.com/jihwankim/sqes/pkg/repository"
	"github.com/jihwankim/sqes/pkg/sqes/model"
	"github.com/jihwankim/sqes/pkg/worker"
)

const maxPasses = 5

// Config bundles one invocation's inputs, per spec.md §4.9.
type Config struct {
	StartDate      time.Time
	EndDate        time.Time
	StationsFilter []string
	NetworkFilter  []string
	Flush          bool
	ConfiguredCPU  int
	Thresholds     model.Thresholds
}

// Orchestrator wires a Repository and a worker factory into the §4.9
// control loop. NewWorker is called once per station job so each worker
// gets its own client instances and logger context, per spec.md §5's
// worker-isolation rule; the DB pool is shared through Repo since the pool
// itself already rebuilds under transport error.
type Orchestrator struct {
	Repo      repository.Repository
	NewWorker func(station model.Station) *worker.Worker
	Emergency *emergency.Controller
	Logger    *reporting.Logger
	Progress  *reporting.ProgressReporter
}

// jobResult pairs a station with its worker outcome, mirroring the
// teacher's injectResult/faultJob fan-out shape.
type jobResult struct {
	station model.Station
	result  worker.Result
	err     error
}

// Run executes Config's date range to completion or until an emergency
// stop is observed. The first error from a day stops the run and is
// returned; a partial run due to emergency stop is not itself an error.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) error {
	filtered := len(cfg.StationsFilter) > 0 || len(cfg.NetworkFilter) > 0

	for d := cfg.StartDate; !d.After(cfg.EndDate); d = d.AddDate(0, 0, 1) {
		if o.stopRequested() {
			o.reportStop()
			return nil
		}
		if err := o.runDay(ctx, d, cfg, filtered); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) runDay(ctx context.Context, d time.Time, cfg Config, filtered bool) error {
	window := model.DayWindow(d)
	log := o.Logger
	start := time.Now()
	if o.Progress != nil {
		o.Progress.ReportDayStart(d)
	}

	pass := 1
	for ; ; pass++ {
		if cfg.Flush && d.Equal(cfg.StartDate) && pass == 1 {
			if err := o.Repo.FlushDay(ctx, d); err != nil {
				return err
			}
		}

		var stations []model.Station
		var err error
		if len(cfg.StationsFilter) > 0 {
			stations, err = o.Repo.GetStationTuples(ctx, cfg.StationsFilter, cfg.NetworkFilter)
		} else {
			stations, err = o.Repo.ListStationsToProcess(ctx, d, cfg.NetworkFilter)
		}
		if err != nil {
			return err
		}
		if len(stations) == 0 && !filtered {
			break
		}

		failed, err := o.runPool(ctx, stations, d, window, cfg)
		if err != nil {
			return err
		}
		if o.stopRequested() {
			o.reportStop()
			return nil
		}

		stragglers, err := o.Repo.GetStragglers(ctx, d, cfg.StationsFilter)
		if err != nil {
			return err
		}
		if o.Progress != nil {
			o.Progress.ReportStragglers(d, stragglers)
		}
		for _, code := range stragglers {
			if err := o.runStraggler(ctx, code, d, cfg.Thresholds); err != nil && log != nil {
				log.Error("straggler grading failed", "station", code, "error", err.Error())
			}
		}
		if o.Progress != nil {
			o.Progress.ReportPassResult(reporting.PassResult{
				Date: d, Pass: pass, Total: len(stations), Failed: failed, Stragglers: len(stragglers),
			})
		}

		if filtered {
			break
		}

		remaining, err := o.Repo.ListStationsToProcess(ctx, d, nil)
		if err != nil {
			return err
		}
		remainingStragglers, err := o.Repo.GetStragglers(ctx, d, nil)
		if err != nil {
			return err
		}
		if len(remaining) == 0 && len(remainingStragglers) == 0 {
			break
		}
		if pass >= maxPasses {
			if o.Progress != nil {
				o.Progress.ReportDayComplete(reporting.DaySummary{Date: d, Passes: pass, Elapsed: time.Since(start), Exhausted: true})
			}
			return nil
		}
		if err := o.interruptibleSleep(ctx, 10*time.Second); err != nil {
			return nil
		}
	}
	if o.Progress != nil {
		o.Progress.ReportDayComplete(reporting.DaySummary{Date: d, Passes: pass, Elapsed: time.Since(start)})
	}
	return nil
}

func (o *Orchestrator) reportStop() {
	if o.Progress == nil || o.Emergency == nil {
		return
	}
	reason := o.Emergency.Reason()
	if reason == "" {
		reason = "stop requested"
	}
	o.Progress.ReportEmergencyStop(reason)
}

// poolSize computes min(configuredCPU, data/35 rounded to even, max(4, cpu/3))
// per spec.md §4.9/§5. The floor of 4 applies only to the cpu/3 term; it does
// not re-floor the overall min; otherwise a configuredCPU below 4 would be
// silently overridden upward. The result is never below 1, so a day with
// fewer than 35 stations still gets one worker.
func poolSize(configuredCPU, dataSize int) int {
	cpu := runtime.NumCPU()
	byData := int(math.Round(float64(dataSize)/35/2)) * 2
	byCPU := cpu / 3
	if byCPU < 4 {
		byCPU = 4
	}
	limit := configuredCPU
	if byData < limit {
		limit = byData
	}
	if byCPU < limit {
		limit = byCPU
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// runPool fans station jobs out over a bounded worker pool, mirroring the
// teacher's indexed-results-slice + sync.WaitGroup fan-out in executeInject.
// It returns the number of stations whose worker returned an error.
func (o *Orchestrator) runPool(ctx context.Context, stations []model.Station, d time.Time, window model.TimeWindow, cfg Config) (int, error) {
	if len(stations) == 0 {
		return 0, nil
	}
	n := poolSize(cfg.ConfiguredCPU, len(stations))

	jobs := make(chan model.Station)
	results := make([]jobResult, 0, len(stations))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for station := range jobs {
				if o.stopRequested() {
					continue
				}
				w := o.NewWorker(station)
				res, err := w.Run(ctx, station, window)
				mu.Lock()
				results = append(results, jobResult{station: station, result: res, err: err})
				mu.Unlock()
			}
		}()
	}

	for _, s := range stations {
		jobs <- s
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.err == nil {
			continue
		}
		failed++
		if o.Logger != nil {
			o.Logger.Error("worker failed", "station", r.station.Code, "error", r.err.Error())
		}
		if o.Progress != nil {
			o.Progress.ReportWorkerFailure(r.station.Code, d, r.err)
		}
	}
	return failed, nil
}

// runStraggler re-grades a station whose detail rows already exist but
// whose analysis row never got written (e.g. the worker was interrupted
// after WriteDetail but before Grade), without repeating acquisition.
func (o *Orchestrator) runStraggler(ctx context.Context, station string, date time.Time, t model.Thresholds) error {
	rows, err := o.Repo.GetDetailRows(ctx, station, date)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	var channels []grading.ChannelResult
	for _, row := range rows {
		channels = append(channels, grading.Score(model.FromDetailRow(row), t))
	}
	result := grading.ScoreStation(channels, t)

	analysis := model.AnalysisRow{
		Station:        station,
		Date:           date,
		Score:          result.Score,
		Classification: result.Classification,
		Details:        result.Warnings,
	}
	_ = o.Repo.DeleteAnalysis(ctx, station, date)
	return o.Repo.InsertAnalysis(ctx, analysis)
}

func (o *Orchestrator) stopRequested() bool {
	return o.Emergency != nil && o.Emergency.IsStopped()
}

// interruptibleSleep blocks for duration, waking early on context
// cancellation or an emergency stop, mirroring the teacher's
// interruptibleSleep ticker loop.
func (o *Orchestrator) interruptibleSleep(ctx context.Context, duration time.Duration) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	deadline := time.Now().Add(duration)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if o.stopRequested() {
				return context.Canceled
			}
			if time.Now().After(deadline) {
				return nil
			}
		}
	}
}
