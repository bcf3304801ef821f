package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jihwankim/sqes/pkg/artifacts"
	"github.com/jihwankim/sqes/pkg/orchestrator"
	"github.com/jihwankim/sqes/pkg/reporting"
	"github.com/jihwankim/sqes/pkg/sourcemap"
	"github.com/jihwankim/sqes/pkg/sqes/model"
	"github.com/jihwankim/sqes/pkg/worker"
	"github.com/spf13/cobra"
)

const dateLayout = "20060102"

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the per-day acquisition and grading pipeline",
	Long: `Processes one day, or an inclusive range of days, of station data:
acquires waveforms and inventory, computes basic and PPSD metrics, grades
each station, and persists the results.`,
	RunE: runRun,
}

var (
	flagDate       string
	flagDateRangeS string
	flagDateRangeE string
	flagStations   []string
	flagNetworks   []string
	flagFlush      bool
	flagProgress   string
)

func init() {
	runCmd.Flags().StringVar(&flagDate, "date", "", "single day to process, YYYYMMDD")
	runCmd.Flags().StringArrayVarP(&flagStations, "station", "s", nil, "station code filter (repeatable)")
	runCmd.Flags().StringArrayVarP(&flagNetworks, "network", "n", nil, "network code filter (repeatable)")
	runCmd.Flags().Bool("ppsd", false, "write serialized PPSD matrices")
	runCmd.Flags().Bool("mseed", false, "write exported waveform files")
	runCmd.Flags().BoolVar(&flagFlush, "flush", false, "delete existing rows for the day before processing (requires --date)")
	runCmd.Flags().StringVar(&flagDateRangeS, "date-range-start", "", "date range start, YYYYMMDD (use with --date-range-end)")
	runCmd.Flags().StringVar(&flagDateRangeE, "date-range-end", "", "date range end, YYYYMMDD")
	runCmd.Flags().StringVar(&flagProgress, "progress", "text", "progress output format: text, json, or tui")
}

func parseDateRange() (time.Time, time.Time, error) {
	haveDate := flagDate != ""
	haveRange := flagDateRangeS != "" || flagDateRangeE != ""

	if haveDate && haveRange {
		return time.Time{}, time.Time{}, fmt.Errorf("--date and --date-range are mutually exclusive")
	}
	if flagFlush && !haveDate {
		return time.Time{}, time.Time{}, fmt.Errorf("--flush requires --date")
	}

	if haveDate {
		d, err := time.Parse(dateLayout, flagDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--date: %w", err)
		}
		return d, d, nil
	}
	if haveRange {
		if flagDateRangeS == "" || flagDateRangeE == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--date-range requires both a start and an end")
		}
		s, err := time.Parse(dateLayout, flagDateRangeS)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--date-range-start: %w", err)
		}
		e, err := time.Parse(dateLayout, flagDateRangeE)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--date-range-end: %w", err)
		}
		if e.Before(s) {
			return time.Time{}, time.Time{}, fmt.Errorf("--date-range-end is before --date-range-start")
		}
		return s, e, nil
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return today, today, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	start, end, err := parseDateRange()
	if err != nil {
		return err
	}
	writePPSD, _ := cmd.Flags().GetBool("ppsd")
	writeMSEED, _ := cmd.Flags().GetBool("mseed")

	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	repo, closePool, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	sources, warnings, err := sourcemap.Load("source.cfg")
	if err != nil {
		return fmt.Errorf("load source.cfg: %w", err)
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	emerg := newEmergencyController()
	emerg.Start(ctx)

	spikeEngine := newSpikeEngine(cfg)
	primaryWaveforms, secondaryWaveforms := newWaveformClient(cfg)
	inventoryClient := newInventoryClient(cfg, logger)

	dirs := artifacts.Dirs{
		MSEED:  cfg.Basic.OutputMSEED,
		Signal: cfg.Basic.OutputSignal,
		PDF:    cfg.Basic.OutputPDF,
		PSD:    cfg.Basic.OutputPSD,
	}

	progress := reporting.NewProgressReporter(reporting.OutputFormat(flagProgress), logger)

	orch := &orchestrator.Orchestrator{
		Repo:      repo,
		Emergency: emerg,
		Logger:    logger,
		Progress:  progress,
		NewWorker: func(station model.Station) *worker.Worker {
			waveforms := primaryWaveforms
			if override, ok := sources.Lookup(station.Network, station.Code); ok && override.WaveformTag == "secondary" {
				waveforms = secondaryWaveforms
			}
			return &worker.Worker{
				Waveforms:   waveforms,
				Inventory:   inventoryClient,
				Repo:        repo,
				Artifacts:   &artifacts.Writer{Dirs: dirs},
				Thresholds:  cfg.Thresholds,
				SpikeEngine: spikeEngine,
				WritePSD:    writePPSD,
				WriteMSEED:  writeMSEED,
				Logger:      logger.WithStation(station.Code),
			}
		},
	}

	runErr := orch.Run(ctx, orchestrator.Config{
		StartDate:      start,
		EndDate:        end,
		StationsFilter: flagStations,
		NetworkFilter:  flagNetworks,
		Flush:          flagFlush,
		ConfiguredCPU:  cfg.Basic.CPUNumberUsed,
		Thresholds:     cfg.Thresholds,
	})

	if emerg.IsStopped() {
		if sig := emerg.Signal(); sig != nil {
			signalExitCode = emerg.ExitCode()
			logger.Warn("stopping on signal", "reason", emerg.Reason())
		}
	}

	return runErr
}
