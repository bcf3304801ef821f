package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	verbose    int
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "sqes",
	Short: "Seismic station quality-evaluation pipeline",
	Long: `sqes computes daily per-channel data-quality metrics for a seismic
network: waveform and inventory acquisition, basic and PPSD-based noise
metrics, percentile-based grading, and persistence to a relational store.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.ini", "path to the INI configuration file")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (-v, -vv)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sensorUpdateCmd)
	rootCmd.AddCommand(stationUpdateCmd)
	rootCmd.AddCommand(latencyCollectorCmd)
	rootCmd.AddCommand(checkConfigCmd)
}

// Subcommands are defined in separate files:
// - runCmd in run.go
// - sensorUpdateCmd in sensor_update.go
// - stationUpdateCmd in station_update.go
// - latencyCollectorCmd in latency_collector.go
// - checkConfigCmd in check_config.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
