package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Args:  cobra.NoArgs,
	Short: "Validate the configuration file and exit",
	Long:  `Loads the INI configuration named by --config and reports any parse or validation error, without starting a run.`,
	RunE:  runCheckConfig,
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Printf("config OK: use_database=%s waveform_source=%s inventory_source=%s cpu_number_used=%d spike_method=%s\n",
		cfg.Basic.UseDatabase, cfg.Basic.WaveformSource, cfg.Basic.InventorySource, cfg.Basic.CPUNumberUsed, cfg.Basic.SpikeMethod)
	return nil
}
