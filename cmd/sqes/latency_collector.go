package main

import (
	"context"
	"fmt"

	"github.com/jihwankim/sqes/pkg/scrapers"
	"github.com/spf13/cobra"
)

var latencyCollectorCmd = &cobra.Command{
	Use:   "latency-collector",
	Args:  cobra.NoArgs,
	Short: "Append to the stations_sensor_latency catalog table from latency_update_url",
	RunE:  runLatencyCollector,
}

func runLatencyCollector(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Basic.LatencyUpdateURL == "" {
		return fmt.Errorf("basic.latency_update_url is not configured")
	}

	ctx := context.Background()
	repo, closePool, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	return scrapers.UpdateLatency(ctx, repo, cfg.Basic.LatencyUpdateURL, logger)
}
