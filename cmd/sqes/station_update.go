package main

import (
	"context"
	"fmt"

	"github.com/jihwankim/sqes/pkg/scrapers"
	"github.com/spf13/cobra"
)

var stationUpdateCmd = &cobra.Command{
	Use:   "station-update",
	Args:  cobra.NoArgs,
	Short: "Refresh the stations catalog table from station_update_url",
	RunE:  runStationUpdate,
}

func runStationUpdate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Basic.StationUpdateURL == "" {
		return fmt.Errorf("basic.station_update_url is not configured")
	}

	ctx := context.Background()
	repo, closePool, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	return scrapers.UpdateStations(ctx, repo, cfg.Basic.StationUpdateURL, logger)
}
