package main

import (
	"context"
	"fmt"

	"github.com/jihwankim/sqes/pkg/scrapers"
	"github.com/spf13/cobra"
)

var sensorUpdateCmd = &cobra.Command{
	Use:   "sensor-update",
	Args:  cobra.NoArgs,
	Short: "Refresh the stations_sensor catalog table from sensor_update_url",
	RunE:  runSensorUpdate,
}

func runSensorUpdate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Basic.SensorUpdateURL == "" {
		return fmt.Errorf("basic.sensor_update_url is not configured")
	}

	ctx := context.Background()
	repo, closePool, err := newRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	return scrapers.UpdateSensors(ctx, repo, cfg.Basic.SensorUpdateURL, logger)
}
