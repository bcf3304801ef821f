package scrapers

import (
	"context"
	"time"

	"github.com/jihwankim/sqes/pkg/reporting"
	"github.com/jihwankim/sqes/pkg/repository"
)

// sensorRecord is one entry of the sensor_update_url feed.
type sensorRecord struct {
	Station   string `json:"station"`
	Channel   string `json:"channel"`
	Sensor    string `json:"sensor"`
	Digitizer string `json:"digitizer"`
}

// UpdateSensors fetches url and bulk-loads the stations_sensor catalog
// table, grounded on sensor_updater.py's "scrape, then delete+bulk-insert"
// shape but reading one combined JSON feed instead of one HTML page per
// station — the per-station-URL scrape in the original is an artifact of
// the source website, not a requirement of the catalog table itself.
func UpdateSensors(ctx context.Context, repo repository.Repository, url string, logger *reporting.Logger) error {
	var records []sensorRecord
	if err := fetchJSON(ctx, url, &records); err != nil {
		return err
	}
	if len(records) == 0 {
		if logger != nil {
			logger.Info("sensor-update: feed returned no records")
		}
		return nil
	}

	now := time.Now()
	rows := make([]repository.SensorRow, 0, len(records))
	for _, r := range records {
		if r.Station == "" || r.Channel == "" {
			continue
		}
		rows = append(rows, repository.SensorRow{
			Station:   r.Station,
			Channel:   r.Channel,
			Sensor:    r.Sensor,
			Digitizer: r.Digitizer,
			UpdatedAt: now,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := repo.InsertSensorRows(ctx, rows); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("sensor-update: updated sensor rows", "count", len(rows))
	}
	return nil
}
