package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jihwankim/sqes/pkg/dbpool"
	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// mysqlRepo implements Repository against a MySQL pool, using ? placeholders
// and ON DUPLICATE KEY UPDATE for the station and sensor writes; latency
// rows are plain inserts.
type mysqlRepo struct {
	pool dbpool.Pool
}

// NewMySQL builds a Repository talking MySQL SQL over pool.
func NewMySQL(pool dbpool.Pool) Repository {
	return &mysqlRepo{pool: pool}
}

// mysqlStationCTE mirrors postgresStationCTE's shape with GROUP_CONCAT in
// place of string_agg; see the Postgres comment for the rationale behind
// sensor_info's prefix_rank/loc_rank columns.
const mysqlStationCTE = `
WITH sensor_info AS (
  SELECT c.network, c.station, c.location, c.group_name, c.prefix, c.component,
         CASE c.prefix
           WHEN 'SH' THEN 0 WHEN 'BH' THEN 1 WHEN 'HH' THEN 2 WHEN 'HN' THEN 3
           ELSE 4
         END AS prefix_rank,
         ROW_NUMBER() OVER (
           PARTITION BY c.network, c.station
           ORDER BY CASE WHEN c.location = '00' THEN 0 WHEN c.location = '' THEN 1 ELSE 2 END, c.location
         ) AS loc_rank
  FROM station_channels c
),
distinct_prefixes AS (
  SELECT DISTINCT network, station, prefix, prefix_rank FROM sensor_info
),
distinct_components AS (
  SELECT DISTINCT network, station, component FROM sensor_info
),
aggregated_prefixes AS (
  SELECT network, station, GROUP_CONCAT(prefix ORDER BY prefix_rank, prefix SEPARATOR ',') AS prefixes
  FROM distinct_prefixes
  GROUP BY network, station
),
aggregated_components AS (
  SELECT network, station, GROUP_CONCAT(component ORDER BY component SEPARATOR ',') AS components
  FROM distinct_components
  GROUP BY network, station
),
primary_location AS (
  SELECT network, station, location, group_name FROM sensor_info WHERE loc_rank = 1
),
rollup AS (
  SELECT pl.network, pl.station, pl.location, pl.group_name,
         COALESCE(ap.prefixes, '') AS prefixes,
         COALESCE(ac.components, '') AS components
  FROM primary_location pl
  LEFT JOIN aggregated_prefixes ap ON pl.network = ap.network AND pl.station = ap.station
  LEFT JOIN aggregated_components ac ON pl.network = ac.network AND pl.station = ac.station
)
SELECT network, station, location, group_name, prefixes, components
FROM rollup
WHERE %s`

func (r *mysqlRepo) ListStationsToProcess(ctx context.Context, date time.Time, networkFilter []string) ([]model.Station, error) {
	where := "station NOT IN (SELECT station FROM qc_details WHERE date = ? GROUP BY station HAVING count(*) >= 3)"
	args := []any{dayTrunc(date)}
	if len(networkFilter) > 0 {
		ph := make([]string, len(networkFilter))
		for i, n := range networkFilter {
			args = append(args, n)
			ph[i] = "?"
		}
		where += fmt.Sprintf(" AND network IN (%s)", strings.Join(ph, ","))
	}
	return r.queryStations(ctx, fmt.Sprintf(mysqlStationCTE, where), args)
}

func (r *mysqlRepo) GetStationTuples(ctx context.Context, codes []string, networkFilter []string) ([]model.Station, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	ph := make([]string, len(codes))
	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
		ph[i] = "?"
	}
	where := fmt.Sprintf("station IN (%s)", strings.Join(ph, ","))
	if len(networkFilter) > 0 {
		nph := make([]string, len(networkFilter))
		for i, n := range networkFilter {
			args = append(args, n)
			nph[i] = "?"
		}
		where += fmt.Sprintf(" AND network IN (%s)", strings.Join(nph, ","))
	}
	return r.queryStations(ctx, fmt.Sprintf(mysqlStationCTE, where), args)
}

func (r *mysqlRepo) queryStations(ctx context.Context, sql string, args []any) ([]model.Station, error) {
	var out []model.Station
	err := r.pool.Query(ctx, sql, args, func(row dbpool.Row) error {
		s, err := scanStation(row)
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func (r *mysqlRepo) GetStragglers(ctx context.Context, date time.Time, codes []string) ([]string, error) {
	sql := `SELECT DISTINCT d.station FROM qc_details d
WHERE d.date = ? AND NOT EXISTS (SELECT 1 FROM qc_analysis a WHERE a.station = d.station AND a.date = d.date)`
	args := []any{dayTrunc(date)}
	if len(codes) > 0 {
		ph := make([]string, len(codes))
		for i, c := range codes {
			args = append(args, c)
			ph[i] = "?"
		}
		sql += fmt.Sprintf(" AND d.station IN (%s)", strings.Join(ph, ","))
	}
	var out []string
	err := r.pool.Query(ctx, sql, args, func(row dbpool.Row) error {
		code, err := scanStragglerCode(row)
		if err != nil {
			return err
		}
		out = append(out, code)
		return nil
	})
	return out, err
}

func (r *mysqlRepo) FlushDay(ctx context.Context, date time.Time) error {
	d := dayTrunc(date)
	return r.pool.ExecuteMany(ctx, []dbpool.Statement{
		{SQL: "DELETE FROM qc_details WHERE date = ?", Args: []any{d}},
		{SQL: "DELETE FROM qc_analysis WHERE date = ?", Args: []any{d}},
	}, true)
}

func (r *mysqlRepo) InsertDetail(ctx context.Context, row model.DetailRow) error {
	sql := `INSERT INTO qc_details
(id, station, date, channel, rms, ratioamp, availability, ngap, nover, nspikes,
 pct_above, pct_below, dcl, dcg, band_pct_long, band_pct_micro, band_pct_short)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err := r.pool.Execute(ctx, sql, detailRowArgs(row), true)
	return err
}

func (r *mysqlRepo) DeleteDetail(ctx context.Context, id string, date time.Time) error {
	_, err := r.pool.Execute(ctx, "DELETE FROM qc_details WHERE id = ? AND date = ?", []any{id, dayTrunc(date)}, true)
	return err
}

func (r *mysqlRepo) ExistsDetail(ctx context.Context, id string, date time.Time) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM qc_details WHERE id = ? AND date = ?", []any{id, dayTrunc(date)})
}

func (r *mysqlRepo) GetDetailRows(ctx context.Context, station string, date time.Time) ([]model.DetailRow, error) {
	sql := `SELECT id, station, date, channel, rms, ratioamp, availability, ngap, nover, nspikes,
pct_above, pct_below, dcl, dcg, band_pct_long, band_pct_micro, band_pct_short
FROM qc_details WHERE station = ? AND date = ?`
	var out []model.DetailRow
	err := r.pool.Query(ctx, sql, []any{station, dayTrunc(date)}, func(row dbpool.Row) error {
		d, err := scanDetailRow(row)
		if err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

func (r *mysqlRepo) InsertAnalysis(ctx context.Context, row model.AnalysisRow) error {
	sql := `INSERT INTO qc_analysis (station, date, score, classification, group_name, details)
VALUES (?,?,?,?,?,?)`
	_, err := r.pool.Execute(ctx, sql, analysisRowArgs(row), true)
	return err
}

func (r *mysqlRepo) DeleteAnalysis(ctx context.Context, station string, date time.Time) error {
	_, err := r.pool.Execute(ctx, "DELETE FROM qc_analysis WHERE station = ? AND date = ?", []any{station, dayTrunc(date)}, true)
	return err
}

func (r *mysqlRepo) ExistsAnalysis(ctx context.Context, station string, date time.Time) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM qc_analysis WHERE station = ? AND date = ?", []any{station, dayTrunc(date)})
}

func (r *mysqlRepo) exists(ctx context.Context, sql string, args []any) (bool, error) {
	found := false
	err := r.pool.Query(ctx, sql, args, func(dbpool.Row) error {
		found = true
		return nil
	})
	return found, err
}

func (r *mysqlRepo) InsertStation(ctx context.Context, s model.Station) error {
	sql := `INSERT INTO stations (network, station, location, group_name)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE location = VALUES(location), group_name = VALUES(group_name)`
	_, err := r.pool.Execute(ctx, sql, []any{s.Network, s.Code, s.Location, s.Group}, true)
	return err
}

func (r *mysqlRepo) UpdateStation(ctx context.Context, s model.Station) error {
	return r.InsertStation(ctx, s)
}

func (r *mysqlRepo) InsertSensorRows(ctx context.Context, rows []SensorRow) error {
	stmts := make([]dbpool.Statement, len(rows))
	for i, row := range rows {
		stmts[i] = dbpool.Statement{
			SQL: `INSERT INTO stations_sensor (station, channel, sensor, digitizer, updated_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE sensor = VALUES(sensor), digitizer = VALUES(digitizer), updated_at = VALUES(updated_at)`,
			Args: []any{row.Station, row.Channel, row.Sensor, row.Digitizer, row.UpdatedAt},
		}
	}
	return r.pool.ExecuteMany(ctx, stmts, true)
}

func (r *mysqlRepo) InsertLatencyRows(ctx context.Context, rows []LatencyRow) error {
	stmts := make([]dbpool.Statement, len(rows))
	for i, row := range rows {
		stmts[i] = dbpool.Statement{
			SQL:  `INSERT INTO stations_sensor_latency (station, channel, latency_secs, observed_at) VALUES (?,?,?,?)`,
			Args: []any{row.Station, row.Channel, row.LatencySecs, row.ObservedAt},
		}
	}
	return r.pool.ExecuteMany(ctx, stmts, true)
}
