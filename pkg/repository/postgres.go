package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jihwankim/sqes/pkg/dbpool"
	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// postgresRepo implements Repository against a Postgres pool, using $N
// placeholders and ON CONFLICT for the station and sensor writes; latency
// rows are plain inserts.
type postgresRepo struct {
	pool dbpool.Pool
}

// NewPostgres builds a Repository talking Postgres SQL over pool.
func NewPostgres(pool dbpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// postgresStationCTE rolls station_channels up to one row per station.
// sensor_info ranks every channel's prefix against the fixed SH/BH/HH/HN/
// other preference and every row's location against the "00" > "" > other
// preference, per spec.md:82; primary_location keeps only the top-ranked
// location per station, and aggregated_prefixes orders its string_agg by
// that rank rather than alphabetically.
const postgresStationCTE = `
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
  SELECT network, station, string_agg(prefix, ',' ORDER BY prefix_rank, prefix) AS prefixes
  FROM distinct_prefixes
  GROUP BY network, station
),
aggregated_components AS (
  SELECT network, station, string_agg(component, ',' ORDER BY component) AS components
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

func (r *postgresRepo) ListStationsToProcess(ctx context.Context, date time.Time, networkFilter []string) ([]model.Station, error) {
	where := "station NOT IN (SELECT station FROM qc_details WHERE date = $1 GROUP BY station HAVING count(*) >= 3)"
	args := []any{dayTrunc(date)}
	if len(networkFilter) > 0 {
		ph := make([]string, len(networkFilter))
		for i, n := range networkFilter {
			args = append(args, n)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		where += fmt.Sprintf(" AND network IN (%s)", strings.Join(ph, ","))
	}
	return r.queryStations(ctx, fmt.Sprintf(postgresStationCTE, where), args)
}

func (r *postgresRepo) GetStationTuples(ctx context.Context, codes []string, networkFilter []string) ([]model.Station, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	ph := make([]string, len(codes))
	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	where := fmt.Sprintf("station IN (%s)", strings.Join(ph, ","))
	if len(networkFilter) > 0 {
		nph := make([]string, len(networkFilter))
		for i, n := range networkFilter {
			args = append(args, n)
			nph[i] = fmt.Sprintf("$%d", len(args))
		}
		where += fmt.Sprintf(" AND network IN (%s)", strings.Join(nph, ","))
	}
	return r.queryStations(ctx, fmt.Sprintf(postgresStationCTE, where), args)
}

func (r *postgresRepo) queryStations(ctx context.Context, sql string, args []any) ([]model.Station, error) {
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

func (r *postgresRepo) GetStragglers(ctx context.Context, date time.Time, codes []string) ([]string, error) {
	sql := `SELECT DISTINCT d.station FROM qc_details d
WHERE d.date = $1 AND NOT EXISTS (SELECT 1 FROM qc_analysis a WHERE a.station = d.station AND a.date = d.date)`
	args := []any{dayTrunc(date)}
	if len(codes) > 0 {
		ph := make([]string, len(codes))
		for i, c := range codes {
			args = append(args, c)
			ph[i] = fmt.Sprintf("$%d", len(args))
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

func (r *postgresRepo) FlushDay(ctx context.Context, date time.Time) error {
	d := dayTrunc(date)
	return r.pool.ExecuteMany(ctx, []dbpool.Statement{
		{SQL: "DELETE FROM qc_details WHERE date = $1", Args: []any{d}},
		{SQL: "DELETE FROM qc_analysis WHERE date = $1", Args: []any{d}},
	}, true)
}

func (r *postgresRepo) InsertDetail(ctx context.Context, row model.DetailRow) error {
	sql := `INSERT INTO qc_details
(id, station, date, channel, rms, ratioamp, availability, ngap, nover, nspikes,
 pct_above, pct_below, dcl, dcg, band_pct_long, band_pct_micro, band_pct_short)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err := r.pool.Execute(ctx, sql, detailRowArgs(row), true)
	return err
}

func (r *postgresRepo) DeleteDetail(ctx context.Context, id string, date time.Time) error {
	_, err := r.pool.Execute(ctx, "DELETE FROM qc_details WHERE id = $1 AND date = $2", []any{id, dayTrunc(date)}, true)
	return err
}

func (r *postgresRepo) ExistsDetail(ctx context.Context, id string, date time.Time) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM qc_details WHERE id = $1 AND date = $2", []any{id, dayTrunc(date)})
}

func (r *postgresRepo) GetDetailRows(ctx context.Context, station string, date time.Time) ([]model.DetailRow, error) {
	sql := `SELECT id, station, date, channel, rms, ratioamp, availability, ngap, nover, nspikes,
pct_above, pct_below, dcl, dcg, band_pct_long, band_pct_micro, band_pct_short
FROM qc_details WHERE station = $1 AND date = $2`
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

func (r *postgresRepo) InsertAnalysis(ctx context.Context, row model.AnalysisRow) error {
	sql := `INSERT INTO qc_analysis (station, date, score, classification, group_name, details)
VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Execute(ctx, sql, analysisRowArgs(row), true)
	return err
}

func (r *postgresRepo) DeleteAnalysis(ctx context.Context, station string, date time.Time) error {
	_, err := r.pool.Execute(ctx, "DELETE FROM qc_analysis WHERE station = $1 AND date = $2", []any{station, dayTrunc(date)}, true)
	return err
}

func (r *postgresRepo) ExistsAnalysis(ctx context.Context, station string, date time.Time) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM qc_analysis WHERE station = $1 AND date = $2", []any{station, dayTrunc(date)})
}

func (r *postgresRepo) exists(ctx context.Context, sql string, args []any) (bool, error) {
	found := false
	err := r.pool.Query(ctx, sql, args, func(dbpool.Row) error {
		found = true
		return nil
	})
	return found, err
}

func (r *postgresRepo) InsertStation(ctx context.Context, s model.Station) error {
	sql := `INSERT INTO stations (network, station, location, group_name)
VALUES ($1,$2,$3,$4)
ON CONFLICT (network, station) DO UPDATE SET location = EXCLUDED.location, group_name = EXCLUDED.group_name`
	_, err := r.pool.Execute(ctx, sql, []any{s.Network, s.Code, s.Location, s.Group}, true)
	return err
}

func (r *postgresRepo) UpdateStation(ctx context.Context, s model.Station) error {
	return r.InsertStation(ctx, s)
}

func (r *postgresRepo) InsertSensorRows(ctx context.Context, rows []SensorRow) error {
	stmts := make([]dbpool.Statement, len(rows))
	for i, row := range rows {
		stmts[i] = dbpool.Statement{
			SQL: `INSERT INTO stations_sensor (station, channel, sensor, digitizer, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (station, channel) DO UPDATE SET sensor = EXCLUDED.sensor, digitizer = EXCLUDED.digitizer, updated_at = EXCLUDED.updated_at`,
			Args: []any{row.Station, row.Channel, row.Sensor, row.Digitizer, row.UpdatedAt},
		}
	}
	return r.pool.ExecuteMany(ctx, stmts, true)
}

func (r *postgresRepo) InsertLatencyRows(ctx context.Context, rows []LatencyRow) error {
	stmts := make([]dbpool.Statement, len(rows))
	for i, row := range rows {
		stmts[i] = dbpool.Statement{
			SQL:  `INSERT INTO stations_sensor_latency (station, channel, latency_secs, observed_at) VALUES ($1,$2,$3,$4)`,
			Args: []any{row.Station, row.Channel, row.LatencySecs, row.ObservedAt},
		}
	}
	return r.pool.ExecuteMany(ctx, stmts, true)
}
