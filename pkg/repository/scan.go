package repository

import (
	"sort"
	"time"

	"github.com/jihwankim/sqes/pkg/dbpool"
	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// scanStation reads one row shaped like the listStationsToProcess /
// getStationTuples projection: network, code, the station's primary
// location, group, a comma-joined prefix list, and a comma-joined component
// list. Both dialects' CTEs order the prefix list by the SH/BH/HH/HN/other
// rank already; the re-sort below against model.PrefixRank is a defensive
// second pass so scanStation's output doesn't depend on the query getting
// that rank right.
func scanStation(r dbpool.Row) (model.Station, error) {
	var s model.Station
	var prefixes, components string
	if err := r.Scan(&s.Network, &s.Code, &s.Location, &s.Group, &prefixes, &components); err != nil {
		return model.Station{}, err
	}
	s.ChannelPrefixes = splitNonEmpty(prefixes)
	sort.SliceStable(s.ChannelPrefixes, func(i, j int) bool {
		return model.PrefixRank(s.ChannelPrefixes[i]) < model.PrefixRank(s.ChannelPrefixes[j])
	})
	s.ChannelComponents = splitNonEmpty(components)
	return s, nil
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if i > start {
				out = append(out, csv[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func scanStragglerCode(r dbpool.Row) (string, error) {
	var code string
	err := r.Scan(&code)
	return code, err
}

func scanDetailRow(r dbpool.Row) (model.DetailRow, error) {
	var row model.DetailRow
	err := r.Scan(
		&row.ID, &row.Station, &row.Date, &row.Channel,
		&row.RMS, &row.RatioAmp, &row.Availability,
		&row.NGap, &row.NOver, &row.NSpikes,
		&row.PctAbove, &row.PctBelow, &row.DCL, &row.DCG,
		&row.BandPctLong, &row.BandPctMicro, &row.BandPctShort,
	)
	return row, err
}

func detailRowArgs(row model.DetailRow) []any {
	return []any{
		row.ID, row.Station, row.Date, row.Channel,
		row.RMS, row.RatioAmp, row.Availability,
		row.NGap, row.NOver, row.NSpikes,
		row.PctAbove, row.PctBelow, row.DCL, row.DCG,
		row.BandPctLong, row.BandPctMicro, row.BandPctShort,
	}
}

func analysisRowArgs(row model.AnalysisRow) []any {
	return []any{row.Station, row.Date, row.Score, string(row.Classification), row.Group, joinDetails(row.Details)}
}

func joinDetails(details []string) string {
	out := ""
	for i, d := range details {
		if i > 0 {
			out += "; "
		}
		out += d
	}
	return out
}

// dayTrunc normalizes a timestamp to a date-only value for storage keys.
func dayTrunc(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
